// Package authtest provides in-memory stores for exercising the auth flow
// without a database.
package authtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"diary-backend/internal/models"
	"diary-backend/internal/repository"
)

// RefreshStore keeps refresh tokens in a map. Rotate holds the lock across the
// delete and insert, so concurrent rotations of one value have a single winner.
type RefreshStore struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
	nextID uint
}

func NewRefreshStore() *RefreshStore {
	return &RefreshStore{tokens: make(map[string]models.RefreshToken)}
}

func (s *RefreshStore) Exists(_ context.Context, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[value]
	return ok, nil
}

func (s *RefreshStore) Create(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(token)
	return nil
}

func (s *RefreshStore) insert(token *models.RefreshToken) {
	s.nextID++
	token.ID = s.nextID
	token.CreatedAt = time.Now()
	s.tokens[token.RefreshValue] = *token
}

func (s *RefreshStore) DeleteByValue(_ context.Context, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[value]; !ok {
		return 0, nil
	}
	delete(s.tokens, value)
	return 1, nil
}

func (s *RefreshStore) Rotate(_ context.Context, oldValue string, next *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[oldValue]; !ok {
		return repository.ErrRefreshNotFound
	}
	delete(s.tokens, oldValue)
	s.insert(next)
	return nil
}

func (s *RefreshStore) DeleteByUsername(_ context.Context, username string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for value, token := range s.tokens {
		if token.Username == username {
			delete(s.tokens, value)
			n++
		}
	}
	return n, nil
}

func (s *RefreshStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for value, token := range s.tokens {
		if token.Expiration.Before(before) {
			delete(s.tokens, value)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored tokens.
func (s *RefreshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// MemberStore keeps members in insertion order.
type MemberStore struct {
	mu      sync.Mutex
	members map[uint]models.Member
	nextID  uint
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[uint]models.Member)}
}

func (s *MemberStore) FindByUsername(_ context.Context, username string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Username == username {
			return &m, nil
		}
	}
	return nil, repository.ErrMemberNotFound
}

func (s *MemberStore) FindByID(_ context.Context, id uint) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	return &m, nil
}

func (s *MemberStore) Create(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Username == member.Username || m.Nickname == member.Nickname {
			return repository.ErrDuplicateMember
		}
	}
	if member.Role == "" {
		member.Role = models.RoleUser
	}
	s.nextID++
	member.ID = s.nextID
	member.CreatedAt = time.Now()
	s.members[member.ID] = *member
	return nil
}

func (s *MemberStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	return err == nil, nil
}

func (s *MemberStore) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemberStore) List(_ context.Context, page, size int) ([]models.Member, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * size
	if start >= len(all) {
		return []models.Member{}, int64(len(all)), nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *MemberStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return repository.ErrMemberNotFound
	}
	delete(s.members, id)
	return nil
}

// LoginChecks records the latest presence flag per username.
type LoginChecks struct {
	mu     sync.Mutex
	checks map[string]bool
}

func NewLoginChecks() *LoginChecks {
	return &LoginChecks{checks: make(map[string]bool)}
}

func (l *LoginChecks) SetLoginCheck(_ context.Context, username string, loggedIn bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks[username] = loggedIn
	return nil
}

func (l *LoginChecks) IsLoggedIn(_ context.Context, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checks[username], nil
}

// AuditLog collects audit actions in order.
type AuditLog struct {
	mu      sync.Mutex
	actions []string
}

func (a *AuditLog) CreateAuditLog(_ context.Context, _ *uint, action string, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *AuditLog) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.actions...)
}
