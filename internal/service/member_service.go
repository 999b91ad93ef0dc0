package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"diary-backend/internal/auth"
	"diary-backend/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type MemberService struct {
	members MemberRepository
	refresh RefreshStore
	audit   AuditLogger
	log     *logrus.Entry
}

func NewMemberService(members MemberRepository, refresh RefreshStore, audit AuditLogger, log *logrus.Entry) *MemberService {
	return &MemberService{
		members: members,
		refresh: refresh,
		audit:   audit,
		log:     log,
	}
}

// MeResponse pairs the request principal with the stored member row
type MeResponse struct {
	ID        uint           `json:"id"`
	Username  string         `json:"username"`
	Authority string         `json:"authority"`
	Provider  string         `json:"provider,omitempty"`
	Member    *models.Member `json:"member"`
}

type MemberPage struct {
	Members []models.Member `json:"members"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
	Total   int64           `json:"total"`
}

// Me resolves the principal's member row. Tokens without a userId fall back to
// a username lookup.
func (s *MemberService) Me(ctx context.Context, p auth.Principal) (*MeResponse, error) {
	var (
		member *models.Member
		err    error
	)
	if p.ID() != 0 {
		member, err = s.members.FindByID(ctx, p.ID())
	} else {
		member, err = s.members.FindByUsername(ctx, p.Name())
	}
	if err != nil {
		return nil, err
	}

	return &MeResponse{
		ID:        member.ID,
		Username:  p.Name(),
		Authority: p.Authority(),
		Provider:  p.Provider(),
		Member:    member,
	}, nil
}

// List returns a page of members. Page is 1-based.
func (s *MemberService) List(ctx context.Context, page, size int) (*MemberPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	members, total, err := s.members.List(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if members == nil {
		members = []models.Member{}
	}
	return &MemberPage{Members: members, Page: page, Size: size, Total: total}, nil
}

// Delete removes a member together with all of their refresh tokens
func (s *MemberService) Delete(ctx context.Context, actor auth.Principal, id uint) error {
	member, err := s.members.FindByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.refresh.DeleteByUsername(ctx, member.Username)
	if err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}

	actorID := actor.ID()
	_ = s.audit.CreateAuditLog(ctx, &actorID, "member_delete", fmt.Sprintf("Member %s deleted by %s", member.Username, actor.Name()))
	s.log.WithFields(logrus.Fields{"member_id": id, "refresh_deleted": n}).Info("member deleted")
	return nil
}
