package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"diary-backend/internal/auth"
	"diary-backend/internal/models"
	"diary-backend/pkg/utils"
)

type AuthService struct {
	members MemberRepository
	refresh RefreshStore
	logins  LoginCheckRepository
	audit   AuditLogger
	tokens  *auth.TokenService
	google  IDTokenVerifier
	log     *logrus.Entry
}

type AuthOption func(*AuthService)

// WithGoogleVerifier enables OAuth2 login with Google ID tokens.
func WithGoogleVerifier(v IDTokenVerifier) AuthOption {
	return func(s *AuthService) {
		s.google = v
	}
}

func NewAuthService(
	members MemberRepository,
	refresh RefreshStore,
	logins LoginCheckRepository,
	audit AuditLogger,
	tokens *auth.TokenService,
	log *logrus.Entry,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		members: members,
		refresh: refresh,
		logins:  logins,
		audit:   audit,
		tokens:  tokens,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is returned by password and OAuth2 logins
type LoginResult struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
}

// ReissueResult carries the rotated token pair
type ReissueResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Nickname string `json:"nickname" binding:"required,max=50"`
	Name     string `json:"name" binding:"max=100"`
}

// Login authenticates a member and issues a stored token pair
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialInvalid
	}

	member, err := s.members.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrCredentialInvalid
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	if !utils.ComparePassword(member.PasswordHash, password) {
		return nil, ErrCredentialInvalid
	}

	principal := auth.LocalPrincipal{
		UserID:   member.ID,
		Username: member.Username,
		Role:     member.Authority(),
	}
	return s.startSession(ctx, principal, member, "member_login")
}

// LoginOAuth2 verifies a provider ID token, provisioning the member on first use
func (s *AuthService) LoginOAuth2(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.google == nil {
		return nil, ErrOAuthDisabled
	}

	profile, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.WithError(err).Warn("rejected oauth2 id token")
		return nil, ErrCredentialInvalid
	}

	member, err := s.members.FindByUsername(ctx, profile.Email)
	if errors.Is(err, ErrMemberNotFound) {
		member, err = s.provision(ctx, profile.Email, profile.Name, s.google.Provider())
	}
	if err != nil {
		return nil, err
	}

	principal := auth.OAuth2Principal{
		UserID:       member.ID,
		Username:     member.Username,
		Role:         member.Authority(),
		ProviderName: s.google.Provider(),
	}
	return s.startSession(ctx, principal, member, "member_oauth2_login")
}

func (s *AuthService) provision(ctx context.Context, email, name, provider string) (*models.Member, error) {
	// Never usable for password login.
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	nickname, err := s.freeNickname(ctx, email)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Username:     email,
		Nickname:     nickname,
		Name:         name,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Provider:     provider,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	s.log.WithFields(logrus.Fields{"member_id": member.ID, "provider": provider}).Info("provisioned oauth2 member")
	return member, nil
}

func (s *AuthService) freeNickname(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	if len(base) > 40 {
		base = base[:40]
	}

	taken, err := s.members.ExistsByNickname(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to check nickname: %w", err)
	}
	if !taken {
		return base, nil
	}
	return base + "_" + uuid.NewString()[:8], nil
}

func (s *AuthService) startSession(ctx context.Context, p auth.Principal, member *models.Member, action string) (*LoginResult, error) {
	pair, err := s.tokens.IssuePair(p)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	record := &models.RefreshToken{
		Username:     p.Name(),
		RefreshValue: pair.Refresh,
		Expiration:   pair.RefreshExpiresAt,
	}
	if err := s.refresh.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.markLogin(ctx, p.Name(), true)

	memberID := p.ID()
	_ = s.audit.CreateAuditLog(ctx, &memberID, action, fmt.Sprintf("Member %s logged in", p.Name()))
	s.log.WithFields(logrus.Fields{"member_id": memberID, "provider": p.Provider()}).Info("member logged in")

	return &LoginResult{
		ID:       member.ID,
		Nickname: member.Nickname,
		Access:   pair.Access,
		Refresh:  pair.Refresh,
	}, nil
}

func (s *AuthService) markLogin(ctx context.Context, username string, loggedIn bool) {
	if err := s.logins.SetLoginCheck(ctx, username, loggedIn); err != nil {
		s.log.WithError(err).WithField("username", username).Warn("failed to update login check")
	}
}

// ValidateRefresh checks signature, expiry, category and store presence of a
// refresh token. Both silent refresh and reissue go through here.
func (s *AuthService) ValidateRefresh(ctx context.Context, refreshToken string) (*auth.Claims, error) {
	if refreshToken == "" {
		return nil, ErrRefreshMissing
	}

	claims, err := s.tokens.Validate(refreshToken, auth.CategoryRefresh)
	if err != nil {
		return nil, err
	}

	ok, err := s.refresh.Exists(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if !ok {
		return nil, ErrRefreshNotFound
	}
	return claims, nil
}

// SilentRefresh mints a new access token from a valid refresh token without
// rotating it.
func (s *AuthService) SilentRefresh(ctx context.Context, refreshToken string) (auth.Principal, string, error) {
	claims, err := s.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, "", err
	}

	principal := auth.PrincipalFromClaims(claims)
	access, err := s.tokens.AccessFor(principal)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return principal, access, nil
}

// Reissue rotates a refresh token. Of two concurrent calls with the same token
// only one succeeds; the other gets ErrRefreshNotFound.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (*ReissueResult, error) {
	claims, err := s.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	principal := auth.PrincipalFromClaims(claims)
	pair, err := s.tokens.IssuePair(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	next := &models.RefreshToken{
		Username:     principal.Name(),
		RefreshValue: pair.Refresh,
		Expiration:   pair.RefreshExpiresAt,
	}
	if err := s.refresh.Rotate(ctx, refreshToken, next); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.log.WithField("member_id", principal.ID()).Debug("refresh token rotated")
	return &ReissueResult{Access: pair.Access, Refresh: pair.Refresh}, nil
}

// Logout deletes the stored refresh token and clears the login check
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	n, err := s.refresh.DeleteByValue(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if n == 0 {
		return ErrRefreshNotFound
	}

	s.markLogin(ctx, claims.Username, false)

	var memberID *uint
	if claims.UserID != 0 {
		memberID = &claims.UserID
	}
	_ = s.audit.CreateAuditLog(ctx, memberID, "member_logout", fmt.Sprintf("Member %s logged out", claims.Username))
	s.log.WithField("username", claims.Username).Info("member logged out")
	return nil
}

// Signup registers a password member. It does not log the member in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.Member, error) {
	if _, err := mail.ParseAddress(req.Username); err != nil || len(req.Password) < 6 || strings.TrimSpace(req.Nickname) == "" {
		return nil, ErrInvalidSignup
	}

	exists, err := s.members.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrDuplicateMember
	}

	exists, err = s.members.ExistsByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if exists {
		return nil, ErrDuplicateMember
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		Username:     req.Username,
		Nickname:     req.Nickname,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, ErrDuplicateMember) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	_ = s.audit.CreateAuditLog(ctx, &member.ID, "member_signup", fmt.Sprintf("Member %s signed up", member.Username))
	return member, nil
}
