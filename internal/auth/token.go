package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Category distinguishes what a token may be used for.
type Category string

const (
	CategoryAccess  Category = "access"
	CategoryRefresh Category = "refresh"
)

const (
	DefaultRole       = "ROLE_USER"
	DefaultAccessTTL  = 2 * time.Hour
	DefaultRefreshTTL = 14 * 24 * time.Hour

	rolePrefix = "ROLE_"
)

// tokenClaims is the wire form of the token payload. UserID is a pointer so that
// tokens minted before the claim existed still decode.
type tokenClaims struct {
	Category string `json:"category"`
	Username string `json:"username"`
	Role     string `json:"role"`
	UserID   *uint  `json:"userId,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// Claims is the normalized view of a verified token.
type Claims struct {
	Category  Category
	Username  string
	Role      string
	UserID    uint
	Provider  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 tokens with a single process-wide secret.
// It is immutable after construction and safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*TokenService)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// CreateToken signs a token of the given category. Zero values are replaced with
// defaults instead of failing: blank role becomes ROLE_USER and a non-positive ttl
// becomes the access TTL.
func (s *TokenService) CreateToken(category Category, username, role string, userID uint, ttl time.Duration) (string, error) {
	return s.sign(category, username, role, userID, "", ttl)
}

// CreateAccessToken generates a short-lived access token
func (s *TokenService) CreateAccessToken(username, role string, userID uint) (string, error) {
	return s.sign(CategoryAccess, username, role, userID, "", s.accessTTL)
}

// CreateRefreshToken generates a long-lived refresh token
func (s *TokenService) CreateRefreshToken(username, role string, userID uint) (string, error) {
	return s.sign(CategoryRefresh, username, role, userID, "", s.refreshTTL)
}

// AccessFor mints an access token for p, keeping its provider claim.
func (s *TokenService) AccessFor(p Principal) (string, error) {
	return s.sign(CategoryAccess, p.Name(), p.Authority(), p.ID(), p.Provider(), s.accessTTL)
}

// RefreshFor mints a refresh token for p, keeping its provider claim.
func (s *TokenService) RefreshFor(p Principal) (string, error) {
	return s.sign(CategoryRefresh, p.Name(), p.Authority(), p.ID(), p.Provider(), s.refreshTTL)
}

// TokenPair is an access and refresh token minted together for one principal.
type TokenPair struct {
	Access           string
	Refresh          string
	RefreshExpiresAt time.Time
}

// IssuePair mints both tokens for p from the same issue time.
func (s *TokenService) IssuePair(p Principal) (*TokenPair, error) {
	now := s.now()
	access, err := s.signAt(now, CategoryAccess, p.Name(), p.Authority(), p.ID(), p.Provider(), s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signAt(now, CategoryRefresh, p.Name(), p.Authority(), p.ID(), p.Provider(), s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

func (s *TokenService) sign(category Category, username, role string, userID uint, provider string, ttl time.Duration) (string, error) {
	return s.signAt(s.now(), category, username, role, userID, provider, ttl)
}

func (s *TokenService) signAt(now time.Time, category Category, username, role string, userID uint, provider string, ttl time.Duration) (string, error) {
	if category == "" {
		category = CategoryAccess
	}
	if ttl <= 0 {
		ttl = s.accessTTL
	}

	id := userID
	claims := tokenClaims{
		Category: string(category),
		Username: username,
		Role:     NormalizeRole(role),
		UserID:   &id,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", category, err)
	}
	return signed, nil
}

// ParseClaims verifies the signature and expiry of a token and returns its claims.
// A correctly signed but expired token yields ErrTokenExpired; anything else that
// fails yields ErrTokenMalformed.
func (s *TokenService) ParseClaims(tokenString string) (*Claims, error) {
	raw := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims := &Claims{
		Category: Category(raw.Category),
		Username: raw.Username,
		Role:     NormalizeRole(raw.Role),
		Provider: raw.Provider,
	}
	if raw.UserID != nil {
		claims.UserID = *raw.UserID
	}
	if raw.IssuedAt != nil {
		claims.IssuedAt = raw.IssuedAt.Time
	}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
	}
	return claims, nil
}

// Validate parses the token and additionally requires the given category.
func (s *TokenService) Validate(tokenString string, category Category) (*Claims, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Category != category {
		return nil, fmt.Errorf("%w: want %s, got %q", ErrTokenCategoryMismatch, category, claims.Category)
	}
	return claims, nil
}

// IsExpired reports whether the token's exp is in the past. It is a predicate: a
// malformed token is reported as not expired and left for ParseClaims to reject.
func (s *TokenService) IsExpired(tokenString string) bool {
	claims, err := s.ParseClaims(tokenString)
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	if err != nil {
		return false
	}
	return !claims.ExpiresAt.After(s.now())
}

// NormalizeRole returns the ROLE_<NAME> form of role, defaulting to ROLE_USER.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" || role == rolePrefix {
		return DefaultRole
	}
	if strings.HasPrefix(role, rolePrefix) {
		return role
	}
	return rolePrefix + role
}
