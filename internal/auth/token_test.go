package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewTokenService(testSecret, 10*time.Minute, 24*time.Hour, WithClock(clock.Now)), clock
}

func TestCreateTokenRoundTrip(t *testing.T) {
	svc, clock := newTestService(t)

	tests := []struct {
		name     string
		category Category
		username string
		role     string
		userID   uint
		ttl      time.Duration
	}{
		{"access user", CategoryAccess, "alice@example.com", "ROLE_USER", 1, time.Minute},
		{"refresh admin", CategoryRefresh, "root@example.com", "ROLE_ADMIN", 42, 48 * time.Hour},
		{"large id", CategoryAccess, "bob", "ROLE_USER", 1 << 31, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.CreateToken(tt.category, tt.username, tt.role, tt.userID, tt.ttl)
			require.NoError(t, err)

			claims, err := svc.ParseClaims(token)
			require.NoError(t, err)
			assert.Equal(t, tt.category, claims.Category)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Empty(t, claims.Provider)
			assert.True(t, claims.IssuedAt.Equal(clock.now))
			assert.True(t, claims.ExpiresAt.Equal(clock.now.Add(tt.ttl)))
		})
	}
}

func TestCreateTokenDefaults(t *testing.T) {
	svc, clock := newTestService(t)

	token, err := svc.CreateToken(CategoryAccess, "alice", "", 7, 0)
	require.NoError(t, err)

	claims, err := svc.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, DefaultRole, claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(clock.now.Add(svc.AccessTTL())))
}

func TestCreateTokenUnique(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.CreateRefreshToken("alice", "USER", 1)
	require.NoError(t, err)
	b, err := svc.CreateRefreshToken("alice", "USER", 1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewTokenServiceFallbackTTL(t *testing.T) {
	svc := NewTokenService(testSecret, 0, -time.Second)
	assert.Equal(t, DefaultAccessTTL, svc.AccessTTL())
	assert.Equal(t, DefaultRefreshTTL, svc.RefreshTTL())
}

func TestAccessForCarriesProvider(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.AccessFor(OAuth2Principal{UserID: 3, Username: "g@example.com", Role: "USER", ProviderName: "google"})
	require.NoError(t, err)

	claims, err := svc.Validate(token, CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "google", claims.Provider)
	assert.Equal(t, "ROLE_USER", claims.Role)

	p := PrincipalFromClaims(claims)
	assert.IsType(t, OAuth2Principal{}, p)
}

func TestIsExpired(t *testing.T) {
	svc, clock := newTestService(t)

	token, err := svc.CreateToken(CategoryAccess, "alice", "USER", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, svc.IsExpired(token))

	clock.Advance(59 * time.Second)
	assert.False(t, svc.IsExpired(token))

	clock.Advance(2 * time.Second)
	assert.True(t, svc.IsExpired(token))

	assert.False(t, svc.IsExpired("not-a-token"))
	assert.False(t, svc.IsExpired(""))
}

func TestParseClaimsExpired(t *testing.T) {
	svc, clock := newTestService(t)

	token, err := svc.CreateAccessToken("alice", "USER", 1)
	require.NoError(t, err)

	clock.Advance(svc.AccessTTL() + time.Second)
	_, err = svc.ParseClaims(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, errors.Is(err, ErrTokenMalformed))
}

func TestParseClaimsMalformed(t *testing.T) {
	svc, _ := newTestService(t)
	other := NewTokenService("another-secret", time.Minute, time.Hour)

	foreign, err := other.CreateAccessToken("alice", "USER", 1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"category": "access",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tampered, err := svc.CreateAccessToken("alice", "USER", 1)
	require.NoError(t, err)
	parts := strings.Split(tampered, ".")
	tampered = parts[0] + "." + parts[1] + "x." + parts[2]

	for name, token := range map[string]string{
		"garbage":      "abc.def.ghi",
		"empty":        "",
		"wrong secret": foreign,
		"alg none":     unsigned,
		"tampered":     tampered,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseClaims(token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestParseClaimsRequiresExpiry(t *testing.T) {
	svc, _ := newTestService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"category": "access",
		"username": "alice",
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ParseClaims(signed)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateCategoryMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	access, err := svc.CreateAccessToken("alice", "USER", 1)
	require.NoError(t, err)
	refresh, err := svc.CreateRefreshToken("alice", "USER", 1)
	require.NoError(t, err)

	_, err = svc.Validate(access, CategoryRefresh)
	assert.ErrorIs(t, err, ErrTokenCategoryMismatch)

	_, err = svc.Validate(refresh, CategoryAccess)
	assert.ErrorIs(t, err, ErrTokenCategoryMismatch)

	_, err = svc.Validate(refresh, CategoryRefresh)
	assert.NoError(t, err)
}

func TestParseClaimsLegacyToken(t *testing.T) {
	svc, clock := newTestService(t)

	// Tokens minted before userId and role were always written.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"category": "access",
		"username": "legacy",
		"iat":      clock.now.Unix(),
		"exp":      clock.now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := svc.Validate(signed, CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(0), claims.UserID)
	assert.Equal(t, DefaultRole, claims.Role)
	assert.Equal(t, "legacy", claims.Username)
}

func TestNormalizeRole(t *testing.T) {
	tests := map[string]string{
		"":           "ROLE_USER",
		"   ":        "ROLE_USER",
		"ROLE_":      "ROLE_USER",
		"USER":       "ROLE_USER",
		"admin":      "ROLE_ADMIN",
		"ROLE_ADMIN": "ROLE_ADMIN",
		"role_admin": "ROLE_ADMIN",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeRole(in), "input %q", in)
	}
}

func TestIssuePair(t *testing.T) {
	svc, clock := newTestService(t)

	pair, err := svc.IssuePair(LocalPrincipal{UserID: 4, Username: "alice", Role: "ADMIN"})
	require.NoError(t, err)
	assert.True(t, pair.RefreshExpiresAt.Equal(clock.now.Add(svc.RefreshTTL())))

	access, err := svc.Validate(pair.Access, CategoryAccess)
	require.NoError(t, err)
	assert.Equal(t, "ROLE_ADMIN", access.Role)
	assert.Equal(t, uint(4), access.UserID)

	refresh, err := svc.Validate(pair.Refresh, CategoryRefresh)
	require.NoError(t, err)
	assert.True(t, refresh.ExpiresAt.Equal(pair.RefreshExpiresAt))
}
