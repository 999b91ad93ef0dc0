package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"diary-backend/internal/auth"
	"diary-backend/internal/repository"
)

const principalKey = "principal"

// SilentRefresher mints an access token from a stored refresh token.
type SilentRefresher interface {
	SilentRefresh(ctx context.Context, refreshToken string) (auth.Principal, string, error)
}

// Authenticate resolves the request principal from the access token, or from
// the refresh token when no access token is sent. Requests carrying neither are
// forwarded anonymously and left to Policy.Enforce.
func Authenticate(tokens *auth.TokenService, refresher SilentRefresher, policy *Policy, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if policy.IsPublic(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		access := AccessToken(c.Request)
		if access == "" {
			silentRefresh(c, refresher, log)
			return
		}

		claims, err := tokens.Validate(access, auth.CategoryAccess)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.String(http.StatusUnauthorized, "access token expired")
			} else {
				c.String(http.StatusUnauthorized, "invalid access token")
			}
			c.Abort()
			return
		}

		SetPrincipal(c, auth.PrincipalFromClaims(claims))
		c.Next()
	}
}

func silentRefresh(c *gin.Context, refresher SilentRefresher, log *logrus.Entry) {
	refresh := RefreshToken(c.Request)
	if refresh == "" {
		c.Next()
		return
	}

	principal, access, err := refresher.SilentRefresh(c.Request.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			c.String(http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenCategoryMismatch),
			errors.Is(err, repository.ErrRefreshNotFound):
			c.String(http.StatusUnauthorized, "invalid refresh token")
		default:
			log.WithError(err).Error("silent refresh failed")
			c.String(http.StatusInternalServerError, "internal server error")
		}
		c.Abort()
		return
	}

	c.Header(HeaderAccess, access)
	SetPrincipal(c, principal)
	c.Next()
}

// SetPrincipal attaches p to the request, along with the userID and role keys
// read by handlers.
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(principalKey, p)
	c.Set("userID", p.ID())
	c.Set("role", p.Authority())
}

func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
