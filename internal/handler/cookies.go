package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/middleware"
)

// CookieSettings is the refresh cookie posture fixed at start-up by the
// security mode.
type CookieSettings struct {
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// ParseSameSite maps a config value to the cookie attribute.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func (s CookieSettings) setRefresh(c *gin.Context, value string) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(middleware.CookieRefresh, value, int(s.MaxAge.Seconds()), "/", "", s.Secure, true)
}

// clearRefresh expires the cookie with the same attributes it was issued with.
func (s CookieSettings) clearRefresh(c *gin.Context) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(middleware.CookieRefresh, "", -1, "/", "", s.Secure, true)
}

// deliver sends a token pair on every channel clients read from.
func (s CookieSettings) deliver(c *gin.Context, access, refresh string) {
	c.Header(middleware.HeaderAccess, access)
	c.Header(middleware.HeaderRefresh, refresh)
	s.clearRefresh(c)
	s.setRefresh(c, refresh)
}
