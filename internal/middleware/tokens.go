package middleware

import (
	"net/http"
	"strings"
)

const (
	HeaderAccess  = "access"
	HeaderRefresh = "Refresh-Token"
	CookieRefresh = "refresh"
)

// AccessToken reads the access header, falling back to a Bearer authorization.
func AccessToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderAccess)); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RefreshToken reads the last non-blank refresh cookie, falling back to the
// Refresh-Token header.
func RefreshToken(r *http.Request) string {
	token := ""
	for _, cookie := range r.Cookies() {
		if cookie.Name == CookieRefresh && strings.TrimSpace(cookie.Value) != "" {
			token = cookie.Value
		}
	}
	if token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get(HeaderRefresh))
}
