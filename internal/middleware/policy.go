package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/auth"
)

// Access is what a rule demands of the request principal.
type Access int

const (
	PermitAll Access = iota
	Authenticated
	RequireRole
)

// Rule matches a method and a path pattern. An empty Method matches any method.
// Patterns ending in "/**" match the prefix and everything below it; other
// patterns use path.Match syntax.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    string
}

func (r Rule) matches(method, p string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	ok, err := path.Match(r.Pattern, p)
	return err == nil && ok
}

// Policy is an ordered rule table. The first matching rule decides; a request
// matching nothing must be authenticated.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

func permit(method string, patterns ...string) []Rule {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Rule{Method: method, Pattern: p, Access: PermitAll})
	}
	return rules
}

// DefaultPolicy is the rule table for the diary API.
func DefaultPolicy() *Policy {
	var rules []Rule
	rules = append(rules, permit(http.MethodOptions, "/**")...)
	rules = append(rules, permit(http.MethodGet, "/health", "/error", "/static/**", "/favicon.ico")...)
	rules = append(rules, permit(http.MethodPost,
		"/api/member/signup",
		"/api/member/login",
		"/api/member/reissue",
		"/reissue",
		"/api/reissue",
		"/api/member/oauth2/google",
	)...)
	rules = append(rules, permit("", "/api/member/logout")...)
	rules = append(rules, permit(http.MethodGet,
		"/api/board/**",
		"/api/boards/**",
		"/api/comment/**",
		"/api/diaryComment/**",
		"/api/diaryBoard/list/**",
		"/api/diaryBoard/view/**",
		"/api/image/**",
		"/api/images/**",
		"/api/posts/**",
	)...)
	rules = append(rules,
		Rule{Pattern: "/admin/**", Access: RequireRole, Role: "ADMIN"},
		Rule{Pattern: "/api/admin/**", Access: RequireRole, Role: "ADMIN"},
	)
	return NewPolicy(rules...)
}

// Match returns the first rule matching the request.
func (p *Policy) Match(method, path string) Rule {
	for _, r := range p.rules {
		if r.matches(method, path) {
			return r
		}
	}
	return Rule{Pattern: "/**", Access: Authenticated}
}

// IsPublic reports whether the request needs no principal at all.
func (p *Policy) IsPublic(method, path string) bool {
	return p.Match(method, path).Access == PermitAll
}

// Enforce rejects requests whose principal does not satisfy the matching rule.
// It runs after Authenticate.
func (p *Policy) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		rule := p.Match(c.Request.Method, c.Request.URL.Path)
		if rule.Access == PermitAll {
			c.Next()
			return
		}

		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if rule.Access == RequireRole && !auth.HasRole(principal, rule.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
