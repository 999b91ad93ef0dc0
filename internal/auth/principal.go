package auth

import "strings"

// Principal is the authenticated identity attached to a request. Password and
// OAuth2 logins produce different concrete types but are consumed the same way.
type Principal interface {
	ID() uint
	Name() string
	Authority() string
	Provider() string
}

// LocalPrincipal is a member authenticated with username and password.
type LocalPrincipal struct {
	UserID   uint
	Username string
	Role     string
}

func (p LocalPrincipal) ID() uint          { return p.UserID }
func (p LocalPrincipal) Name() string      { return p.Username }
func (p LocalPrincipal) Authority() string { return NormalizeRole(p.Role) }
func (p LocalPrincipal) Provider() string  { return "" }

// OAuth2Principal is a member authenticated through an external provider.
type OAuth2Principal struct {
	UserID       uint
	Username     string
	Role         string
	ProviderName string
}

func (p OAuth2Principal) ID() uint          { return p.UserID }
func (p OAuth2Principal) Name() string      { return p.Username }
func (p OAuth2Principal) Authority() string { return NormalizeRole(p.Role) }
func (p OAuth2Principal) Provider() string  { return p.ProviderName }

// PrincipalFromClaims picks the principal variant matching the token's provider claim.
func PrincipalFromClaims(c *Claims) Principal {
	if c.Provider != "" {
		return OAuth2Principal{
			UserID:       c.UserID,
			Username:     c.Username,
			Role:         c.Role,
			ProviderName: c.Provider,
		}
	}
	return LocalPrincipal{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
	}
}

// HasRole reports whether p holds role, given either as "ADMIN" or "ROLE_ADMIN".
func HasRole(p Principal, role string) bool {
	if p == nil {
		return false
	}
	return strings.EqualFold(p.Authority(), NormalizeRole(role))
}
