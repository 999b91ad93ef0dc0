package auth

import "errors"

var (
	// ErrTokenMalformed covers bad structure, bad signature and unexpected algorithms.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired is returned for a correctly signed token past its exp claim.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenCategoryMismatch is returned when an access token is presented where a
	// refresh token is required, or the other way round.
	ErrTokenCategoryMismatch = errors.New("token category mismatch")
)
