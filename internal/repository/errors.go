package repository

import "errors"

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrDuplicateMember = errors.New("member already exists")

	// ErrRefreshNotFound means no row holds the refresh value, either because it
	// was never issued or because a logout or rotation already removed it.
	ErrRefreshNotFound = errors.New("refresh token not found")
)
