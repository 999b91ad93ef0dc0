package service

import (
	"errors"

	"diary-backend/internal/repository"
)

var (
	// ErrCredentialInvalid never says which of username or password was wrong.
	ErrCredentialInvalid = errors.New("invalid credentials")

	ErrRefreshMissing = errors.New("refresh token null")
	ErrOAuthDisabled  = errors.New("oauth2 login disabled")
	ErrInvalidSignup  = errors.New("invalid signup request")

	ErrRefreshNotFound = repository.ErrRefreshNotFound
	ErrMemberNotFound  = repository.ErrMemberNotFound
	ErrDuplicateMember = repository.ErrDuplicateMember
)
