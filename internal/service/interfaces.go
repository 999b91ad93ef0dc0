package service

import (
	"context"
	"time"

	"diary-backend/internal/models"
	"diary-backend/internal/oauth"
)

//go:generate mockgen -destination=mocks/mock_member_repository.go -package=mocks diary-backend/internal/service MemberRepository

type MemberRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Member, error)
	FindByID(ctx context.Context, id uint) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	List(ctx context.Context, page, size int) ([]models.Member, int64, error)
	Delete(ctx context.Context, id uint) error
}

// RefreshStore holds issued refresh tokens. Rotate must delete the old value and
// insert the new one atomically, failing with repository.ErrRefreshNotFound when
// the old value is already gone.
type RefreshStore interface {
	Exists(ctx context.Context, value string) (bool, error)
	Create(ctx context.Context, token *models.RefreshToken) error
	DeleteByValue(ctx context.Context, value string) (int64, error)
	Rotate(ctx context.Context, oldValue string, next *models.RefreshToken) error
	DeleteByUsername(ctx context.Context, username string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type LoginCheckRepository interface {
	SetLoginCheck(ctx context.Context, username string, loggedIn bool) error
}

type AuditLogger interface {
	CreateAuditLog(ctx context.Context, memberID *uint, action string, details string) error
}

// IDTokenVerifier validates an external provider's ID token.
type IDTokenVerifier interface {
	Provider() string
	VerifyIDToken(ctx context.Context, idToken string) (*oauth.GoogleProfile, error)
}
