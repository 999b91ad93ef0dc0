package repository

import (
	"context"
	"time"

	"diary-backend/internal/models"

	"gorm.io/gorm"
)

// RefreshRepository persists issued refresh tokens. A token is valid for reissue
// only while its row exists.
type RefreshRepository struct {
	db *gorm.DB
}

func NewRefreshRepo(db *gorm.DB) *RefreshRepository {
	return &RefreshRepository{db: db}
}

// Exists reports whether the refresh value is stored
func (r *RefreshRepository) Exists(ctx context.Context, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("refresh_value = ?", value).
		Count(&count).Error
	return count > 0, err
}

// Create stores a new refresh token
func (r *RefreshRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// DeleteByValue removes the row holding value and returns how many rows went away
func (r *RefreshRepository) DeleteByValue(ctx context.Context, value string) (int64, error) {
	result := r.db.WithContext(ctx).Where("refresh_value = ?", value).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// Rotate replaces oldValue with next in one transaction. If another request already
// removed oldValue the transaction is rolled back and ErrRefreshNotFound returned.
func (r *RefreshRepository) Rotate(ctx context.Context, oldValue string, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("refresh_value = ?", oldValue).Delete(&models.RefreshToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrRefreshNotFound
		}
		return tx.Create(next).Error
	})
}

// DeleteByUsername removes every refresh token issued to username
func (r *RefreshRepository) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	result := r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// DeleteExpired removes tokens whose expiration is before the given time
func (r *RefreshRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expiration < ?", before).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
