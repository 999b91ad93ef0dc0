package repository

import (
	"context"
	"errors"

	"diary-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoginCheckRepository struct {
	db *gorm.DB
}

func NewLoginCheckRepo(db *gorm.DB) *LoginCheckRepository {
	return &LoginCheckRepository{db: db}
}

// SetLoginCheck records whether username currently holds a session
func (r *LoginCheckRepository) SetLoginCheck(ctx context.Context, username string, loggedIn bool) error {
	check := &models.LoginCheck{
		Username:   username,
		LoginCheck: loggedIn,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"login_check", "updated_at"}),
	}).Create(check).Error
}

// IsLoggedIn returns the stored presence flag, false when no row exists
func (r *LoginCheckRepository) IsLoggedIn(ctx context.Context, username string) (bool, error) {
	var check models.LoginCheck
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&check).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return check.LoginCheck, nil
}
