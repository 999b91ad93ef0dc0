package repository

import (
	"context"

	"diary-backend/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(ctx context.Context, memberID *uint, action string, details string) error {
	log := &models.AuditLog{
		MemberID: memberID,
		Action:   action,
		Details:  details,
	}
	return r.db.WithContext(ctx).Create(log).Error
}
