package repository

import (
	"context"
	"errors"

	"diary-backend/internal/models"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindByUsername finds a member by username
func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindByID finds a member by primary key
func (r *MemberRepository) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Create inserts a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateMember
	}
	return err
}

func (r *MemberRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *MemberRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

// List returns one page of members ordered by id, plus the total count
func (r *MemberRepository) List(ctx context.Context, page, size int) ([]models.Member, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// Delete removes a member by id
func (r *MemberRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
