package models

import "time"

// RefreshToken represents the refresh_tokens table. Rows are only inserted and
// deleted; rotation replaces a row instead of updating it.
type RefreshToken struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"not null;size:100;index" json:"username"`
	RefreshValue string    `gorm:"column:refresh_value;not null;size:512;uniqueIndex" json:"-"`
	Expiration   time.Time `gorm:"not null;index" json:"expiration"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
