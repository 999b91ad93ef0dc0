package models

import "time"

// LoginCheck tracks whether a member currently holds a login session
type LoginCheck struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	LoginCheck bool      `gorm:"column:login_check;default:false" json:"login_check"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for LoginCheck model
func (LoginCheck) TableName() string {
	return "login_checks"
}
