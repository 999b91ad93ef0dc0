package models

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Member represents the members table
type Member struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Nickname     string    `gorm:"uniqueIndex;not null;size:50" json:"nickname"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash string    `gorm:"column:password;not null;size:255" json:"-"`
	Role         string    `gorm:"type:enum('USER','ADMIN');default:'USER'" json:"role"`
	Provider     string    `gorm:"size:20" json:"provider,omitempty"`
	CreatedAt    time.Time `gorm:"column:inserted_at" json:"inserted_at"`
}

// TableName specifies the table name for Member model
func (Member) TableName() string {
	return "members"
}

// Authority is the role in the ROLE_<NAME> form carried by tokens.
func (m *Member) Authority() string {
	if m.Role == "" {
		return "ROLE_" + RoleUser
	}
	return "ROLE_" + m.Role
}
