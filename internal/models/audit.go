package models

import "time"

// AuditLog represents the audit_logs table
// Used for tracking authentication events per member
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  *uint     `gorm:"index" json:"member_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
