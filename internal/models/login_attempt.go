package models

import (
	"time"

	"gorm.io/datatypes"
)

// LoginAttempt is the audit trail row written for every authentication attempt.
type LoginAttempt struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Username  string            `gorm:"size:50;not null;index" json:"username"`
	Succeeded bool              `gorm:"not null" json:"succeeded"`
	RemoteIP  string            `gorm:"size:45" json:"remote_ip"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
