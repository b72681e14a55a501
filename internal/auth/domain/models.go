// Package domain contains session token models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Token is one issued session token. Only the SHA-256 of the opaque value
// is stored; the plain value exists client-side only.
type Token struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID `gorm:"not null;index" json:"user_id"`
	TokenHash  string       `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt  time.Time    `gorm:"not null;index" json:"expires_at"`
	LastUsedAt *time.Time   `gorm:"" json:"last_used_at,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Token) TableName() string { return "auth_tokens" }
