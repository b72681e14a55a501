// Package domain contains account models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role tags an account with its access level. Role-specific data hangs off
// the tag: customers carry Preferences, staff carry nothing extra yet.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is one account: admin, staff member, or customer.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	FirstName    string       `gorm:"type:text" json:"first_name,omitempty"`
	LastName     string       `gorm:"type:text" json:"last_name,omitempty"`
	Role         Role         `gorm:"type:text;not null;index" json:"role"`
	Phone        string       `gorm:"type:text" json:"phone,omitempty"`
	Address      string       `gorm:"type:text" json:"address,omitempty"`
	Active       bool         `gorm:"not null;default:true" json:"is_active"`
	Preferences  *Preferences `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"preferences,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// FullName joins first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Preferences is customer-only pickup and care configuration.
type Preferences struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID              snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`
	PreferredPickupTime string       `gorm:"type:text" json:"preferred_pickup_time,omitempty"`
	PreferredDetergent  string       `gorm:"type:text" json:"preferred_detergent,omitempty"`
	FoldingStyle        string       `gorm:"type:text" json:"folding_style,omitempty"`
	DeliveryNotes       string       `gorm:"type:text" json:"delivery_notes,omitempty"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Preferences) TableName() string { return "customer_preferences" }
