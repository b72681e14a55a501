package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when no account matches.
	ErrUserNotFound = errors.New("user_not_found")
	// ErrInvalidUsername is returned for blank usernames.
	ErrInvalidUsername = errors.New("invalid_username")
	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("invalid_email")
	// ErrInvalidRole is returned for unknown role tags.
	ErrInvalidRole = errors.New("invalid_role")
	// ErrDuplicateAccount is returned when username or email is taken.
	ErrDuplicateAccount = errors.New("duplicate_account")
	// ErrNotCustomer is returned when preferences are accessed on a
	// non-customer account.
	ErrNotCustomer = errors.New("not_a_customer")
)

// CreateUserRequest opens a new account. Password is the plain text to be
// hashed; it never reaches storage as-is.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// UpdateUserRequest changes profile fields; only set fields are applied.
// Role and password changes go through their own operations.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Active    *bool   `json:"is_active"`
}

// UpdatePreferencesRequest replaces customer preference fields.
type UpdatePreferencesRequest struct {
	PreferredPickupTime *string `json:"preferred_pickup_time"`
	PreferredDetergent  *string `json:"preferred_detergent"`
	FoldingStyle        *string `json:"folding_style"`
	DeliveryNotes       *string `json:"delivery_notes"`
}

// ListUserFilter narrows account listings.
type ListUserFilter struct {
	pagination.Pagination
	Role   string `form:"role"`
	Active *bool  `form:"is_active"`
	Search string `form:"search"`
}

// UserStats summarizes accounts for dashboards.
type UserStats struct {
	Total  int64          `json:"total"`
	Active int64          `json:"active"`
	ByRole map[Role]int64 `json:"by_role"`
}

// Service exposes account management operations.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f ListUserFilter) ([]User, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*UserStats, error)
	SetPasswordHash(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string) error

	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*Preferences, error)
}

// Repository is the persistence port for accounts.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, u *User) error
	Update(ctx context.Context, db *gorm.DB, u *User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB, f ListUserFilter) ([]User, int64, error)
	CountByRole(ctx context.Context, db *gorm.DB) (map[Role]int64, error)
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)

	FindPreferences(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Preferences, error)
	SavePreferences(ctx context.Context, db *gorm.DB, p *Preferences) error
}
