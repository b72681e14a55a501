package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned on bad username/password pairs.
	// Login never says which half was wrong.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	// ErrTokenInvalid is returned for unknown or malformed tokens.
	ErrTokenInvalid = errors.New("token_invalid")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token_expired")
	// ErrAccountDisabled is returned when the account is deactivated.
	ErrAccountDisabled = errors.New("account_disabled")
)

// RegisterRequest is customer self-signup. Staff and admin accounts are
// created through user management instead.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// LoginRequest exchanges credentials for a session token. Username also
// accepts the account email.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is an issued token with its owning account.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      userdomain.User `json:"user"`
}

// ChangePasswordRequest rotates the caller's password. All other sessions
// are revoked on success.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Service exposes authentication operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*userdomain.User, error)
	ChangePassword(ctx context.Context, user *userdomain.User, req ChangePasswordRequest) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// Repository is the persistence port for session tokens.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *Token) error
	FindByHash(ctx context.Context, db *gorm.DB, hash string) (*Token, error)
	Touch(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	DeleteByHash(ctx context.Context, db *gorm.DB, hash string) error
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	DeleteExpired(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
