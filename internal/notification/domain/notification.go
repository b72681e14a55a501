package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotificationNotFound is returned when no notification matches.
	ErrNotificationNotFound = errors.New("notification_not_found")
	// ErrInvalidKind is returned for unknown kinds.
	ErrInvalidKind = errors.New("invalid_notification_kind")
	// ErrTitleRequired is returned for blank titles.
	ErrTitleRequired = errors.New("notification_title_required")
	// ErrUserRequired is returned when no recipient is given.
	ErrUserRequired = errors.New("notification_user_required")
)

// CreateNotificationRequest pushes a message to a user. Data carries an
// optional structured payload for the client.
type CreateNotificationRequest struct {
	UserID    snowflake.ID   `json:"user_id"`
	Kind      Kind           `json:"kind"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Reference string         `json:"reference"`
	Data      datatypes.JSON `json:"data"`
}

// ListNotificationFilter narrows a user's inbox.
type ListNotificationFilter struct {
	pagination.Pagination
	UserID string `form:"user_id"`
	Kind   string `form:"kind"`
	Unread *bool  `form:"unread"`
}

// Service exposes the in-app inbox.
type Service interface {
	Notify(ctx context.Context, req CreateNotificationRequest) (*Notification, error)
	List(ctx context.Context, f ListNotificationFilter) ([]Notification, *pagination.PageInfo, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID snowflake.ID) (int64, error)
	CountUnread(ctx context.Context, userID snowflake.ID) (int64, error)
	Delete(ctx context.Context, id string) error
}

// Repository is the persistence port for notifications.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	Update(ctx context.Context, db *gorm.DB, n *Notification) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, f ListNotificationFilter) ([]Notification, int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
