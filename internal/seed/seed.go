// Package seed bootstraps the rows a fresh install needs: the settings
// singleton and, outside production, a default admin account.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/password"
	"github.com/cityville/laundromat/internal/config"
	settingsdomain "github.com/cityville/laundromat/internal/settings/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@laundromat.local"
	defaultAdminPassword = "changeme123"
)

// EnsureSettings creates the settings singleton when missing.
func EnsureSettings(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing settingsdomain.Settings
		err := tx.WithContext(ctx).Order("id asc").First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&settingsdomain.Settings{
			ID:            node.Generate(),
			BusinessName:  cfg.AppName,
			Currency:      cfg.Currency,
			TaxRate:       decimal.Zero,
			DeliveryFee:   decimal.Zero,
			NotifyByEmail: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}).Error
	})
}

// EnsureAdmin creates the default admin account when missing. Meant for
// local and self-hosted setups; production installs create their own.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userdomain.User
		err := tx.WithContext(ctx).
			Where("username = ?", defaultAdminUsername).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := password.NewHasher().Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&userdomain.User{
			ID:           node.Generate(),
			Username:     defaultAdminUsername,
			Email:        defaultAdminEmail,
			PasswordHash: hash,
			FirstName:    "Shop",
			LastName:     "Admin",
			Role:         userdomain.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error
	})
}
