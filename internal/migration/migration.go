// Package migration keeps the schema in sync with the domain models so a
// fresh database is usable out of the box.
package migration

import (
	authdomain "github.com/cityville/laundromat/internal/auth/domain"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	deliverydomain "github.com/cityville/laundromat/internal/delivery/domain"
	invoicedomain "github.com/cityville/laundromat/internal/invoice/domain"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	reportingdomain "github.com/cityville/laundromat/internal/reporting/domain"
	settingsdomain "github.com/cityville/laundromat/internal/settings/domain"
	taskdomain "github.com/cityville/laundromat/internal/task/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&userdomain.User{},
		&userdomain.Preferences{},
		&authdomain.Token{},
		&catalogdomain.Service{},
		&orderdomain.Order{},
		&orderdomain.LineItem{},
		&orderdomain.TimelineEntry{},
		&taskdomain.Task{},
		&deliverydomain.Delivery{},
		&invoicedomain.Invoice{},
		&notificationdomain.Notification{},
		&settingsdomain.Settings{},
		&reportingdomain.RevenueSummary{},
	}
}

// Run applies the schema.
func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}
