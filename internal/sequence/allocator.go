package sequence

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// retryBound limits how many candidate identifiers the allocator probes when
// racing concurrent writers. Generation itself is not serialized; the unique
// index on the target column is the final arbiter.
const retryBound = 25

// Allocator issues identifiers against a table column, probing for
// collisions and retrying with the next sequence number.
type Allocator struct {
	db *gorm.DB
}

// NewAllocator builds an Allocator over the given connection.
func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// Allocate returns the next free identifier for kind within table.column.
//
// Best effort only: a concurrent writer can still claim the identifier
// between the existence probe and the caller's insert, in which case the
// insert surfaces ErrDuplicateIdentifier and is not retried further.
func (a *Allocator) Allocate(ctx context.Context, kind Kind, table, column string) (string, error) {
	year := time.Now().UTC().Year()

	var existing []string
	scope := kind.scope(year)
	err := a.db.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", scope+"%").
		Pluck(column, &existing).Error
	if err != nil {
		return "", err
	}

	id := Next(kind, year, existing)
	for range retryBound {
		var count int64
		if err := a.db.WithContext(ctx).
			Table(table).
			Where(column+" = ?", id).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
		id, err = NextAfter(kind, year, id)
		if err != nil {
			return "", err
		}
	}
	return "", ErrSequenceExhausted
}
