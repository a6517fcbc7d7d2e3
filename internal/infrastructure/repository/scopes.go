package repository

import (
	"context"

	domainRepo "github.com/sangkips/tableside-api/internal/domain/repository"
	"gorm.io/gorm"
)

type txKey struct{}

// OutletScope returns a GORM scope that filters by outlet.
// If the context skips the scope (background jobs), returns all records.
func OutletScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if domainRepo.SkipOutletScope(ctx) {
			return db
		}

		outletID, ok := domainRepo.GetOutletID(ctx)
		if !ok {
			// Fail-safe: return no results if outlet context missing
			return db.Where("1 = 0")
		}
		return db.Where("outlet_id = ?", outletID)
	}
}

// conn returns the transaction carried by ctx, or db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor whose transactions are visible to every
// repository in this package through the context
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
