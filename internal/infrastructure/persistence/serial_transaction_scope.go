package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/stocklane/backend/internal/application/inventory"
	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
)

// GormSerialTransactionScope implements the serial reservation
// TransactionScope using GORM transactions. Reservation commits its partial
// successes in one transaction; only infrastructure failures roll back.
type GormSerialTransactionScope struct {
	db *gorm.DB
}

// NewGormSerialTransactionScope creates a new GormSerialTransactionScope
func NewGormSerialTransactionScope(db *gorm.DB) *GormSerialTransactionScope {
	return &GormSerialTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormSerialTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSerialRepositories{tx: tx})
	})
}

type gormSerialRepositories struct {
	tx *gorm.DB
}

// Items returns the item repository scoped to the current transaction.
func (r *gormSerialRepositories) Items() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// SerialUnits returns the serial unit repository scoped to the current transaction.
func (r *gormSerialRepositories) SerialUnits() inventory.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

// SerialLinks returns the serial link repository scoped to the current transaction.
func (r *gormSerialRepositories) SerialLinks() inventory.SerialLinkRepository {
	return NewGormSerialLinkRepository(r.tx)
}

// DocumentItems returns the document line repository scoped to the current transaction.
func (r *gormSerialRepositories) DocumentItems() document.DocumentItemRepository {
	return NewGormDocumentItemRepository(r.tx)
}

// Ensure GormSerialTransactionScope implements TransactionScope
var _ appinventory.TransactionScope = (*GormSerialTransactionScope)(nil)

// Ensure gormSerialRepositories implements TransactionalRepositories
var _ appinventory.TransactionalRepositories = (*gormSerialRepositories)(nil)
