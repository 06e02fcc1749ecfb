package persistence

import (
	"context"

	"gorm.io/gorm"

	appposting "github.com/stocklane/backend/internal/application/posting"
	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
)

// GormPostingTransactionScope implements the posting TransactionScope using
// GORM transactions. Every repository handed to the callback runs on the same
// transaction, so a failed post rolls back ledger rows, serial transitions
// and the status flip together.
type GormPostingTransactionScope struct {
	db *gorm.DB
}

// NewGormPostingTransactionScope creates a new GormPostingTransactionScope
func NewGormPostingTransactionScope(db *gorm.DB) *GormPostingTransactionScope {
	return &GormPostingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormPostingTransactionScope) Execute(ctx context.Context, fn func(repos appposting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPostingRepositories{tx: tx})
	})
}

type gormPostingRepositories struct {
	tx *gorm.DB
}

// PurchaseDocuments returns the purchase document repository scoped to the current transaction.
func (r *gormPostingRepositories) PurchaseDocuments() document.PurchaseDocumentRepository {
	return NewGormPurchaseDocumentRepository(r.tx)
}

// SalesDocuments returns the sales document repository scoped to the current transaction.
func (r *gormPostingRepositories) SalesDocuments() document.SalesDocumentRepository {
	return NewGormSalesDocumentRepository(r.tx)
}

// Items returns the item repository scoped to the current transaction.
func (r *gormPostingRepositories) Items() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// Ledger returns the ledger repository scoped to the current transaction.
func (r *gormPostingRepositories) Ledger() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// SerialUnits returns the serial unit repository scoped to the current transaction.
func (r *gormPostingRepositories) SerialUnits() inventory.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

// SerialLinks returns the serial link repository scoped to the current transaction.
func (r *gormPostingRepositories) SerialLinks() inventory.SerialLinkRepository {
	return NewGormSerialLinkRepository(r.tx)
}

// Ensure GormPostingTransactionScope implements TransactionScope
var _ appposting.TransactionScope = (*GormPostingTransactionScope)(nil)

// Ensure gormPostingRepositories implements TransactionalRepositories
var _ appposting.TransactionalRepositories = (*gormPostingRepositories)(nil)
