package posting

import (
	"context"

	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to every repository a
// posting operation touches. When a function is executed within a transaction
// scope, all repository operations will be part of the same database
// transaction and will be committed or rolled back atomically. Posting is
// all-or-nothing: a rejected post leaves zero ledger rows and an unchanged
// document status.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all posting repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// PurchaseDocuments returns the purchase document repository scoped to the current transaction
	PurchaseDocuments() document.PurchaseDocumentRepository
	// SalesDocuments returns the sales document repository scoped to the current transaction
	SalesDocuments() document.SalesDocumentRepository
	// Items returns the item repository scoped to the current transaction
	Items() inventory.ItemRepository
	// Ledger returns the append-only ledger repository scoped to the current transaction
	Ledger() inventory.LedgerRepository
	// SerialUnits returns the serial unit repository scoped to the current transaction
	SerialUnits() inventory.SerialUnitRepository
	// SerialLinks returns the serial link repository scoped to the current transaction
	SerialLinks() inventory.SerialLinkRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	purchaseDocs document.PurchaseDocumentRepository
	salesDocs    document.SalesDocumentRepository
	items        inventory.ItemRepository
	ledger       inventory.LedgerRepository
	serialUnits  inventory.SerialUnitRepository
	serialLinks  inventory.SerialLinkRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	purchaseDocs document.PurchaseDocumentRepository,
	salesDocs document.SalesDocumentRepository,
	items inventory.ItemRepository,
	ledger inventory.LedgerRepository,
	serialUnits inventory.SerialUnitRepository,
	serialLinks inventory.SerialLinkRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		purchaseDocs: purchaseDocs,
		salesDocs:    salesDocs,
		items:        items,
		ledger:       ledger,
		serialUnits:  serialUnits,
		serialLinks:  serialLinks,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PurchaseDocuments returns the purchase document repository.
func (s *NoOpTransactionScope) PurchaseDocuments() document.PurchaseDocumentRepository {
	return s.purchaseDocs
}

// SalesDocuments returns the sales document repository.
func (s *NoOpTransactionScope) SalesDocuments() document.SalesDocumentRepository {
	return s.salesDocs
}

// Items returns the item repository.
func (s *NoOpTransactionScope) Items() inventory.ItemRepository {
	return s.items
}

// Ledger returns the ledger repository.
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository {
	return s.ledger
}

// SerialUnits returns the serial unit repository.
func (s *NoOpTransactionScope) SerialUnits() inventory.SerialUnitRepository {
	return s.serialUnits
}

// SerialLinks returns the serial link repository.
func (s *NoOpTransactionScope) SerialLinks() inventory.SerialLinkRepository {
	return s.serialLinks
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
