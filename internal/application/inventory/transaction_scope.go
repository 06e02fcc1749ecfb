package inventory

import (
	"context"

	"github.com/stocklane/backend/internal/domain/document"
	"github.com/stocklane/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the serial reservation
// repositories. When a function is executed within a transaction scope, all
// repository operations will be part of the same database transaction and
// will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a serial
// reservation touches. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Items returns the item repository scoped to the current transaction
	Items() inventory.ItemRepository
	// SerialUnits returns the serial unit repository scoped to the current transaction
	SerialUnits() inventory.SerialUnitRepository
	// SerialLinks returns the serial link repository scoped to the current transaction
	SerialLinks() inventory.SerialLinkRepository
	// DocumentItems returns the document line repository scoped to the current transaction
	DocumentItems() document.DocumentItemRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	items         inventory.ItemRepository
	serialUnits   inventory.SerialUnitRepository
	serialLinks   inventory.SerialLinkRepository
	documentItems document.DocumentItemRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	items inventory.ItemRepository,
	serialUnits inventory.SerialUnitRepository,
	serialLinks inventory.SerialLinkRepository,
	documentItems document.DocumentItemRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		items:         items,
		serialUnits:   serialUnits,
		serialLinks:   serialLinks,
		documentItems: documentItems,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Items returns the item repository.
func (s *NoOpTransactionScope) Items() inventory.ItemRepository {
	return s.items
}

// SerialUnits returns the serial unit repository.
func (s *NoOpTransactionScope) SerialUnits() inventory.SerialUnitRepository {
	return s.serialUnits
}

// SerialLinks returns the serial link repository.
func (s *NoOpTransactionScope) SerialLinks() inventory.SerialLinkRepository {
	return s.serialLinks
}

// DocumentItems returns the document line repository.
func (s *NoOpTransactionScope) DocumentItems() document.DocumentItemRepository {
	return s.documentItems
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
