package posting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityapp "github.com/stocklane/backend/internal/application/identity"
	"github.com/stocklane/backend/internal/domain/catalog"
	"github.com/stocklane/backend/internal/domain/document"
	domainidentity "github.com/stocklane/backend/internal/domain/identity"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
)

// stubResolver resolves every person to a fixed context
type stubResolver struct {
	rc  identityapp.Context
	err error
}

func (s stubResolver) Resolve(_ context.Context, _ uuid.UUID) (identityapp.Context, error) {
	return s.rc, s.err
}

// MockPurchaseDocumentRepository is a mock implementation of document.PurchaseDocumentRepository
type MockPurchaseDocumentRepository struct {
	mock.Mock
}

func (m *MockPurchaseDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.PurchaseDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.PurchaseDocument), args.Error(1)
}

func (m *MockPurchaseDocumentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*document.PurchaseDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.PurchaseDocument), args.Error(1)
}

func (m *MockPurchaseDocumentRepository) FindAllScoped(ctx context.Context, scope domainidentity.ScopePredicate, filter shared.Filter) ([]document.PurchaseDocument, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.PurchaseDocument), args.Error(1)
}

func (m *MockPurchaseDocumentRepository) Save(ctx context.Context, doc *document.PurchaseDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockPurchaseDocumentRepository) UpdateStatusGuarded(ctx context.Context, doc *document.PurchaseDocument, expected document.PurchaseStatus) error {
	args := m.Called(ctx, doc, expected)
	return args.Error(0)
}

// MockSalesDocumentRepository is a mock implementation of document.SalesDocumentRepository
type MockSalesDocumentRepository struct {
	mock.Mock
}

func (m *MockSalesDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.SalesDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*document.SalesDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindAllScoped(ctx context.Context, scope domainidentity.ScopePredicate, filter shared.Filter) ([]document.SalesDocument, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) Save(ctx context.Context, doc *document.SalesDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSalesDocumentRepository) UpdateStatusGuarded(ctx context.Context, doc *document.SalesDocument, expected document.SalesStatus) error {
	args := m.Called(ctx, doc, expected)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of inventory.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.Item, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Item, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of inventory.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) SumForItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) FindForItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	args := m.Called(ctx, tenantID, itemID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) CountForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, documentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSerialUnitRepository is a mock implementation of inventory.SerialUnitRepository
type MockSerialUnitRepository struct {
	mock.Mock
}

func (m *MockSerialUnitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.SerialUnit, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.SerialUnit), args.Error(1)
}

func (m *MockSerialUnitRepository) FindLive(ctx context.Context, tenantID, itemID uuid.UUID, serialNumber string) (*inventory.SerialUnit, error) {
	args := m.Called(ctx, tenantID, itemID, serialNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.SerialUnit), args.Error(1)
}

func (m *MockSerialUnitRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.SerialUnit, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.SerialUnit), args.Error(1)
}

func (m *MockSerialUnitRepository) Save(ctx context.Context, unit *inventory.SerialUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockSerialUnitRepository) Create(ctx context.Context, unit *inventory.SerialUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

// MockSerialLinkRepository is a mock implementation of inventory.SerialLinkRepository
type MockSerialLinkRepository struct {
	mock.Mock
}

func (m *MockSerialLinkRepository) FindByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) ([]inventory.SerialLink, error) {
	args := m.Called(ctx, tenantID, documentItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.SerialLink), args.Error(1)
}

func (m *MockSerialLinkRepository) CountReservedByDocumentItem(ctx context.Context, tenantID, documentItemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, documentItemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSerialLinkRepository) ExistsForSerialUnit(ctx context.Context, tenantID, documentItemID, serialUnitID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, documentItemID, serialUnitID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSerialLinkRepository) FindReservedBySerialUnit(ctx context.Context, tenantID, serialUnitID uuid.UUID) ([]inventory.SerialLink, error) {
	args := m.Called(ctx, tenantID, serialUnitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.SerialLink), args.Error(1)
}

func (m *MockSerialLinkRepository) Save(ctx context.Context, link *inventory.SerialLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockSerialLinkRepository) Create(ctx context.Context, link *inventory.SerialLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainidentity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*domainidentity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *domainidentity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

// MockApprovalGate is a mock implementation of catalog.ApprovalGate
type MockApprovalGate struct {
	mock.Mock
}

func (m *MockApprovalGate) IsApproved(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApprovalGate) TaxClassification(ctx context.Context, tenantID, itemID uuid.UUID) (catalog.TaxClassification, error) {
	args := m.Called(ctx, tenantID, itemID)
	return args.Get(0).(catalog.TaxClassification), args.Error(1)
}

// postingFixture wires a posting Service against mocks through a no-op
// transaction scope
type postingFixture struct {
	personID uuid.UUID
	tenantID uuid.UUID

	purchaseDocs *MockPurchaseDocumentRepository
	salesDocs    *MockSalesDocumentRepository
	items        *MockItemRepository
	ledger       *MockLedgerRepository
	units        *MockSerialUnitRepository
	links        *MockSerialLinkRepository
	tenants      *MockTenantRepository
	gate         *MockApprovalGate

	svc *Service
}

func newPostingFixture(t *testing.T, policy domainidentity.InventoryPolicy) *postingFixture {
	t.Helper()
	f := &postingFixture{
		personID:     uuid.New(),
		tenantID:     uuid.New(),
		purchaseDocs: new(MockPurchaseDocumentRepository),
		salesDocs:    new(MockSalesDocumentRepository),
		items:        new(MockItemRepository),
		ledger:       new(MockLedgerRepository),
		units:        new(MockSerialUnitRepository),
		links:        new(MockSerialLinkRepository),
		tenants:      new(MockTenantRepository),
		gate:         new(MockApprovalGate),
	}

	role, err := domainidentity.RoleFor(domainidentity.RoleNameOwner, f.personID, nil)
	require.NoError(t, err)
	resolver := stubResolver{rc: identityapp.Context{PersonID: f.personID, TenantID: f.tenantID, Role: role}}

	tenant, err := domainidentity.NewTenant("ACME", "Acme Trading")
	require.NoError(t, err)
	tenant.ID = f.tenantID
	require.NoError(t, tenant.Activate())
	require.NoError(t, tenant.SetInventoryPolicy(policy))
	f.tenants.On("FindByID", mock.Anything, f.tenantID).Return(tenant, nil).Maybe()

	scope := NewNoOpTransactionScope(f.purchaseDocs, f.salesDocs, f.items, f.ledger, f.units, f.links)
	f.svc = NewService(resolver, scope, f.tenants, f.gate)
	return f
}

func (f *postingFixture) item(t *testing.T, sku string, serialTracked bool) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem(f.tenantID, sku, "Item "+sku, serialTracked)
	require.NoError(t, err)
	return item
}

func (f *postingFixture) approvedPurchase(t *testing.T, item *inventory.Item, qty int64) *document.PurchaseDocument {
	t.Helper()
	doc, err := document.NewPurchaseDocument(f.tenantID, "PO-001")
	require.NoError(t, err)
	_, err = doc.AddItem(item.ID, qty)
	require.NoError(t, err)
	require.NoError(t, doc.Approve())
	doc.ClearDomainEvents()
	return doc
}

func (f *postingFixture) finalizedSale(t *testing.T, item *inventory.Item, qty int64) *document.SalesDocument {
	t.Helper()
	doc, err := document.NewSalesDocument(f.tenantID, "SO-001")
	require.NoError(t, err)
	_, err = doc.AddItem(item.ID, qty)
	require.NoError(t, err)
	require.NoError(t, doc.Finalize())
	doc.ClearDomainEvents()
	return doc
}

func (f *postingFixture) expectItems(items ...*inventory.Item) {
	out := make([]inventory.Item, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	f.items.On("FindByIDs", mock.Anything, f.tenantID, mock.Anything).Return(out, nil)
}

func TestPostPurchase(t *testing.T) {
	t.Run("WritesOneEntryPerLine", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.approvedPurchase(t, item, 10)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(entry *inventory.LedgerEntry) bool {
			return entry.Kind == inventory.EntryKindIn && entry.Quantity == 10 &&
				entry.DocumentID != nil && *entry.DocumentID == doc.ID
		})).Return(nil)
		f.purchaseDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.PurchaseStatusApproved).Return(nil)

		result, err := f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{DocumentID: doc.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, result.EntriesCreated)
		assert.Equal(t, "posted", result.Status)
		f.ledger.AssertExpectations(t)
	})

	t.Run("DraftCannotPost", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc, err := document.NewPurchaseDocument(f.tenantID, "PO-002")
		require.NoError(t, err)
		_, err = doc.AddItem(item.ID, 5)
		require.NoError(t, err)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)

		_, err = f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{DocumentID: doc.ID})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("EmptyDraftReportsStatusNotLines", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		doc, err := document.NewPurchaseDocument(f.tenantID, "PO-004")
		require.NoError(t, err)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		_, err = f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{DocumentID: doc.ID})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
		f.items.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DoublePostRejected", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.approvedPurchase(t, item, 5)
		require.NoError(t, doc.MarkPosted(f.personID))
		doc.ClearDomainEvents()

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)

		_, err := f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{DocumentID: doc.ID})
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
	})

	t.Run("GuardedUpdateConflictAborts", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.approvedPurchase(t, item, 5)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.purchaseDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.PurchaseStatusApproved).
			Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{DocumentID: doc.ID})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("SerialLineCreatesUnits", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.approvedPurchase(t, item, 2)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.units.On("FindLive", mock.Anything, f.tenantID, item.ID, mock.Anything).Return(nil, shared.ErrNotFound)
		f.units.On("Create", mock.Anything, mock.MatchedBy(func(unit *inventory.SerialUnit) bool {
			return unit.Status == inventory.SerialStatusAvailable && unit.ItemID == item.ID
		})).Return(nil).Twice()
		f.purchaseDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.PurchaseStatusApproved).Return(nil)

		_, err := f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{
			DocumentID: doc.ID,
			Receipts:   []SerialReceipt{{ItemID: item.ID, SerialNumbers: []string{"SN-1", "SN-2"}}},
		})
		require.NoError(t, err)
		f.units.AssertExpectations(t)
	})

	t.Run("SerialCountMismatchRejected", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.approvedPurchase(t, item, 2)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{
			DocumentID: doc.ID,
			Receipts:   []SerialReceipt{{ItemID: item.ID, SerialNumbers: []string{"SN-1"}}},
		})
		assert.True(t, shared.IsCode(err, shared.CodeValidationFailure))
	})

	t.Run("DuplicateLiveSerialRejected", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.approvedPurchase(t, item, 1)

		existing, err := inventory.NewSerialUnit(f.tenantID, item.ID, "SN-1")
		require.NoError(t, err)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.units.On("FindLive", mock.Anything, f.tenantID, item.ID, "SN-1").Return(existing, nil)

		_, err = f.svc.PostPurchase(context.Background(), f.tenantID, f.personID, PostPurchaseRequest{
			DocumentID: doc.ID,
			Receipts:   []SerialReceipt{{ItemID: item.ID, SerialNumbers: []string{"SN-1"}}},
		})
		assert.True(t, shared.IsCode(err, shared.CodeSerialUnavailable))
	})

	t.Run("TenantMismatch", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)

		_, err := f.svc.PostPurchase(context.Background(), uuid.New(), f.personID, PostPurchaseRequest{DocumentID: uuid.New()})
		assert.ErrorIs(t, err, shared.ErrTenantMismatch)
	})
}

func TestPostSale(t *testing.T) {
	t.Run("StrictPolicyBlocksShortfall", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.finalizedSale(t, item, 8)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("SumForItem", mock.Anything, f.tenantID, item.ID).Return(int64(6), nil)

		_, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeInsufficientStock))

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, int64(6), de.Details["available"])
		assert.Equal(t, int64(8), de.Details["requested"])
		f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("SufficientStockPosts", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.finalizedSale(t, item, 4)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("SumForItem", mock.Anything, f.tenantID, item.ID).Return(int64(10), nil)
		f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(entry *inventory.LedgerEntry) bool {
			return entry.Kind == inventory.EntryKindOut && entry.Quantity == 4
		})).Return(nil)
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusFinalized).Return(nil)

		result, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.EntriesCreated)
		assert.Empty(t, result.Warnings)
	})

	t.Run("WarnAllowRecordsAndWarns", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyWarnAllow)
		item := f.item(t, "SKU-1", false)
		doc := f.finalizedSale(t, item, 8)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("SumForItem", mock.Anything, f.tenantID, item.ID).Return(int64(6), nil)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusFinalized).Return(nil)

		result, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err, "warn_allow records the movement")
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, int64(6), result.Warnings[0].Available)
		assert.Equal(t, int64(8), result.Warnings[0].Requested)
	})

	t.Run("SilentPolicyRecordsQuietly", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicySilent)
		item := f.item(t, "SKU-1", false)
		doc := f.finalizedSale(t, item, 8)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.ledger.On("SumForItem", mock.Anything, f.tenantID, item.ID).Return(int64(0), nil)
		f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusFinalized).Return(nil)

		result, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)
	})

	t.Run("DraftCannotPost", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc, err := document.NewSalesDocument(f.tenantID, "SO-002")
		require.NoError(t, err)
		_, err = doc.AddItem(item.ID, 1)
		require.NoError(t, err)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)

		_, err = f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
	})

	t.Run("EmptyDraftReportsStatusNotLines", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		doc, err := document.NewSalesDocument(f.tenantID, "SO-005")
		require.NoError(t, err)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		_, err = f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
		f.items.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConsumesReservedSerials", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.finalizedSale(t, item, 1)
		line := doc.Items[0]

		unit, err := inventory.NewSerialUnit(f.tenantID, item.ID, "SN-1")
		require.NoError(t, err)
		require.NoError(t, unit.Reserve(time.Now().Add(time.Hour)))
		link, err := inventory.NewSerialLink(f.tenantID, line.ID, unit.ID)
		require.NoError(t, err)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.links.On("CountReservedByDocumentItem", mock.Anything, f.tenantID, line.ID).Return(int64(1), nil).Once()
		f.links.On("FindByDocumentItem", mock.Anything, f.tenantID, line.ID).Return([]inventory.SerialLink{*link}, nil)
		f.units.On("FindByIDForTenant", mock.Anything, f.tenantID, unit.ID).Return(unit, nil)
		f.units.On("Save", mock.Anything, mock.MatchedBy(func(u *inventory.SerialUnit) bool {
			return u.Status == inventory.SerialStatusUsed
		})).Return(nil)
		f.links.On("Save", mock.Anything, mock.MatchedBy(func(l *inventory.SerialLink) bool {
			return l.Status == inventory.SerialLinkStatusUsed
		})).Return(nil)
		f.links.On("CountReservedByDocumentItem", mock.Anything, f.tenantID, line.ID).Return(int64(0), nil).Once()
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusFinalized).Return(nil)

		result, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "posted", result.Status)
		f.units.AssertExpectations(t)
		f.links.AssertExpectations(t)
	})

	t.Run("ReservedCountMismatchRejected", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.finalizedSale(t, item, 2)
		line := doc.Items[0]

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.links.On("CountReservedByDocumentItem", mock.Anything, f.tenantID, line.ID).Return(int64(1), nil)

		_, err := f.svc.PostSale(context.Background(), f.tenantID, f.personID, doc.ID)
		assert.True(t, shared.IsCode(err, shared.CodeSerialUnavailable))
	})
}

func TestApprovePurchase(t *testing.T) {
	t.Run("DraftApproves", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc, err := document.NewPurchaseDocument(f.tenantID, "PO-003")
		require.NoError(t, err)
		_, err = doc.AddItem(item.ID, 3)
		require.NoError(t, err)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.purchaseDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.PurchaseStatusDraft).Return(nil)

		result, err := f.svc.ApprovePurchase(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "approved", result.Status)
	})

	t.Run("ApprovedCannotReapprove", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.approvedPurchase(t, item, 3)

		f.purchaseDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		_, err := f.svc.ApprovePurchase(context.Background(), f.tenantID, f.personID, doc.ID)
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
	})
}

func TestFinalizeSale(t *testing.T) {
	t.Run("ApprovedItemsFinalizeWithTaxes", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc, err := document.NewSalesDocument(f.tenantID, "SO-003")
		require.NoError(t, err)
		_, err = doc.AddItem(item.ID, 2)
		require.NoError(t, err)

		rate := decimal.NewFromFloat(0.19)
		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.gate.On("IsApproved", mock.Anything, f.tenantID, item.ID).Return(true, nil)
		f.gate.On("TaxClassification", mock.Anything, f.tenantID, item.ID).
			Return(catalog.TaxClassification{Code: "VAT-STD", Rate: rate}, nil)
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusDraft).Return(nil)

		result, err := f.svc.FinalizeSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "finalized", result.Status)
		require.Len(t, result.Taxes, 1)
		assert.Equal(t, "VAT-STD", result.Taxes[0].TaxCode)
		assert.True(t, rate.Equal(result.Taxes[0].TaxRate))
	})

	t.Run("UnapprovedItemBlocks", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc, err := document.NewSalesDocument(f.tenantID, "SO-004")
		require.NoError(t, err)
		_, err = doc.AddItem(item.ID, 2)
		require.NoError(t, err)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.expectItems(item)
		f.gate.On("IsApproved", mock.Anything, f.tenantID, item.ID).Return(false, nil)

		_, err = f.svc.FinalizeSale(context.Background(), f.tenantID, f.personID, doc.ID)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeValidationFailure))

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, item.ID.String(), de.Details["item_id"])
		assert.Equal(t, document.SalesStatusDraft, doc.Status, "a blocked finalize leaves the draft untouched")
	})
}

func TestCancelSale(t *testing.T) {
	t.Run("FinalizedCancelsAndReleasesSerials", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SER-1", true)
		doc := f.finalizedSale(t, item, 1)
		line := doc.Items[0]

		unit, err := inventory.NewSerialUnit(f.tenantID, item.ID, "SN-1")
		require.NoError(t, err)
		require.NoError(t, unit.Reserve(time.Now().Add(time.Hour)))
		link, err := inventory.NewSerialLink(f.tenantID, line.ID, unit.ID)
		require.NoError(t, err)

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)
		f.links.On("FindByDocumentItem", mock.Anything, f.tenantID, line.ID).Return([]inventory.SerialLink{*link}, nil)
		f.units.On("FindByIDForTenant", mock.Anything, f.tenantID, unit.ID).Return(unit, nil)
		f.units.On("Save", mock.Anything, mock.MatchedBy(func(u *inventory.SerialUnit) bool {
			return u.Status == inventory.SerialStatusAvailable
		})).Return(nil)
		f.links.On("Save", mock.Anything, mock.MatchedBy(func(l *inventory.SerialLink) bool {
			return l.Status == inventory.SerialLinkStatusExpired
		})).Return(nil)
		f.salesDocs.On("UpdateStatusGuarded", mock.Anything, doc, document.SalesStatusFinalized).Return(nil)

		result, err := f.svc.CancelSale(context.Background(), f.tenantID, f.personID, CancelSaleRequest{
			DocumentID: doc.ID, Reason: "customer backed out",
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", result.Status)
		f.units.AssertExpectations(t)
	})

	t.Run("PostedCannotCancel", func(t *testing.T) {
		f := newPostingFixture(t, domainidentity.InventoryPolicyStrict)
		item := f.item(t, "SKU-1", false)
		doc := f.finalizedSale(t, item, 1)
		require.NoError(t, doc.MarkPosted(f.personID))
		doc.ClearDomainEvents()

		f.salesDocs.On("FindByIDForTenantLocked", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		_, err := f.svc.CancelSale(context.Background(), f.tenantID, f.personID, CancelSaleRequest{
			DocumentID: doc.ID, Reason: "too late",
		})
		assert.True(t, shared.IsCode(err, shared.CodeWorkflowViolation))
	})
}
