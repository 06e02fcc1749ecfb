package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stocklane/backend/internal/domain/shared"
)

// TaxClassification is the tax code and rate assigned to a catalog entry
type TaxClassification struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// Entry is a shared master-catalog record. Curation of the catalog happens
// outside this system; items link to entries and sales documents consult the
// approval flag at finalize time.
type Entry struct {
	shared.BaseAggregateRoot
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string          `gorm:"type:varchar(500)"`
	TaxCode     string          `gorm:"type:varchar(20);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Approved    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "catalog_entries"
}

// NewEntry creates a new unapproved catalog entry
func NewEntry(code, taxCode string, taxRate decimal.Decimal) (*Entry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Catalog code cannot be empty")
	}
	if taxCode == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tax code cannot be empty")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tax rate cannot be negative")
	}

	return &Entry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		TaxCode:           taxCode,
		TaxRate:           taxRate,
	}, nil
}

// Classification returns the entry's tax classification
func (e *Entry) Classification() TaxClassification {
	return TaxClassification{Code: e.TaxCode, Rate: e.TaxRate}
}
