package inventory

import (
	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// SerialLinkStatus mirrors the lifecycle of the serial unit it binds
type SerialLinkStatus string

const (
	SerialLinkStatusReserved SerialLinkStatus = "reserved"
	SerialLinkStatusUsed     SerialLinkStatus = "used"
	// SerialLinkStatusExpired marks a link whose reservation lapsed and was
	// reclaimed by a later reservation attempt
	SerialLinkStatusExpired SerialLinkStatus = "expired"
)

// IsValid returns true if the status is a valid SerialLinkStatus
func (s SerialLinkStatus) IsValid() bool {
	switch s {
	case SerialLinkStatusReserved, SerialLinkStatusUsed, SerialLinkStatusExpired:
		return true
	}
	return false
}

// SerialLink binds a document item to the specific serial unit it reserves
// or consumes
type SerialLink struct {
	shared.BaseEntity
	TenantID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	DocumentItemID uuid.UUID        `gorm:"type:uuid;not null;index:idx_serial_link_doc_item"`
	SerialUnitID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status         SerialLinkStatus `gorm:"type:varchar(20);not null;default:'reserved'"`
}

// TableName returns the table name for GORM
func (SerialLink) TableName() string {
	return "serial_links"
}

// NewSerialLink creates a reserved link between a document item and a serial unit
func NewSerialLink(tenantID, documentItemID, serialUnitID uuid.UUID) (*SerialLink, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant ID cannot be empty")
	}
	if documentItemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Document item ID cannot be empty")
	}
	if serialUnitID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Serial unit ID cannot be empty")
	}

	return &SerialLink{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		DocumentItemID: documentItemID,
		SerialUnitID:   serialUnitID,
		Status:         SerialLinkStatusReserved,
	}, nil
}

// MarkUsed flips the link to used at posting time
func (l *SerialLink) MarkUsed() error {
	if l.Status != SerialLinkStatusReserved {
		return shared.NewDomainErrorWithDetails(shared.CodeSerialUnavailable,
			"Serial link is not reserved", map[string]any{"status": string(l.Status)})
	}
	l.Status = SerialLinkStatusUsed
	return nil
}

// MarkExpired flips a lapsed link to expired during lazy reclaim
func (l *SerialLink) MarkExpired() error {
	if l.Status != SerialLinkStatusReserved {
		return shared.NewDomainErrorWithDetails(shared.CodeSerialUnavailable,
			"Serial link is not reserved", map[string]any{"status": string(l.Status)})
	}
	l.Status = SerialLinkStatusExpired
	return nil
}
