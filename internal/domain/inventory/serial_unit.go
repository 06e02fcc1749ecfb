package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/domain/shared"
)

// SerialStatus represents the lifecycle state of a serial unit
type SerialStatus string

const (
	// SerialStatusAvailable means the unit is on hand and unallocated
	SerialStatusAvailable SerialStatus = "available"
	// SerialStatusReserved means the unit is held for a pending sales item
	SerialStatusReserved SerialStatus = "reserved"
	// SerialStatusUsed means the unit was consumed by a posted document; the
	// row is kept as history and its serial string may be received again later
	SerialStatusUsed SerialStatus = "used"
)

// IsValid returns true if the status is a valid SerialStatus
func (s SerialStatus) IsValid() bool {
	switch s {
	case SerialStatusAvailable, SerialStatusReserved, SerialStatusUsed:
		return true
	}
	return false
}

// String returns the string representation of SerialStatus
func (s SerialStatus) String() string {
	return string(s)
}

// IsLive reports whether the status participates in the live-uniqueness
// constraint: at most one available/reserved row per (tenant, item, serial)
func (s SerialStatus) IsLive() bool {
	return s == SerialStatusAvailable || s == SerialStatusReserved
}

// SerialUnit is an individually tracked, serial-numbered inventory unit
type SerialUnit struct {
	shared.TenantAggregateRoot
	ItemID            uuid.UUID    `gorm:"type:uuid;not null;index:idx_serial_tenant_item,priority:2"`
	SerialNumber      string       `gorm:"type:varchar(100);not null"`
	Status            SerialStatus `gorm:"type:varchar(20);not null;default:'available'"`
	ReservationExpiry *time.Time
}

// TableName returns the table name for GORM
func (SerialUnit) TableName() string {
	return "serial_units"
}

// NewSerialUnit creates a serial unit in the available state (receiving)
func NewSerialUnit(tenantID, itemID uuid.UUID, serialNumber string) (*SerialUnit, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Tenant ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Item ID cannot be empty")
	}
	if serialNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Serial number cannot be empty")
	}
	if len(serialNumber) > 100 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "Serial number cannot exceed 100 characters")
	}

	return &SerialUnit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ItemID:              itemID,
		SerialNumber:        serialNumber,
		Status:              SerialStatusAvailable,
	}, nil
}

// IsReservationExpired reports whether a reserved unit's hold has lapsed.
// There is no sweeper: an expired reservation is reclaimed lazily by the next
// reservation attempt that observes it.
func (u *SerialUnit) IsReservationExpired(now time.Time) bool {
	return u.Status == SerialStatusReserved &&
		u.ReservationExpiry != nil &&
		u.ReservationExpiry.Before(now)
}

// Reserve holds the unit for a pending sales item until expiry
func (u *SerialUnit) Reserve(expiry time.Time) error {
	if u.Status == SerialStatusUsed {
		return shared.SerialUnavailable(u.SerialNumber, "already used")
	}
	if u.Status == SerialStatusReserved && !u.IsReservationExpired(time.Now()) {
		return shared.SerialUnavailable(u.SerialNumber, "already reserved")
	}
	u.Status = SerialStatusReserved
	u.ReservationExpiry = &expiry
	u.IncrementVersion()
	return nil
}

// Release returns a reserved unit to available (cancelled document or lapsed hold)
func (u *SerialUnit) Release() error {
	if u.Status != SerialStatusReserved {
		return shared.SerialUnavailable(u.SerialNumber, "not reserved")
	}
	u.Status = SerialStatusAvailable
	u.ReservationExpiry = nil
	u.IncrementVersion()
	return nil
}

// Consume marks a reserved unit as used. Only the posting flow calls this.
func (u *SerialUnit) Consume() error {
	if u.Status != SerialStatusReserved {
		return shared.SerialUnavailable(u.SerialNumber, "not reserved")
	}
	u.Status = SerialStatusUsed
	u.ReservationExpiry = nil
	u.IncrementVersion()
	return nil
}
