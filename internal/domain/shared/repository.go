package shared

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository is the base interface for repositories over tenant-owned
// aggregates. There is deliberately no FindByID without a tenant id: every
// read path carries the tenant predicate.
type TenantRepository[T any] interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*T, error)
	Save(ctx context.Context, entity *T) error
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}
