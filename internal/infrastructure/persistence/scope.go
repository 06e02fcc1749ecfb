package persistence

import (
	"gorm.io/gorm"

	"github.com/stocklane/backend/internal/domain/identity"
)

// ScopeColumns names the columns a table exposes for the branch and actor
// restrictions of a role scope. An empty name means the table has no such
// column and the corresponding restriction cannot apply to it.
type ScopeColumns struct {
	Branch string
	Actor  string
}

// ApplyScope narrows a query to the rows a role may see. The tenant predicate
// is always applied; branch and actor predicates are added when the scope
// carries them and the table names a matching column.
func ApplyScope(db *gorm.DB, scope identity.ScopePredicate, cols ScopeColumns) *gorm.DB {
	query := db.Where("tenant_id = ?", scope.TenantID)
	if scope.BranchID != nil && cols.Branch != "" {
		query = query.Where(cols.Branch+" = ?", *scope.BranchID)
	}
	if scope.ActorID != nil && cols.Actor != "" {
		query = query.Where(cols.Actor+" = ?", *scope.ActorID)
	}
	return query
}
