package inventory

// ProjectStock folds ledger entries into the current quantity on hand.
// The ledger is the sole source of truth; anything else that looks like a
// "current stock" column is a derived projection of this fold and must never
// be written to directly.
func ProjectStock(entries []LedgerEntry) int64 {
	var total int64
	for i := range entries {
		total += entries[i].SignedQuantity()
	}
	return total
}
