package opentargets

import (
	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// DeduplicateRows collapses known-drug rows sharing the same
// (drug.id, target.id) pair down to their first occurrence. Insertion order
// is preserved, so the output keeps the upstream ranking of first appearance.
func DeduplicateRows(rows []domain.KnownDrugRow) []domain.KnownDrugRow {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]domain.KnownDrugRow, 0, len(rows))

	for _, row := range rows {
		key := row.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, row)
	}

	return unique
}
