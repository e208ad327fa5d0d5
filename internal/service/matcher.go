package service

import (
	"strings"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// MatchDrugsToBiomarkers links each deduplicated drug-target row to the first
// biomarker it affects, by list order. A row matches a biomarker when the
// biomarker's gene name equals the row's approved target symbol
// case-insensitively, or the biomarker's identifier link contains the row's
// target id. At most one biomarker is linked per row; rows matching no
// biomarker are dropped silently, since a disease's drug landscape routinely
// exceeds its top-N biomarker list. Output preserves input row order.
//
// Known ambiguity: two rows with different target ids can land on the same
// biomarker when gene symbols collide; the first-match rule makes that
// deterministic rather than impossible.
func MatchDrugsToBiomarkers(rows []domain.KnownDrugRow, biomarkers []domain.Biomarker) []domain.MatchedDrug {
	matched := []domain.MatchedDrug{}

	for _, row := range rows {
		if row.Drug.ID == "" || row.Target.ID == "" {
			continue
		}

		idx := findBiomarker(biomarkers, row.Target)
		if idx < 0 {
			continue
		}

		matched = append(matched, domain.MatchedDrug{
			Drug:                row.Drug,
			Target:              row.Target,
			MatchedBiomarkerIdx: idx,
			Status:              row.Status,
			Phase:               row.Phase,
		})
	}

	return matched
}

// findBiomarker returns the index of the first biomarker matching the target,
// or -1.
func findBiomarker(biomarkers []domain.Biomarker, target domain.TargetRef) int {
	for i, b := range biomarkers {
		if b.GeneName != "" && strings.EqualFold(b.GeneName, target.ApprovedSymbol) {
			return i
		}
		if b.IdentifierLink != "" && strings.Contains(b.IdentifierLink, target.ID) {
			return i
		}
	}
	return -1
}
