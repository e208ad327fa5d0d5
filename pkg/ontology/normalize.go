package ontology

import (
	"regexp"
	"strings"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// canonicalPattern matches identifiers already in canonical form:
// ontology prefix, underscore, local number (e.g. EFO_0000222, MONDO_0005061).
var canonicalPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)_(\d+)$`)

// Normalized is the result of identifier normalization. A zero ID means the
// record carried no resolvable identifier and must be skipped, not treated as
// an error.
type Normalized struct {
	ID       domain.CanonicalID `json:"id"`
	Ontology string             `json:"ontology"`
}

// IsCanonical reports whether s is already a canonical ontology identifier.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// Normalize maps the two identifier spellings found on upstream hypermedia
// records onto the canonical underscore form tagged with its owning ontology.
// Policy, in order:
//
//  1. A short-form id already in canonical form is returned unchanged.
//  2. A colon-separated compact id (ONTOLOGY:local) is rewritten to
//     underscore form.
//  3. Anything else is unresolvable.
//
// Normalization is idempotent: feeding a canonical id back in returns it
// unchanged.
func Normalize(oboID, shortForm string) Normalized {
	if m := canonicalPattern.FindStringSubmatch(shortForm); m != nil {
		return Normalized{
			ID:       domain.CanonicalID(shortForm),
			Ontology: strings.ToLower(m[1]),
		}
	}

	if ont, local, ok := strings.Cut(oboID, ":"); ok && ont != "" && local != "" {
		return Normalized{
			ID:       domain.CanonicalID(ont + "_" + local),
			Ontology: strings.ToLower(ont),
		}
	}

	return Normalized{}
}
