package domain

// Core Types

// CanonicalID is the normalized identifier form for ontology terms,
// ONTOLOGY_localnumber (e.g. "EFO_0000222"). Two terms are the same entity
// iff their CanonicalID strings are equal.
type CanonicalID string

// String returns the identifier as a plain string.
func (id CanonicalID) String() string {
	return string(id)
}

// OntologyEFO is the disease ontology whose hierarchy is traversed for
// sibling computation. Parents from other ontologies (mondo, orphanet, ...)
// are reported but never expanded.
const OntologyEFO = "efo"

// OntologyTerm represents one term record parsed from an upstream hypermedia
// page. Immutable once constructed.
type OntologyTerm struct {
	ID       CanonicalID       `json:"id"`
	Ontology string            `json:"ontology"`
	Label    string            `json:"name"`
	RawLinks map[string]string `json:"-"`
}

// RelationLink returns the first non-empty link among the named relations.
// Callers pass the direct relation first and its hierarchical variant as
// fallback. Empty when the record carries none of them.
func (t OntologyTerm) RelationLink(names ...string) string {
	for _, n := range names {
		if href := t.RawLinks[n]; href != "" {
			return href
		}
	}
	return ""
}

// RelationshipSet is the depth-2 neighborhood of a disease term: its parents,
// its own children, and the union of its EFO parents' children (siblings).
type RelationshipSet struct {
	Term     CanonicalID    `json:"efoId"`
	Parents  []OntologyTerm `json:"parents"`
	Siblings []OntologyTerm `json:"siblings"`
	Children []OntologyTerm `json:"children"`
}

// DrugRef identifies a drug (ChEMBL id) on a known-drug row.
type DrugRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TargetRef identifies a molecular target (Ensembl gene id) on a known-drug row.
type TargetRef struct {
	ID             string `json:"id"`
	ApprovedSymbol string `json:"approvedSymbol"`
	ApprovedName   string `json:"approvedName,omitempty"`
}

// KnownDrugRow is one drug-target claim for a disease. Rows sharing the same
// (Drug.ID, Target.ID) pair are the same claim and are collapsed on dedup.
type KnownDrugRow struct {
	Drug   DrugRef   `json:"drug"`
	Target TargetRef `json:"target"`
	Status string    `json:"status"`
	Phase  float64   `json:"phase"`
}

// DedupKey returns the identity key used to collapse duplicate rows.
func (r KnownDrugRow) DedupKey() string {
	return r.Drug.ID + "_" + r.Target.ID
}

// Biomarker is one ranked associated target for a disease. The slice index is
// stable (descending association score as returned upstream) and is used as a
// join key by the matcher.
type Biomarker struct {
	Name           string  `json:"name"`
	GeneName       string  `json:"geneName"`
	Score          float64 `json:"score"`
	IdentifierLink string  `json:"openTargetsLink"`
}

// MatchedDrug links a deduplicated known-drug row to the first biomarker it
// affects, by index into the biomarker list it was matched against.
type MatchedDrug struct {
	Drug                DrugRef   `json:"drug"`
	Target              TargetRef `json:"target"`
	MatchedBiomarkerIdx int       `json:"matchedBiomarkerIndex"`
	Status              string    `json:"status"`
	Phase               float64   `json:"phase"`
}

// DiseaseRef is a disease hit: EFO id plus display name.
type DiseaseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionabilityResult reports whether a target implicated in one disease is
// already drug-associated in an ontologically related disease. Diseases
// preserves discovery order: parents first, then siblings.
type ActionabilityResult struct {
	EFOID      string       `json:"efoId"`
	TargetID   string       `json:"targetId"`
	Actionable bool         `json:"actionable"`
	Diseases   []DiseaseRef `json:"diseases"`
}

// DrugWarningRecord is the approval/withdrawal/safety record for a ChEMBL drug.
type DrugWarningRecord struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	IsApproved       bool          `json:"isApproved"`
	HasBeenWithdrawn bool          `json:"hasBeenWithdrawn"`
	BlackBoxWarning  bool          `json:"blackBoxWarning"`
	Warnings         []DrugWarning `json:"drugWarnings"`
}

// DrugWarning is a single warning entry attached to a drug record.
type DrugWarning struct {
	WarningType   string `json:"warningType"`
	Description   string `json:"description"`
	ToxicityClass string `json:"toxicityClass"`
	Year          int    `json:"year"`
}
