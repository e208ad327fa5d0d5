package domain

import (
	"context"
)

// OntologyAPI is the contract for the hypermedia ontology service (EBI OLS4).
type OntologyAPI interface {
	// LookupTerm resolves a single term by canonical id. Returns
	// *TermNotFoundError when the ontology has no such term.
	LookupTerm(ctx context.Context, id CanonicalID) (*OntologyTerm, error)

	// FetchAllPages follows hypermedia next-links from startURL and returns
	// every embedded term record in upstream page order.
	FetchAllPages(ctx context.Context, startURL string) ([]OntologyTerm, error)
}

// PlatformAPI is the contract for the Open Targets Platform GraphQL service.
type PlatformAPI interface {
	// SearchDisease resolves free-text disease name to disease hits; the
	// caller selects the first hit whose entity kind is "disease".
	SearchDisease(ctx context.Context, name string) ([]DiseaseRef, error)

	// AssociatedTargets returns one page of ranked target associations for a
	// disease, descending by score, together with the resolved disease record.
	AssociatedTargets(ctx context.Context, req AssociatedTargetsRequest) (*DiseaseRef, []Biomarker, error)

	// KnownDrugs returns one cursor page of known-drug rows for a disease,
	// optionally filtered by the platform's free-text row filter.
	KnownDrugs(ctx context.Context, efoID, cursor, freeTextQuery string, size int) (*KnownDrugsPage, error)

	// AllKnownDrugs drains the cursor pagination and returns every row in
	// upstream order, not deduplicated.
	AllKnownDrugs(ctx context.Context, efoID string) ([]KnownDrugRow, error)

	// KnownDrugTargets returns the target ids referenced by a disease's
	// known-drug rows, bounded to a single page of the given size.
	KnownDrugTargets(ctx context.Context, efoID string, size int) (*DiseaseRef, []string, error)

	// DrugWarnings returns the approval/withdrawal/warning record for a
	// ChEMBL drug id.
	DrugWarnings(ctx context.Context, chemblID string) (*DrugWarningRecord, error)
}

// AssociatedTargetsRequest carries the tunable knobs of the associated-targets
// query. Zero values fall back to upstream defaults set by the client.
type AssociatedTargetsRequest struct {
	Disease        string               `json:"disease"`
	Index          int                  `json:"index"`
	Size           int                  `json:"size"`
	SortBy         string               `json:"sortBy"`
	EnableIndirect *bool                `json:"enableIndirect"`
	Datasources    []DatasourceSettings `json:"datasources"`
	RowsFilter     []string             `json:"rowsFilter"`
	FacetFilters   []string             `json:"facetFilters"`
	EntitySearch   string               `json:"entitySearch"`
}

// DatasourceSettings tunes the weight of one association datasource in the
// associated-targets score.
type DatasourceSettings struct {
	ID        string  `json:"id"`
	Weight    float64 `json:"weight"`
	Propagate bool    `json:"propagate"`
	Required  bool    `json:"required,omitempty"`
}

// KnownDrugsPage is one cursor page of known-drug rows.
type KnownDrugsPage struct {
	Count  int            `json:"count"`
	Cursor string         `json:"cursor"`
	Rows   []KnownDrugRow `json:"rows"`
}
