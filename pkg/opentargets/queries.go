package opentargets

import (
	"context"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// TargetLinkPrefix is the Open Targets Platform page for a target id. Stored
// on each biomarker as its identifier link and used by the drug matcher as an
// identifier-containment fallback.
const TargetLinkPrefix = "https://platform.opentargets.org/target/"

const searchQuery = `
query Search($term: String!) {
  search(queryString: $term, entityNames: ["disease"]) {
    hits {
      id
      name
      entity
    }
  }
}`

// SearchDisease resolves a free-text disease name through the platform search
// index. Hits come back in relevance order; callers pick the first one whose
// entity kind is "disease".
func (c *Client) SearchDisease(ctx context.Context, name string) ([]domain.DiseaseRef, error) {
	var data struct {
		Search struct {
			Hits []struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Entity string `json:"entity"`
			} `json:"hits"`
		} `json:"search"`
	}

	if err := c.query(ctx, searchQuery, map[string]interface{}{"term": name}, &data); err != nil {
		return nil, err
	}

	var hits []domain.DiseaseRef
	for _, h := range data.Search.Hits {
		if h.Entity != "disease" {
			continue
		}
		hits = append(hits, domain.DiseaseRef{ID: h.ID, Name: h.Name})
	}
	return hits, nil
}

const associatedTargetsQuery = `
query DiseaseAssociationsQuery(
  $id: String!
  $index: Int!
  $size: Int!
  $sortBy: String!
  $enableIndirect: Boolean!
  $datasources: [DatasourceSettingsInput!]
  $rowsFilter: [String!]
  $facetFilters: [String!]
  $entitySearch: String
) {
  disease(efoId: $id) {
    id
    name
    associatedTargets(
      page: { index: $index, size: $size }
      orderByScore: $sortBy
      enableIndirect: $enableIndirect
      datasources: $datasources
      rowsFilter: $rowsFilter
      facetFilters: $facetFilters
      entitySearch: $entitySearch
    ) {
      count
      rows {
        target {
          id
          approvedSymbol
          approvedName
        }
        score
      }
    }
  }
}`

// AssociatedTargets returns one page of ranked target associations for a
// disease, descending by association score, together with the resolved
// disease record. Index position in the returned slice is stable and used as
// a join key by the drug matcher.
func (c *Client) AssociatedTargets(ctx context.Context, req domain.AssociatedTargetsRequest) (*domain.DiseaseRef, []domain.Biomarker, error) {
	if req.Size == 0 {
		req.Size = 25
	}
	if req.SortBy == "" {
		req.SortBy = "score"
	}
	enableIndirect := true
	if req.EnableIndirect != nil {
		enableIndirect = *req.EnableIndirect
	}

	variables := map[string]interface{}{
		"id":             req.Disease,
		"index":          req.Index,
		"size":           req.Size,
		"sortBy":         req.SortBy,
		"enableIndirect": enableIndirect,
		"datasources":    nil,
		"rowsFilter":     req.RowsFilter,
		"facetFilters":   req.FacetFilters,
		"entitySearch":   nil,
	}
	if len(req.Datasources) > 0 {
		variables["datasources"] = req.Datasources
	}
	if req.EntitySearch != "" {
		variables["entitySearch"] = req.EntitySearch
	}

	var data struct {
		Disease *struct {
			ID                string `json:"id"`
			Name              string `json:"name"`
			AssociatedTargets struct {
				Count int `json:"count"`
				Rows  []struct {
					Target domain.TargetRef `json:"target"`
					Score  float64          `json:"score"`
				} `json:"rows"`
			} `json:"associatedTargets"`
		} `json:"disease"`
	}

	if err := c.query(ctx, associatedTargetsQuery, variables, &data); err != nil {
		return nil, nil, err
	}
	if data.Disease == nil {
		return nil, nil, &domain.TermNotFoundError{ID: req.Disease}
	}

	biomarkers := make([]domain.Biomarker, 0, len(data.Disease.AssociatedTargets.Rows))
	for _, row := range data.Disease.AssociatedTargets.Rows {
		geneName := row.Target.ApprovedName
		if geneName == "" {
			geneName = row.Target.ApprovedSymbol
		}
		biomarkers = append(biomarkers, domain.Biomarker{
			Name:           row.Target.ApprovedSymbol,
			GeneName:       geneName,
			Score:          row.Score,
			IdentifierLink: TargetLinkPrefix + row.Target.ID,
		})
	}

	return &domain.DiseaseRef{ID: data.Disease.ID, Name: data.Disease.Name}, biomarkers, nil
}

const knownDrugsQuery = `
query KnownDrugsQuery($efoId: String!, $cursor: String, $freeTextQuery: String, $size: Int!) {
  disease(efoId: $efoId) {
    id
    knownDrugs(cursor: $cursor, freeTextQuery: $freeTextQuery, size: $size) {
      count
      cursor
      rows {
        phase
        status
        drug {
          id
          name
        }
        target {
          id
          approvedName
          approvedSymbol
        }
      }
    }
  }
}`

// knownDrugsData is the decoded shape of the cursor-page query.
type knownDrugsData struct {
	Disease *struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		KnownDrugs *struct {
			Count  int                   `json:"count"`
			Cursor string                `json:"cursor"`
			Rows   []domain.KnownDrugRow `json:"rows"`
		} `json:"knownDrugs"`
	} `json:"disease"`
}

// KnownDrugs returns one cursor page of known-drug rows for a disease,
// optionally filtered by the platform's free-text row filter. Cursor
// pagination is an opaque-token mechanism, distinct from the hypermedia
// link-following of the ontology fetcher.
func (c *Client) KnownDrugs(ctx context.Context, efoID, cursor, freeTextQuery string, size int) (*domain.KnownDrugsPage, error) {
	if size == 0 {
		size = 10
	}

	variables := map[string]interface{}{
		"efoId":         efoID,
		"cursor":        nil,
		"freeTextQuery": nil,
		"size":          size,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	if freeTextQuery != "" {
		variables["freeTextQuery"] = freeTextQuery
	}

	var data knownDrugsData
	if err := c.query(ctx, knownDrugsQuery, variables, &data); err != nil {
		return nil, err
	}
	if data.Disease == nil {
		return nil, &domain.TermNotFoundError{ID: efoID}
	}
	if data.Disease.KnownDrugs == nil {
		return &domain.KnownDrugsPage{}, nil
	}

	return &domain.KnownDrugsPage{
		Count:  data.Disease.KnownDrugs.Count,
		Cursor: data.Disease.KnownDrugs.Cursor,
		Rows:   data.Disease.KnownDrugs.Rows,
	}, nil
}

// AllKnownDrugs drains the cursor pagination for a disease and returns every
// known-drug row in upstream order. Rows are not deduplicated here; callers
// collapse duplicate (drug, target) pairs with DeduplicateRows.
func (c *Client) AllKnownDrugs(ctx context.Context, efoID string) ([]domain.KnownDrugRow, error) {
	var all []domain.KnownDrugRow
	cursor := ""

	for {
		page, err := c.KnownDrugs(ctx, efoID, cursor, "", c.drugPageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Rows...)
		if page.Cursor == "" {
			return all, nil
		}
		cursor = page.Cursor
	}
}

const knownDrugTargetsQuery = `
query KnownDrugsForDisease($efoId: String!, $size: Int!) {
  disease(efoId: $efoId) {
    id
    name
    knownDrugs(size: $size) {
      rows {
        target {
          id
        }
      }
    }
  }
}`

// KnownDrugTargets returns the target ids referenced by a disease's
// known-drug rows, bounded to a single page of the given size. Used by the
// actionability fan-out, which only tests target-id membership and needs no
// deep pagination.
func (c *Client) KnownDrugTargets(ctx context.Context, efoID string, size int) (*domain.DiseaseRef, []string, error) {
	if size == 0 {
		size = c.candidatePageSize
	}

	var data struct {
		Disease *struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			KnownDrugs *struct {
				Rows []struct {
					Target struct {
						ID string `json:"id"`
					} `json:"target"`
				} `json:"rows"`
			} `json:"knownDrugs"`
		} `json:"disease"`
	}

	variables := map[string]interface{}{"efoId": efoID, "size": size}
	if err := c.query(ctx, knownDrugTargetsQuery, variables, &data); err != nil {
		return nil, nil, err
	}
	if data.Disease == nil {
		return nil, nil, &domain.TermNotFoundError{ID: efoID}
	}

	ref := &domain.DiseaseRef{ID: data.Disease.ID, Name: data.Disease.Name}
	if data.Disease.KnownDrugs == nil {
		return ref, nil, nil
	}

	targets := make([]string, 0, len(data.Disease.KnownDrugs.Rows))
	for _, row := range data.Disease.KnownDrugs.Rows {
		targets = append(targets, row.Target.ID)
	}
	return ref, targets, nil
}

const drugWarningQuery = `
query drugApprovalWithdrawnWarningData($chemblId: String!) {
  drug(chemblId: $chemblId) {
    id
    name
    isApproved
    hasBeenWithdrawn
    blackBoxWarning
    drugWarnings {
      warningType
      description
      toxicityClass
      year
    }
  }
}`

// DrugWarnings returns the approval, withdrawal, and safety-warning record
// for a ChEMBL drug id.
func (c *Client) DrugWarnings(ctx context.Context, chemblID string) (*domain.DrugWarningRecord, error) {
	var data struct {
		Drug *domain.DrugWarningRecord `json:"drug"`
	}

	variables := map[string]interface{}{"chemblId": chemblID}
	if err := c.query(ctx, drugWarningQuery, variables, &data); err != nil {
		return nil, err
	}
	if data.Drug == nil {
		return nil, &domain.TermNotFoundError{ID: chemblID}
	}

	return data.Drug, nil
}
