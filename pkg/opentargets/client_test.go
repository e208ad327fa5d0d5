package opentargets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// graphQLRequest is the decoded request body seen by the mock server.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newTestClient(endpoint string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClient(Config{
		Endpoint:          endpoint,
		Timeout:           5 * time.Second,
		RateLimit:         1000,
		DrugPageSize:      2,
		CandidatePageSize: 500,
	}, logger)
}

func decodeRequest(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("failed to decode GraphQL request: %v", err)
	}
	return req
}

func TestClient_SearchDisease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": {
				"search": {
					"hits": [
						{"id": "ENSG00000141510", "name": "TP53", "entity": "target"},
						{"id": "EFO_0000305", "name": "breast carcinoma", "entity": "disease"},
						{"id": "EFO_0000292", "name": "bladder carcinoma", "entity": "disease"}
					]
				}
			}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	hits, err := client.SearchDisease(context.Background(), "breast cancer")
	require.NoError(t, err)

	// Non-disease hits are filtered out, order preserved.
	require.Len(t, hits, 2)
	assert.Equal(t, domain.DiseaseRef{ID: "EFO_0000305", Name: "breast carcinoma"}, hits[0])
	assert.Equal(t, domain.DiseaseRef{ID: "EFO_0000292", Name: "bladder carcinoma"}, hits[1])
}

func TestClient_AssociatedTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "EFO_0000222", req.Variables["id"])
		assert.Equal(t, float64(25), req.Variables["size"])
		assert.Equal(t, "score", req.Variables["sortBy"])
		assert.Equal(t, true, req.Variables["enableIndirect"])

		fmt.Fprint(w, `{
			"data": {
				"disease": {
					"id": "EFO_0000222",
					"name": "acute myeloid leukemia",
					"associatedTargets": {
						"count": 2,
						"rows": [
							{"target": {"id": "ENSG00000122025", "approvedSymbol": "FLT3", "approvedName": "fms related receptor tyrosine kinase 3"}, "score": 0.91},
							{"target": {"id": "ENSG00000157404", "approvedSymbol": "KIT", "approvedName": ""}, "score": 0.74}
						]
					}
				}
			}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	disease, biomarkers, err := client.AssociatedTargets(context.Background(), domain.AssociatedTargetsRequest{
		Disease: "EFO_0000222",
	})
	require.NoError(t, err)

	assert.Equal(t, &domain.DiseaseRef{ID: "EFO_0000222", Name: "acute myeloid leukemia"}, disease)
	require.Len(t, biomarkers, 2)

	assert.Equal(t, "FLT3", biomarkers[0].Name)
	assert.Equal(t, "fms related receptor tyrosine kinase 3", biomarkers[0].GeneName)
	assert.InDelta(t, 0.91, biomarkers[0].Score, 1e-9)
	assert.Equal(t, TargetLinkPrefix+"ENSG00000122025", biomarkers[0].IdentifierLink)

	// Missing approved name falls back to the symbol.
	assert.Equal(t, "KIT", biomarkers[1].GeneName)
}

func TestClient_AssociatedTargets_UnknownDisease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"disease": null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.AssociatedTargets(context.Background(), domain.AssociatedTargetsRequest{
		Disease: "EFO_0000000",
	})

	var notFound *domain.TermNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestClient_AllKnownDrugs(t *testing.T) {
	// Two cursor pages; the second returns no cursor, ending the drain.
	pages := []string{
		`{"data": {"disease": {"id": "EFO_0000222", "knownDrugs": {"count": 3, "cursor": "abc", "rows": [
			{"drug": {"id": "CHEMBL1", "name": "midostaurin"}, "target": {"id": "ENSG00000122025", "approvedSymbol": "FLT3"}, "status": "Completed", "phase": 4},
			{"drug": {"id": "CHEMBL2", "name": "gilteritinib"}, "target": {"id": "ENSG00000122025", "approvedSymbol": "FLT3"}, "status": "Recruiting", "phase": 3}
		]}}}}`,
		`{"data": {"disease": {"id": "EFO_0000222", "knownDrugs": {"count": 3, "cursor": "", "rows": [
			{"drug": {"id": "CHEMBL1", "name": "midostaurin"}, "target": {"id": "ENSG00000122025", "approvedSymbol": "FLT3"}, "status": "Completed", "phase": 4}
		]}}}}`,
	}

	var cursors []interface{}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		cursors = append(cursors, req.Variables["cursor"])
		assert.Equal(t, float64(2), req.Variables["size"])

		fmt.Fprint(w, pages[call])
		if call < len(pages)-1 {
			call++
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	rows, err := client.AllKnownDrugs(context.Background(), "EFO_0000222")
	require.NoError(t, err)

	// All rows in upstream order, duplicates intact.
	require.Len(t, rows, 3)
	assert.Equal(t, "CHEMBL1", rows[0].Drug.ID)
	assert.Equal(t, "CHEMBL2", rows[1].Drug.ID)
	assert.Equal(t, "CHEMBL1", rows[2].Drug.ID)

	// First request carries no cursor, the second carries the page token.
	require.Len(t, cursors, 2)
	assert.Nil(t, cursors[0])
	assert.Equal(t, "abc", cursors[1])
}

func TestClient_KnownDrugs_FreeTextFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "EFO_0000222", req.Variables["efoId"])
		assert.Equal(t, "abc", req.Variables["cursor"])
		assert.Equal(t, "inhibitor", req.Variables["freeTextQuery"])
		assert.Equal(t, float64(10), req.Variables["size"])

		fmt.Fprint(w, `{"data": {"disease": {"id": "EFO_0000222", "knownDrugs": {"count": 1, "cursor": "", "rows": [
			{"drug": {"id": "CHEMBL2", "name": "gilteritinib"}, "target": {"id": "ENSG00000122025", "approvedSymbol": "FLT3"}, "status": "Recruiting", "phase": 3}
		]}}}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	page, err := client.KnownDrugs(context.Background(), "EFO_0000222", "abc", "inhibitor", 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "CHEMBL2", page.Rows[0].Drug.ID)
}

func TestClient_KnownDrugTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, float64(500), req.Variables["size"])

		fmt.Fprint(w, `{"data": {"disease": {"id": "EFO_0000305", "name": "breast carcinoma", "knownDrugs": {"rows": [
			{"target": {"id": "ENSG001"}},
			{"target": {"id": "ENSG002"}}
		]}}}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ref, targets, err := client.KnownDrugTargets(context.Background(), "EFO_0000305", 0)
	require.NoError(t, err)

	assert.Equal(t, &domain.DiseaseRef{ID: "EFO_0000305", Name: "breast carcinoma"}, ref)
	assert.Equal(t, []string{"ENSG001", "ENSG002"}, targets)
}

func TestClient_DrugWarnings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "CHEMBL1200733", req.Variables["chemblId"])

		fmt.Fprint(w, `{"data": {"drug": {
			"id": "CHEMBL1200733",
			"name": "thalidomide",
			"isApproved": true,
			"hasBeenWithdrawn": true,
			"blackBoxWarning": true,
			"drugWarnings": [
				{"warningType": "Withdrawn", "description": "teratogenicity", "toxicityClass": "teratogenicity", "year": 1961}
			]
		}}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	record, err := client.DrugWarnings(context.Background(), "CHEMBL1200733")
	require.NoError(t, err)

	assert.Equal(t, "thalidomide", record.Name)
	assert.True(t, record.HasBeenWithdrawn)
	require.Len(t, record.Warnings, 1)
	assert.Equal(t, 1961, record.Warnings[0].Year)
}

func TestClient_Query_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error": "bad gateway"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SearchDisease(context.Background(), "anything")
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestClient_Query_GraphQLErrorsWithPartialData(t *testing.T) {
	// GraphQL-level errors are logged but partial data is still decoded,
	// matching the upstream contract.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": {"search": {"hits": [{"id": "EFO_0000305", "name": "breast carcinoma", "entity": "disease"}]}},
			"errors": [{"message": "partial failure"}]
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	hits, err := client.SearchDisease(context.Background(), "breast cancer")
	require.NoError(t, err)
	require.Len(t, hits, 1)
}
