package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// Client handles interactions with the EBI OLS4 ontology API.
type Client struct {
	baseURL    string
	iriPrefix  string
	pageSize   int
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// Config represents configuration for the OLS4 API client. BaseURL overrides
// the URL derived from Ontology when both are set.
type Config struct {
	BaseURL   string        `json:"base_url"`
	Ontology  string        `json:"ontology"`
	IRIPrefix string        `json:"iri_prefix"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit int           `json:"rate_limit"` // requests per second
	PageSize  int           `json:"page_size"`
}

// NewClient creates a new OLS4 API client.
func NewClient(config Config) *Client {
	if config.Ontology == "" {
		config.Ontology = "efo"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://www.ebi.ac.uk/ols4/api/ontologies/" + config.Ontology
	}
	if config.IRIPrefix == "" {
		config.IRIPrefix = "http://www.ebi.ac.uk/efo/"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}
	if config.PageSize == 0 {
		config.PageSize = 500
	}

	return &Client{
		baseURL:   strings.TrimSuffix(config.BaseURL, "/"),
		iriPrefix: config.IRIPrefix,
		pageSize:  config.PageSize,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// halLink is a single hypermedia link.
type halLink struct {
	Href string `json:"href"`
}

// halPage is one page of an OLS4 hypermedia response. Absent _embedded or
// _links sections decode to zero values and degrade to an empty page.
type halPage struct {
	Embedded struct {
		Terms []termRecord `json:"terms"`
	} `json:"_embedded"`
	Links map[string]halLink `json:"_links"`
}

// termRecord is one raw term as embedded in a hypermedia page.
type termRecord struct {
	OboID     string             `json:"obo_id"`
	ShortForm string             `json:"short_form"`
	Label     string             `json:"label"`
	Links     map[string]halLink `json:"_links"`
}

// toTerm normalizes a raw record into a domain term. Records whose
// identifiers cannot be normalized yield a term with an empty ID; callers
// skip those rather than erroring.
func (r termRecord) toTerm() domain.OntologyTerm {
	n := Normalize(r.OboID, r.ShortForm)

	label := r.Label
	if label == "" {
		label = "Unnamed"
	}

	links := make(map[string]string, len(r.Links))
	for rel, l := range r.Links {
		if l.Href != "" {
			links[rel] = l.Href
		}
	}

	return domain.OntologyTerm{
		ID:       n.ID,
		Ontology: n.Ontology,
		Label:    label,
		RawLinks: links,
	}
}

// TermIRI returns the lookup URL for a term id under the configured ontology.
func (c *Client) TermIRI(id domain.CanonicalID) string {
	iri := url.QueryEscape(c.iriPrefix + string(id))
	return fmt.Sprintf("%s/terms?iri=%s", c.baseURL, iri)
}

// LookupTerm resolves a single term by canonical id via a point lookup.
// Returns *domain.TermNotFoundError when the ontology has no such term.
func (c *Client) LookupTerm(ctx context.Context, id domain.CanonicalID) (*domain.OntologyTerm, error) {
	page, err := c.getPage(ctx, c.TermIRI(id))
	if err != nil {
		return nil, err
	}

	if len(page.Embedded.Terms) == 0 {
		return nil, &domain.TermNotFoundError{ID: string(id)}
	}

	term := page.Embedded.Terms[0].toTerm()
	return &term, nil
}

// FetchAllPages follows hypermedia next-links from startURL until no next
// link remains and returns every embedded term in upstream page order. The
// configured page size is appended to each page URL. Pagination within a
// resource is inherently sequential; each page's URL comes from the previous
// response.
func (c *Client) FetchAllPages(ctx context.Context, startURL string) ([]domain.OntologyTerm, error) {
	var out []domain.OntologyTerm

	for pageURL := c.withSize(startURL); pageURL != ""; {
		page, err := c.getPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, rec := range page.Embedded.Terms {
			out = append(out, rec.toTerm())
		}

		pageURL = c.withSize(page.Links["next"].Href)
	}

	return out, nil
}

// withSize appends the configured page size to a page URL.
func (c *Client) withSize(u string) string {
	if u == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssize=%d", u, sep, c.pageSize)
}

// getPage fetches and decodes one hypermedia page. Non-2xx statuses and
// undecodable bodies surface as *domain.UpstreamError carrying the URL.
func (c *Client) getPage(ctx context.Context, pageURL string) (*halPage, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "biomarkerfinder/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{URL: pageURL, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.UpstreamError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{URL: pageURL, Message: err.Error()}
	}

	var page halPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &domain.UpstreamError{URL: pageURL, Message: "undecodable JSON: " + err.Error()}
	}

	return &page, nil
}
