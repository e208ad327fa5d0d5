package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// maxParentExpansions bounds how many parent subtrees are expanded at once.
// Parent expansion is embarrassingly parallel; the bound just keeps the
// upstream rate limiter from starving everything else.
const maxParentExpansions = 8

// RelationshipResolver computes the depth-2 neighborhood of a disease term:
// parents, own children, and siblings (union of EFO parents' children).
// Resolved sets are cached in a time-bounded LRU since the underlying
// ontology is near-static.
type RelationshipResolver struct {
	logger   *logrus.Logger
	ontology domain.OntologyAPI
	cache    *expirable.LRU[domain.CanonicalID, *domain.RelationshipSet]
}

// NewRelationshipResolver creates a new relationship resolver. Cache size and
// TTL of zero disable caching.
func NewRelationshipResolver(logger *logrus.Logger, ontologyAPI domain.OntologyAPI, cacheSize int, cacheTTL time.Duration) *RelationshipResolver {
	var cache *expirable.LRU[domain.CanonicalID, *domain.RelationshipSet]
	if cacheSize > 0 && cacheTTL > 0 {
		cache = expirable.NewLRU[domain.CanonicalID, *domain.RelationshipSet](cacheSize, nil, cacheTTL)
	}

	return &RelationshipResolver{
		logger:   logger,
		ontology: ontologyAPI,
		cache:    cache,
	}
}

// Resolve returns the relationship set for a disease term.
//
// The traversal has an explicit depth bound of two: the term itself, its
// parents, and each EFO parent's children. Parents from other ontologies
// (mondo, orphanet, ...) are reported but never expanded. A parent whose
// subtree is unreachable is logged and skipped for sibling purposes; only
// the initial point lookup is fatal.
func (r *RelationshipResolver) Resolve(ctx context.Context, term domain.CanonicalID) (*domain.RelationshipSet, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(term); ok {
			return cached, nil
		}
	}

	record, err := r.ontology.LookupTerm(ctx, term)
	if err != nil {
		return nil, err
	}

	// The term's own children are returned for caller visibility only; they
	// play no part in sibling computation.
	children, err := r.fetchChildren(ctx, *record)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of %s: %w", term, err)
	}

	set := &domain.RelationshipSet{
		Term:     term,
		Parents:  []domain.OntologyTerm{},
		Siblings: []domain.OntologyTerm{},
		Children: children,
	}

	parentsHref := record.RelationLink("parents", "hierarchicalParents")
	if parentsHref == "" {
		// Root terms have no parent relation at all; that is a valid answer,
		// not an error.
		r.logger.WithField("term", term).Debug("No parent relation on term")
		if r.cache != nil && ctx.Err() == nil {
			r.cache.Add(term, set)
		}
		return set, nil
	}

	parentRecords, err := r.ontology.FetchAllPages(ctx, parentsHref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parents of %s: %w", term, err)
	}

	// Parents are kept regardless of ontology; unresolvable identifiers are
	// skipped per record.
	for _, p := range parentRecords {
		if p.ID == "" {
			continue
		}
		set.Parents = append(set.Parents, p)
	}

	set.Siblings = r.collectSiblings(ctx, term, set.Parents)

	r.logger.WithFields(logrus.Fields{
		"term":     term,
		"parents":  len(set.Parents),
		"siblings": len(set.Siblings),
		"children": len(set.Children),
	}).Info("Resolved term relationships")

	// A cancelled context means some parent subtrees were abandoned; the
	// partial set is still the answer for this call but must not be cached.
	if r.cache != nil && ctx.Err() == nil {
		r.cache.Add(term, set)
	}

	return set, nil
}

// fetchChildren pulls the term's own child terms, skipping records without a
// resolvable identifier. A term without a child link has no children.
func (r *RelationshipResolver) fetchChildren(ctx context.Context, term domain.OntologyTerm) ([]domain.OntologyTerm, error) {
	href := term.RelationLink("children", "hierarchicalChildren")
	if href == "" {
		return []domain.OntologyTerm{}, nil
	}

	records, err := r.ontology.FetchAllPages(ctx, href)
	if err != nil {
		return nil, err
	}

	children := make([]domain.OntologyTerm, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		children = append(children, rec)
	}
	return children, nil
}

// collectSiblings expands each EFO parent's children concurrently and unions
// them in parent order, excluding the queried term itself. Duplicate ids keep
// their first label. Per-parent failures are logged and that parent's subtree
// is simply absent from the union.
func (r *RelationshipResolver) collectSiblings(ctx context.Context, term domain.CanonicalID, parents []domain.OntologyTerm) []domain.OntologyTerm {
	perParent := make([][]domain.OntologyTerm, len(parents))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParentExpansions)

	for i, parent := range parents {
		if parent.Ontology != domain.OntologyEFO {
			// Children of non-EFO parents cannot be traversed under the EFO
			// hierarchy; the parent stays in the output untraversed.
			continue
		}

		wg.Add(1)
		go func(i int, parent domain.OntologyTerm) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			kids, err := r.expandParent(ctx, parent)
			if err != nil {
				r.logger.WithFields(logrus.Fields{
					"term":   term,
					"parent": parent.ID,
					"error":  err.Error(),
				}).Warn("Skipping parent subtree for sibling computation")
				return
			}
			perParent[i] = kids
		}(i, parent)
	}
	wg.Wait()

	// Union in parent order so sibling order is deterministic regardless of
	// goroutine completion order.
	siblings := []domain.OntologyTerm{}
	seen := make(map[domain.CanonicalID]struct{})
	for _, kids := range perParent {
		for _, kid := range kids {
			if kid.ID == "" || kid.ID == term {
				continue
			}
			if _, ok := seen[kid.ID]; ok {
				continue
			}
			seen[kid.ID] = struct{}{}
			siblings = append(siblings, kid)
		}
	}
	return siblings
}

// expandParent resolves one parent's children, reusing the child link
// embedded on the parent record and falling back to re-resolving the parent
// term when the embedded link is absent.
func (r *RelationshipResolver) expandParent(ctx context.Context, parent domain.OntologyTerm) ([]domain.OntologyTerm, error) {
	href := parent.RelationLink("children", "hierarchicalChildren")
	if href == "" {
		record, err := r.ontology.LookupTerm(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		href = record.RelationLink("children", "hierarchicalChildren")
	}
	if href == "" {
		return nil, fmt.Errorf("no child link on parent %s", parent.ID)
	}

	return r.ontology.FetchAllPages(ctx, href)
}
