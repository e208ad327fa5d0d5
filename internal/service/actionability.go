package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// maxCandidateQueries bounds concurrent known-drug queries in the
// actionability fan-out.
const maxCandidateQueries = 8

// CrossReferencer determines whether a target implicated in one disease is
// already drug-associated in an ontologically related disease.
type CrossReferencer struct {
	logger   *logrus.Logger
	resolver *RelationshipResolver
	platform domain.PlatformAPI
}

// NewCrossReferencer creates a new actionability cross-referencer.
func NewCrossReferencer(logger *logrus.Logger, resolver *RelationshipResolver, platform domain.PlatformAPI) *CrossReferencer {
	return &CrossReferencer{
		logger:   logger,
		resolver: resolver,
		platform: platform,
	}
}

// CheckActionability enumerates the parent and sibling diseases of efoID and
// reports every one whose known-drug rows reference targetID. The candidate
// list keeps discovery order, parents first then siblings. Actionability is a
// best-effort union: a candidate whose query fails is logged and skipped,
// never fatal. Only the initial term resolution propagates an error.
//
// size bounds the single known-drug page scanned per candidate; zero lets the
// platform client pick its default.
func (x *CrossReferencer) CheckActionability(ctx context.Context, efoID, targetID string, size int) (*domain.ActionabilityResult, error) {
	set, err := x.resolver.Resolve(ctx, domain.CanonicalID(efoID))
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.DiseaseRef, 0, len(set.Parents)+len(set.Siblings))
	for _, p := range set.Parents {
		candidates = append(candidates, domain.DiseaseRef{ID: string(p.ID), Name: p.Label})
	}
	for _, s := range set.Siblings {
		candidates = append(candidates, domain.DiseaseRef{ID: string(s.ID), Name: s.Label})
	}

	// Per-candidate queries are independent and run concurrently, but the
	// result keeps candidate order: hits land in an index-addressed slice and
	// are flattened afterwards, never by completion order.
	hits := make([]*domain.DiseaseRef, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxCandidateQueries)

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate domain.DiseaseRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hit, err := x.checkCandidate(ctx, candidate, targetID, size)
			if err != nil {
				x.logger.WithFields(logrus.Fields{
					"candidate": candidate.ID,
					"target":    targetID,
					"error":     err.Error(),
				}).Warn("Skipping actionability candidate")
				return
			}
			hits[i] = hit
		}(i, candidate)
	}
	wg.Wait()

	diseases := []domain.DiseaseRef{}
	for _, hit := range hits {
		if hit != nil {
			diseases = append(diseases, *hit)
		}
	}

	x.logger.WithFields(logrus.Fields{
		"efoId":      efoID,
		"target":     targetID,
		"candidates": len(candidates),
		"hits":       len(diseases),
	}).Info("Actionability check complete")

	return &domain.ActionabilityResult{
		EFOID:      efoID,
		TargetID:   targetID,
		Actionable: len(diseases) > 0,
		Diseases:   diseases,
	}, nil
}

// checkCandidate queries one candidate disease's known-drug rows and reports
// it as a hit the moment one row references the target. Returns nil when no
// row matches.
func (x *CrossReferencer) checkCandidate(ctx context.Context, candidate domain.DiseaseRef, targetID string, size int) (*domain.DiseaseRef, error) {
	ref, targets, err := x.platform.KnownDrugTargets(ctx, candidate.ID, size)
	if err != nil {
		return nil, err
	}

	for _, id := range targets {
		if id == targetID {
			// Prefer the platform's resolved id and name; fall back to what
			// the ontology gave us.
			hit := candidate
			if ref != nil && ref.ID != "" {
				hit = *ref
			}
			return &hit, nil
		}
	}
	return nil, nil
}
