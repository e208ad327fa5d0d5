package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
	"github.com/nickjlamb/biomarkerfinder/pkg/ontology"
	"github.com/nickjlamb/biomarkerfinder/pkg/opentargets"
)

// BiomarkerService orchestrates the biomarker lookup pipeline: disease name
// resolution, ranked associated targets, the full deduplicated known-drug
// list, and the drug-to-biomarker match.
type BiomarkerService struct {
	logger   *logrus.Logger
	platform domain.PlatformAPI
}

// NewBiomarkerService creates a new biomarker service.
func NewBiomarkerService(logger *logrus.Logger, platform domain.PlatformAPI) *BiomarkerService {
	return &BiomarkerService{
		logger:   logger,
		platform: platform,
	}
}

// BiomarkerReport is the assembled answer for one disease lookup.
type BiomarkerReport struct {
	Disease      domain.DiseaseRef    `json:"disease"`
	Biomarkers   []domain.Biomarker   `json:"biomarkers"`
	MatchedDrugs []domain.MatchedDrug `json:"matchedDrugs"`
}

// ResolveDiseaseID maps user input to an EFO id. Input already in canonical
// form passes through unchanged; anything else goes through the platform's
// disease search, first disease hit wins. No hit resolves to
// *domain.TermNotFoundError.
func (s *BiomarkerService) ResolveDiseaseID(ctx context.Context, disease string) (string, error) {
	if ontology.IsCanonical(disease) {
		return disease, nil
	}

	hits, err := s.platform.SearchDisease(ctx, disease)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", &domain.TermNotFoundError{ID: disease}
	}

	s.logger.WithFields(logrus.Fields{
		"disease": disease,
		"efoId":   hits[0].ID,
	}).Info("Resolved disease name")
	return hits[0].ID, nil
}

// GetBiomarkers runs the full pipeline for one disease. The known-drug leg is
// best-effort: a failure there still returns the biomarker list, just with no
// matched drugs.
func (s *BiomarkerService) GetBiomarkers(ctx context.Context, req domain.AssociatedTargetsRequest) (*BiomarkerReport, error) {
	efoID, err := s.ResolveDiseaseID(ctx, req.Disease)
	if err != nil {
		return nil, err
	}
	req.Disease = efoID

	disease, biomarkers, err := s.platform.AssociatedTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &BiomarkerReport{
		Disease:      *disease,
		Biomarkers:   biomarkers,
		MatchedDrugs: []domain.MatchedDrug{},
	}

	rows, err := s.platform.AllKnownDrugs(ctx, efoID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"efoId": efoID,
			"error": err.Error(),
		}).Warn("Known-drug retrieval failed, returning biomarkers without drug matches")
		return report, nil
	}

	unique := opentargets.DeduplicateRows(rows)
	report.MatchedDrugs = MatchDrugsToBiomarkers(unique, biomarkers)

	s.logger.WithFields(logrus.Fields{
		"efoId":      efoID,
		"biomarkers": len(biomarkers),
		"drugRows":   len(rows),
		"unique":     len(unique),
		"matched":    len(report.MatchedDrugs),
	}).Info("Assembled biomarker report")

	return report, nil
}
