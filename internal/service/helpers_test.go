package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeOntology is an in-memory domain.OntologyAPI for resolver tests.
type fakeOntology struct {
	mu      sync.Mutex
	terms   map[domain.CanonicalID]*domain.OntologyTerm
	pages   map[string][]domain.OntologyTerm
	pageErr map[string]error

	fetched []string
	lookups []domain.CanonicalID
}

func newFakeOntology() *fakeOntology {
	return &fakeOntology{
		terms:   map[domain.CanonicalID]*domain.OntologyTerm{},
		pages:   map[string][]domain.OntologyTerm{},
		pageErr: map[string]error{},
	}
}

func (f *fakeOntology) LookupTerm(_ context.Context, id domain.CanonicalID) (*domain.OntologyTerm, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, id)
	f.mu.Unlock()

	term, ok := f.terms[id]
	if !ok {
		return nil, &domain.TermNotFoundError{ID: string(id)}
	}
	return term, nil
}

func (f *fakeOntology) FetchAllPages(_ context.Context, startURL string) ([]domain.OntologyTerm, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, startURL)
	f.mu.Unlock()

	if err := f.pageErr[startURL]; err != nil {
		return nil, err
	}
	return f.pages[startURL], nil
}

func (f *fakeOntology) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

func (f *fakeOntology) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lookups)
}

func efoTerm(id domain.CanonicalID, label string, links map[string]string) domain.OntologyTerm {
	return domain.OntologyTerm{ID: id, Ontology: "efo", Label: label, RawLinks: links}
}

// fakePlatform is an in-memory domain.PlatformAPI.
type fakePlatform struct {
	mu sync.Mutex

	searchHits map[string][]domain.DiseaseRef
	searchErr  error

	disease    *domain.DiseaseRef
	biomarkers []domain.Biomarker
	targetsErr error

	drugRows []domain.KnownDrugRow
	drugErr  error

	// KnownDrugTargets per disease id
	candidateNames   map[string]string
	candidateTargets map[string][]string
	candidateErr     map[string]error
	queried          []string

	warning *domain.DrugWarningRecord
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		searchHits:       map[string][]domain.DiseaseRef{},
		candidateNames:   map[string]string{},
		candidateTargets: map[string][]string{},
		candidateErr:     map[string]error{},
	}
}

func (f *fakePlatform) SearchDisease(_ context.Context, name string) ([]domain.DiseaseRef, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchHits[name], nil
}

func (f *fakePlatform) AssociatedTargets(_ context.Context, req domain.AssociatedTargetsRequest) (*domain.DiseaseRef, []domain.Biomarker, error) {
	if f.targetsErr != nil {
		return nil, nil, f.targetsErr
	}
	disease := f.disease
	if disease == nil {
		disease = &domain.DiseaseRef{ID: req.Disease, Name: req.Disease}
	}
	return disease, f.biomarkers, nil
}

func (f *fakePlatform) KnownDrugs(_ context.Context, efoID, cursor, freeTextQuery string, size int) (*domain.KnownDrugsPage, error) {
	if f.drugErr != nil {
		return nil, f.drugErr
	}
	return &domain.KnownDrugsPage{Count: len(f.drugRows), Rows: f.drugRows}, nil
}

func (f *fakePlatform) AllKnownDrugs(_ context.Context, efoID string) ([]domain.KnownDrugRow, error) {
	if f.drugErr != nil {
		return nil, f.drugErr
	}
	return f.drugRows, nil
}

func (f *fakePlatform) KnownDrugTargets(_ context.Context, efoID string, size int) (*domain.DiseaseRef, []string, error) {
	f.mu.Lock()
	f.queried = append(f.queried, efoID)
	f.mu.Unlock()

	if err := f.candidateErr[efoID]; err != nil {
		return nil, nil, err
	}

	name := f.candidateNames[efoID]
	if name == "" {
		name = efoID
	}
	return &domain.DiseaseRef{ID: efoID, Name: name}, f.candidateTargets[efoID], nil
}

func (f *fakePlatform) DrugWarnings(_ context.Context, chemblID string) (*domain.DrugWarningRecord, error) {
	if f.warning == nil {
		return nil, domain.ErrMalformedResponse
	}
	return f.warning, nil
}
