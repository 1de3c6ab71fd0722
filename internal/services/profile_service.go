// Package services orchestrates the reconciliation engine: scan first,
// persist only a fully validated document.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/harvest"
	"profile-registry/backend/internal/importer"
	"profile-registry/backend/internal/iri"
	"profile-registry/backend/internal/logging"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// ImportResult summarizes a successful import.
type ImportResult struct {
	Status     models.VersionStatus `json:"status"`
	ProfileIRI string               `json:"profile_iri"`
	VersionIRI string               `json:"version_iri"`
	Concepts   int                  `json:"concepts"`
	Templates  int                  `json:"templates"`
	Patterns   int                  `json:"patterns"`
}

// ProfileService is the transactional entry point for profile imports,
// version lifecycle operations, and statement harvesting.
type ProfileService struct {
	store     repository.ProfileStore
	resolver  *importer.Resolver
	harvester *harvest.Harvester
	logger    *logging.Logger

	imports        metric.Int64Counter
	importFailures metric.Int64Counter
	harvested      metric.Int64Counter
}

// NewProfileService creates a ProfileService.
func NewProfileService(store repository.ProfileStore, resolver *importer.Resolver, logger *logging.Logger) (*ProfileService, error) {
	meter := otel.Meter("profile-registry")
	imports, err := meter.Int64Counter("profile_imports_total")
	if err != nil {
		return nil, err
	}
	importFailures, err := meter.Int64Counter("profile_import_failures_total")
	if err != nil {
		return nil, err
	}
	harvested, err := meter.Int64Counter("harvested_statements_total")
	if err != nil {
		return nil, err
	}
	return &ProfileService{
		store:          store,
		resolver:       resolver,
		harvester:      harvest.NewHarvester(resolver),
		logger:         logger,
		imports:        imports,
		importFailures: importFailures,
		harvested:      harvested,
	}, nil
}

// ImportProfile scans a profile version document and, when every component
// and cross-reference validated, persists it in one transaction.
func (s *ProfileService) ImportProfile(ctx context.Context, doc models.ProfileDocument, org *models.Organization) (*ImportResult, error) {
	scan, err := importer.NewProfileLayer(doc, org, s.store, s.resolver).ScanProfileLayer(ctx)
	if err != nil {
		s.importFailures.Add(ctx, 1)
		return nil, err
	}
	if err := s.store.SaveImport(ctx, scan.Batch); err != nil {
		s.importFailures.Add(ctx, 1)
		return nil, err
	}
	s.imports.Add(ctx, 1)
	s.logger.Info("profile imported",
		"profile", scan.Batch.Profile.IRI,
		"version", scan.Batch.Version.IRI,
		"status", scan.Status,
	)
	return &ImportResult{
		Status:     scan.Status,
		ProfileIRI: scan.Batch.Profile.IRI,
		VersionIRI: scan.Batch.Version.IRI,
		Concepts:   len(scan.Batch.Concepts),
		Templates:  len(scan.Batch.Templates),
		Patterns:   len(scan.Batch.Patterns),
	}, nil
}

// GetProfile fetches a profile by IRI.
func (s *ProfileService) GetProfile(ctx context.Context, profileIRI string) (*models.Profile, error) {
	profile, err := s.store.FindProfileByIRI(ctx, profileIRI)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFoundf("profile %s does not exist", profileIRI)
	}
	return profile, nil
}

func (s *ProfileService) profileAndVersion(ctx context.Context, profileIRI string, number int) (*models.Profile, *models.ProfileVersion, error) {
	profile, err := s.GetProfile(ctx, profileIRI)
	if err != nil {
		return nil, nil, err
	}
	versionIRI, err := iri.ForVersion(profileIRI, number)
	if err != nil {
		return nil, nil, err
	}
	version, err := s.store.FindVersionByIRI(ctx, versionIRI)
	if err != nil {
		return nil, nil, err
	}
	if version == nil {
		return nil, nil, apperr.NotFoundf("version %d of profile %s does not exist", number, profileIRI)
	}
	return profile, version, nil
}

// VersionDetail pairs a version with the templates it owns.
type VersionDetail struct {
	Version   *models.ProfileVersion `json:"version"`
	Templates []*models.Template     `json:"templates"`
}

// GetVersion returns a version together with its owned templates.
func (s *ProfileService) GetVersion(ctx context.Context, profileIRI string, number int) (*VersionDetail, error) {
	_, version, err := s.profileAndVersion(ctx, profileIRI, number)
	if err != nil {
		return nil, err
	}
	templates, err := s.store.ListTemplatesByVersion(ctx, version.IRI)
	if err != nil {
		return nil, err
	}
	return &VersionDetail{Version: version, Templates: templates}, nil
}

// PublishVersion transitions the profile's current draft to published. Once
// published the version's owned component set is frozen; only the bounded
// edit subset remains importable.
func (s *ProfileService) PublishVersion(ctx context.Context, profileIRI string, number int) (*models.ProfileVersion, error) {
	profile, version, err := s.profileAndVersion(ctx, profileIRI, number)
	if err != nil {
		return nil, err
	}
	if version.State == models.VersionStatePublished {
		return nil, apperr.Conflictf("version %d of profile %s is already published", number, profileIRI)
	}
	if err := s.store.MarkPublished(ctx, profile, version, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.logger.Info("version published", "version", version.IRI)
	return version, nil
}

// DeleteVersion removes a draft version. Its owned templates and patterns
// are deleted; its owned concepts are orphaned because published templates
// elsewhere may still reference them.
func (s *ProfileService) DeleteVersion(ctx context.Context, profileIRI string, number int) error {
	profile, version, err := s.profileAndVersion(ctx, profileIRI, number)
	if err != nil {
		return err
	}
	if version.State == models.VersionStatePublished {
		return apperr.Validationf("version %d of profile %s is published and cannot be deleted", number, profileIRI)
	}
	if err := s.store.DeleteVersion(ctx, profile, version, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("version deleted", "version", version.IRI)
	return nil
}

// HarvestStatements classifies a batch of raw statements against a draft
// version and persists the batch for review. A statement that fails to
// classify is kept unmatched rather than aborting the batch.
func (s *ProfileService) HarvestStatements(ctx context.Context, profileIRI string, number int, statements []models.StatementDocument) (*models.HarvestData, error) {
	_, version, err := s.profileAndVersion(ctx, profileIRI, number)
	if err != nil {
		return nil, err
	}
	if version.State != models.VersionStateDraft {
		return nil, apperr.Validationf("harvest data can only be attached to a draft version, and version %d of profile %s is %s", number, profileIRI, version.State)
	}

	data := &models.HarvestData{
		ID:         uuid.New().String(),
		VersionIRI: version.IRI,
		CreatedAt:  time.Now().UTC(),
	}
	for _, st := range statements {
		matches, err := s.harvester.HarvestStatementConcepts(ctx, st, version)
		if err != nil {
			s.logger.Error("statement left unmatched", "error", err)
			matches = &models.StatementMatches{Statement: st}
		}
		data.Statements = append(data.Statements, *matches)
	}
	if err := s.store.SaveHarvest(ctx, data); err != nil {
		return nil, err
	}
	s.harvested.Add(ctx, int64(len(statements)))
	return data, nil
}

// MatchConcept classifies one concept candidate against a version. Exposed
// for the operator tooling surface.
func (s *ProfileService) MatchConcept(ctx context.Context, doc models.ConceptDocument, profileIRI string, number int) (*models.Match, error) {
	_, version, err := s.profileAndVersion(ctx, profileIRI, number)
	if err != nil {
		return nil, err
	}
	return s.harvester.MatchConcept(ctx, doc, version)
}
