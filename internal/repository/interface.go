// Package repository provides the persistent-store abstraction the
// reconciliation engine depends on, keyed by stable IRIs.
package repository

import (
	"context"
	"time"

	"profile-registry/backend/pkg/models"
)

// ImportBatch is the full output of a validated version-document scan,
// persisted atomically. Nothing in a batch reaches the store until every
// component and cross-reference in the document has been validated.
type ImportBatch struct {
	Profile   *models.Profile
	Version   *models.ProfileVersion
	Concepts  []*models.Concept
	Templates []*models.Template
	Patterns  []*models.Pattern
}

// ProfileStore is the store contract. Find methods return (nil, nil) when
// no model with the given IRI exists; errors are reserved for store
// failures. Returned models may be shared (the in-memory store hands out
// live references), so scan paths clone before editing.
type ProfileStore interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)

	FindProfileByIRI(ctx context.Context, iri string) (*models.Profile, error)
	FindVersionByIRI(ctx context.Context, iri string) (*models.ProfileVersion, error)
	FindConceptByIRI(ctx context.Context, iri string) (*models.Concept, error)
	FindTemplateByIRI(ctx context.Context, iri string) (*models.Template, error)
	FindPatternByIRI(ctx context.Context, iri string) (*models.Pattern, error)
	ListTemplatesByVersion(ctx context.Context, versionIRI string) ([]*models.Template, error)

	// SaveImport persists a reconciled batch in one transaction.
	SaveImport(ctx context.Context, batch *ImportBatch) error

	// MarkPublished flips a version to published at the given time and
	// moves the profile's draft pointer to its published pointer.
	MarkPublished(ctx context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error

	// DeleteVersion removes a version and its owned templates and
	// patterns, and marks its owned concepts orphaned rather than
	// deleting them. Externally linked components are never touched.
	DeleteVersion(ctx context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error

	SaveHarvest(ctx context.Context, data *models.HarvestData) error
	GetHarvest(ctx context.Context, id string) (*models.HarvestData, error)
}
