package importer

import (
	"context"
	"time"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// ProfileLayer is the top-level import entry point. It resolves or creates
// the owning profile, decides what the document's version targets, and
// drives the version layer. It performs no persistence; the returned batch
// is handed to the store only after the whole document validated.
type ProfileLayer struct {
	doc      models.ProfileDocument
	org      *models.Organization
	store    repository.ProfileStore
	resolver *Resolver
}

// NewProfileLayer builds the layer for one profile document. org is the
// API-key-identified organization, nil when the caller is anonymous; it is
// only required for first-time imports.
func NewProfileLayer(doc models.ProfileDocument, org *models.Organization, store repository.ProfileStore, resolver *Resolver) *ProfileLayer {
	return &ProfileLayer{doc: doc, org: org, store: store, resolver: resolver}
}

// ProfileScan is the validated output of a full profile-document scan.
type ProfileScan struct {
	Status models.VersionStatus
	Batch  *repository.ImportBatch
}

// ScanProfileLayer validates the document end to end and returns the batch
// to persist.
func (l *ProfileLayer) ScanProfileLayer(ctx context.Context) (*ProfileScan, error) {
	if l.doc.ID == "" {
		return nil, apperr.InvalidInputf("a profile document requires an id")
	}
	now := time.Now().UTC()

	profile, err := l.store.FindProfileByIRI(ctx, l.doc.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		if l.org == nil {
			return nil, apperr.NotFoundf("profile %s does not exist and no organization was supplied to create it", l.doc.ID)
		}
		profile = &models.Profile{
			IRI:            l.doc.ID,
			OrganizationID: l.org.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	} else {
		// Pointer updates happen on a clone; the stored profile moves
		// only when the batch commits.
		profile = profile.Clone()
	}

	scan, err := NewVersionLayer(l.doc.Version, profile, l.store, l.resolver).ScanVersionLayer(ctx)
	if err != nil {
		return nil, err
	}

	if scan.Status == models.VersionStatusNew {
		profile.CurrentVersionNumber = scan.Version.Number
		profile.CurrentDraftVersion = &scan.Version.IRI
	}
	profile.UpdatedAt = now

	return &ProfileScan{
		Status: scan.Status,
		Batch: &repository.ImportBatch{
			Profile:   profile,
			Version:   scan.Version,
			Concepts:  scan.Concepts,
			Templates: scan.Templates,
			Patterns:  scan.Patterns,
		},
	}, nil
}
