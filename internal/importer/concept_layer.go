package importer

import (
	"context"
	"strings"
	"time"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/iri"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// pickName chooses the label used to derive an IRI: English first, then any
// entry.
func pickName(labels models.LanguageMap) string {
	if n, ok := labels["en"]; ok {
		return n
	}
	for _, n := range labels {
		return n
	}
	return ""
}

func violationError(violations []Violation) error {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message())
	}
	return apperr.Validationf("%s", strings.Join(msgs, " "))
}

// ConceptLayer reconciles one concept fragment against the store under the
// mutation mode of the version the fragment belongs to.
type ConceptLayer struct {
	doc        models.ConceptDocument
	parent     *models.ProfileVersion
	profileIRI string
	status     models.VersionStatus
	store      repository.ProfileStore

	model *models.Concept
}

// NewConceptLayer builds a layer for one concept fragment. parent is the
// version the fragment targets; status describes that version's mutation
// mode, not the concept's own stored state.
func NewConceptLayer(doc models.ConceptDocument, parent *models.ProfileVersion, profileIRI string, status models.VersionStatus, store repository.ProfileStore) *ConceptLayer {
	return &ConceptLayer{doc: doc, parent: parent, profileIRI: profileIRI, status: status, store: store}
}

// Model returns the reconciled concept. Valid only after
// ScanProfileComponentLayer.
func (l *ConceptLayer) Model() *models.Concept { return l.model }

func (l *ConceptLayer) resolveIRI() (string, error) {
	if l.doc.ID != "" {
		return l.doc.ID, nil
	}
	name := pickName(l.doc.PrefLabel)
	if name == "" {
		return "", apperr.Validationf("a concept requires an id or a prefLabel to derive one from")
	}
	return iri.ForComponent(l.profileIRI, string(l.doc.Type), name)
}

func (l *ConceptLayer) build(conceptIRI string, now time.Time) *models.Concept {
	return &models.Concept{
		IRI:               conceptIRI,
		Type:              l.doc.Type,
		PrefLabel:         l.doc.PrefLabel.Clone(),
		Definition:        l.doc.Definition.Clone(),
		Deprecated:        l.doc.Deprecated,
		DeprecationReason: l.doc.DeprecationReason,
		MediaType:         l.doc.MediaType,
		ContentSchema:     l.doc.ContentSchema,
		SimilarTerms:      l.doc.SimilarTerms,
		OwnerVersionIRI:   l.parent.IRI,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ScanProfileComponentLayer resolves or creates the in-memory model for the
// fragment. No store writes happen here; the caller persists the whole
// document only after every component has been validated.
func (l *ConceptLayer) ScanProfileComponentLayer(ctx context.Context) (*models.Concept, error) {
	conceptIRI, err := l.resolveIRI()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	existing, err := l.store.FindConceptByIRI(ctx, conceptIRI)
	if err != nil {
		return nil, err
	}

	switch l.status {
	case models.VersionStatusNew:
		if existing != nil {
			return nil, apperr.Conflictf("concept %s already exists on the server", conceptIRI)
		}
		l.model = l.build(conceptIRI, now)

	case models.VersionStatusDraft:
		if existing == nil {
			l.model = l.build(conceptIRI, now)
			break
		}
		// Free-form update: any field may be added, changed, or removed.
		incoming := l.build(conceptIRI, now)
		incoming.OwnerVersionIRI = existing.OwnerVersionIRI
		incoming.Orphaned = existing.Orphaned
		incoming.CreatedAt = existing.CreatedAt
		l.model = incoming

	case models.VersionStatusPublished:
		if existing == nil {
			return nil, apperr.Validationf("concept %s does not exist and cannot be added to published version %s", conceptIRI, l.parent.IRI)
		}
		incoming := l.build(conceptIRI, now)
		if violations := PublishedConceptViolations(existing, incoming); len(violations) > 0 {
			return nil, violationError(violations)
		}
		// Only translations and the deprecation fields may still change.
		// Edits land on a clone; the stored model changes only when the
		// whole document commits.
		model := existing.Clone()
		model.PrefLabel = incoming.PrefLabel
		model.Definition = incoming.Definition
		model.Deprecated = incoming.Deprecated
		model.DeprecationReason = incoming.DeprecationReason
		model.UpdatedAt = now
		l.model = model

	default:
		return nil, apperr.InvalidInputf("unknown version status %q", l.status)
	}
	return l.model, nil
}
