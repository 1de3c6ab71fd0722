package importer

import (
	"context"
	"time"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/iri"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// VersionScan is the validated output of one version-document scan. Nothing
// in it has been persisted.
type VersionScan struct {
	Status    models.VersionStatus
	Version   *models.ProfileVersion
	Concepts  []*models.Concept
	Templates []*models.Template
	Patterns  []*models.Pattern
}

// VersionLayer orchestrates the component layers for every concept,
// template, and pattern inside one profile version document.
//
// Cross-references inside the document are resolved with two passes: pass
// one materializes every component model without touching references, pass
// two resolves each reference against the complete sibling sets. A template
// may therefore reference siblings declared after it.
type VersionLayer struct {
	doc      models.VersionDocument
	profile  *models.Profile
	store    repository.ProfileStore
	resolver *Resolver
}

// NewVersionLayer builds a layer for one version document.
func NewVersionLayer(doc models.VersionDocument, profile *models.Profile, store repository.ProfileStore, resolver *Resolver) *VersionLayer {
	return &VersionLayer{doc: doc, profile: profile, store: store, resolver: resolver}
}

// determineStatus maps the document's declared version number onto a
// mutation mode. The next number after the profile's latest opens a new
// draft; the current draft's number edits it; the published version's
// number permits only the frozen-legal edit subset; anything else is a
// conflict.
func (l *VersionLayer) determineStatus(ctx context.Context) (models.VersionStatus, *models.ProfileVersion, error) {
	n := l.doc.Number
	if n < 1 {
		return "", nil, apperr.Validationf("version numbers start at 1, got %d", n)
	}
	if n == l.profile.CurrentVersionNumber+1 {
		if l.profile.CurrentDraftVersion != nil {
			return "", nil, apperr.Conflictf("profile %s already has an open draft; publish or delete it before starting version %d", l.profile.IRI, n)
		}
		return models.VersionStatusNew, nil, nil
	}

	if l.profile.CurrentDraftVersion != nil {
		draft, err := l.store.FindVersionByIRI(ctx, *l.profile.CurrentDraftVersion)
		if err != nil {
			return "", nil, err
		}
		if draft != nil && draft.Number == n {
			return models.VersionStatusDraft, draft, nil
		}
	}
	if l.profile.CurrentPublishedVersion != nil {
		published, err := l.store.FindVersionByIRI(ctx, *l.profile.CurrentPublishedVersion)
		if err != nil {
			return "", nil, err
		}
		if published != nil && published.Number == n {
			return models.VersionStatusPublished, published, nil
		}
	}
	return "", nil, apperr.Conflictf("version %d of profile %s is not the next version, the current draft, or the current published version", n, l.profile.IRI)
}

// ScanVersionLayer validates the whole document and returns the reconciled
// models. The first violation anywhere aborts the entire import; the caller
// persists only a fully validated scan.
func (l *VersionLayer) ScanVersionLayer(ctx context.Context) (*VersionScan, error) {
	status, existing, err := l.determineStatus(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	var version *models.ProfileVersion
	if existing != nil {
		// Work on a clone so an aborted scan never leaves half-updated
		// component lists on the stored version.
		version = existing.Clone()
		version.UpdatedAt = now
	} else {
		versionIRI, err := iri.ForVersion(l.profile.IRI, l.doc.Number)
		if err != nil {
			return nil, err
		}
		version = &models.ProfileVersion{
			IRI:           versionIRI,
			ProfileIRI:    l.profile.IRI,
			Number:        l.doc.Number,
			State:         models.VersionStateDraft,
			WasRevisionOf: l.profile.CurrentPublishedVersion,
			CreatedBy:     l.doc.CreatedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	// Pass one: materialize every component identity.
	profileConcepts := make(map[string]*models.Concept)
	var concepts []*models.Concept
	for _, doc := range l.doc.Concepts {
		layer := NewConceptLayer(doc, version, l.profile.IRI, status, l.store)
		model, err := layer.ScanProfileComponentLayer(ctx)
		if err != nil {
			return nil, err
		}
		profileConcepts[model.IRI] = model
		concepts = append(concepts, model)
	}

	profileTemplates := make(map[string]*models.Template)
	var templateLayers []*TemplateLayer
	var templates []*models.Template
	for _, doc := range l.doc.Templates {
		layer := NewTemplateLayer(doc, version, l.profile.IRI, status, l.store, l.resolver)
		model, err := layer.ScanProfileComponentLayer(ctx)
		if err != nil {
			return nil, err
		}
		profileTemplates[model.IRI] = model
		templateLayers = append(templateLayers, layer)
		templates = append(templates, model)
	}

	profilePatterns := make(map[string]*models.Pattern)
	var patternLayers []*PatternLayer
	var patterns []*models.Pattern
	for _, doc := range l.doc.Patterns {
		layer := NewPatternLayer(doc, version, l.profile.IRI, status, l.store, l.resolver)
		model, err := layer.ScanProfileComponentLayer(ctx)
		if err != nil {
			return nil, err
		}
		profilePatterns[model.IRI] = model
		patternLayers = append(patternLayers, layer)
		patterns = append(patterns, model)
	}

	// Pass two: resolve every cross-reference against the full sibling
	// sets.
	for _, layer := range templateLayers {
		if err := layer.ScanSubcomponentLayer(ctx, profileConcepts, profileTemplates); err != nil {
			return nil, err
		}
	}
	for _, layer := range patternLayers {
		if err := layer.ScanSubcomponentLayer(ctx, profileTemplates, profilePatterns); err != nil {
			return nil, err
		}
	}

	if status != models.VersionStatusPublished {
		if err := l.assignLists(ctx, version, concepts, templates, patterns); err != nil {
			return nil, err
		}
	}

	return &VersionScan{
		Status:    status,
		Version:   version,
		Concepts:  concepts,
		Templates: templates,
		Patterns:  patterns,
	}, nil
}

// assignLists partitions scanned concepts into owned and external lists and
// records template/pattern ownership. Explicitly declared external concepts
// must exist somewhere.
func (l *VersionLayer) assignLists(ctx context.Context, version *models.ProfileVersion, concepts []*models.Concept, templates []*models.Template, patterns []*models.Pattern) error {
	version.Concepts = version.Concepts[:0]
	version.ExternalConcepts = version.ExternalConcepts[:0]
	version.Templates = version.Templates[:0]
	version.Patterns = version.Patterns[:0]

	for _, c := range concepts {
		if c.OwnerVersionIRI == version.IRI {
			version.Concepts = append(version.Concepts, c.IRI)
		} else {
			version.ExternalConcepts = append(version.ExternalConcepts, c.IRI)
		}
	}
	for _, ref := range l.doc.ExternalConcepts {
		concept, err := l.resolver.ResolveConcept(ctx, ref, nil)
		if err != nil {
			return err
		}
		if concept == nil {
			return apperr.Validationf("external concept %s does not exist on the server", ref)
		}
		if !version.LinksConcept(ref) {
			version.ExternalConcepts = append(version.ExternalConcepts, ref)
		}
	}
	for _, t := range templates {
		version.Templates = append(version.Templates, t.IRI)
	}
	for _, p := range patterns {
		version.Patterns = append(version.Patterns, p.IRI)
	}
	return nil
}
