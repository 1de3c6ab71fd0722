package importer

import (
	"context"
	"time"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/iri"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// PatternLayer reconciles one pattern fragment.
type PatternLayer struct {
	doc        models.PatternDocument
	parent     *models.ProfileVersion
	profileIRI string
	status     models.VersionStatus
	store      repository.ProfileStore
	resolver   *Resolver

	model *models.Pattern
}

// NewPatternLayer builds a layer for one pattern fragment.
func NewPatternLayer(doc models.PatternDocument, parent *models.ProfileVersion, profileIRI string, status models.VersionStatus, store repository.ProfileStore, resolver *Resolver) *PatternLayer {
	return &PatternLayer{doc: doc, parent: parent, profileIRI: profileIRI, status: status, store: store, resolver: resolver}
}

// Model returns the reconciled pattern. Valid only after
// ScanProfileComponentLayer.
func (l *PatternLayer) Model() *models.Pattern { return l.model }

func (l *PatternLayer) resolveIRI() (string, error) {
	if l.doc.ID != "" {
		return l.doc.ID, nil
	}
	name := pickName(l.doc.PrefLabel)
	if name == "" {
		return "", apperr.Validationf("a pattern requires an id or a prefLabel to derive one from")
	}
	return iri.ForComponent(l.profileIRI, "Pattern", name)
}

func (l *PatternLayer) build(patternIRI string, now time.Time) *models.Pattern {
	return &models.Pattern{
		IRI:             patternIRI,
		Primary:         l.doc.Primary,
		Type:            l.doc.Type,
		PrefLabel:       l.doc.PrefLabel.Clone(),
		Definition:      l.doc.Definition.Clone(),
		Deprecated:      l.doc.Deprecated,
		OwnerVersionIRI: l.parent.IRI,
		Sequence:        l.doc.Sequence,
		Alternates:      l.doc.Alternates,
		OneOrMore:       l.doc.OneOrMore,
		ZeroOrMore:      l.doc.ZeroOrMore,
		Optional:        l.doc.Optional,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// checkShape enforces that exactly one member field is set and that it
// agrees with the declared pattern type.
func (l *PatternLayer) checkShape(p *models.Pattern) error {
	set := 0
	var implied models.PatternType
	if len(p.Sequence) > 0 {
		set++
		implied = models.PatternTypeSequence
	}
	if len(p.Alternates) > 0 {
		set++
		implied = models.PatternTypeAlternates
	}
	if p.OneOrMore != nil {
		set++
		implied = models.PatternTypeOneOrMore
	}
	if p.ZeroOrMore != nil {
		set++
		implied = models.PatternTypeZeroOrMore
	}
	if p.Optional != nil {
		set++
		implied = models.PatternTypeOptional
	}
	if set != 1 {
		return apperr.Validationf("pattern %s must declare exactly one of sequence, alternates, oneOrMore, zeroOrMore, or optional", p.IRI)
	}
	if p.Type == "" {
		p.Type = implied
	} else if p.Type != implied {
		return apperr.Validationf("pattern %s declares type %s but its members imply %s", p.IRI, p.Type, implied)
	}
	return nil
}

// ScanProfileComponentLayer resolves or creates the in-memory model and
// applies the publish-legality matrix.
func (l *PatternLayer) ScanProfileComponentLayer(ctx context.Context) (*models.Pattern, error) {
	patternIRI, err := l.resolveIRI()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	existing, err := l.store.FindPatternByIRI(ctx, patternIRI)
	if err != nil {
		return nil, err
	}

	switch l.status {
	case models.VersionStatusNew:
		if existing != nil {
			return nil, apperr.Conflictf("pattern %s already exists on the server", patternIRI)
		}
		model := l.build(patternIRI, now)
		if err := l.checkShape(model); err != nil {
			return nil, err
		}
		l.model = model

	case models.VersionStatusDraft:
		incoming := l.build(patternIRI, now)
		if err := l.checkShape(incoming); err != nil {
			return nil, err
		}
		if existing != nil {
			incoming.OwnerVersionIRI = existing.OwnerVersionIRI
			incoming.CreatedAt = existing.CreatedAt
		}
		l.model = incoming

	case models.VersionStatusPublished:
		if existing == nil {
			return nil, apperr.Validationf("pattern %s does not exist and cannot be added to published version %s", patternIRI, l.parent.IRI)
		}
		incoming := l.build(patternIRI, now)
		if err := l.checkShape(incoming); err != nil {
			return nil, err
		}
		if violations := PublishedPatternViolations(existing, incoming); len(violations) > 0 {
			return nil, violationError(violations)
		}
		// Edits land on a clone; the stored model changes only when the
		// whole document commits.
		model := existing.Clone()
		model.PrefLabel = incoming.PrefLabel
		model.Definition = incoming.Definition
		model.Deprecated = incoming.Deprecated
		model.UpdatedAt = now
		l.model = model

	default:
		return nil, apperr.InvalidInputf("unknown version status %q", l.status)
	}
	return l.model, nil
}

// ScanSubcomponentLayer resolves the pattern's member references against the
// templates and patterns of the same version document, then the store.
func (l *PatternLayer) ScanSubcomponentLayer(ctx context.Context, profileTemplates map[string]*models.Template, profilePatterns map[string]*models.Pattern) error {
	p := l.model
	for _, ref := range p.Members() {
		if ref == p.IRI {
			return apperr.Validationf("pattern %s cannot reference itself", p.IRI)
		}
		template, err := l.resolver.ResolveTemplate(ctx, ref, profileTemplates)
		if err != nil {
			return err
		}
		if template != nil {
			continue
		}
		pattern, err := l.resolver.ResolvePattern(ctx, ref, profilePatterns)
		if err != nil {
			return err
		}
		if pattern == nil {
			return apperr.Validationf("%s cannot be a member of pattern %s because it does not exist on the server or in this document", ref, p.IRI)
		}
	}
	return nil
}
