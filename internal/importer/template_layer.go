package importer

import (
	"context"
	"time"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/iri"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// TemplateLayer reconciles one statement-template fragment. The two-phase
// contract keeps publish-legality checking (phase one, which needs only the
// fragment and its stored counterpart) separate from cross-reference
// resolution (phase two, which needs the full sibling set from the
// enclosing document).
type TemplateLayer struct {
	doc        models.TemplateDocument
	parent     *models.ProfileVersion
	profileIRI string
	status     models.VersionStatus
	store      repository.ProfileStore
	resolver   *Resolver

	model *models.Template
}

// NewTemplateLayer builds a layer for one template fragment.
func NewTemplateLayer(doc models.TemplateDocument, parent *models.ProfileVersion, profileIRI string, status models.VersionStatus, store repository.ProfileStore, resolver *Resolver) *TemplateLayer {
	return &TemplateLayer{doc: doc, parent: parent, profileIRI: profileIRI, status: status, store: store, resolver: resolver}
}

// Model returns the reconciled template. Valid only after
// ScanProfileComponentLayer.
func (l *TemplateLayer) Model() *models.Template { return l.model }

func (l *TemplateLayer) resolveIRI() (string, error) {
	if l.doc.ID != "" {
		return l.doc.ID, nil
	}
	name := pickName(l.doc.PrefLabel)
	if name == "" {
		return "", apperr.Validationf("a template requires an id or a prefLabel to derive one from")
	}
	return iri.ForComponent(l.profileIRI, "Template", name)
}

func (l *TemplateLayer) build(templateIRI string, now time.Time) *models.Template {
	return &models.Template{
		IRI:             templateIRI,
		PrefLabel:       l.doc.PrefLabel.Clone(),
		Definition:      l.doc.Definition.Clone(),
		Deprecated:      l.doc.Deprecated,
		OwnerVersionIRI: l.parent.IRI,

		Verb:                        l.doc.Verb,
		ObjectActivityType:          l.doc.ObjectActivityType,
		ContextGroupingActivityType: l.doc.ContextGroupingActivityType,
		ContextParentActivityType:   l.doc.ContextParentActivityType,
		ContextOtherActivityType:    l.doc.ContextOtherActivityType,
		ContextCategoryActivityType: l.doc.ContextCategoryActivityType,
		AttachmentUsageType:         l.doc.AttachmentUsageType,
		ObjectStatementRefTemplate:  l.doc.ObjectStatementRefTemplate,
		ContextStatementRefTemplate: l.doc.ContextStatementRefTemplate,
		Rules:                       l.doc.Rules,

		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ScanProfileComponentLayer resolves or creates the in-memory model and
// applies the publish-legality matrix. References are not resolved here.
func (l *TemplateLayer) ScanProfileComponentLayer(ctx context.Context) (*models.Template, error) {
	templateIRI, err := l.resolveIRI()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	existing, err := l.store.FindTemplateByIRI(ctx, templateIRI)
	if err != nil {
		return nil, err
	}

	switch l.status {
	case models.VersionStatusNew:
		if existing != nil {
			return nil, apperr.Conflictf("template %s already exists on the server", templateIRI)
		}
		l.model = l.build(templateIRI, now)

	case models.VersionStatusDraft:
		if existing == nil {
			l.model = l.build(templateIRI, now)
			break
		}
		incoming := l.build(templateIRI, now)
		incoming.OwnerVersionIRI = existing.OwnerVersionIRI
		incoming.CreatedAt = existing.CreatedAt
		l.model = incoming

	case models.VersionStatusPublished:
		if existing == nil {
			return nil, apperr.Validationf("template %s does not exist and cannot be added to published version %s", templateIRI, l.parent.IRI)
		}
		incoming := l.build(templateIRI, now)
		if violations := PublishedTemplateViolations(existing, incoming); len(violations) > 0 {
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

// determiningProperty describes one concept-referencing template field and
// the concept kind it must resolve to.
type determiningProperty struct {
	name string
	kind models.ConceptType
	refs []string
}

func (l *TemplateLayer) determiningProperties() []determiningProperty {
	t := l.model
	props := []determiningProperty{
		{"contextGroupingActivityType", models.ConceptTypeActivityType, t.ContextGroupingActivityType},
		{"contextParentActivityType", models.ConceptTypeActivityType, t.ContextParentActivityType},
		{"contextOtherActivityType", models.ConceptTypeActivityType, t.ContextOtherActivityType},
		{"contextCategoryActivityType", models.ConceptTypeActivityType, t.ContextCategoryActivityType},
		{"attachmentUsageType", models.ConceptTypeAttachmentUsageType, t.AttachmentUsageType},
	}
	if t.Verb != nil {
		props = append(props, determiningProperty{"verb", models.ConceptTypeVerb, []string{*t.Verb}})
	}
	if t.ObjectActivityType != nil {
		props = append(props, determiningProperty{"objectActivityType", models.ConceptTypeActivityType, []string{*t.ObjectActivityType}})
	}
	return props
}

// ScanSubcomponentLayer resolves the template's cross-references. Each
// determining-property reference is looked up first among the concepts
// imported in the same version document, then in the persistent store.
// Statement-reference entries must resolve within the same version's
// template list.
func (l *TemplateLayer) ScanSubcomponentLayer(ctx context.Context, profileConcepts map[string]*models.Concept, profileTemplates map[string]*models.Template) error {
	t := l.model

	// Mutual exclusion is checked before any reference resolution.
	if t.ObjectActivityType != nil && len(t.ObjectStatementRefTemplate) > 0 {
		return apperr.Validationf("template %s cannot have both an objectActivityType and an objectStatementRefTemplate", t.IRI)
	}

	for _, prop := range l.determiningProperties() {
		for _, ref := range prop.refs {
			concept, err := l.resolver.ResolveConcept(ctx, ref, profileConcepts)
			if err != nil {
				return err
			}
			if concept == nil {
				return apperr.Validationf("%s cannot be a %s for this template because it does not exist on the server or in this document", ref, prop.name)
			}
			if concept.Type != prop.kind {
				return apperr.Validationf("%s cannot be the %s for template %s because it is type %s", ref, prop.name, t.IRI, concept.Type)
			}
		}
	}

	for _, field := range []struct {
		name string
		refs []string
	}{
		{"objectStatementRefTemplate", t.ObjectStatementRefTemplate},
		{"contextStatementRefTemplate", t.ContextStatementRefTemplate},
	} {
		for _, ref := range field.refs {
			if _, ok := profileTemplates[ref]; !ok {
				return apperr.Validationf("%s cannot be a %s for template %s because it is not part of the same profile version", ref, field.name, t.IRI)
			}
		}
	}
	return nil
}
