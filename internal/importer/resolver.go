package importer

import (
	"context"

	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

// Resolver looks up concepts and templates by IRI, first within a supplied
// in-flight candidate set (the version document currently being imported),
// then through its cache, then in the persistent store. Lookups never
// mutate shared state, so concurrent reads are safe.
type Resolver struct {
	store     repository.ProfileStore
	concepts  Cache[*models.Concept]
	templates Cache[*models.Template]
}

// NewResolver builds a resolver around a store and caches. Pass NopCache
// instances to disable caching.
func NewResolver(store repository.ProfileStore, concepts Cache[*models.Concept], templates Cache[*models.Template]) *Resolver {
	return &Resolver{store: store, concepts: concepts, templates: templates}
}

// ResolveConcept returns the concept with the given IRI, nil when it exists
// nowhere. inFlight entries win over stored models so that components
// declared in the same document resolve before they are persisted.
func (r *Resolver) ResolveConcept(ctx context.Context, iri string, inFlight map[string]*models.Concept) (*models.Concept, error) {
	if c, ok := inFlight[iri]; ok {
		return c, nil
	}
	if c, ok := r.concepts.Get(iri); ok {
		return c, nil
	}
	c, err := r.store.FindConceptByIRI(ctx, iri)
	if err != nil {
		return nil, err
	}
	if c != nil {
		r.concepts.Add(iri, c)
	}
	return c, nil
}

// ResolveTemplate returns the template with the given IRI, nil when it
// exists nowhere.
func (r *Resolver) ResolveTemplate(ctx context.Context, iri string, inFlight map[string]*models.Template) (*models.Template, error) {
	if t, ok := inFlight[iri]; ok {
		return t, nil
	}
	if t, ok := r.templates.Get(iri); ok {
		return t, nil
	}
	t, err := r.store.FindTemplateByIRI(ctx, iri)
	if err != nil {
		return nil, err
	}
	if t != nil {
		r.templates.Add(iri, t)
	}
	return t, nil
}

// ResolvePattern returns the pattern with the given IRI, nil when it exists
// nowhere. Pattern lookups are rare enough that they skip the cache.
func (r *Resolver) ResolvePattern(ctx context.Context, iri string, inFlight map[string]*models.Pattern) (*models.Pattern, error) {
	if p, ok := inFlight[iri]; ok {
		return p, nil
	}
	return r.store.FindPatternByIRI(ctx, iri)
}
