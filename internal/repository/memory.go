package repository

import (
	"context"
	"sync"
	"time"

	"profile-registry/backend/pkg/models"
)

// MemoryStore is a thread-safe in-memory ProfileStore used by tests and the
// import dry-run path.
type MemoryStore struct {
	mu        sync.RWMutex
	orgs      map[string]*models.Organization
	profiles  map[string]*models.Profile
	versions  map[string]*models.ProfileVersion
	concepts  map[string]*models.Concept
	templates map[string]*models.Template
	patterns  map[string]*models.Pattern
	harvests  map[string]*models.HarvestData
}

// NewMemoryStore initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:      make(map[string]*models.Organization),
		profiles:  make(map[string]*models.Profile),
		versions:  make(map[string]*models.ProfileVersion),
		concepts:  make(map[string]*models.Concept),
		templates: make(map[string]*models.Template),
		patterns:  make(map[string]*models.Pattern),
		harvests:  make(map[string]*models.HarvestData),
	}
}

// CreateOrganization stores an organization.
func (m *MemoryStore) CreateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
	return nil
}

// GetOrganization fetches an organization by id.
func (m *MemoryStore) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orgs[id], nil
}

// FindProfileByIRI fetches a profile, nil when absent.
func (m *MemoryStore) FindProfileByIRI(_ context.Context, iri string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[iri], nil
}

// FindVersionByIRI fetches a version, nil when absent.
func (m *MemoryStore) FindVersionByIRI(_ context.Context, iri string) (*models.ProfileVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[iri], nil
}

// FindConceptByIRI fetches a concept, nil when absent.
func (m *MemoryStore) FindConceptByIRI(_ context.Context, iri string) (*models.Concept, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.concepts[iri], nil
}

// FindTemplateByIRI fetches a template, nil when absent.
func (m *MemoryStore) FindTemplateByIRI(_ context.Context, iri string) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates[iri], nil
}

// FindPatternByIRI fetches a pattern, nil when absent.
func (m *MemoryStore) FindPatternByIRI(_ context.Context, iri string) (*models.Pattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.patterns[iri], nil
}

// ListTemplatesByVersion returns every template owned by the version.
func (m *MemoryStore) ListTemplatesByVersion(_ context.Context, versionIRI string) ([]*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Template
	for _, t := range m.templates {
		if t.OwnerVersionIRI == versionIRI {
			out = append(out, t)
		}
	}
	return out, nil
}

// SaveImport persists a reconciled batch.
func (m *MemoryStore) SaveImport(_ context.Context, batch *ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[batch.Profile.IRI] = batch.Profile
	m.versions[batch.Version.IRI] = batch.Version
	for _, c := range batch.Concepts {
		m.concepts[c.IRI] = c
	}
	for _, t := range batch.Templates {
		m.templates[t.IRI] = t
	}
	for _, p := range batch.Patterns {
		m.patterns[p.IRI] = p
	}
	return nil
}

// MarkPublished flips a version to published.
func (m *MemoryStore) MarkPublished(_ context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	version.State = models.VersionStatePublished
	version.PublishedAt = &at
	version.UpdatedAt = at
	profile.CurrentDraftVersion = nil
	profile.CurrentPublishedVersion = &version.IRI
	profile.UpdatedAt = at
	m.versions[version.IRI] = version
	m.profiles[profile.IRI] = profile
	return nil
}

// DeleteVersion removes a version, deleting owned templates/patterns and
// orphaning owned concepts.
func (m *MemoryStore) DeleteVersion(_ context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iri := range version.Templates {
		if t := m.templates[iri]; t != nil && t.OwnerVersionIRI == version.IRI {
			delete(m.templates, iri)
		}
	}
	for _, iri := range version.Patterns {
		if p := m.patterns[iri]; p != nil && p.OwnerVersionIRI == version.IRI {
			delete(m.patterns, iri)
		}
	}
	for _, iri := range version.Concepts {
		if c := m.concepts[iri]; c != nil && c.OwnerVersionIRI == version.IRI {
			c.Orphaned = &models.OrphanInfo{FormerOwner: version.IRI, OrphanedAt: at}
			c.OwnerVersionIRI = ""
			c.UpdatedAt = at
		}
	}
	for id, h := range m.harvests {
		if h.VersionIRI == version.IRI {
			delete(m.harvests, id)
		}
	}
	delete(m.versions, version.IRI)
	if profile.CurrentDraftVersion != nil && *profile.CurrentDraftVersion == version.IRI {
		profile.CurrentDraftVersion = nil
	}
	profile.UpdatedAt = at
	m.profiles[profile.IRI] = profile
	return nil
}

// SaveHarvest stores a harvest batch.
func (m *MemoryStore) SaveHarvest(_ context.Context, data *models.HarvestData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.harvests[data.ID] = data
	return nil
}

// GetHarvest fetches a harvest batch by id, nil when absent.
func (m *MemoryStore) GetHarvest(_ context.Context, id string) (*models.HarvestData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.harvests[id], nil
}
