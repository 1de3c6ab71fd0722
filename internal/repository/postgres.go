package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"profile-registry/backend/pkg/models"
)

// Schema creates the tables the store needs. Component models are stored as
// JSONB documents keyed by IRI; columns exist only for what the engine
// filters on.
const Schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
	iri TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS profile_versions (
	iri TEXT PRIMARY KEY,
	profile_iri TEXT NOT NULL,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS concepts (
	iri TEXT PRIMARY KEY,
	owner_version_iri TEXT,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS templates (
	iri TEXT PRIMARY KEY,
	owner_version_iri TEXT,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS patterns (
	iri TEXT PRIMARY KEY,
	owner_version_iri TEXT,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS harvest_data (
	id TEXT PRIMARY KEY,
	version_iri TEXT NOT NULL,
	doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_versions_profile ON profile_versions (profile_iri);
CREATE INDEX IF NOT EXISTS idx_concepts_owner ON concepts (owner_version_iri);
CREATE INDEX IF NOT EXISTS idx_templates_owner ON templates (owner_version_iri);
CREATE INDEX IF NOT EXISTS idx_harvest_version ON harvest_data (version_iri);
`

// PostgresProfileStore is a PostgreSQL implementation of the ProfileStore
// interface.
type PostgresProfileStore struct {
	db *pgxpool.Pool
}

// NewPostgresProfileStore creates a new PostgresProfileStore.
func NewPostgresProfileStore(db *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// EnsureSchema creates the store tables if they do not exist.
func (s *PostgresProfileStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

func upsert(ctx context.Context, tx pgx.Tx, table, key string, extra map[string]string, model any) error {
	doc, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", table, err)
	}
	switch table {
	case "concepts", "templates", "patterns":
		_, err = tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (iri, owner_version_iri, doc) VALUES ($1, $2, $3)
				ON CONFLICT (iri) DO UPDATE SET owner_version_iri = $2, doc = $3`, table),
			key, extra["owner"], doc)
	case "profile_versions":
		_, err = tx.Exec(ctx,
			`INSERT INTO profile_versions (iri, profile_iri, doc) VALUES ($1, $2, $3)
				ON CONFLICT (iri) DO UPDATE SET doc = $3`,
			key, extra["profile"], doc)
	default:
		_, err = tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (iri, doc) VALUES ($1, $2)
				ON CONFLICT (iri) DO UPDATE SET doc = $2`, table),
			key, doc)
	}
	return err
}

func findDoc[T any](ctx context.Context, db *pgxpool.Pool, query, key string) (*T, error) {
	var doc []byte
	err := db.QueryRow(ctx, query, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var model T
	if err := json.Unmarshal(doc, &model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored document: %w", err)
	}
	return &model, nil
}

// CreateOrganization stores an organization.
func (s *PostgresProfileStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	doc, err := json.Marshal(org)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO organizations (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = $2`,
		org.ID, doc)
	return err
}

// GetOrganization fetches an organization by id, nil when absent.
func (s *PostgresProfileStore) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return findDoc[models.Organization](ctx, s.db, `SELECT doc FROM organizations WHERE id = $1`, id)
}

// FindProfileByIRI fetches a profile, nil when absent.
func (s *PostgresProfileStore) FindProfileByIRI(ctx context.Context, iri string) (*models.Profile, error) {
	return findDoc[models.Profile](ctx, s.db, `SELECT doc FROM profiles WHERE iri = $1`, iri)
}

// FindVersionByIRI fetches a version, nil when absent.
func (s *PostgresProfileStore) FindVersionByIRI(ctx context.Context, iri string) (*models.ProfileVersion, error) {
	return findDoc[models.ProfileVersion](ctx, s.db, `SELECT doc FROM profile_versions WHERE iri = $1`, iri)
}

// FindConceptByIRI fetches a concept, nil when absent.
func (s *PostgresProfileStore) FindConceptByIRI(ctx context.Context, iri string) (*models.Concept, error) {
	return findDoc[models.Concept](ctx, s.db, `SELECT doc FROM concepts WHERE iri = $1`, iri)
}

// FindTemplateByIRI fetches a template, nil when absent.
func (s *PostgresProfileStore) FindTemplateByIRI(ctx context.Context, iri string) (*models.Template, error) {
	return findDoc[models.Template](ctx, s.db, `SELECT doc FROM templates WHERE iri = $1`, iri)
}

// FindPatternByIRI fetches a pattern, nil when absent.
func (s *PostgresProfileStore) FindPatternByIRI(ctx context.Context, iri string) (*models.Pattern, error) {
	return findDoc[models.Pattern](ctx, s.db, `SELECT doc FROM patterns WHERE iri = $1`, iri)
}

// ListTemplatesByVersion returns every template owned by the version.
func (s *PostgresProfileStore) ListTemplatesByVersion(ctx context.Context, versionIRI string) ([]*models.Template, error) {
	rows, err := s.db.Query(ctx, `SELECT doc FROM templates WHERE owner_version_iri = $1`, versionIRI)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t models.Template
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// SaveImport persists a reconciled batch in one transaction. The scan phase
// has already validated everything, so a failure here rolls back the whole
// document.
func (s *PostgresProfileStore) SaveImport(ctx context.Context, batch *ImportBatch) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := upsert(ctx, tx, "profiles", batch.Profile.IRI, nil, batch.Profile); err != nil {
		return err
	}
	if err := upsert(ctx, tx, "profile_versions", batch.Version.IRI,
		map[string]string{"profile": batch.Profile.IRI}, batch.Version); err != nil {
		return err
	}
	for _, c := range batch.Concepts {
		if err := upsert(ctx, tx, "concepts", c.IRI, map[string]string{"owner": c.OwnerVersionIRI}, c); err != nil {
			return err
		}
	}
	for _, t := range batch.Templates {
		if err := upsert(ctx, tx, "templates", t.IRI, map[string]string{"owner": t.OwnerVersionIRI}, t); err != nil {
			return err
		}
	}
	for _, p := range batch.Patterns {
		if err := upsert(ctx, tx, "patterns", p.IRI, map[string]string{"owner": p.OwnerVersionIRI}, p); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// MarkPublished flips a version to published and moves the profile's draft
// pointer to its published pointer.
func (s *PostgresProfileStore) MarkPublished(ctx context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error {
	version.State = models.VersionStatePublished
	version.PublishedAt = &at
	version.UpdatedAt = at
	profile.CurrentDraftVersion = nil
	profile.CurrentPublishedVersion = &version.IRI
	profile.UpdatedAt = at

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := upsert(ctx, tx, "profiles", profile.IRI, nil, profile); err != nil {
		return err
	}
	if err := upsert(ctx, tx, "profile_versions", version.IRI,
		map[string]string{"profile": profile.IRI}, version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteVersion removes a draft version. Owned templates and patterns are
// deleted; owned concepts are orphaned because published templates in other
// profiles may still reference them.
func (s *PostgresProfileStore) DeleteVersion(ctx context.Context, profile *models.Profile, version *models.ProfileVersion, at time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM templates WHERE owner_version_iri = $1`, version.IRI); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM patterns WHERE owner_version_iri = $1`, version.IRI); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM harvest_data WHERE version_iri = $1`, version.IRI); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT doc FROM concepts WHERE owner_version_iri = $1`, version.IRI)
	if err != nil {
		return err
	}
	var orphans []*models.Concept
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			rows.Close()
			return err
		}
		var c models.Concept
		if err := json.Unmarshal(doc, &c); err != nil {
			rows.Close()
			return err
		}
		orphans = append(orphans, &c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, c := range orphans {
		c.Orphaned = &models.OrphanInfo{FormerOwner: version.IRI, OrphanedAt: at}
		c.OwnerVersionIRI = ""
		c.UpdatedAt = at
		if err := upsert(ctx, tx, "concepts", c.IRI, map[string]string{"owner": ""}, c); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM profile_versions WHERE iri = $1`, version.IRI); err != nil {
		return err
	}

	if profile.CurrentDraftVersion != nil && *profile.CurrentDraftVersion == version.IRI {
		profile.CurrentDraftVersion = nil
	}
	profile.UpdatedAt = at
	if err := upsert(ctx, tx, "profiles", profile.IRI, nil, profile); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveHarvest stores a harvest batch.
func (s *PostgresProfileStore) SaveHarvest(ctx context.Context, data *models.HarvestData) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO harvest_data (id, version_iri, doc) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET doc = $3`,
		data.ID, data.VersionIRI, doc)
	return err
}

// GetHarvest fetches a harvest batch by id, nil when absent.
func (s *PostgresProfileStore) GetHarvest(ctx context.Context, id string) (*models.HarvestData, error) {
	return findDoc[models.HarvestData](ctx, s.db, `SELECT doc FROM harvest_data WHERE id = $1`, id)
}
