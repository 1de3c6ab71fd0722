package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/importer"
	"profile-registry/backend/internal/logging"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

const testProfileIRI = "https://x.org/p"

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*ProfileService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	resolver := importer.NewResolver(store, importer.NopCache[*models.Concept]{}, importer.NopCache[*models.Template]{})
	svc, err := NewProfileService(store, resolver, logging.NewLogger())
	require.NoError(t, err)
	return svc, store
}

func testOrg(t *testing.T, store *repository.MemoryStore) *models.Organization {
	t.Helper()
	org := &models.Organization{ID: "org-1", Name: "Test Org"}
	require.NoError(t, store.CreateOrganization(context.Background(), org))
	return org
}

func sampleDocument(number int) models.ProfileDocument {
	return models.ProfileDocument{
		ID: testProfileIRI,
		Version: models.VersionDocument{
			Number: number,
			Concepts: []models.ConceptDocument{
				{Type: models.ConceptTypeVerb, PrefLabel: models.LanguageMap{"en": "did"}},
			},
		},
	}
}

func TestImportProfileCreatesDraft(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	result, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	assert.Equal(t, models.VersionStatusNew, result.Status)
	assert.Equal(t, testProfileIRI, result.ProfileIRI)
	assert.Equal(t, testProfileIRI+"/v/1", result.VersionIRI)
	assert.Equal(t, 1, result.Concepts)

	profile, err := svc.GetProfile(context.Background(), testProfileIRI)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CurrentVersionNumber)
	require.NotNil(t, profile.CurrentDraftVersion)
	assert.Equal(t, result.VersionIRI, *profile.CurrentDraftVersion)
	assert.Equal(t, org.ID, profile.OrganizationID)
}

func TestImportProfileUnknownProfileWithoutOrg(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), nil)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestImportProfileDraftReimportIsStable(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	first, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	before, err := store.FindConceptByIRI(context.Background(), testProfileIRI+"/verbs/did")
	require.NoError(t, err)

	second, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	assert.Equal(t, models.VersionStatusDraft, second.Status)
	assert.Equal(t, first.VersionIRI, second.VersionIRI)

	profile, err := svc.GetProfile(context.Background(), testProfileIRI)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CurrentVersionNumber)

	// The stored model must come out field-for-field identical.
	after, err := store.FindConceptByIRI(context.Background(), testProfileIRI+"/verbs/did")
	require.NoError(t, err)
	assert.Equal(t, before.IRI, after.IRI)
	assert.Equal(t, before.Type, after.Type)
	assert.Equal(t, before.PrefLabel, after.PrefLabel)
	assert.Equal(t, before.Definition, after.Definition)
	assert.Equal(t, before.Deprecated, after.Deprecated)
	assert.Equal(t, before.OwnerVersionIRI, after.OwnerVersionIRI)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	version, err := store.FindVersionByIRI(context.Background(), first.VersionIRI)
	require.NoError(t, err)
	assert.Equal(t, []string{testProfileIRI + "/verbs/did"}, version.Concepts)
}

func TestGetVersionListsOwnedTemplates(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	doc := models.ProfileDocument{
		ID: testProfileIRI,
		Version: models.VersionDocument{
			Number: 1,
			Concepts: []models.ConceptDocument{
				{ID: testProfileIRI + "/verbs/did", Type: models.ConceptTypeVerb, PrefLabel: models.LanguageMap{"en": "did"}},
			},
			Templates: []models.TemplateDocument{
				{ID: testProfileIRI + "/templates/t1", Verb: strPtr(testProfileIRI + "/verbs/did")},
			},
		},
	}
	result, err := svc.ImportProfile(context.Background(), doc, org)
	require.NoError(t, err)

	detail, err := svc.GetVersion(context.Background(), testProfileIRI, 1)
	require.NoError(t, err)
	assert.Equal(t, result.VersionIRI, detail.Version.IRI)
	require.Len(t, detail.Templates, 1)
	assert.Equal(t, testProfileIRI+"/templates/t1", detail.Templates[0].IRI)

	_, err = svc.GetVersion(context.Background(), testProfileIRI, 7)
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPublishVersion(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	version, err := svc.PublishVersion(context.Background(), testProfileIRI, 1)
	require.NoError(t, err)
	assert.Equal(t, models.VersionStatePublished, version.State)
	require.NotNil(t, version.PublishedAt)

	profile, err := svc.GetProfile(context.Background(), testProfileIRI)
	require.NoError(t, err)
	assert.Nil(t, profile.CurrentDraftVersion)
	require.NotNil(t, profile.CurrentPublishedVersion)
	assert.Equal(t, version.IRI, *profile.CurrentPublishedVersion)

	// Publishing twice is a conflict.
	_, err = svc.PublishVersion(context.Background(), testProfileIRI, 1)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestPublishThenOpenNextDraft(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)
	published, err := svc.PublishVersion(context.Background(), testProfileIRI, 1)
	require.NoError(t, err)

	result, err := svc.ImportProfile(context.Background(), models.ProfileDocument{
		ID: testProfileIRI,
		Version: models.VersionDocument{
			Number: 2,
			Concepts: []models.ConceptDocument{
				{Type: models.ConceptTypeVerb, PrefLabel: models.LanguageMap{"en": "completed"}},
			},
		},
	}, org)
	require.NoError(t, err)
	assert.Equal(t, models.VersionStatusNew, result.Status)

	version, err := store.FindVersionByIRI(context.Background(), result.VersionIRI)
	require.NoError(t, err)
	require.NotNil(t, version.WasRevisionOf)
	assert.Equal(t, published.IRI, *version.WasRevisionOf)
}

func TestDeleteVersionRejectsPublished(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)
	_, err = svc.PublishVersion(context.Background(), testProfileIRI, 1)
	require.NoError(t, err)

	err = svc.DeleteVersion(context.Background(), testProfileIRI, 1)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestDeleteDraftOrphansConcepts(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	result, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVersion(context.Background(), testProfileIRI, 1))

	version, err := store.FindVersionByIRI(context.Background(), result.VersionIRI)
	require.NoError(t, err)
	assert.Nil(t, version)

	concept, err := store.FindConceptByIRI(context.Background(), testProfileIRI+"/verbs/did")
	require.NoError(t, err)
	require.NotNil(t, concept)
	require.NotNil(t, concept.Orphaned)
	assert.Equal(t, result.VersionIRI, concept.Orphaned.FormerOwner)
	assert.Empty(t, concept.OwnerVersionIRI)

	profile, err := svc.GetProfile(context.Background(), testProfileIRI)
	require.NoError(t, err)
	assert.Nil(t, profile.CurrentDraftVersion)
}

func TestHarvestStatementsDraftOnly(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)
	_, err = svc.PublishVersion(context.Background(), testProfileIRI, 1)
	require.NoError(t, err)

	_, err = svc.HarvestStatements(context.Background(), testProfileIRI, 1, nil)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "draft")
}

func TestHarvestStatementsPersistsBatch(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	result, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	statements := []models.StatementDocument{
		{
			Verb: models.StatementVerb{ID: testProfileIRI + "/verbs/did", Display: models.LanguageMap{"en": "did"}},
			Object: models.StatementObject{
				ID:         "https://example.org/activities/lesson-1",
				ObjectType: "Activity",
			},
		},
	}
	data, err := svc.HarvestStatements(context.Background(), testProfileIRI, 1, statements)
	require.NoError(t, err)

	assert.NotEmpty(t, data.ID)
	assert.Equal(t, result.VersionIRI, data.VersionIRI)
	require.Len(t, data.Statements, 1)
	require.NotNil(t, data.Statements[0].Verb)
	assert.Equal(t, models.MatchInProfile, data.Statements[0].Verb.Match.Type)
	require.NotNil(t, data.Statements[0].ActivityType)
	assert.Equal(t, models.MatchNo, data.Statements[0].ActivityType.Match.Type)

	stored, err := store.GetHarvest(context.Background(), data.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestMatchConceptAgainstVersion(t *testing.T) {
	svc, store := newTestService(t)
	org := testOrg(t, store)

	_, err := svc.ImportProfile(context.Background(), sampleDocument(1), org)
	require.NoError(t, err)

	match, err := svc.MatchConcept(context.Background(), models.ConceptDocument{
		ID:   testProfileIRI + "/verbs/did",
		Type: models.ConceptTypeVerb,
	}, testProfileIRI, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchInProfile, match.Type)
}
