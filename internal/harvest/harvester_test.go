package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-registry/backend/internal/importer"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

const (
	profileIRI = "https://x.org/p"
	versionIRI = "https://x.org/p/v/1"
)

func seededHarvester(t *testing.T, concepts ...*models.Concept) *Harvester {
	t.Helper()
	store := repository.NewMemoryStore()
	err := store.SaveImport(context.Background(), &repository.ImportBatch{
		Profile:  &models.Profile{IRI: profileIRI},
		Version:  &models.ProfileVersion{IRI: versionIRI, ProfileIRI: profileIRI, Number: 1},
		Concepts: concepts,
	})
	require.NoError(t, err)
	resolver := importer.NewResolver(store, importer.NopCache[*models.Concept]{}, importer.NopCache[*models.Template]{})
	return NewHarvester(resolver)
}

func targetVersion(linked ...string) *models.ProfileVersion {
	return &models.ProfileVersion{
		IRI:        versionIRI,
		ProfileIRI: profileIRI,
		Number:     1,
		Concepts:   linked,
	}
}

func TestMatchConceptNo(t *testing.T) {
	h := seededHarvester(t)
	doc := models.ConceptDocument{
		ID:        "https://elsewhere.org/verbs/unknown",
		Type:      models.ConceptTypeVerb,
		PrefLabel: models.LanguageMap{"en": "unknown"},
	}

	match, err := h.MatchConcept(context.Background(), doc, targetVersion())
	require.NoError(t, err)
	assert.Equal(t, models.MatchNo, match.Type)
	require.NotNil(t, match.Candidate)
	assert.Equal(t, doc.ID, match.Candidate.IRI)
	assert.Nil(t, match.Concept)
}

func TestMatchConceptParentless(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:      "https://x.org/p/verbs/did",
		Type:     models.ConceptTypeVerb,
		Orphaned: &models.OrphanInfo{FormerOwner: "https://x.org/p/v/0", OrphanedAt: time.Now().UTC()},
	})

	match, err := h.MatchConcept(context.Background(), models.ConceptDocument{ID: "https://x.org/p/verbs/did"}, targetVersion())
	require.NoError(t, err)
	assert.Equal(t, models.MatchParentless, match.Type)
	assert.NotNil(t, match.Concept)
}

func TestMatchConceptDeprecated(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:        "https://x.org/p/verbs/did",
		Type:       models.ConceptTypeVerb,
		Deprecated: true,
	})

	match, err := h.MatchConcept(context.Background(), models.ConceptDocument{ID: "https://x.org/p/verbs/did"}, targetVersion())
	require.NoError(t, err)
	assert.Equal(t, models.MatchDeprecated, match.Type)
}

func TestMatchConceptInProfile(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:       "https://x.org/p/verbs/did",
		Type:      models.ConceptTypeVerb,
		PrefLabel: models.LanguageMap{"en": "did"},
	})
	doc := models.ConceptDocument{
		ID:        "https://x.org/p/verbs/did",
		PrefLabel: models.LanguageMap{"en": "did", "fr": "fait"},
	}

	match, err := h.MatchConcept(context.Background(), doc, targetVersion("https://x.org/p/verbs/did"))
	require.NoError(t, err)
	assert.Equal(t, models.MatchInProfile, match.Type)
	require.NotNil(t, match.Diff)
	require.Len(t, match.Diff.Changes, 1)
	assert.Equal(t, "fr", match.Diff.Changes[0].Lang)
}

func TestMatchConceptYes(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:       "https://x.org/p/verbs/did",
		Type:      models.ConceptTypeVerb,
		PrefLabel: models.LanguageMap{"en": "did"},
	})

	match, err := h.MatchConcept(context.Background(), models.ConceptDocument{
		ID:        "https://x.org/p/verbs/did",
		PrefLabel: models.LanguageMap{"en": "did"},
	}, targetVersion())
	require.NoError(t, err)
	assert.Equal(t, models.MatchYes, match.Type)
	assert.Nil(t, match.Diff, "identical text must not produce a diff")
}

// Deprecation wins over linkage: a deprecated concept already in the profile
// still classifies as deprecated.
func TestMatchConceptDeprecatedBeatsInProfile(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:        "https://x.org/p/verbs/did",
		Type:       models.ConceptTypeVerb,
		Deprecated: true,
	})

	match, err := h.MatchConcept(context.Background(), models.ConceptDocument{ID: "https://x.org/p/verbs/did"}, targetVersion("https://x.org/p/verbs/did"))
	require.NoError(t, err)
	assert.Equal(t, models.MatchDeprecated, match.Type)
}

func TestHarvestStatementConceptsExtractsVerbAndActivity(t *testing.T) {
	h := seededHarvester(t, &models.Concept{
		IRI:       "https://x.org/p/verbs/did",
		Type:      models.ConceptTypeVerb,
		PrefLabel: models.LanguageMap{"en": "did"},
	})
	st := models.StatementDocument{
		Verb: models.StatementVerb{
			ID:      "https://x.org/p/verbs/did",
			Display: models.LanguageMap{"en": "did"},
		},
		Object: models.StatementObject{
			ID:         "https://x.org/p/activities/lesson-1",
			ObjectType: "Activity",
			Definition: &models.ActivityDefinition{
				Name: models.LanguageMap{"en": "Lesson 1"},
			},
		},
	}

	out, err := h.HarvestStatementConcepts(context.Background(), st, targetVersion())
	require.NoError(t, err)

	require.NotNil(t, out.Verb)
	assert.Equal(t, models.MatchYes, out.Verb.Match.Type)

	require.NotNil(t, out.ActivityType)
	assert.Equal(t, models.MatchNo, out.ActivityType.Match.Type)
	assert.Equal(t, "Lesson 1", out.ActivityType.Document.PrefLabel["en"])
}

func TestHarvestStatementConceptsSkipsNonActivityObjects(t *testing.T) {
	h := seededHarvester(t)
	st := models.StatementDocument{
		Verb: models.StatementVerb{ID: "https://x.org/p/verbs/did"},
		Object: models.StatementObject{
			ID:         "https://example.org/agents/somebody",
			ObjectType: "Agent",
		},
	}

	out, err := h.HarvestStatementConcepts(context.Background(), st, targetVersion())
	require.NoError(t, err)
	assert.NotNil(t, out.Verb)
	assert.Nil(t, out.ActivityType)
}
