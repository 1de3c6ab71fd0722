package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/internal/repository"
	"profile-registry/backend/pkg/models"
)

func scanPattern(store *repository.MemoryStore, doc models.PatternDocument) (*PatternLayer, error) {
	layer := NewPatternLayer(doc, testVersion(), testProfileIRI, models.VersionStatusNew, store, newTestResolver(store))
	_, err := layer.ScanProfileComponentLayer(context.Background())
	return layer, err
}

func TestPatternLayerRequiresExactlyOneMemberField(t *testing.T) {
	store := repository.NewMemoryStore()

	_, err := scanPattern(store, models.PatternDocument{ID: "https://x.org/p/patterns/p1"})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "exactly one of")

	_, err = scanPattern(store, models.PatternDocument{
		ID:       "https://x.org/p/patterns/p1",
		Sequence: []string{"https://x.org/p/templates/t1"},
		Optional: strPtr("https://x.org/p/templates/t2"),
	})
	require.ErrorAs(t, err, &validation)
}

func TestPatternLayerImpliesTypeFromMembers(t *testing.T) {
	store := repository.NewMemoryStore()
	layer, err := scanPattern(store, models.PatternDocument{
		ID:         "https://x.org/p/patterns/p1",
		Alternates: []string{"https://x.org/p/templates/t1", "https://x.org/p/templates/t2"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PatternTypeAlternates, layer.Model().Type)
}

func TestPatternLayerRejectsTypeMemberDisagreement(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := scanPattern(store, models.PatternDocument{
		ID:       "https://x.org/p/patterns/p1",
		Type:     models.PatternTypeAlternates,
		Sequence: []string{"https://x.org/p/templates/t1"},
	})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "imply")
}

func TestPatternLayerRejectsSelfReference(t *testing.T) {
	store := repository.NewMemoryStore()
	layer, err := scanPattern(store, models.PatternDocument{
		ID:        "https://x.org/p/patterns/p1",
		OneOrMore: strPtr("https://x.org/p/patterns/p1"),
	})
	require.NoError(t, err)

	scanErr := layer.ScanSubcomponentLayer(context.Background(), nil, nil)
	var validation *apperr.ValidationError
	require.ErrorAs(t, scanErr, &validation)
	assert.Contains(t, scanErr.Error(), "cannot reference itself")
}

func TestPatternLayerResolvesMembersAsTemplateThenPattern(t *testing.T) {
	store := repository.NewMemoryStore()
	layer, err := scanPattern(store, models.PatternDocument{
		ID:       "https://x.org/p/patterns/p1",
		Sequence: []string{"https://x.org/p/templates/t1", "https://x.org/p/patterns/p2"},
	})
	require.NoError(t, err)

	templates := map[string]*models.Template{
		"https://x.org/p/templates/t1": {IRI: "https://x.org/p/templates/t1"},
	}
	patterns := map[string]*models.Pattern{
		"https://x.org/p/patterns/p2": {IRI: "https://x.org/p/patterns/p2"},
	}
	assert.NoError(t, layer.ScanSubcomponentLayer(context.Background(), templates, patterns))

	// An unresolvable member fails.
	broken, err := scanPattern(store, models.PatternDocument{
		ID:       "https://x.org/p/patterns/p3",
		Sequence: []string{"https://x.org/p/templates/gone"},
	})
	require.NoError(t, err)
	scanErr := broken.ScanSubcomponentLayer(context.Background(), nil, nil)
	var validation *apperr.ValidationError
	require.ErrorAs(t, scanErr, &validation)
	assert.Contains(t, scanErr.Error(), "cannot be a member of pattern")
}
