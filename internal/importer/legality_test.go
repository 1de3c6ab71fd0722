package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"profile-registry/backend/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestPublishedTemplateViolations(t *testing.T) {
	base := func() *models.Template {
		return &models.Template{
			IRI:                         "https://x.org/p/templates/t1",
			Verb:                        strPtr("https://x.org/p/verbs/did"),
			ContextGroupingActivityType: []string{"https://x.org/p/activity-types/a"},
			Rules: []models.Rule{
				{Location: "$.result.score", Presence: models.RulePresenceIncluded},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Template)
		want   []Violation
	}{
		{
			name:   "no change",
			mutate: func(*models.Template) {},
			want:   nil,
		},
		{
			name:   "verb updated",
			mutate: func(in *models.Template) { in.Verb = strPtr("https://x.org/p/verbs/other") },
			want: []Violation{
				{Field: "verb", Change: ChangeUpdated, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name:   "verb deleted",
			mutate: func(in *models.Template) { in.Verb = nil },
			want: []Violation{
				{Field: "verb", Change: ChangeDeleted, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name:   "objectActivityType added",
			mutate: func(in *models.Template) { in.ObjectActivityType = strPtr("https://x.org/p/activity-types/a") },
			want: []Violation{
				{Field: "objectActivityType", Change: ChangeAdded, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name: "array entry added",
			mutate: func(in *models.Template) {
				in.ContextGroupingActivityType = append(in.ContextGroupingActivityType, "https://x.org/p/activity-types/b")
			},
			want: []Violation{
				{Field: "contextGroupingActivityType", Change: ChangeAdded, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name:   "array entry removed",
			mutate: func(in *models.Template) { in.ContextGroupingActivityType = nil },
			want: []Violation{
				{Field: "contextGroupingActivityType", Change: ChangeDeleted, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name: "array entry swapped reports add and delete",
			mutate: func(in *models.Template) {
				in.ContextGroupingActivityType = []string{"https://x.org/p/activity-types/b"}
			},
			want: []Violation{
				{Field: "contextGroupingActivityType", Change: ChangeAdded, Kind: "template", IRI: "https://x.org/p/templates/t1"},
				{Field: "contextGroupingActivityType", Change: ChangeDeleted, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name:   "rule mutated",
			mutate: func(in *models.Template) { in.Rules[0].Presence = models.RulePresenceExcluded },
			want: []Violation{
				{Field: "rules", Change: ChangeUpdated, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name:   "rule removed",
			mutate: func(in *models.Template) { in.Rules = nil },
			want: []Violation{
				{Field: "rules", Change: ChangeDeleted, Kind: "template", IRI: "https://x.org/p/templates/t1"},
			},
		},
		{
			name: "translations and deprecation are always legal",
			mutate: func(in *models.Template) {
				in.PrefLabel = models.LanguageMap{"en": "renamed", "de": "umbenannt"}
				in.Deprecated = true
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := base()
			incoming := base()
			tt.mutate(incoming)
			got := PublishedTemplateViolations(stored, incoming)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestRulesEmptyAbsentEquivalence(t *testing.T) {
	iri := "https://x.org/p/templates/t1"
	assert.Nil(t, rulesChange("template", iri, nil, []models.Rule{}))
	assert.Nil(t, rulesChange("template", iri, []models.Rule{}, nil))
}

func TestPublishedConceptViolations(t *testing.T) {
	stored := &models.Concept{
		IRI:       "https://x.org/p/verbs/did",
		Type:      models.ConceptTypeVerb,
		PrefLabel: models.LanguageMap{"en": "did"},
	}

	incoming := &models.Concept{
		IRI:       stored.IRI,
		Type:      models.ConceptTypeActivityType,
		PrefLabel: models.LanguageMap{"en": "did", "fr": "fait"},
	}
	got := PublishedConceptViolations(stored, incoming)
	assert.Equal(t, []Violation{
		{Field: "conceptType", Change: ChangeUpdated, Kind: "concept", IRI: stored.IRI},
	}, got)

	// Translation-only edits report nothing.
	incoming.Type = stored.Type
	assert.Empty(t, PublishedConceptViolations(stored, incoming))
}

func TestPublishedPatternViolations(t *testing.T) {
	stored := &models.Pattern{
		IRI:      "https://x.org/p/patterns/p1",
		Type:     models.PatternTypeSequence,
		Primary:  true,
		Sequence: []string{"https://x.org/p/templates/t1"},
	}
	incoming := &models.Pattern{
		IRI:      stored.IRI,
		Type:     models.PatternTypeSequence,
		Primary:  true,
		Sequence: []string{"https://x.org/p/templates/t1", "https://x.org/p/templates/t2"},
	}
	got := PublishedPatternViolations(stored, incoming)
	assert.Equal(t, []Violation{
		{Field: "sequence", Change: ChangeAdded, Kind: "pattern", IRI: stored.IRI},
	}, got)
}

func TestViolationMessage(t *testing.T) {
	v := Violation{Field: "verb", Change: ChangeUpdated, Kind: "template", IRI: "https://x.org/p/templates/t1"}
	assert.Equal(t, "verb cannot be updated on published template https://x.org/p/templates/t1.", v.Message())
}
