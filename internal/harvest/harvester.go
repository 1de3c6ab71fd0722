// Package harvest classifies externally observed statement fragments
// against a profile version's known concepts.
package harvest

import (
	"context"

	"profile-registry/backend/internal/importer"
	"profile-registry/backend/pkg/models"
)

// Harvester matches harvested concept candidates through the shared
// resolver. It is side-effect free: a pure function of its inputs plus the
// read-only resolver lookups.
type Harvester struct {
	resolver *importer.Resolver
}

// NewHarvester builds a harvester around the shared resolver.
func NewHarvester(resolver *importer.Resolver) *Harvester {
	return &Harvester{resolver: resolver}
}

// placeholder builds a minimal concept model from a raw candidate document
// for UI preview when nothing stored matches.
func placeholder(doc models.ConceptDocument) *models.Concept {
	return &models.Concept{
		IRI:        doc.ID,
		Type:       doc.Type,
		PrefLabel:  doc.PrefLabel.Clone(),
		Definition: doc.Definition.Clone(),
	}
}

// diff compares the candidate's text fields against the stored model.
// Returns nil when nothing differs. A non-empty diff on a usable concept is
// what consumers render as a partial match.
func diff(stored *models.Concept, doc models.ConceptDocument) *models.ConceptDiff {
	var changes []models.FieldChange
	for field, pair := range map[string][2]models.LanguageMap{
		"prefLabel":  {stored.PrefLabel, doc.PrefLabel},
		"definition": {stored.Definition, doc.Definition},
	} {
		storedMap, incomingMap := pair[0], pair[1]
		for lang, incoming := range incomingMap {
			if storedVal, ok := storedMap[lang]; !ok || storedVal != incoming {
				changes = append(changes, models.FieldChange{
					Field: field, Lang: lang, Stored: storedMap[lang], Incoming: incoming,
				})
			}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return &models.ConceptDiff{Changes: changes}
}

// MatchConcept classifies one candidate document against a profile version.
// Exactly one of the five outcomes is returned for any input:
//
//	no         - no concept with this IRI exists anywhere
//	parentless - found, but its owning version was deleted
//	deprecated - found and deprecated
//	inProfile  - found and already referenced by the target version
//	yes        - found, usable, linkable
func (h *Harvester) MatchConcept(ctx context.Context, doc models.ConceptDocument, version *models.ProfileVersion) (*models.Match, error) {
	stored, err := h.resolver.ResolveConcept(ctx, doc.ID, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case stored == nil:
		return &models.Match{Type: models.MatchNo, Candidate: placeholder(doc)}, nil
	case stored.Orphaned != nil:
		return &models.Match{Type: models.MatchParentless, Concept: stored}, nil
	case stored.Deprecated:
		return &models.Match{Type: models.MatchDeprecated, Concept: stored}, nil
	case version.LinksConcept(stored.IRI):
		return &models.Match{Type: models.MatchInProfile, Concept: stored, Diff: diff(stored, doc)}, nil
	default:
		return &models.Match{Type: models.MatchYes, Concept: stored, Diff: diff(stored, doc)}, nil
	}
}

// HarvestStatementConcepts extracts the candidate concepts out of one raw
// statement and classifies each. The verb always yields a candidate; the
// object yields an activity candidate only when its type is "Activity" or
// unspecified.
func (h *Harvester) HarvestStatementConcepts(ctx context.Context, st models.StatementDocument, version *models.ProfileVersion) (*models.StatementMatches, error) {
	out := &models.StatementMatches{Statement: st}

	if st.Verb.ID != "" {
		doc := models.ConceptDocument{
			ID:        st.Verb.ID,
			Type:      models.ConceptTypeVerb,
			PrefLabel: st.Verb.Display.Clone(),
		}
		match, err := h.MatchConcept(ctx, doc, version)
		if err != nil {
			return nil, err
		}
		out.Verb = &models.ConceptMatch{Document: doc, Match: *match}
	}

	if st.Object.ID != "" && (st.Object.ObjectType == "" || st.Object.ObjectType == "Activity") {
		doc := models.ConceptDocument{
			ID:   st.Object.ID,
			Type: models.ConceptTypeActivity,
		}
		if def := st.Object.Definition; def != nil {
			doc.PrefLabel = def.Name.Clone()
			doc.Definition = def.Description.Clone()
		}
		match, err := h.MatchConcept(ctx, doc, version)
		if err != nil {
			return nil, err
		}
		out.ActivityType = &models.ConceptMatch{Document: doc, Match: *match}
	}

	return out, nil
}
