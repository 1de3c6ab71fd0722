package importer

import (
	"fmt"
	"reflect"

	"profile-registry/backend/pkg/models"
)

// ChangeKind is the direction of a field mutation, phrased for the error
// message it produces.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added to"
	ChangeUpdated ChangeKind = "updated on"
	ChangeDeleted ChangeKind = "deleted from"
)

// Violation is one illegal field transition on a published component.
type Violation struct {
	Field  string
	Change ChangeKind
	Kind   string // "concept", "template", "pattern"
	IRI    string
}

// Message renders the violation in the canonical shape.
func (v Violation) Message() string {
	return fmt.Sprintf("%s cannot be %s published %s %s.", v.Field, v.Change, v.Kind, v.IRI)
}

// scalarChange diffs an optional scalar reference field. Any transition is
// illegal on a published component.
func scalarChange(field, kind, iri string, stored, incoming *string) *Violation {
	switch {
	case stored == nil && incoming == nil:
		return nil
	case stored == nil:
		return &Violation{Field: field, Change: ChangeAdded, Kind: kind, IRI: iri}
	case incoming == nil:
		return &Violation{Field: field, Change: ChangeDeleted, Kind: kind, IRI: iri}
	case *stored != *incoming:
		return &Violation{Field: field, Change: ChangeUpdated, Kind: kind, IRI: iri}
	}
	return nil
}

// setChanges diffs an array-valued reference field as a set. Adding or
// removing any entry is illegal on a published component.
func setChanges(field, kind, iri string, stored, incoming []string) []Violation {
	storedSet := make(map[string]bool, len(stored))
	for _, s := range stored {
		storedSet[s] = true
	}
	incomingSet := make(map[string]bool, len(incoming))
	for _, s := range incoming {
		incomingSet[s] = true
	}

	var out []Violation
	added := false
	for s := range incomingSet {
		if !storedSet[s] {
			added = true
			break
		}
	}
	if added {
		out = append(out, Violation{Field: field, Change: ChangeAdded, Kind: kind, IRI: iri})
	}
	removed := false
	for s := range storedSet {
		if !incomingSet[s] {
			removed = true
			break
		}
	}
	if removed {
		out = append(out, Violation{Field: field, Change: ChangeDeleted, Kind: kind, IRI: iri})
	}
	return out
}

// rulesChange diffs a rules collection. The collection is frozen once
// present; an empty-array/absent transition counts as no change.
func rulesChange(kind, iri string, stored, incoming []models.Rule) *Violation {
	if len(stored) == 0 && len(incoming) == 0 {
		return nil
	}
	switch {
	case len(stored) == 0:
		return &Violation{Field: "rules", Change: ChangeAdded, Kind: kind, IRI: iri}
	case len(incoming) == 0:
		return &Violation{Field: "rules", Change: ChangeDeleted, Kind: kind, IRI: iri}
	case !reflect.DeepEqual(stored, incoming):
		return &Violation{Field: "rules", Change: ChangeUpdated, Kind: kind, IRI: iri}
	}
	return nil
}

func similarTermIRIs(terms []models.SimilarTerm) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Relation+" "+t.IRI)
	}
	return out
}

// PublishedConceptViolations returns every illegal transition the incoming
// model would apply to a published concept. Translatable text maps and the
// deprecation fields are always legal and never reported.
func PublishedConceptViolations(stored, incoming *models.Concept) []Violation {
	var out []Violation
	if incoming.Type != "" && incoming.Type != stored.Type {
		out = append(out, Violation{Field: "conceptType", Change: ChangeUpdated, Kind: "concept", IRI: stored.IRI})
	}
	if v := scalarChange("mediaType", "concept", stored.IRI, stored.MediaType, incoming.MediaType); v != nil {
		out = append(out, *v)
	}
	if v := scalarChange("contentSchema", "concept", stored.IRI, stored.ContentSchema, incoming.ContentSchema); v != nil {
		out = append(out, *v)
	}
	out = append(out, setChanges("similarTerms", "concept", stored.IRI,
		similarTermIRIs(stored.SimilarTerms), similarTermIRIs(incoming.SimilarTerms))...)
	return out
}

// PublishedTemplateViolations returns every illegal transition the incoming
// model would apply to a published template.
func PublishedTemplateViolations(stored, incoming *models.Template) []Violation {
	iri := stored.IRI
	var out []Violation

	for _, f := range []struct {
		name             string
		stored, incoming *string
	}{
		{"verb", stored.Verb, incoming.Verb},
		{"objectActivityType", stored.ObjectActivityType, incoming.ObjectActivityType},
	} {
		if v := scalarChange(f.name, "template", iri, f.stored, f.incoming); v != nil {
			out = append(out, *v)
		}
	}

	for _, f := range []struct {
		name             string
		stored, incoming []string
	}{
		{"contextGroupingActivityType", stored.ContextGroupingActivityType, incoming.ContextGroupingActivityType},
		{"contextParentActivityType", stored.ContextParentActivityType, incoming.ContextParentActivityType},
		{"contextOtherActivityType", stored.ContextOtherActivityType, incoming.ContextOtherActivityType},
		{"contextCategoryActivityType", stored.ContextCategoryActivityType, incoming.ContextCategoryActivityType},
		{"attachmentUsageType", stored.AttachmentUsageType, incoming.AttachmentUsageType},
		{"objectStatementRefTemplate", stored.ObjectStatementRefTemplate, incoming.ObjectStatementRefTemplate},
		{"contextStatementRefTemplate", stored.ContextStatementRefTemplate, incoming.ContextStatementRefTemplate},
	} {
		out = append(out, setChanges(f.name, "template", iri, f.stored, f.incoming)...)
	}

	if v := rulesChange("template", iri, stored.Rules, incoming.Rules); v != nil {
		out = append(out, *v)
	}
	return out
}

// PublishedPatternViolations returns every illegal transition the incoming
// model would apply to a published pattern.
func PublishedPatternViolations(stored, incoming *models.Pattern) []Violation {
	iri := stored.IRI
	var out []Violation
	if incoming.Type != "" && incoming.Type != stored.Type {
		out = append(out, Violation{Field: "patternType", Change: ChangeUpdated, Kind: "pattern", IRI: iri})
	}
	if stored.Primary != incoming.Primary {
		out = append(out, Violation{Field: "primary", Change: ChangeUpdated, Kind: "pattern", IRI: iri})
	}
	for _, f := range []struct {
		name             string
		stored, incoming *string
	}{
		{"oneOrMore", stored.OneOrMore, incoming.OneOrMore},
		{"zeroOrMore", stored.ZeroOrMore, incoming.ZeroOrMore},
		{"optional", stored.Optional, incoming.Optional},
	} {
		if v := scalarChange(f.name, "pattern", iri, f.stored, f.incoming); v != nil {
			out = append(out, *v)
		}
	}
	for _, f := range []struct {
		name             string
		stored, incoming []string
	}{
		{"sequence", stored.Sequence, incoming.Sequence},
		{"alternates", stored.Alternates, incoming.Alternates},
	} {
		out = append(out, setChanges(f.name, "pattern", iri, f.stored, f.incoming)...)
	}
	return out
}
