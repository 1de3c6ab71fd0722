package models

import (
	"time"
)

// RulePresence constrains whether a located statement part must appear.
type RulePresence string

const (
	RulePresenceIncluded    RulePresence = "included"
	RulePresenceExcluded    RulePresence = "excluded"
	RulePresenceRecommended RulePresence = "recommended"
)

// Rule constrains one location inside statements matched by a template.
type Rule struct {
	Location  string       `json:"location"`
	Selector  string       `json:"selector,omitempty"`
	Presence  RulePresence `json:"presence,omitempty"`
	Any       []string     `json:"any,omitempty"`
	All       []string     `json:"all,omitempty"`
	None      []string     `json:"none,omitempty"`
	ScopeNote LanguageMap  `json:"scope_note,omitempty"`
}

// Template describes the shape constraints for a class of statements. All
// determining-property fields hold concept IRIs; the statement-ref fields
// hold template IRIs and are mutually exclusive with their activity-type
// counterpart on the object side.
type Template struct {
	IRI             string      `json:"iri"`
	PrefLabel       LanguageMap `json:"pref_label,omitempty"`
	Definition      LanguageMap `json:"definition,omitempty"`
	Deprecated      bool        `json:"deprecated"`
	OwnerVersionIRI string      `json:"owner_version_iri,omitempty"`

	Verb                        *string  `json:"verb,omitempty"`
	ObjectActivityType          *string  `json:"object_activity_type,omitempty"`
	ContextGroupingActivityType []string `json:"context_grouping_activity_type,omitempty"`
	ContextParentActivityType   []string `json:"context_parent_activity_type,omitempty"`
	ContextOtherActivityType    []string `json:"context_other_activity_type,omitempty"`
	ContextCategoryActivityType []string `json:"context_category_activity_type,omitempty"`
	AttachmentUsageType         []string `json:"attachment_usage_type,omitempty"`
	ObjectStatementRefTemplate  []string `json:"object_statement_ref_template,omitempty"`
	ContextStatementRefTemplate []string `json:"context_statement_ref_template,omitempty"`

	Rules []Rule `json:"rules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	out := r
	out.Any = append([]string(nil), r.Any...)
	out.All = append([]string(nil), r.All...)
	out.None = append([]string(nil), r.None...)
	out.ScopeNote = r.ScopeNote.Clone()
	return out
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (t *Template) Clone() *Template {
	out := *t
	out.PrefLabel = t.PrefLabel.Clone()
	out.Definition = t.Definition.Clone()
	out.Verb = cloneString(t.Verb)
	out.ObjectActivityType = cloneString(t.ObjectActivityType)
	out.ContextGroupingActivityType = append([]string(nil), t.ContextGroupingActivityType...)
	out.ContextParentActivityType = append([]string(nil), t.ContextParentActivityType...)
	out.ContextOtherActivityType = append([]string(nil), t.ContextOtherActivityType...)
	out.ContextCategoryActivityType = append([]string(nil), t.ContextCategoryActivityType...)
	out.AttachmentUsageType = append([]string(nil), t.AttachmentUsageType...)
	out.ObjectStatementRefTemplate = append([]string(nil), t.ObjectStatementRefTemplate...)
	out.ContextStatementRefTemplate = append([]string(nil), t.ContextStatementRefTemplate...)
	if t.Rules != nil {
		out.Rules = make([]Rule, len(t.Rules))
		for i, r := range t.Rules {
			out.Rules[i] = r.Clone()
		}
	}
	return &out
}
