package models

// Wire documents: the externally supplied profile version graph. All
// cross-references are IRI strings resolved during import; documents never
// embed object graphs.

// ProfileDocument is the top-level import payload.
type ProfileDocument struct {
	ID      string          `json:"id"`
	Name    LanguageMap     `json:"name,omitempty"`
	Version VersionDocument `json:"version"`
}

// VersionDocument declares one profile version and the components it
// carries. Number must be either the profile's next version number (a new
// version) or the number of the current draft (an edit).
type VersionDocument struct {
	Number           int                `json:"number"`
	CreatedBy        string             `json:"created_by,omitempty"`
	Concepts         []ConceptDocument  `json:"concepts,omitempty"`
	Templates        []TemplateDocument `json:"templates,omitempty"`
	Patterns         []PatternDocument  `json:"patterns,omitempty"`
	ExternalConcepts []string           `json:"external_concepts,omitempty"`
}

// ConceptDocument is one concept fragment. If ID is empty an IRI is derived
// from the owning profile's IRI and the English prefLabel; a supplied ID is
// used verbatim and never re-derived.
type ConceptDocument struct {
	ID                string        `json:"id,omitempty"`
	Type              ConceptType   `json:"type"`
	PrefLabel         LanguageMap   `json:"pref_label,omitempty"`
	Definition        LanguageMap   `json:"definition,omitempty"`
	Deprecated        bool          `json:"deprecated,omitempty"`
	DeprecationReason *string       `json:"deprecation_reason,omitempty"`
	MediaType         *string       `json:"media_type,omitempty"`
	ContentSchema     *string       `json:"content_schema,omitempty"`
	SimilarTerms      []SimilarTerm `json:"similar_terms,omitempty"`
}

// TemplateDocument is one statement template fragment.
type TemplateDocument struct {
	ID         string      `json:"id,omitempty"`
	PrefLabel  LanguageMap `json:"pref_label,omitempty"`
	Definition LanguageMap `json:"definition,omitempty"`
	Deprecated bool        `json:"deprecated,omitempty"`

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
}

// PatternDocument is one pattern fragment.
type PatternDocument struct {
	ID         string      `json:"id,omitempty"`
	Primary    bool        `json:"primary,omitempty"`
	Type       PatternType `json:"type"`
	PrefLabel  LanguageMap `json:"pref_label,omitempty"`
	Definition LanguageMap `json:"definition,omitempty"`
	Deprecated bool        `json:"deprecated,omitempty"`

	Sequence   []string `json:"sequence,omitempty"`
	Alternates []string `json:"alternates,omitempty"`
	OneOrMore  *string  `json:"one_or_more,omitempty"`
	ZeroOrMore *string  `json:"zero_or_more,omitempty"`
	Optional   *string  `json:"optional,omitempty"`
}

// StatementDocument is one raw event record queued for harvesting. Only the
// verb id/display and the object definition are read.
type StatementDocument struct {
	Verb   StatementVerb   `json:"verb"`
	Object StatementObject `json:"object"`
}

// StatementVerb is the verb part of a statement.
type StatementVerb struct {
	ID      string      `json:"id"`
	Display LanguageMap `json:"display,omitempty"`
}

// StatementObject is the object part of a statement.
type StatementObject struct {
	ID         string              `json:"id,omitempty"`
	ObjectType string              `json:"objectType,omitempty"`
	Definition *ActivityDefinition `json:"definition,omitempty"`
}

// ActivityDefinition is an activity definition embedded in a statement
// object.
type ActivityDefinition struct {
	Name        LanguageMap `json:"name,omitempty"`
	Description LanguageMap `json:"description,omitempty"`
	Type        string      `json:"type,omitempty"`
}
