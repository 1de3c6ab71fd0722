package models

import (
	"time"
)

// LanguageMap holds per-language translations of a text field, keyed by
// language tag.
type LanguageMap map[string]string

// Clone returns a copy of the map. A nil map clones to nil.
func (m LanguageMap) Clone() LanguageMap {
	if m == nil {
		return nil
	}
	out := make(LanguageMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ConceptType classifies a concept.
type ConceptType string

const (
	ConceptTypeVerb                ConceptType = "Verb"
	ConceptTypeActivityType        ConceptType = "ActivityType"
	ConceptTypeAttachmentUsageType ConceptType = "AttachmentUsageType"
	ConceptTypeDocument            ConceptType = "Document"
	ConceptTypeExtension           ConceptType = "Extension"
	ConceptTypeActivity            ConceptType = "Activity"
)

// SimilarTerm relates a concept to a semantically similar concept in
// another profile.
type SimilarTerm struct {
	IRI      string `json:"iri"`
	Relation string `json:"relation"` // broadMatch, narrowMatch, relatedMatch, exactMatch
}

// OrphanInfo marks a concept whose owning version was deleted. The concept
// survives because published templates elsewhere may still reference it.
type OrphanInfo struct {
	FormerOwner string    `json:"former_owner"`
	OrphanedAt  time.Time `json:"orphaned_at"`
}

// Concept is a named, typed semantic unit owned by exactly one
// ProfileVersion.
type Concept struct {
	IRI               string      `json:"iri"`
	Type              ConceptType `json:"type"`
	PrefLabel         LanguageMap `json:"pref_label,omitempty"`
	Definition        LanguageMap `json:"definition,omitempty"`
	Deprecated        bool        `json:"deprecated"`
	DeprecationReason *string     `json:"deprecation_reason,omitempty"`
	OwnerVersionIRI   string      `json:"owner_version_iri,omitempty"`
	Orphaned          *OrphanInfo `json:"orphaned,omitempty"`

	// Document concepts only.
	MediaType     *string `json:"media_type,omitempty"`
	ContentSchema *string `json:"content_schema,omitempty"`

	// Semantically relatable concepts only.
	SimilarTerms []SimilarTerm `json:"similar_terms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (c *Concept) Clone() *Concept {
	out := *c
	out.PrefLabel = c.PrefLabel.Clone()
	out.Definition = c.Definition.Clone()
	out.DeprecationReason = cloneString(c.DeprecationReason)
	out.MediaType = cloneString(c.MediaType)
	out.ContentSchema = cloneString(c.ContentSchema)
	if c.Orphaned != nil {
		o := *c.Orphaned
		out.Orphaned = &o
	}
	out.SimilarTerms = append([]SimilarTerm(nil), c.SimilarTerms...)
	return &out
}
