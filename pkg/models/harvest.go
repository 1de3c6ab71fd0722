package models

import (
	"time"
)

// MatchType classifies how a harvested concept candidate relates to a
// profile version. The five outcomes are mutually exclusive.
type MatchType string

const (
	// MatchNo means no concept with the candidate's IRI exists anywhere.
	MatchNo MatchType = "no"
	// MatchParentless means the concept exists but its owning version was
	// deleted; it must be resolved manually.
	MatchParentless MatchType = "parentless"
	// MatchDeprecated means the concept exists and is deprecated.
	MatchDeprecated MatchType = "deprecated"
	// MatchInProfile means the target version already references the
	// concept, owned or external.
	MatchInProfile MatchType = "inProfile"
	// MatchYes means an existing, usable concept the profile can link to.
	MatchYes MatchType = "yes"
)

// FieldChange records one divergence between a harvested document and the
// stored concept.
type FieldChange struct {
	Field    string `json:"field"`
	Lang     string `json:"lang,omitempty"`
	Stored   string `json:"stored"`
	Incoming string `json:"incoming"`
}

// ConceptDiff is the structural diff between a harvested candidate and the
// stored model. Consumers render a non-empty diff as a partial match.
type ConceptDiff struct {
	Changes []FieldChange `json:"changes"`
}

// Match is the outcome of classifying one harvested concept candidate.
// Concept is the stored model when one was found; Candidate is the
// placeholder built from the raw document when none was (for UI preview).
type Match struct {
	Type      MatchType    `json:"type"`
	Concept   *Concept     `json:"concept,omitempty"`
	Candidate *Concept     `json:"candidate,omitempty"`
	Diff      *ConceptDiff `json:"diff,omitempty"`
}

// ConceptMatch pairs a harvested candidate document with its match result.
type ConceptMatch struct {
	Document ConceptDocument `json:"document"`
	Match    Match           `json:"match"`
}

// StatementMatches holds the per-statement harvest result: a verb candidate
// and, when the object is an activity, an activity-type candidate.
type StatementMatches struct {
	Statement    StatementDocument `json:"statement"`
	Verb         *ConceptMatch     `json:"verb,omitempty"`
	ActivityType *ConceptMatch     `json:"activity_type,omitempty"`
}

// HarvestData is a reviewed batch of harvested statements owned by a draft
// profile version.
type HarvestData struct {
	ID         string             `json:"id"`
	VersionIRI string             `json:"version_iri"`
	Statements []StatementMatches `json:"statements"`
	CreatedAt  time.Time          `json:"created_at"`
}
