// Package models defines the domain models for the profile registry.
package models

import (
	"time"
)

// VersionState is the lifecycle state of a profile version.
type VersionState string

const (
	VersionStateDraft     VersionState = "draft"
	VersionStatePublished VersionState = "published"
)

// VersionStatus is the mutation mode an import runs under. It describes the
// version the incoming document targets, not the stored state of any single
// component inside it.
type VersionStatus string

const (
	VersionStatusNew       VersionStatus = "new"
	VersionStatusDraft     VersionStatus = "draft"
	VersionStatusPublished VersionStatus = "published"
)

// Profile is the stable identity for a family of versions.
type Profile struct {
	IRI                     string    `json:"iri"`
	OrganizationID          string    `json:"organization_id"`
	CurrentVersionNumber    int       `json:"current_version_number"`
	CurrentDraftVersion     *string   `json:"current_draft_version,omitempty"`     // version IRI
	CurrentPublishedVersion *string   `json:"current_published_version,omitempty"` // version IRI
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// ProfileVersion is one snapshot in a profile's history. Component lists
// hold IRIs; ExternalConcepts holds concepts owned by other versions that
// this version links to without taking ownership.
type ProfileVersion struct {
	IRI              string       `json:"iri"`
	ProfileIRI       string       `json:"profile_iri"`
	Number           int          `json:"number"`
	State            VersionState `json:"state"`
	Concepts         []string     `json:"concepts,omitempty"`
	Templates        []string     `json:"templates,omitempty"`
	Patterns         []string     `json:"patterns,omitempty"`
	ExternalConcepts []string     `json:"external_concepts,omitempty"`
	WasRevisionOf    *string      `json:"was_revision_of,omitempty"`
	CreatedBy        string       `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	PublishedAt      *time.Time   `json:"published_at,omitempty"`
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (p *Profile) Clone() *Profile {
	out := *p
	out.CurrentDraftVersion = cloneString(p.CurrentDraftVersion)
	out.CurrentPublishedVersion = cloneString(p.CurrentPublishedVersion)
	return &out
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (v *ProfileVersion) Clone() *ProfileVersion {
	out := *v
	out.Concepts = append([]string(nil), v.Concepts...)
	out.Templates = append([]string(nil), v.Templates...)
	out.Patterns = append([]string(nil), v.Patterns...)
	out.ExternalConcepts = append([]string(nil), v.ExternalConcepts...)
	out.WasRevisionOf = cloneString(v.WasRevisionOf)
	if v.PublishedAt != nil {
		at := *v.PublishedAt
		out.PublishedAt = &at
	}
	return &out
}

// OwnsConcept reports whether the version's own concept list contains iri.
func (v *ProfileVersion) OwnsConcept(iri string) bool {
	for _, c := range v.Concepts {
		if c == iri {
			return true
		}
	}
	return false
}

// LinksConcept reports whether the version references iri, either as an
// owned concept or through its external concept list.
func (v *ProfileVersion) LinksConcept(iri string) bool {
	if v.OwnsConcept(iri) {
		return true
	}
	for _, c := range v.ExternalConcepts {
		if c == iri {
			return true
		}
	}
	return false
}
