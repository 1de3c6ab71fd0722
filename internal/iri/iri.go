// Package iri builds deterministic, percent-encoded IRIs for profiles,
// versions, and components from a base IRI and a human-chosen name.
package iri

import (
	"fmt"
	"net/url"
	"strings"

	"profile-registry/backend/internal/apperr"
	"profile-registry/backend/pkg/models"
)

// segments maps each component kind to its fixed path segment.
var segments = map[string]string{
	string(models.ConceptTypeVerb):                "verbs",
	string(models.ConceptTypeActivityType):        "activity-types",
	string(models.ConceptTypeAttachmentUsageType): "attachment-usage-types",
	string(models.ConceptTypeDocument):            "documents",
	string(models.ConceptTypeExtension):           "extensions",
	string(models.ConceptTypeActivity):            "activities",
	"Template":                                    "templates",
	"Pattern":                                     "patterns",
}

// ForComponent derives the IRI for a component of the given kind under base.
// The derivation is stable for a given (base, kind, name) triple. Callers
// must not invoke it when an explicit external IRI was supplied.
func ForComponent(base, kind, name string) (string, error) {
	if base == "" || kind == "" || name == "" {
		return "", apperr.InvalidInputf("iri generation requires a base IRI, a kind, and a name")
	}
	seg, ok := segments[kind]
	if !ok {
		return "", apperr.InvalidInputf("unknown component kind %q", kind)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), seg, url.PathEscape(name)), nil
}

// ForVersion derives the IRI of version number n of the given profile.
func ForVersion(profileIRI string, n int) (string, error) {
	if profileIRI == "" {
		return "", apperr.InvalidInputf("iri generation requires a profile IRI")
	}
	if n < 1 {
		return "", apperr.InvalidInputf("version numbers start at 1, got %d", n)
	}
	return fmt.Sprintf("%s/v/%d", strings.TrimRight(profileIRI, "/"), n), nil
}
