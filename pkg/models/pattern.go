package models

import (
	"time"
)

// PatternType is the composition rule a pattern applies to its members.
type PatternType string

const (
	PatternTypeSequence   PatternType = "sequence"
	PatternTypeAlternates PatternType = "alternates"
	PatternTypeOneOrMore  PatternType = "oneOrMore"
	PatternTypeZeroOrMore PatternType = "zeroOrMore"
	PatternTypeOptional   PatternType = "optional"
)

// Pattern composes templates and other patterns. Member fields hold IRIs of
// templates or patterns; exactly one member field is set, matching Type.
type Pattern struct {
	IRI             string      `json:"iri"`
	Primary         bool        `json:"primary"`
	Type            PatternType `json:"type"`
	PrefLabel       LanguageMap `json:"pref_label,omitempty"`
	Definition      LanguageMap `json:"definition,omitempty"`
	Deprecated      bool        `json:"deprecated"`
	OwnerVersionIRI string      `json:"owner_version_iri,omitempty"`

	Sequence   []string `json:"sequence,omitempty"`
	Alternates []string `json:"alternates,omitempty"`
	OneOrMore  *string  `json:"one_or_more,omitempty"`
	ZeroOrMore *string  `json:"zero_or_more,omitempty"`
	Optional   *string  `json:"optional,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (p *Pattern) Clone() *Pattern {
	out := *p
	out.PrefLabel = p.PrefLabel.Clone()
	out.Definition = p.Definition.Clone()
	out.Sequence = append([]string(nil), p.Sequence...)
	out.Alternates = append([]string(nil), p.Alternates...)
	out.OneOrMore = cloneString(p.OneOrMore)
	out.ZeroOrMore = cloneString(p.ZeroOrMore)
	out.Optional = cloneString(p.Optional)
	return &out
}

// Members returns every template/pattern IRI the pattern references.
func (p *Pattern) Members() []string {
	var out []string
	out = append(out, p.Sequence...)
	out = append(out, p.Alternates...)
	for _, ref := range []*string{p.OneOrMore, p.ZeroOrMore, p.Optional} {
		if ref != nil {
			out = append(out, *ref)
		}
	}
	return out
}
