// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package match evaluates an ordered list of pattern rules against note text
// and extracts coordinate-bearing substrings or deferred fetch descriptors.
package match

import (
	"fmt"
	"regexp"

	"github.com/wneessen/geonote/internal/geo"
)

// Kind describes how a rule resolves a match into a coordinate
type Kind int

const (
	// KindDirect indicates that the matched text itself encodes a coordinate pair
	KindDirect Kind = iota
	// KindIndirectFetch indicates that the matched text is a URL that must be
	// fetched before a coordinate can be extracted
	KindIndirectFetch
)

// ContentKind describes how the content pattern of a fetch rule is interpreted
type ContentKind int

const (
	// ContentLatLng interprets the captured groups as a latitude,longitude pair
	ContentLatLng ContentKind = iota
	// ContentLngLat interprets the captured groups as a longitude,latitude pair
	ContentLngLat
	// ContentPlaceName interprets the captured group as a place name that needs
	// a further provider search
	ContentPlaceName
)

// RuleSpec is the plain-data representation of a single pattern rule as
// provided by the configuration layer. Rules are immutable, the matcher only
// ever reads them.
type RuleSpec struct {
	Name           string
	Pattern        string
	Kind           Kind
	Order          geo.Order
	ContentPattern string
	ContentKind    ContentKind
}

// Rule is a compiled pattern rule
type Rule struct {
	Name        string
	Kind        Kind
	Order       geo.Order
	ContentKind ContentKind

	pattern        *regexp.Regexp
	contentPattern *regexp.Regexp
}

// MatchContent applies the rule's content pattern to a fetched document body and
// returns the captured groups, or nil if the body does not match
func (r *Rule) MatchContent(body string) []string {
	if r.contentPattern == nil {
		return nil
	}
	return r.contentPattern.FindStringSubmatch(body)
}

// CompileRules validates and compiles an ordered list of rule specs. A spec
// missing required fields for its kind is a configuration error that is
// surfaced here, once, instead of on every match call.
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := compileRule(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileRule(spec RuleSpec) (Rule, error) {
	if spec.Name == "" {
		return Rule{}, fmt.Errorf("rule without a name: %q", spec.Pattern)
	}
	if spec.Pattern == "" {
		return Rule{}, fmt.Errorf("rule %q: missing pattern", spec.Name)
	}

	pattern, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: failed to compile pattern: %w", spec.Name, err)
	}

	rule := Rule{
		Name:        spec.Name,
		Kind:        spec.Kind,
		Order:       spec.Order,
		ContentKind: spec.ContentKind,
		pattern:     pattern,
	}

	switch spec.Kind {
	case KindDirect:
		if pattern.NumSubexp() < 2 {
			return Rule{}, fmt.Errorf("rule %q: direct rules require at least two capture groups", spec.Name)
		}
	case KindIndirectFetch:
		if pattern.NumSubexp() < 1 {
			return Rule{}, fmt.Errorf("rule %q: fetch rules require a URL capture group", spec.Name)
		}
		if spec.ContentPattern == "" {
			return Rule{}, fmt.Errorf("rule %q: fetch rules require a content pattern", spec.Name)
		}
		rule.contentPattern, err = regexp.Compile(spec.ContentPattern)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q: failed to compile content pattern: %w", spec.Name, err)
		}
		if spec.ContentKind != ContentPlaceName && rule.contentPattern.NumSubexp() < 2 {
			return Rule{}, fmt.Errorf("rule %q: coordinate content patterns require two capture groups", spec.Name)
		}
		if spec.ContentKind == ContentPlaceName && rule.contentPattern.NumSubexp() < 1 {
			return Rule{}, fmt.Errorf("rule %q: place name content patterns require a capture group", spec.Name)
		}
	default:
		return Rule{}, fmt.Errorf("rule %q: unknown rule kind: %d", spec.Name, spec.Kind)
	}

	return rule, nil
}

// DefaultRules returns the built-in rule set. User-configured rules are
// evaluated before these.
func DefaultRules() []RuleSpec {
	return []RuleSpec{
		{
			Name:    "geo-link",
			Pattern: `\[([^\]]*)\]\(geo:([-+]?[0-9]+(?:\.[0-9]+)?),\s*([-+]?[0-9]+(?:\.[0-9]+)?)\)`,
			Kind:    KindDirect,
			Order:   geo.LatFirst,
		},
		{
			Name:    "google-maps-url",
			Pattern: `https?://(?:www\.)?google\.[a-z.]+/maps\S*@(-?[0-9]+(?:\.[0-9]+)?),(-?[0-9]+(?:\.[0-9]+)?)`,
			Kind:    KindDirect,
			Order:   geo.LatFirst,
		},
		{
			Name:           "google-maps-short-url",
			Pattern:        `(https://maps\.app\.goo\.gl/\S+)`,
			Kind:           KindIndirectFetch,
			ContentPattern: `@(-?[0-9]+(?:\.[0-9]+)?),(-?[0-9]+(?:\.[0-9]+)?)`,
			ContentKind:    ContentLatLng,
		},
		{
			Name:    "osm-url",
			Pattern: `https?://(?:www\.)?openstreetmap\.org/\S*#map=[0-9]+/(-?[0-9]+(?:\.[0-9]+)?)/(-?[0-9]+(?:\.[0-9]+)?)`,
			Kind:    KindDirect,
			Order:   geo.LatFirst,
		},
		{
			Name:    "coordinate-pair",
			Pattern: `(-?[0-9]{1,3}(?:\.[0-9]+)?)\s*,\s*(-?[0-9]{1,3}(?:\.[0-9]+)?)`,
			Kind:    KindDirect,
			Order:   geo.LatFirst,
		},
	}
}
