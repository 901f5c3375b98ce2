// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package match

import (
	"github.com/wneessen/geonote/internal/geo"
)

// MatchResult is a successfully extracted coordinate. Start and Length are
// byte offsets into the original line and identify the exact substring the
// coordinate was extracted from, so a caller can replace that span in place.
type MatchResult struct {
	Coordinate geo.Coordinate
	Start      int
	Length     int
	RuleName   string
	Label      string
}

// PendingFetch describes a match whose resolution requires a secondary
// network fetch. Start and Length refer to the original line, never to the
// fetched document.
type PendingFetch struct {
	URL    string
	Rule   *Rule
	Start  int
	Length int
}

// Outcome is the result of evaluating a line against the rule set. At most
// one of Resolved and Pending is set; both nil means no rule produced a
// usable result.
type Outcome struct {
	Resolved *MatchResult
	Pending  *PendingFetch
}

// Empty reports whether the outcome carries neither a resolved coordinate nor
// a pending fetch
func (o Outcome) Empty() bool {
	return o.Resolved == nil && o.Pending == nil
}

// Matcher evaluates an ordered, immutable rule set against text lines.
type Matcher struct {
	rules []Rule
}

// NewMatcher returns a new Matcher for the given compiled rule set
func NewMatcher(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Match evaluates the rule set in list order against the given line. The
// first rule that yields any usable result wins: either a parsed coordinate
// for direct rules or a pending fetch descriptor for fetch rules. A match
// that fails numeric parsing is skipped and evaluation continues with the
// next match or rule.
func (m *Matcher) Match(line string) Outcome {
	for i := range m.rules {
		rule := &m.rules[i]
		matches := rule.pattern.FindAllStringSubmatchIndex(line, -1)
		for _, loc := range matches {
			switch rule.Kind {
			case KindDirect:
				if result := m.convertDirect(line, rule, loc); result != nil {
					return Outcome{Resolved: result}
				}
			case KindIndirectFetch:
				if pending := m.convertFetch(line, rule, loc); pending != nil {
					return Outcome{Pending: pending}
				}
			}
		}
	}
	return Outcome{}
}

// convertDirect parses the final two capture groups of a direct rule match as
// a coordinate pair. An optional leading capture group is used as the label.
func (m *Matcher) convertDirect(line string, rule *Rule, loc []int) *MatchResult {
	groups := rule.pattern.NumSubexp()
	first := submatch(line, loc, groups-1)
	second := submatch(line, loc, groups)

	coord, err := geo.ParsePair(first, second, rule.Order)
	if err != nil {
		// Syntactic match without a valid coordinate, fall through to the
		// next candidate.
		return nil
	}

	result := &MatchResult{
		Coordinate: coord,
		Start:      loc[0],
		Length:     loc[1] - loc[0],
		RuleName:   rule.Name,
	}
	if groups > 2 {
		result.Label = submatch(line, loc, 1)
	}
	return result
}

// convertFetch extracts the URL capture group of a fetch rule match. An empty
// captured URL is skipped.
func (m *Matcher) convertFetch(line string, rule *Rule, loc []int) *PendingFetch {
	fetchURL := submatch(line, loc, 1)
	if fetchURL == "" {
		return nil
	}
	return &PendingFetch{
		URL:    fetchURL,
		Rule:   rule,
		Start:  loc[0],
		Length: loc[1] - loc[0],
	}
}

// submatch returns the text of capture group n from a FindAllStringSubmatchIndex
// location slice, or the empty string if the group did not participate.
func submatch(line string, loc []int, n int) string {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 || end < 0 {
		return ""
	}
	return line[start:end]
}
