// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"github.com/wneessen/geonote/internal/geo"
)

// ResultKind describes where a search result came from
type ResultKind int

const (
	// KindParsedLink marks a result extracted from the query text itself
	KindParsedLink ResultKind = iota
	// KindProviderSearch marks a result returned by a place search provider
	KindProviderSearch
	// KindKnownMarker marks a result referencing an already known marker
	KindKnownMarker
)

// String returns the human-readable name of the result kind
func (k ResultKind) String() string {
	switch k {
	case KindParsedLink:
		return "parsed-link"
	case KindProviderSearch:
		return "provider-search"
	case KindKnownMarker:
		return "known-marker"
	}
	return "unknown"
}

// Result is a single entry of the ordered result sequence returned by a
// search. Results are produced fresh per query and have no identity beyond
// the query that produced them.
type Result struct {
	Label      string
	Coordinate geo.Coordinate
	Kind       ResultKind
	MarkerRef  any
}

// truncatePlaces cuts a provider result list down to the configured maximum,
// preserving the provider's own relevance order
func truncatePlaces(places []Place, max int) []Place {
	if max > 0 && len(places) > max {
		return places[:max]
	}
	return places
}
