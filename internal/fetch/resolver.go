// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package fetch resolves pending fetch descriptors produced by the matcher:
// it performs the secondary network fetch for indirect rules and extracts a
// coordinate from the fetched document.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/match"
	"github.com/wneessen/geonote/internal/metrics"
)

// FetchTimeout is the timeout for a single link fetch
const FetchTimeout = time.Second * 10

// PlaceSearcher resolves a place name captured from a fetched document into a
// coordinate. It is optional wiring, a resolver without one returns no match
// for place name content.
type PlaceSearcher interface {
	SearchPlace(ctx context.Context, name string) (geo.Coordinate, string, error)
}

// Resolver performs the secondary network fetch for indirect rules. All
// failures are soft: a dead link, a timeout or a non-matching document yield
// no result, never an error to the caller.
type Resolver struct {
	http    *http.Client
	cache   *Cache
	places  PlaceSearcher
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New returns a new Resolver. Cache, place searcher and metrics are optional
// and may be nil.
func New(client *http.Client, cache *Cache, places PlaceSearcher, m *metrics.Metrics, log *logger.Logger) *Resolver {
	return &Resolver{
		http:    client,
		cache:   cache,
		places:  places,
		metrics: m,
		logger:  log,
	}
}

// Resolve fetches the URL of a pending match and applies the rule's content
// pattern to the response body. It returns nil when the link cannot be
// fetched, the body does not match or no valid coordinate can be extracted.
// The span of the returned result is the span of the original line, not an
// offset into the fetched document.
func (r *Resolver) Resolve(ctx context.Context, pending *match.PendingFetch) *match.MatchResult {
	if pending == nil {
		return nil
	}

	if r.cache != nil {
		if entry, ok := r.cache.lookup(cacheKey(pending)); ok {
			r.metrics.CountFetchCache("hit")
			if !entry.Found {
				return nil
			}
			return r.result(pending, entry.Coordinate, entry.Label)
		}
		r.metrics.CountFetchCache("miss")
	}

	body, code, err := r.http.GetBodyWithTimeout(ctx, pending.URL, FetchTimeout)
	if err != nil {
		r.logger.Debug("failed to fetch link target", slog.String("url", pending.URL), logger.Err(err))
		r.metrics.CountLinkResolution(metrics.OutcomeTransportFail)
		return nil
	}
	if code < 200 || code > 299 {
		r.logger.Debug("link target returned non-success status", slog.String("url", pending.URL),
			slog.Int("status", code))
		r.metrics.CountLinkResolution(metrics.OutcomeTransportFail)
		return nil
	}

	coord, label, found := r.extract(ctx, pending, body)
	if r.cache != nil {
		r.cache.store(cacheKey(pending), coord, label, found)
	}
	if !found {
		r.metrics.CountLinkResolution(metrics.OutcomeEmpty)
		return nil
	}

	r.metrics.CountLinkResolution(metrics.OutcomeSuccess)
	return r.result(pending, coord, label)
}

// extract applies the rule's content pattern to the fetched body and converts
// the captured groups according to the rule's content kind
func (r *Resolver) extract(ctx context.Context, pending *match.PendingFetch, body string) (geo.Coordinate, string, bool) {
	groups := pending.Rule.MatchContent(body)
	if groups == nil {
		return geo.Coordinate{}, "", false
	}

	switch pending.Rule.ContentKind {
	case match.ContentLatLng, match.ContentLngLat:
		order := geo.LatFirst
		if pending.Rule.ContentKind == match.ContentLngLat {
			order = geo.LngFirst
		}
		coord, err := geo.ParsePair(groups[1], groups[2], order)
		if err != nil {
			return geo.Coordinate{}, "", false
		}
		return coord, "", true
	case match.ContentPlaceName:
		if r.places == nil {
			return geo.Coordinate{}, "", false
		}
		coord, label, err := r.places.SearchPlace(ctx, groups[1])
		if err != nil {
			r.logger.Debug("failed to resolve place name from link target",
				slog.String("place", groups[1]), logger.Err(err))
			return geo.Coordinate{}, "", false
		}
		return coord, label, true
	}

	return geo.Coordinate{}, "", false
}

// cacheKey scopes cache entries to the matching rule: two rules with
// different content patterns may resolve the same URL to different outcomes
func cacheKey(pending *match.PendingFetch) string {
	return pending.Rule.Name + "\x00" + pending.URL
}

func (r *Resolver) result(pending *match.PendingFetch, coord geo.Coordinate, label string) *match.MatchResult {
	return &match.MatchResult{
		Coordinate: coord,
		Start:      pending.Start,
		Length:     pending.Length,
		RuleName:   pending.Rule.Name,
		Label:      label,
	}
}
