// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/wneessen/geonote/internal/fetch"
	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/match"
	"github.com/wneessen/geonote/internal/metrics"
)

// Aggregator orchestrates a single search query: a parsed-link attempt on
// the query text itself, followed by the configured provider chain. Every
// source is independently fault-tolerant, a failing source contributes zero
// results and never aborts the query.
type Aggregator struct {
	matcher   *match.Matcher
	resolver  *fetch.Resolver
	providers []Provider
	max       int
	useBias   bool
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// New returns a new Aggregator. The provider chain is selected once at
// construction and held for the aggregator's lifetime. Resolver and metrics
// may be nil.
func New(matcher *match.Matcher, resolver *fetch.Resolver, providers []Provider, max int, useBias bool,
	m *metrics.Metrics, log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		matcher:   matcher,
		resolver:  resolver,
		providers: providers,
		max:       max,
		useBias:   useBias,
		metrics:   m,
		logger:    log,
	}
}

// Search resolves a free-text query into an ordered result sequence. A
// coordinate parsed from the query itself always comes first, followed by
// the provider results in provider-call order, each preserving the
// provider's own relevance order and truncated to the configured maximum.
// The returned list may be empty but the call itself never fails.
func (a *Aggregator) Search(ctx context.Context, query string, area *geo.BoundingBox) []Result {
	results := make([]Result, 0, a.max+1)

	// Step 1: try to interpret the query itself as a coordinate or link
	if linkResult := a.ResolveLine(ctx, query); linkResult != nil {
		label := linkResult.Label
		if label == "" {
			label = linkResult.RuleName
		}
		results = append(results, Result{
			Label:      label,
			Coordinate: linkResult.Coordinate,
			Kind:       KindParsedLink,
		})
	}

	// Step 2: dispatch the provider chain. Provider calls run concurrently
	// but the results are buffered per provider so that the fixed ordering
	// contract holds regardless of completion order.
	var bias *geo.Coordinate
	if a.useBias && area != nil {
		center := area.Center()
		bias = &center
	}

	buffered := make([][]Place, len(a.providers))
	var wg sync.WaitGroup
	for i, provider := range a.providers {
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()
			buffered[i] = a.searchProvider(ctx, provider, query, bias)
		}(i, provider)
	}
	wg.Wait()

	for _, places := range buffered {
		for _, place := range places {
			results = append(results, Result{
				Label:      place.Name,
				Coordinate: place.Coordinate,
				Kind:       KindProviderSearch,
			})
		}
	}

	return results
}

// ResolveLine evaluates a single text line against the rule set, resolving a
// pending fetch when the matching rule requires one. It returns nil if no
// rule produced a usable coordinate.
func (a *Aggregator) ResolveLine(ctx context.Context, line string) *match.MatchResult {
	outcome := a.matcher.Match(line)
	switch {
	case outcome.Resolved != nil:
		return outcome.Resolved
	case outcome.Pending != nil && a.resolver != nil:
		return a.resolver.Resolve(ctx, outcome.Pending)
	}
	return nil
}

// searchProvider performs one provider search and contains its failures:
// transport failures and provider errors are logged and counted, yielding
// zero results for that provider.
func (a *Aggregator) searchProvider(ctx context.Context, provider Provider, query string, bias *geo.Coordinate) []Place {
	places, err := provider.Search(ctx, query, bias)
	if err != nil {
		outcome := metrics.OutcomeTransportFail
		if _, ok := AsProviderError(err); ok {
			outcome = metrics.OutcomeProviderError
		}
		a.metrics.CountProviderRequest(provider.Name(), outcome)
		a.logger.Warn("place search provider failed", slog.String("provider", provider.Name()),
			logger.Err(err))
		return nil
	}

	outcome := metrics.OutcomeSuccess
	if len(places) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	a.metrics.CountProviderRequest(provider.Name(), outcome)

	return truncatePlaces(places, a.max)
}

// ProviderPlaceSearcher adapts a search provider to the fetch.PlaceSearcher
// interface so that place names extracted from fetched documents can be
// resolved through the same provider chain.
type ProviderPlaceSearcher struct {
	provider Provider
}

// NewProviderPlaceSearcher returns a new ProviderPlaceSearcher for the given provider
func NewProviderPlaceSearcher(provider Provider) *ProviderPlaceSearcher {
	return &ProviderPlaceSearcher{provider: provider}
}

// SearchPlace satisfies the fetch.PlaceSearcher interface
func (s *ProviderPlaceSearcher) SearchPlace(ctx context.Context, name string) (geo.Coordinate, string, error) {
	places, err := s.provider.Search(ctx, name, nil)
	if err != nil {
		return geo.Coordinate{}, "", err
	}
	if len(places) == 0 {
		return geo.Coordinate{}, "", errors.New("no places found for name")
	}
	return places[0].Coordinate, places[0].Name, nil
}
