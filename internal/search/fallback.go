// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"context"
	"log/slog"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/metrics"
)

// FallbackPair composes two providers into one: the secondary is consulted
// only when the primary reports a structured provider error. A transport
// failure at the primary does not trigger the secondary, and an empty but
// successful primary response is returned as-is.
type FallbackPair struct {
	primary   Provider
	secondary Provider
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewFallbackPair returns a new FallbackPair of the given providers
func NewFallbackPair(primary, secondary Provider, m *metrics.Metrics, log *logger.Logger) *FallbackPair {
	return &FallbackPair{
		primary:   primary,
		secondary: secondary,
		metrics:   m,
		logger:    log,
	}
}

// Name satisfies the Provider interface
func (f *FallbackPair) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Search satisfies the Provider interface
func (f *FallbackPair) Search(ctx context.Context, query string, bias *geo.Coordinate) ([]Place, error) {
	places, err := f.primary.Search(ctx, query, bias)
	if err == nil {
		return places, nil
	}
	provErr, ok := AsProviderError(err)
	if !ok {
		return nil, err
	}

	f.logger.Warn("primary provider reported an error, falling back to secondary",
		slog.String("provider", f.primary.Name()), slog.String("code", provErr.Code),
		slog.String("secondary", f.secondary.Name()))
	f.metrics.CountFallback()

	return f.secondary.Search(ctx, query, bias)
}
