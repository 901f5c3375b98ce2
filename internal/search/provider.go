// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package search aggregates place search results from a parsed-link attempt
// and a configurable chain of external search providers.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/geonote/internal/geo"
)

// Place is a single place returned by a search provider
type Place struct {
	Name       string
	Coordinate geo.Coordinate
}

// Provider is the capability interface implemented by every place search
// backend. Providers that cannot make use of a bias coordinate ignore it
// silently.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, bias *geo.Coordinate) ([]Place, error)
}

// ProviderError is a structured, provider-reported error (quota exceeded,
// bad API key, invalid request). It is distinct from a transport failure and
// is what triggers fallback in a primary/secondary provider pair.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

// Error satisfies the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s reported error %s: %s", e.Provider, e.Code, e.Message)
}

// AsProviderError reports whether err carries a provider-reported error and
// returns it
func AsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr, true
	}
	return nil, false
}
