// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/metrics"
)

func TestFallbackPair_Search(t *testing.T) {
	t.Run("successful primary is used without consulting the secondary", func(t *testing.T) {
		primary := &stubProvider{name: "primary", places: []Place{
			{Name: "From primary", Coordinate: geo.Coordinate{Lat: 1, Lon: 1}},
		}}
		secondary := &stubProvider{name: "secondary", places: []Place{
			{Name: "From secondary", Coordinate: geo.Coordinate{Lat: 2, Lon: 2}},
		}}
		pair := testPair(t, primary, secondary)
		places, err := pair.Search(t.Context(), "x", nil)
		if err != nil {
			t.Fatalf("failed to search: %s", err)
		}
		if len(places) != 1 || places[0].Name != "From primary" {
			t.Errorf("expected the primary's result, got %+v", places)
		}
		if secondary.calls != 0 {
			t.Errorf("expected the secondary to not be consulted, got %d calls", secondary.calls)
		}
	})
	t.Run("provider error triggers fallback to the secondary", func(t *testing.T) {
		primary := &stubProvider{name: "primary", err: &ProviderError{
			Provider: "primary", Code: "10003", Message: "daily quota exceeded",
		}}
		secondary := &stubProvider{name: "secondary", places: []Place{
			{Name: "First", Coordinate: geo.Coordinate{Lat: 1, Lon: 1}},
			{Name: "Second", Coordinate: geo.Coordinate{Lat: 2, Lon: 2}},
		}}
		pair := testPair(t, primary, secondary)
		places, err := pair.Search(t.Context(), "x", nil)
		if err != nil {
			t.Fatalf("failed to search: %s", err)
		}
		want := []string{"First", "Second"}
		got := make([]string, 0, len(places))
		for _, place := range places {
			got = append(got, place.Name)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("result mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("transport failure does not trigger fallback", func(t *testing.T) {
		primary := &stubProvider{name: "primary", err: errors.New("connection refused")}
		secondary := &stubProvider{name: "secondary", places: []Place{
			{Name: "From secondary", Coordinate: geo.Coordinate{Lat: 2, Lon: 2}},
		}}
		pair := testPair(t, primary, secondary)
		if _, err := pair.Search(t.Context(), "x", nil); err == nil {
			t.Fatal("expected search to fail")
		}
		if secondary.calls != 0 {
			t.Errorf("expected the secondary to not be consulted, got %d calls", secondary.calls)
		}
	})
	t.Run("empty but successful primary response does not trigger fallback", func(t *testing.T) {
		primary := &stubProvider{name: "primary"}
		secondary := &stubProvider{name: "secondary", places: []Place{
			{Name: "From secondary", Coordinate: geo.Coordinate{Lat: 2, Lon: 2}},
		}}
		pair := testPair(t, primary, secondary)
		places, err := pair.Search(t.Context(), "x", nil)
		if err != nil {
			t.Fatalf("failed to search: %s", err)
		}
		if len(places) != 0 {
			t.Errorf("expected no results, got %+v", places)
		}
		if secondary.calls != 0 {
			t.Errorf("expected the secondary to not be consulted, got %d calls", secondary.calls)
		}
	})
	t.Run("failing secondary surfaces its error", func(t *testing.T) {
		primary := &stubProvider{name: "primary", err: &ProviderError{
			Provider: "primary", Code: "10001", Message: "invalid key",
		}}
		secondary := &stubProvider{name: "secondary", err: errors.New("connection refused")}
		pair := testPair(t, primary, secondary)
		if _, err := pair.Search(t.Context(), "x", nil); err == nil {
			t.Fatal("expected search to fail")
		}
	})
	t.Run("pair name combines both provider names", func(t *testing.T) {
		pair := testPair(t, &stubProvider{name: "primary"}, &stubProvider{name: "secondary"})
		if pair.Name() != "primary+secondary" {
			t.Errorf("expected pair name %q, got %q", "primary+secondary", pair.Name())
		}
	})
}

func TestAsProviderError(t *testing.T) {
	t.Run("provider error is detected", func(t *testing.T) {
		var err error = &ProviderError{Provider: "test", Code: "42", Message: "broken"}
		provErr, ok := AsProviderError(err)
		if !ok {
			t.Fatal("expected a provider error")
		}
		if provErr.Code != "42" {
			t.Errorf("expected code %q, got %q", "42", provErr.Code)
		}
	})
	t.Run("transport error is not a provider error", func(t *testing.T) {
		if _, ok := AsProviderError(errors.New("connection refused")); ok {
			t.Fatal("expected no provider error")
		}
	})
}

func testPair(t *testing.T, primary, secondary Provider) *FallbackPair {
	t.Helper()
	log := logger.NewLogger(slog.LevelError, io.Discard)
	return NewFallbackPair(primary, secondary, metrics.NewForTesting(), log)
}
