// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	t.Run("creating metrics on a fresh registry succeeds", func(t *testing.T) {
		m := NewForTesting()
		if m == nil {
			t.Fatal("expected non-nil metrics")
		}
	})
	t.Run("creating metrics on an explicit registry succeeds", func(t *testing.T) {
		m := New(prometheus.NewRegistry())
		if m == nil {
			t.Fatal("expected non-nil metrics")
		}
	})
}

func TestMetrics_counters(t *testing.T) {
	t.Run("provider requests are counted per provider and outcome", func(t *testing.T) {
		m := NewForTesting()
		m.CountProviderRequest("osm-nominatim", OutcomeSuccess)
		m.CountProviderRequest("osm-nominatim", OutcomeSuccess)
		m.CountProviderRequest("amap", OutcomeProviderError)
		got := testutil.ToFloat64(m.ProviderRequests.WithLabelValues("osm-nominatim", OutcomeSuccess))
		if got != 2 {
			t.Errorf("expected 2 counted requests, got %f", got)
		}
		got = testutil.ToFloat64(m.ProviderRequests.WithLabelValues("amap", OutcomeProviderError))
		if got != 1 {
			t.Errorf("expected 1 counted request, got %f", got)
		}
	})
	t.Run("fallbacks are counted", func(t *testing.T) {
		m := NewForTesting()
		m.CountFallback()
		if got := testutil.ToFloat64(m.FallbackTotal); got != 1 {
			t.Errorf("expected 1 counted fallback, got %f", got)
		}
	})
	t.Run("link resolutions are counted per outcome", func(t *testing.T) {
		m := NewForTesting()
		m.CountLinkResolution(OutcomeSuccess)
		m.CountLinkResolution(OutcomeEmpty)
		got := testutil.ToFloat64(m.LinkResolutions.WithLabelValues(OutcomeSuccess))
		if got != 1 {
			t.Errorf("expected 1 counted resolution, got %f", got)
		}
	})
	t.Run("nil metrics receiver is a no-op", func(t *testing.T) {
		var m *Metrics
		m.CountProviderRequest("osm-nominatim", OutcomeSuccess)
		m.CountFallback()
		m.CountLinkResolution(OutcomeSuccess)
		m.CountFetchCache("hit")
	})
}
