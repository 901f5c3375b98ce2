// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus instrumentation for the resolution
// pipeline. Exposing the registry is left to the embedding application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for provider and link-resolution counters
const (
	OutcomeSuccess       = "success"
	OutcomeEmpty         = "empty"
	OutcomeTransportFail = "transport_failure"
	OutcomeProviderError = "provider_error"
)

// Metrics holds the Prometheus counters for the location resolution pipeline.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec // labels: provider, outcome
	FallbackTotal    prometheus.Counter
	LinkResolutions  *prometheus.CounterVec // labels: outcome
	FetchCache       *prometheus.CounterVec // labels: result={hit,miss}
}

// New creates the pipeline metrics and registers them with the given
// registerer. Passing nil registers with the Prometheus default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geonote",
			Name:      "provider_requests_total",
			Help:      "Place search provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geonote",
			Name:      "provider_fallback_total",
			Help:      "Times the secondary provider was consulted after a primary provider error.",
		}),
		LinkResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geonote",
			Name:      "link_resolutions_total",
			Help:      "Indirect link fetch resolutions by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geonote",
			Name:      "fetch_cache_total",
			Help:      "Fetch resolution cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.ProviderRequests, m.FallbackTotal, m.LinkResolutions, m.FetchCache)

	return m
}

// NewForTesting creates Metrics with a fresh registry to avoid "already
// registered" panics when called from multiple tests.
func NewForTesting() *Metrics {
	return New(prometheus.NewRegistry())
}

// CountProviderRequest records one provider request with the given outcome.
// Safe to call on a nil receiver for uninstrumented setups.
func (m *Metrics) CountProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

// CountFallback records one fallback to the secondary provider
func (m *Metrics) CountFallback() {
	if m == nil {
		return
	}
	m.FallbackTotal.Inc()
}

// CountLinkResolution records one indirect link resolution with the given outcome
func (m *Metrics) CountLinkResolution(outcome string) {
	if m == nil {
		return
	}
	m.LinkResolutions.WithLabelValues(outcome).Inc()
}

// CountFetchCache records one fetch cache lookup result
func (m *Metrics) CountFetchCache(result string) {
	if m == nil {
		return
	}
	m.FetchCache.WithLabelValues(result).Inc()
}
