// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the test suites.
package testhelper

import (
	"net/http"
	"os"
	"testing"
)

// integrationEnv is the environment variable that enables integration tests
const integrationEnv = "GEONOTE_INTEGRATION_TESTS"

// MockRoundTripper is a http.RoundTripper that delegates to a custom function
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

// RoundTrip satisfies the http.RoundTripper interface
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless integration tests have been
// enabled via the environment
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if os.Getenv(integrationEnv) == "" {
		t.Skipf("integration tests disabled, set %s to enable", integrationEnv)
	}
}
