// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package tianditu

import (
	"encoding/json"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/search"
	"github.com/wneessen/geonote/internal/testhelper"
)

const (
	searchFile = "../../../../testdata/tianditu_search.json"
	errorFile  = "../../../../testdata/tianditu_error.json"

	testToken = "test-token"
)

func TestNew(t *testing.T) {
	t.Run("creating a new provider succeeds", func(t *testing.T) {
		provider := testProvider(t)
		if provider == nil {
			t.Fatal("expected a non-nil provider")
		}
	})
	t.Run("provider name is correct", func(t *testing.T) {
		provider := testProvider(t)
		if provider.Name() != name {
			t.Errorf("expected provider name to be %q, got %q", name, provider.Name())
		}
	})
}

func TestTianditu_Search(t *testing.T) {
	t.Run("place search succeeds", func(t *testing.T) {
		provider := testProviderWithFixture(t, searchFile)
		places, err := provider.Search(t.Context(), "天安门", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 2 {
			t.Fatalf("expected 2 places, got %d", len(places))
		}
		if places[0].Name != "天安门" {
			t.Errorf("expected first place to be %q, got %q", "天安门", places[0].Name)
		}
		if places[0].Coordinate.Lat != 39.908692 || places[0].Coordinate.Lon != 116.397477 {
			t.Errorf("unexpected first place coordinate: (%f, %f)", places[0].Coordinate.Lat,
				places[0].Coordinate.Lon)
		}
	})
	t.Run("error infocode is reported as a provider error", func(t *testing.T) {
		provider := testProviderWithFixture(t, errorFile)
		_, err := provider.Search(t.Context(), "天安门", nil)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		provErr, ok := search.AsProviderError(err)
		if !ok {
			t.Fatalf("expected a provider error, got: %s", err)
		}
		if provErr.Code != "1002" {
			t.Errorf("expected provider error code %q, got %q", "1002", provErr.Code)
		}
		if provErr.Provider != name {
			t.Errorf("expected provider error from %q, got %q", name, provErr.Provider)
		}
	})
	t.Run("place search fails on transport error", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}
		provider := testProviderWithRoundtripFunc(t, rtFn)
		if _, err := provider.Search(t.Context(), "天安门", nil); err == nil {
			t.Fatal("expected API request to fail")
		}
	})
	t.Run("request carries the token and search bound", func(t *testing.T) {
		var request Request
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			query := req.URL.Query()
			if tk := query.Get("tk"); tk != testToken {
				t.Errorf("expected token %q, got %q", testToken, tk)
			}
			if err := json.Unmarshal([]byte(query.Get("postStr")), &request); err != nil {
				t.Errorf("failed to decode postStr parameter: %s", err)
			}
			data, err := os.Open(searchFile)
			if err != nil {
				t.Fatalf("failed to open JSON response file: %s", err)
			}
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       data,
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider := testProviderWithRoundtripFunc(t, rtFn)
		bias := &geo.Coordinate{Lat: 39.9, Lon: 116.4}
		if _, err := provider.Search(t.Context(), "天安门", bias); err != nil {
			t.Fatal(err)
		}
		if request.KeyWord != "天安门" {
			t.Errorf("expected keyword %q, got %q", "天安门", request.KeyWord)
		}
		if !strings.HasPrefix(request.MapBound, "115.9") {
			t.Errorf("expected map bound around the bias, got %q", request.MapBound)
		}
		if request.Count != strconv.Itoa(maxAPIResults) {
			t.Errorf("expected result count %d, got %q", maxAPIResults, request.Count)
		}
	})
	t.Run("request without bias searches the whole world", func(t *testing.T) {
		var request Request
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if err := json.Unmarshal([]byte(req.URL.Query().Get("postStr")), &request); err != nil {
				t.Errorf("failed to decode postStr parameter: %s", err)
			}
			data, err := os.Open(searchFile)
			if err != nil {
				t.Fatalf("failed to open JSON response file: %s", err)
			}
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       data,
				Header:     make(stdhttp.Header),
			}, nil
		}
		provider := testProviderWithRoundtripFunc(t, rtFn)
		if _, err := provider.Search(t.Context(), "天安门", nil); err != nil {
			t.Fatal(err)
		}
		if request.MapBound != "-180,-90,180,90" {
			t.Errorf("expected whole-world map bound, got %q", request.MapBound)
		}
	})
}

func TestParseLonLat(t *testing.T) {
	t.Run("well-formed lonlat parses", func(t *testing.T) {
		coord, err := parseLonLat("116.397477, 39.908692")
		if err != nil {
			t.Fatalf("failed to parse lonlat: %s", err)
		}
		if coord.Lat != 39.908692 || coord.Lon != 116.397477 {
			t.Errorf("unexpected coordinate: (%f, %f)", coord.Lat, coord.Lon)
		}
	})
	t.Run("missing separator fails", func(t *testing.T) {
		if _, err := parseLonLat("116.397477"); err == nil {
			t.Fatal("expected parsing to fail")
		}
	})
	t.Run("non-numeric values fail", func(t *testing.T) {
		if _, err := parseLonLat("east,north"); err == nil {
			t.Fatal("expected parsing to fail")
		}
	})
}

func TestTianditu_Search_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	token := os.Getenv("GEONOTE_TIANDITU_TOKEN")
	if token == "" {
		t.Skip("no Tianditu API token set, skipping integration test")
	}
	t.Run("place search succeeds", func(t *testing.T) {
		testHttpClient := http.New(logger.New(slog.LevelDebug))
		provider := New(testHttpClient, token)
		places, err := provider.Search(t.Context(), "天安门", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) < 1 {
			t.Fatal("expected at least one place")
		}
	})
}

func testProvider(_ *testing.T) search.Provider {
	testHttpClient := http.New(logger.New(slog.LevelDebug))
	return New(testHttpClient, testToken)
}

func testProviderWithRoundtripFunc(_ *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) search.Provider {
	testHttpClient := http.New(logger.New(slog.LevelDebug))
	testHttpClient.Transport = testhelper.MockRoundTripper{Fn: fn}
	return New(testHttpClient, testToken)
}

func testProviderWithFixture(t *testing.T, file string) search.Provider {
	t.Helper()
	rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}

		return &stdhttp.Response{
			StatusCode: 200,
			Body:       data,
			Header:     make(stdhttp.Header),
		}, nil
	}
	return testProviderWithRoundtripFunc(t, rtFn)
}
