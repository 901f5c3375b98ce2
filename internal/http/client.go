// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"time"

	"github.com/wneessen/geonote/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient
	DefaultTimeout = time.Second * 10

	// MaxBodySize caps the amount of data read from a raw response body
	MaxBodySize = 2 << 20
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with API requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) geonote/%s (+https://github.com/wneessen/geonote/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	ErrNonPointerTarget = errors.New("target must be a non-nil pointer")
)

// Client is a type wrapper for the Go stdlib http.Client and the Config
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// Get performs a HTTP GET request for the given URL and json-unmarshals the response
// into target
func (h *Client) Get(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string) (int, error) {
	return h.GetWithTimeout(ctx, endpoint, target, query, headers, DefaultTimeout)
}

// GetWithTimeout performs a HTTP GET request for the given URL and timeout and JSON-unmarshals
// the response into target
func (h *Client) GetWithTimeout(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string, timeout time.Duration) (int, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, ErrNonPointerTarget
	}

	response, cancel, err := h.get(ctx, endpoint, query, headers, timeout)
	if err != nil {
		return 0, err
	}
	// The request context must stay alive until the body has been consumed
	defer cancel()
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP request body", logger.Err(err))
		}
	}(response.Body)

	// Unmarshal the JSON API response into target
	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return response.StatusCode, fmt.Errorf("failed to decode JSON: %w", err)
	}

	return response.StatusCode, nil
}

// GetBody performs a HTTP GET request for the given URL and returns the raw response body
// as a string
func (h *Client) GetBody(ctx context.Context, endpoint string) (string, int, error) {
	return h.GetBodyWithTimeout(ctx, endpoint, DefaultTimeout)
}

// GetBodyWithTimeout performs a HTTP GET request for the given URL and timeout and returns
// the raw response body as a string
func (h *Client) GetBodyWithTimeout(ctx context.Context, endpoint string, timeout time.Duration) (string, int, error) {
	response, cancel, err := h.get(ctx, endpoint, nil, nil, timeout)
	if err != nil {
		return "", 0, err
	}
	// The request context must stay alive until the body has been consumed
	defer cancel()
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP request body", logger.Err(err))
		}
	}(response.Body)

	body, err := io.ReadAll(io.LimitReader(response.Body, MaxBodySize))
	if err != nil {
		return "", response.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), response.StatusCode, nil
}

// get prepares and executes a HTTP GET request and returns the raw response
// together with the cancel func of the request context. The caller must defer
// the cancel func after the response body has been consumed, since canceling
// the request context aborts any body read still in flight.
func (h *Client) get(ctx context.Context, endpoint string, query url.Values, headers map[string]string, timeout time.Duration) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	// Prepare URL and query parameters
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	// Prepare HTTP request
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		request.Header.Set(k, v)
	}
	// Execute HTTP request
	response, err := h.Do(request)
	if err != nil {
		cancel()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		cancel()
		return nil, nil, errors.New("nil response received")
	}

	return response, cancel, nil
}
