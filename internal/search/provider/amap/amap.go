// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package amap

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/search"
)

const (
	APIEndpoint = "https://restapi.amap.com/v3/place/text"
	APITimeout  = time.Second * 10
	name        = "amap"

	// statusOK is the status value the API reports on success
	statusOK = "1"
)

// AMap is a place search provider for the AMap (Gaode) REST API. When
// constructed with a signing secret, every request carries a digital
// signature computed over the sorted query parameters and the secret.
type AMap struct {
	apikey string
	secret string
	http   *http.Client
}

type Response struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Count    string `json:"count"`
	POIs     []POI  `json:"pois"`
}

type POI struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Location string `json:"location"`
}

func New(client *http.Client, apikey, secret string) *AMap {
	return &AMap{
		apikey: apikey,
		secret: secret,
		http:   client,
	}
}

func (a *AMap) Name() string {
	return name
}

// Search performs a keyword place search against the AMap API. A bias
// coordinate, when given, is forwarded as the location parameter to prefer
// nearby results. An API-reported error status is returned as a
// search.ProviderError so that a fallback pair can react to it.
func (a *AMap) Search(ctx context.Context, searchQuery string, bias *geo.Coordinate) ([]search.Place, error) {
	var response Response

	query := url.Values{}
	query.Set("key", a.apikey)
	query.Set("keywords", searchQuery)
	query.Set("output", "json")
	if bias != nil {
		query.Set("location", fmt.Sprintf("%f,%f", bias.Lon, bias.Lat))
	}
	if a.secret != "" {
		query.Set("sig", sign(query, a.secret))
	}

	if _, err := a.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout); err != nil {
		return nil, fmt.Errorf("failed to retrieve place details from AMap API: %w", err)
	}
	if response.Status != statusOK {
		return nil, &search.ProviderError{
			Provider: name,
			Code:     response.Infocode,
			Message:  response.Info,
		}
	}

	// Fill the search.Place list
	places := make([]search.Place, 0, len(response.POIs))
	for _, poi := range response.POIs {
		coord, err := parseLocation(poi.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to parse location from AMap API response: %w", err)
		}
		places = append(places, search.Place{
			Name:       poi.Name,
			Coordinate: coord,
		})
	}

	return places, nil
}

// sign computes the AMap digital signature: the MD5 digest over the query
// parameters sorted by key, joined with ampersands, with the private secret
// appended.
func sign(query url.Values, secret string) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+query.Get(key))
	}

	digest := md5.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(digest[:])
}

// parseLocation parses the API's "longitude,latitude" location string
func parseLocation(location string) (geo.Coordinate, error) {
	lonStr, latStr, found := strings.Cut(location, ",")
	if !found {
		return geo.Coordinate{}, fmt.Errorf("malformed location value: %q", location)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}
