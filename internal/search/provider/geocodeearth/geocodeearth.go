// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/search"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/search"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

type Geometry struct {
	// Coordinates holds longitude and latitude, in GeoJSON order
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	DisplayName string `json:"label"`
	City        string `json:"locality"`
	Country     string `json:"country"`
	State       string `json:"region"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

// Search performs a forward place search against the geocode.earth API. A
// bias coordinate, when given, is forwarded as the focus point to prefer
// nearby results.
func (g *GeocodeEarth) Search(ctx context.Context, searchQuery string, bias *geo.Coordinate) ([]search.Place, error) {
	var response Response

	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("text", searchQuery)
	query.Set("lang", g.lang.String())
	if bias != nil {
		query.Set("focus.point.lat", fmt.Sprintf("%f", bias.Lat))
		query.Set("focus.point.lon", fmt.Sprintf("%f", bias.Lon))
	}

	code, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve place details from geocode.earth API: %w", err)
	}
	if code != 200 {
		return nil, fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}

	// Fill the search.Place list
	places := make([]search.Place, 0, len(response.Features))
	for _, feature := range response.Features {
		if len(feature.Geometry.Coordinates) < 2 {
			return nil, fmt.Errorf("incomplete geometry in geocode.earth API response")
		}
		places = append(places, search.Place{
			Name: feature.Properties.DisplayName,
			Coordinate: geo.Coordinate{
				Lat: feature.Geometry.Coordinates[1],
				Lon: feature.Geometry.Coordinates[0],
			},
		})
	}

	return places, nil
}
