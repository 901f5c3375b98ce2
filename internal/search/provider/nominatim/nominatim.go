// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/search"
)

const (
	APIEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout  = time.Second * 10
	name        = "osm-nominatim"

	// maxAPIResults is the result limit requested from the API
	maxAPIResults = 50
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Search performs a forward place search against the Nominatim API. Nominatim
// has no point-bias capability, the bias coordinate is ignored.
func (n *Nominatim) Search(ctx context.Context, searchQuery string, _ *geo.Coordinate) ([]search.Place, error) {
	var results []SearchResult

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", searchQuery)
	query.Set("limit", strconv.Itoa(maxAPIResults))
	query.Set("accept-language", n.lang.String())

	if _, err := n.http.GetWithTimeout(ctx, APIEndpoint, &results, query, nil, APITimeout); err != nil {
		return nil, fmt.Errorf("failed to fetch place details from Nominatim API: %w", err)
	}

	// Fill the search.Place list
	places := make([]search.Place, 0, len(results))
	for _, result := range results {
		lat, err := strconv.ParseFloat(result.APILat, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
		}
		lon, err := strconv.ParseFloat(result.APILon, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
		}
		places = append(places, search.Place{
			Name:       result.DisplayName,
			Coordinate: geo.Coordinate{Lat: lat, Lon: lon},
		})
	}

	return places, nil
}
