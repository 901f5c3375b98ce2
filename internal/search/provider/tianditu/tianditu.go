// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package tianditu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/search"
)

const (
	APIEndpoint = "https://api.tianditu.gov.cn/v2/search"
	APITimeout  = time.Second * 10
	name        = "tianditu"

	// infocodeOK is the infocode the API reports on success
	infocodeOK = 1000

	// maxAPIResults is the result count requested from the API
	maxAPIResults = 50
)

// Tianditu is a place search provider for the Tianditu (MapWorld) API,
// authenticated with a plain API token.
type Tianditu struct {
	token string
	http  *http.Client
}

type Request struct {
	KeyWord   string `json:"keyWord"`
	Level     string `json:"level"`
	MapBound  string `json:"mapBound"`
	QueryType string `json:"queryType"`
	Count     string `json:"count"`
	Start     string `json:"start"`
}

type Response struct {
	ResultType int    `json:"resultType"`
	Count      string `json:"count"`
	POIs       []POI  `json:"pois"`
	Status     Status `json:"status"`
}

type POI struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	LonLat  string `json:"lonlat"`
}

type Status struct {
	Infocode    int    `json:"infocode"`
	Description string `json:"cndesc"`
}

func New(client *http.Client, token string) *Tianditu {
	return &Tianditu{
		token: token,
		http:  client,
	}
}

func (t *Tianditu) Name() string {
	return name
}

// Search performs a keyword place search against the Tianditu API. A bias
// coordinate, when given, narrows the search bound around the bias center.
// An API-reported error status is returned as a search.ProviderError.
func (t *Tianditu) Search(ctx context.Context, searchQuery string, bias *geo.Coordinate) ([]search.Place, error) {
	request := Request{
		KeyWord:   searchQuery,
		Level:     "12",
		MapBound:  mapBound(bias),
		QueryType: "1",
		Count:     strconv.Itoa(maxAPIResults),
		Start:     "0",
	}
	postStr, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode Tianditu API request: %w", err)
	}

	query := url.Values{}
	query.Set("postStr", string(postStr))
	query.Set("type", "query")
	query.Set("tk", t.token)

	var response Response
	if _, err = t.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout); err != nil {
		return nil, fmt.Errorf("failed to retrieve place details from Tianditu API: %w", err)
	}
	if response.Status.Infocode != infocodeOK {
		return nil, &search.ProviderError{
			Provider: name,
			Code:     strconv.Itoa(response.Status.Infocode),
			Message:  response.Status.Description,
		}
	}

	// Fill the search.Place list
	places := make([]search.Place, 0, len(response.POIs))
	for _, poi := range response.POIs {
		coord, err := parseLonLat(poi.LonLat)
		if err != nil {
			return nil, fmt.Errorf("failed to parse coordinates from Tianditu API response: %w", err)
		}
		places = append(places, search.Place{
			Name:       poi.Name,
			Coordinate: coord,
		})
	}

	return places, nil
}

// mapBound returns the search bound for the request: the whole world, or a
// one-degree box around the bias center when one is given
func mapBound(bias *geo.Coordinate) string {
	if bias == nil {
		return "-180,-90,180,90"
	}
	return fmt.Sprintf("%f,%f,%f,%f", bias.Lon-0.5, bias.Lat-0.5, bias.Lon+0.5, bias.Lat+0.5)
}

// parseLonLat parses the API's "longitude,latitude" coordinate string
func parseLonLat(lonlat string) (geo.Coordinate, error) {
	lonStr, latStr, found := strings.Cut(lonlat, ",")
	if !found {
		return geo.Coordinate{}, fmt.Errorf("malformed lonlat value: %q", lonlat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}
