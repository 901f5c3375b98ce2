// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the geonote CLI. It resolves geographic locations
// from note text lines and free-text place queries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-runewidth"

	"github.com/wneessen/geonote/internal/config"
	"github.com/wneessen/geonote/internal/fetch"
	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/http"
	"github.com/wneessen/geonote/internal/locality"
	"github.com/wneessen/geonote/internal/logger"
	"github.com/wneessen/geonote/internal/match"
	"github.com/wneessen/geonote/internal/metrics"
	"github.com/wneessen/geonote/internal/search"
	"github.com/wneessen/geonote/internal/search/provider/amap"
	"github.com/wneessen/geonote/internal/search/provider/geocodeearth"
	"github.com/wneessen/geonote/internal/search/provider/nominatim"
	"github.com/wneessen/geonote/internal/search/provider/tianditu"
)

// biasBoxSize is the edge length in degrees of the bounding box constructed
// around a bias center given via flags or GPS
const biasBoxSize = 1.0

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	confPath := flag.String("config", "", "path to the config file")
	line := flag.String("line", "", "resolve a single note text line")
	query := flag.String("query", "", "run a free-text place search")
	lat := flag.Float64("lat", 0, "bias center latitude")
	lon := flag.Float64("lon", 0, "bias center longitude")
	useGPS := flag.Bool("gps", false, "derive the bias center from a local gpsd fix")
	showVersion := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("geonote %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Read config
	conf, err := readConfig(*confPath)
	if err != nil {
		logger.New(config.DefaultLogLevel).Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}
	log := logger.New(conf.LogLevel)

	// Wire up the resolution pipeline
	httpClient := http.New(log)
	specs, err := conf.RuleSpecs()
	if err != nil {
		log.Error("failed to read rule configuration", logger.Err(err))
		os.Exit(1)
	}
	rules, err := match.CompileRules(specs)
	if err != nil {
		log.Error("failed to compile rule configuration", logger.Err(err))
		os.Exit(1)
	}
	matcher := match.NewMatcher(rules)

	mets := metrics.New(nil)
	providers := buildProviders(conf, httpClient, mets, log)
	var places fetch.PlaceSearcher
	if len(providers) > 0 {
		places = search.NewProviderPlaceSearcher(providers[0])
	}
	cache := fetch.NewCache(conf.Cache.HitTTL, conf.Cache.MissTTL)
	resolver := fetch.New(httpClient, cache, places, mets, log)
	aggregator := search.New(matcher, resolver, providers, conf.Search.MaxSuggestions,
		conf.Search.UseBias, mets, log)

	switch {
	case *line != "":
		resolveLine(ctx, aggregator, *line)
	case *query != "":
		area := biasArea(ctx, log, *lat, *lon, *useGPS)
		runQuery(ctx, aggregator, *query, area)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do, provide either -line or -query")
		flag.Usage()
		os.Exit(1)
	}
}

// readConfig loads the configuration from the given file, or from the
// default sources if no file was specified
func readConfig(confPath string) (*config.Config, error) {
	if confPath == "" {
		return config.New()
	}
	return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
}

// buildProviders selects the provider chain from the configuration
func buildProviders(conf *config.Config, client *http.Client, mets *metrics.Metrics,
	log *logger.Logger,
) []search.Provider {
	lang := conf.Language()
	switch conf.Search.Provider {
	case config.ProviderNominatim:
		return []search.Provider{nominatim.New(client, lang)}
	case config.ProviderGeocodeEarth:
		return []search.Provider{geocodeearth.New(client, lang, conf.Search.APIKeys.GeocodeEarth)}
	case config.ProviderAMapTianditu:
		primary := amap.New(client, conf.Search.APIKeys.AMapKey, conf.Search.APIKeys.AMapSecret)
		secondary := tianditu.New(client, conf.Search.APIKeys.TiandituToken)
		return []search.Provider{search.NewFallbackPair(primary, secondary, mets, log)}
	}
	return nil
}

// biasArea constructs the bounding area for a query from the given flags or
// a gpsd fix. Returns nil if no bias source is available.
func biasArea(ctx context.Context, log *logger.Logger, lat, lon float64, useGPS bool) *geo.BoundingBox {
	center := geo.Coordinate{Lat: lat, Lon: lon}
	if useGPS {
		fix, err := locality.Locate(ctx)
		if err != nil {
			log.Warn("failed to determine GPS position, searching without bias", logger.Err(err))
			return nil
		}
		center = fix
	}
	if !center.Valid() || (center.Lat == 0 && center.Lon == 0) {
		return nil
	}

	return &geo.BoundingBox{
		MinLat: center.Lat - biasBoxSize/2,
		MinLon: center.Lon - biasBoxSize/2,
		MaxLat: center.Lat + biasBoxSize/2,
		MaxLon: center.Lon + biasBoxSize/2,
	}
}

// resolveLine resolves a single note text line and prints the extracted
// coordinate together with the matched span
func resolveLine(ctx context.Context, aggregator *search.Aggregator, line string) {
	result := aggregator.ResolveLine(ctx, line)
	if result == nil {
		fmt.Println("no location found")
		return
	}
	fmt.Printf("%.5f, %.5f (rule: %s, span: %d+%d)\n", result.Coordinate.Lat, result.Coordinate.Lon,
		result.RuleName, result.Start, result.Length)
}

// runQuery performs a place search and prints the results as an aligned table
func runQuery(ctx context.Context, aggregator *search.Aggregator, query string, area *geo.BoundingBox) {
	results := aggregator.Search(ctx, query, area)
	if len(results) == 0 {
		fmt.Println("no results")
		return
	}

	width := 0
	for _, result := range results {
		if w := runewidth.StringWidth(result.Label); w > width {
			width = w
		}
	}
	for _, result := range results {
		fmt.Printf("%s  %-15s  %10.5f  %11.5f\n", runewidth.FillRight(result.Label, width),
			result.Kind, result.Coordinate.Lat, result.Coordinate.Lon)
	}
}
