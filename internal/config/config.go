// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/geonote/internal/geo"
	"github.com/wneessen/geonote/internal/match"
)

const (
	configEnv = "GEONOTE"

	// DefaultLogLevel is used before the configuration has been loaded
	DefaultLogLevel = slog.LevelInfo
)

// Supported search provider families
const (
	ProviderNominatim    = "osm-nominatim"
	ProviderGeocodeEarth = "geocode-earth"
	ProviderAMapTianditu = "amap-tianditu"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Search struct {
		// Allowed values: osm-nominatim, geocode-earth, amap-tianditu
		Provider       string `fig:"provider" default:"osm-nominatim"`
		MaxSuggestions int    `fig:"max_suggestions" default:"10"`
		UseBias        bool   `fig:"use_bias"`

		APIKeys struct {
			GeocodeEarth  string `fig:"geocode_earth"`
			AMapKey       string `fig:"amap_key"`
			AMapSecret    string `fig:"amap_secret"`
			TiandituToken string `fig:"tianditu_token"`
		} `fig:"api_keys"`
	} `fig:"search"`

	Cache struct {
		HitTTL  time.Duration `fig:"hit_ttl" default:"1h"`
		MissTTL time.Duration `fig:"miss_ttl" default:"10m"`
	} `fig:"cache"`

	// Rules are evaluated in list order, before the built-in default rules
	Rules []RuleConfig `fig:"rules"`
}

// RuleConfig is a single user-configured pattern rule
type RuleConfig struct {
	Name           string `fig:"name"`
	Pattern        string `fig:"pattern"`
	Kind           string `fig:"kind"`
	Order          string `fig:"order"`
	ContentPattern string `fig:"content_pattern"`
	ContentKind    string `fig:"content_kind"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	switch c.Search.Provider {
	case ProviderNominatim, ProviderGeocodeEarth, ProviderAMapTianditu:
	default:
		return fmt.Errorf("invalid search provider: %s", c.Search.Provider)
	}
	if c.Search.MaxSuggestions < 1 || c.Search.MaxSuggestions > 50 {
		return fmt.Errorf("invalid max suggestions: %d", c.Search.MaxSuggestions)
	}
	if c.Locale == "" {
		c.Locale = detectLocale()
	}

	// Compile the rule set once at load time so that malformed rules surface
	// as a configuration error here and not on every match call.
	specs, err := c.RuleSpecs()
	if err != nil {
		return err
	}
	if _, err = match.CompileRules(specs); err != nil {
		return err
	}

	return nil
}

// RuleSpecs converts the configured rules into matcher rule specs and appends
// the built-in default rules. Configured rules are evaluated first.
func (c *Config) RuleSpecs() ([]match.RuleSpec, error) {
	specs := make([]match.RuleSpec, 0, len(c.Rules)+len(match.DefaultRules()))
	for _, rule := range c.Rules {
		spec, err := ruleSpec(rule)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return append(specs, match.DefaultRules()...), nil
}

// Language returns the configured locale as a language tag
func (c *Config) Language() language.Tag {
	return language.Make(c.Locale)
}

func ruleSpec(rule RuleConfig) (match.RuleSpec, error) {
	spec := match.RuleSpec{
		Name:           rule.Name,
		Pattern:        rule.Pattern,
		ContentPattern: rule.ContentPattern,
	}

	switch rule.Kind {
	case "", "direct":
		spec.Kind = match.KindDirect
	case "fetch":
		spec.Kind = match.KindIndirectFetch
	default:
		return match.RuleSpec{}, fmt.Errorf("rule %q: invalid kind: %s", rule.Name, rule.Kind)
	}

	switch rule.Order {
	case "", "latlng":
		spec.Order = geo.LatFirst
	case "lnglat":
		spec.Order = geo.LngFirst
	default:
		return match.RuleSpec{}, fmt.Errorf("rule %q: invalid order: %s", rule.Name, rule.Order)
	}

	switch rule.ContentKind {
	case "", "latlng":
		spec.ContentKind = match.ContentLatLng
	case "lnglat":
		spec.ContentKind = match.ContentLngLat
	case "placename":
		spec.ContentKind = match.ContentPlaceName
	default:
		return match.RuleSpec{}, fmt.Errorf("rule %q: invalid content kind: %s", rule.Name, rule.ContentKind)
	}

	return spec, nil
}

// detectLocale determines the system locale, falling back to English if it
// cannot be detected
func detectLocale() string {
	tag, err := locale.Detect()
	if err != nil {
		tag = language.English
	}
	return tag.String()
}
