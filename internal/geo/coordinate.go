// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geo provides the geographic value types shared by the matching and
// search components.
package geo

import (
	"errors"
	"math"
	"strconv"
)

const (
	// TruncPrecision is the decimal precision coordinates are truncated to for display
	TruncPrecision = 5
)

// ErrOutOfRange is returned when a parsed pair does not describe a valid EPSG coordinate
var ErrOutOfRange = errors.New("coordinate out of valid range")

// Order describes which of the two values in a coordinate pair comes first
type Order int

const (
	// LatFirst indicates a latitude,longitude pair
	LatFirst Order = iota
	// LngFirst indicates a longitude,latitude pair
	LngFirst
)

// Coordinate represents a geographic coordinate.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParsePair parses two numeric strings into a Coordinate, honoring the given pair
// order. Values outside the valid latitude/longitude ranges are rejected, not clamped.
func ParsePair(first, second string, order Order) (Coordinate, error) {
	a, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return Coordinate{}, err
	}
	b, err := strconv.ParseFloat(second, 64)
	if err != nil {
		return Coordinate{}, err
	}

	coord := Coordinate{Lat: a, Lon: b}
	if order == LngFirst {
		coord = Coordinate{Lat: b, Lon: a}
	}
	if !coord.Valid() {
		return Coordinate{}, ErrOutOfRange
	}

	return coord, nil
}

// BoundingBox represents a rectangular geographic area.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Truncate cuts off a float value at the given decimal precision
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
