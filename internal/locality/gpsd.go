// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package locality provides an optional locality-bias source backed by a
// local gpsd daemon.
package locality

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/geonote/internal/geo"
)

const (
	host = "localhost"
	port = "2947"

	// FixTimeout is the maximum time to wait for a usable GPS fix
	FixTimeout = time.Second * 15
)

// Locate connects to the local gpsd and returns the first position with at
// least a 2D fix. It is used to derive a search bias center when the caller
// does not supply one.
func Locate(ctx context.Context) (geo.Coordinate, error) {
	return LocateAddr(ctx, net.JoinHostPort(host, port))
}

// LocateAddr is Locate against a specific gpsd address
func LocateAddr(ctx context.Context, addr string) (geo.Coordinate, error) {
	session, err := gpsd.Dial(addr)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to connect to gpsd at %q: %w", addr, err)
	}

	fixes := make(chan geo.Coordinate, 1)
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}

		// Need at least a 2D fix
		if tpv.Mode < gpsd.Mode2D {
			return
		}

		coord := geo.Coordinate{
			Lat: geo.Truncate(tpv.Lat, geo.TruncPrecision),
			Lon: geo.Truncate(tpv.Lon, geo.TruncPrecision),
		}
		select {
		case fixes <- coord:
		default:
		}
	})

	// Watch() returns a channel that closes when the watch ends, e.g. on a
	// lost connection. go-gpsd has no Close(), the session is torn down when
	// the process exits.
	done := session.Watch()

	select {
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	case <-time.After(FixTimeout):
		return geo.Coordinate{}, fmt.Errorf("timed out waiting for a GPS fix")
	case <-done:
		return geo.Coordinate{}, fmt.Errorf("gpsd connection ended before a fix was received")
	case coord := <-fixes:
		return coord, nil
	}
}
