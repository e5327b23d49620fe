package adsb

import (
	"context"
	"strings"
)

// Record is a single aircraft report as returned by a radius query.
// Every field except Hex is optional in the feed, so numeric values are
// pointers: nil means the feed did not report the value.
// Field documentation: https://airplanes.live/adsb-field-explanations/
type Record struct {
	// Hex is the ICAO Mode S hex code (e.g., "a12345")
	Hex string `json:"hex"`

	// Flight is the callsign/flight number, often space padded (e.g., "UAL100  ")
	Flight *string `json:"flight"`

	// Lat is latitude in decimal degrees
	Lat *float64 `json:"lat"`

	// Lon is longitude in decimal degrees
	Lon *float64 `json:"lon"`

	// AltBaro is barometric altitude in feet
	// Note: Can be string "ground" or float
	AltBaro interface{} `json:"alt_baro"`

	// Gs is ground speed
	Gs *float64 `json:"gs"`

	// Track is ground track in degrees (0-360)
	Track *float64 `json:"track"`

	// BaroRate is barometric vertical rate in feet/minute
	BaroRate *float64 `json:"baro_rate"`

	// Seen is seconds since the last message from this aircraft
	Seen *float64 `json:"seen"`
}

// Callsign returns the trimmed callsign, or "" when none was reported.
func (r Record) Callsign() string {
	if r.Flight == nil {
		return ""
	}
	return strings.TrimSpace(*r.Flight)
}

// BaroAltitude returns the barometric altitude in feet.
// Returns nil if the feed sent no usable altitude; "ground" reads as 0.
func (r Record) BaroAltitude() *float64 {
	return parseAltitude(r.AltBaro)
}

// DataSource is the interface that all live-traffic feeds must implement.
// This abstraction allows switching between ADS-B Exchange (RapidAPI),
// airplanes.live, or a test server.
type DataSource interface {
	// GetAircraft returns the raw reports of every aircraft within radius
	// of the given point. centerLat/centerLon are decimal degrees; radius
	// is in the feed's native unit (nautical miles for both providers).
	GetAircraft(ctx context.Context, centerLat, centerLon float64, radius int) ([]Record, error)

	// Close cleanly shuts down the data source connection.
	Close() error
}

// feedResponse represents the JSON body returned by radius queries.
// Both supported providers use the readsb "ac" layout.
type feedResponse struct {
	// Aircraft is the array of aircraft data
	Aircraft []Record `json:"ac"`

	// Total number of aircraft
	Total int `json:"total"`

	// Current timestamp
	Now float64 `json:"now"`

	// Msg is set by ADS-B Exchange on errors ("No error" otherwise)
	Msg string `json:"msg"`
}

// parseAltitude safely extracts altitude from interface{} which can be float64 or string.
// Returns nil if the value is invalid; "ground" is reported as zero.
func parseAltitude(val interface{}) *float64 {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case float64:
		return &v
	case string:
		if v == "ground" {
			zero := 0.0
			return &zero
		}
		return nil
	default:
		return nil
	}
}
