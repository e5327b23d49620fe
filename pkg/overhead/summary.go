package overhead

import (
	"fmt"
	"math"

	"github.com/unklstewy/overhead/pkg/adsb"
	"github.com/unklstewy/overhead/pkg/airline"
	"github.com/unklstewy/overhead/pkg/coordinates"
)

// FlightSummary is the normalized view of the aircraft overhead.
// JSON names follow the /api/flight wire format.
type FlightSummary struct {
	// AircraftID is the ICAO hex address, "" when unreported
	AircraftID string `json:"icao24"`

	// DisplayName is a known carrier name or airline.Private
	DisplayName string `json:"callsign"`

	// AltitudeFeet is barometric altitude
	AltitudeFeet int `json:"altitude"`

	// GroundSpeedMph is the rounded ground speed as reported by the feed
	GroundSpeedMph int `json:"groundspeed"`

	// HeadingDegrees is the rounded ground track
	HeadingDegrees int `json:"heading"`

	// VerticalRateFpm is the barometric vertical rate (negative = descending)
	VerticalRateFpm int `json:"verticalRate"`
}

// Fingerprint is the change-detection key for the display. Two different
// aircraft with the same carrier, altitude and heading share a fingerprint.
func (s FlightSummary) Fingerprint() string {
	return fmt.Sprintf("%s-%d-%d", s.DisplayName, s.AltitudeFeet, s.HeadingDegrees)
}

// BuildSummary normalizes a filtered record. Missing values degrade to
// zero or airline.Private; it never fails.
func BuildSummary(rec adsb.Record) FlightSummary {
	return FlightSummary{
		AircraftID:      rec.Hex,
		DisplayName:     airline.Name(rec.Callsign()),
		AltitudeFeet:    int(math.Round(valueOrZero(rec.BaroAltitude()))),
		GroundSpeedMph:  int(math.Round(valueOrZero(rec.Gs))),
		HeadingDegrees:  heading(valueOrZero(rec.Track)),
		VerticalRateFpm: int(math.Round(valueOrZero(rec.BaroRate))),
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// heading rounds a track to whole degrees in [0, 360).
func heading(track float64) int {
	return int(math.Round(coordinates.NormalizeAzimuth(track))) % 360
}
