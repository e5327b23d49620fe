package overhead

import (
	"math"

	"github.com/unklstewy/overhead/pkg/adsb"
)

// MaxReportAge is the oldest report, in seconds, still considered live.
const MaxReportAge = 30.0

// FilterRecords returns the records usable for selection, in their original
// order. A record passes when it has a non-zero position, a finite positive
// barometric altitude, a finite positive ground speed, and was seen less
// than MaxReportAge seconds ago. Everything else is dropped silently: a
// radius query routinely returns parked and stale aircraft.
func FilterRecords(records []adsb.Record) []adsb.Record {
	filtered := make([]adsb.Record, 0, len(records))
	for _, rec := range records {
		if usable(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func usable(rec adsb.Record) bool {
	if rec.Lat == nil || rec.Lon == nil || *rec.Lat == 0 || *rec.Lon == 0 {
		return false
	}
	if math.IsNaN(*rec.Lat) || math.IsNaN(*rec.Lon) {
		return false
	}
	if !positiveFinite(rec.BaroAltitude()) || !positiveFinite(rec.Gs) {
		return false
	}
	return rec.Seen != nil && *rec.Seen < MaxReportAge
}

func positiveFinite(v *float64) bool {
	return v != nil && !math.IsInf(*v, 0) && !math.IsNaN(*v) && *v > 0
}
