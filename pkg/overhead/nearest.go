package overhead

import (
	"github.com/unklstewy/overhead/pkg/adsb"
	"github.com/unklstewy/overhead/pkg/coordinates"
)

// Nearest returns the record closest to the observer and its distance in
// meters. Ties go to the earliest record. ok is false only for an empty
// slice; callers are expected to check for that first.
// Records must already have passed FilterRecords.
func Nearest(observer coordinates.Geographic, records []adsb.Record) (rec adsb.Record, meters float64, ok bool) {
	for _, r := range records {
		d := coordinates.DistanceMeters(observer, coordinates.Geographic{
			Latitude:  *r.Lat,
			Longitude: *r.Lon,
		})
		if !ok || d < meters {
			rec, meters, ok = r, d, true
		}
	}
	return rec, meters, ok
}
