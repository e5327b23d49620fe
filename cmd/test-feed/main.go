package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/unklstewy/overhead/internal/app"
	"github.com/unklstewy/overhead/pkg/adsb"
	"github.com/unklstewy/overhead/pkg/config"
	"github.com/unklstewy/overhead/pkg/coordinates"
	"github.com/unklstewy/overhead/pkg/overhead"
	"github.com/unklstewy/overhead/pkg/ticker"
)

// main is a test program to verify the configured feed.
// It queries once around the observer, prints every record with the reason
// it would or would not be considered, and shows the board the ticker
// would display.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	lat := flag.Float64("lat", 40.6895, "Observer latitude")
	lon := flag.Float64("lon", -74.1745, "Observer longitude")
	limit := flag.Int("limit", 10, "Maximum records to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observer := coordinates.Geographic{Latitude: *lat, Longitude: *lon}
	if !observer.Valid() {
		log.Fatal("Missing lat or lon")
	}

	log.Printf("Feed Test - %s", cfg.Feed.Type)
	log.Printf("Observer Location: %.4f, %.4f (radius %d)", observer.Latitude, observer.Longitude, cfg.Feed.Radius)
	log.Println("=====================================")

	source, err := app.NewSource(cfg.Feed)
	if err != nil {
		log.Fatalf("Failed to create feed client: %v", err)
	}
	defer source.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.Timeout()+5*time.Second)
	defer cancel()

	start := time.Now()
	records, err := source.GetAircraft(ctx, observer.Latitude, observer.Longitude, cfg.Feed.Radius)
	if err != nil {
		if rle, ok := adsb.IsRateLimitError(err); ok {
			log.Fatalf("Rate limited: retry after %v (%d/%d remaining)",
				rle.RetryAfter, rle.Headers.Remaining, rle.Headers.Limit)
		}
		log.Fatalf("Failed to fetch aircraft: %v", err)
	}
	log.Printf("Found %d aircraft in %v", len(records), time.Since(start).Round(time.Millisecond))

	for i, rec := range records {
		if i >= *limit {
			log.Printf("\n... and %d more aircraft", len(records)-*limit)
			break
		}
		log.Printf("\nAircraft #%d:", i+1)
		log.Printf("  ICAO:     %s", rec.Hex)
		log.Printf("  Callsign: %q", rec.Callsign())
		if rec.Lat != nil && rec.Lon != nil {
			pos := coordinates.Geographic{Latitude: *rec.Lat, Longitude: *rec.Lon}
			log.Printf("  Position: %.4f, %.4f (%.2f nm)", pos.Latitude, pos.Longitude,
				coordinates.DistanceNauticalMiles(observer, pos))
		}
		if alt := rec.BaroAltitude(); alt != nil {
			log.Printf("  Altitude: %.0f ft", *alt)
		}
		if rec.Seen != nil {
			log.Printf("  Seen:     %.1fs ago", *rec.Seen)
		}
		if len(overhead.FilterRecords([]adsb.Record{rec})) == 1 {
			log.Printf("  Status:   candidate")
		} else {
			log.Printf("  Status:   filtered")
		}
	}

	log.Println("\n=====================================")
	var summary *overhead.FlightSummary
	if rec, meters, ok := overhead.Nearest(observer, overhead.FilterRecords(records)); ok {
		s := overhead.BuildSummary(rec)
		summary = &s
		log.Printf("Selected %s at %.2f nm, fingerprint %s",
			rec.Hex, meters/coordinates.MetersPerNauticalMile, s.Fingerprint())
	} else {
		log.Println("No qualifying aircraft")
	}
	for _, row := range ticker.RenderRows(summary) {
		log.Printf("  |%s|", row)
	}
}
