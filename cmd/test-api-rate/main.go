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
)

// main brackets the feed's call rate to find the fastest poll that stays
// clear of 429 responses, and prints the matching requests_per_second.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	minDelay := flag.Duration("min", time.Second, "Shortest delay between calls")
	maxDelay := flag.Duration("max", 10*time.Second, "Longest delay between calls")
	testCalls := flag.Int("calls", 5, "Number of test calls per interval")
	flag.Parse()

	log.Println("=========================================")
	log.Println("  Feed Rate Limit Tester")
	log.Println("=========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observer := coordinates.Geographic{Latitude: cfg.Observer.Latitude, Longitude: cfg.Observer.Longitude}
	if !observer.Valid() {
		log.Fatal("Error: observer latitude/longitude not configured")
	}

	// The tester paces calls itself; lift the client-side budget out of the way.
	feedCfg := cfg.Feed
	feedCfg.RequestsPerSecond = 100
	source, err := app.NewSource(feedCfg)
	if err != nil {
		log.Fatalf("Failed to create feed client: %v", err)
	}
	defer source.Close()

	log.Printf("Testing feed: %s", cfg.Feed.Type)
	log.Printf("Bracketing range: %v - %v, %d calls per interval", *minDelay, *maxDelay, *testCalls)
	log.Println()

	currentDelay := *maxDelay
	minSafe := *maxDelay
	maxFailed := *minDelay

	for iteration := 1; maxFailed < minSafe-500*time.Millisecond; iteration++ {
		if iteration > 10 {
			log.Println("Maximum iterations reached")
			break
		}
		log.Printf("Iteration %d: testing %v delay...", iteration, currentDelay)

		ok, err := testCallRate(source, observer, cfg.Feed.Radius, currentDelay, *testCalls)
		switch {
		case ok:
			log.Printf("  ✓ Success with %v delay", currentDelay)
			minSafe = currentDelay
			currentDelay = (currentDelay + maxFailed) / 2
		case err != nil:
			log.Printf("  ✗ Failed with %v delay: %v", currentDelay, err)
			maxFailed = currentDelay
			currentDelay = (currentDelay + minSafe) / 2
		default:
			log.Printf("  ✗ Rate limited (429) with %v delay", currentDelay)
			maxFailed = currentDelay
			currentDelay = (currentDelay + minSafe) / 2
		}
		log.Println()

		time.Sleep(3 * time.Second)
	}

	log.Println("=========================================")
	log.Printf("Recommended delay: %v", minSafe)
	log.Printf("Update your config.json:")
	log.Printf("  \"requests_per_second\": %.2f", 1/minSafe.Seconds())
	log.Printf("Polling every %v uses about %.0f calls per hour",
		cfg.Ticker.PollInterval(), time.Hour.Seconds()/cfg.Ticker.PollInterval().Seconds())
	log.Println("=========================================")
}

// testCallRate makes numCalls requests spaced by delay. It reports false
// with a nil error when the feed answered 429.
func testCallRate(source adsb.DataSource, observer coordinates.Geographic, radius int, delay time.Duration, numCalls int) (bool, error) {
	for i := 0; i < numCalls; i++ {
		if i > 0 {
			time.Sleep(delay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		records, err := source.GetAircraft(ctx, observer.Latitude, observer.Longitude, radius)
		cancel()
		if err != nil {
			if rle, ok := adsb.IsRateLimitError(err); ok {
				log.Printf("    Call %d/%d: 429, retry after %v", i+1, numCalls, rle.RetryAfter)
				return false, nil
			}
			return false, err
		}

		log.Printf("    Call %d/%d: Success (%d aircraft found)", i+1, numCalls, len(records))
	}

	return true, nil
}
