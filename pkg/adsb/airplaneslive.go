package adsb

import (
	"context"
	"fmt"
)

// AirplanesLiveBaseURL is the public airplanes.live API.
const AirplanesLiveBaseURL = "https://api.airplanes.live/v2"

// AirplanesLiveClient implements the DataSource interface for airplanes.live API.
// API Documentation: https://airplanes.live/api-guide/
// Rate Limit: 1 request per second, no API key.
type AirplanesLiveClient struct {
	httpFeed
}

// NewAirplanesLiveClient creates a new airplanes.live API client.
// An empty BaseURL defaults to AirplanesLiveBaseURL.
func NewAirplanesLiveClient(cfg ClientConfig) *AirplanesLiveClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AirplanesLiveBaseURL
	}
	return &AirplanesLiveClient{httpFeed: newHTTPFeed(cfg)}
}

// GetAircraft returns all aircraft within a radius of a given point.
// Uses the /point/[lat]/[lon]/[radius] endpoint.
// Maximum radius is 250 nautical miles.
func (c *AirplanesLiveClient) GetAircraft(ctx context.Context, centerLat, centerLon float64, radius int) ([]Record, error) {
	// Enforce maximum radius
	if radius > 250 {
		radius = 250
	}

	url := fmt.Sprintf("%s/point/%.4f/%.4f/%d", c.baseURL, centerLat, centerLon, radius)
	return c.fetch(ctx, url)
}

// Close cleanly shuts down the client.
// For airplanes.live, this is a no-op as there are no persistent connections.
func (c *AirplanesLiveClient) Close() error {
	return nil
}
