package adsb

import (
	"context"
	"fmt"
)

const (
	// ADSBExchangeBaseURL is the RapidAPI gateway for ADS-B Exchange.
	ADSBExchangeBaseURL = "https://adsbexchange-com1.p.rapidapi.com"

	// ADSBExchangeHost is the X-RapidAPI-Host header value.
	ADSBExchangeHost = "adsbexchange-com1.p.rapidapi.com"
)

// ADSBExchangeClient implements the DataSource interface for the
// ADS-B Exchange API published through RapidAPI.
// Requests are authenticated with the X-RapidAPI-Key header.
type ADSBExchangeClient struct {
	httpFeed
}

// NewADSBExchangeClient creates a new ADS-B Exchange client.
// Empty BaseURL and Host default to the public RapidAPI endpoint.
func NewADSBExchangeClient(cfg ClientConfig) *ADSBExchangeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ADSBExchangeBaseURL
	}
	if cfg.Host == "" {
		cfg.Host = ADSBExchangeHost
	}

	feed := newHTTPFeed(cfg)
	feed.headers.Set("X-RapidAPI-Key", cfg.APIKey)
	feed.headers.Set("X-RapidAPI-Host", cfg.Host)

	return &ADSBExchangeClient{httpFeed: feed}
}

// GetAircraft returns all aircraft within radius nautical miles of a point.
// Uses the /v2/lat/[lat]/lon/[lon]/dist/[radius]/ endpoint.
func (c *ADSBExchangeClient) GetAircraft(ctx context.Context, centerLat, centerLon float64, radius int) ([]Record, error) {
	url := fmt.Sprintf("%s/v2/lat/%.4f/lon/%.4f/dist/%d/", c.baseURL, centerLat, centerLon, radius)
	return c.fetch(ctx, url)
}

// Close cleanly shuts down the client.
func (c *ADSBExchangeClient) Close() error {
	return nil
}
