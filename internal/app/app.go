// Package app builds the shared components of the overhead binaries from a
// loaded configuration.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/unklstewy/overhead/pkg/adsb"
	"github.com/unklstewy/overhead/pkg/config"
	"github.com/unklstewy/overhead/pkg/overhead"
	"github.com/unklstewy/overhead/pkg/ticker"
)

// NewSource creates the feed client selected by cfg.Type.
func NewSource(cfg config.FeedConfig) (adsb.DataSource, error) {
	clientCfg := adsb.ClientConfig{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		Host:              cfg.Host,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.Timeout(),
	}

	switch cfg.Type {
	case config.FeedADSBExchange:
		return adsb.NewADSBExchangeClient(clientCfg), nil
	case config.FeedAirplanesLive:
		return adsb.NewAirplanesLiveClient(clientCfg), nil
	default:
		return nil, fmt.Errorf("unknown feed type %q", cfg.Type)
	}
}

// NewLogger creates a slog logger writing to w in the configured format.
// Unknown levels fall back to info.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewService wires the configured feed into a resolution service.
func NewService(cfg *config.Config, logger *slog.Logger, recorder overhead.Recorder) (*overhead.Service, adsb.DataSource, error) {
	source, err := NewSource(cfg.Feed)
	if err != nil {
		return nil, nil, err
	}
	opts := []overhead.Option{
		overhead.WithLogger(logger),
		overhead.WithRadius(cfg.Feed.Radius),
	}
	if recorder != nil {
		opts = append(opts, overhead.WithRecorder(recorder))
	}
	return overhead.NewService(source, opts...), source, nil
}

// NewTicker creates a board and the scheduler that feeds it from resolver.
// onChange is called after every visible board change and must not block.
func NewTicker(cfg config.TickerConfig, resolver ticker.Resolver, logger *slog.Logger, onChange func()) (*ticker.Board, *ticker.Scheduler) {
	board := ticker.NewBoard(
		ticker.WithTiming(cfg.ScrambleInterval(), cfg.SettleAfter()),
		ticker.WithOnChange(onChange),
		ticker.WithBoardLogger(logger),
	)
	scheduler := ticker.NewScheduler(resolver, board,
		ticker.WithPollInterval(cfg.PollInterval()),
		ticker.WithSchedulerLogger(logger),
	)
	return board, scheduler
}
