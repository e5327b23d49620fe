// Package overhead resolves the single aircraft most relevant to an
// observer from a live-traffic feed.
//
// Resolution never surfaces feed problems to callers: network errors,
// non-success statuses and malformed payloads are logged and reported as
// "no flight". The only error Resolve returns is ErrInvalidCoordinates.
package overhead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/unklstewy/overhead/pkg/adsb"
	"github.com/unklstewy/overhead/pkg/coordinates"
)

// SearchRadius is the feed query radius in the feed's native unit.
const SearchRadius = 10

// ErrInvalidCoordinates is returned when the observer position is missing,
// zero or NaN. The feed is not queried.
var ErrInvalidCoordinates = errors.New("missing lat or lon")

// Outcome classifies a resolution for logging and metrics.
type Outcome int

const (
	// OutcomeNoFlight means the feed answered but nothing qualified.
	OutcomeNoFlight Outcome = iota
	// OutcomeFlight means a summary was produced.
	OutcomeFlight
	// OutcomeUpstreamFailure means the feed call failed; reported as no flight.
	OutcomeUpstreamFailure
	// OutcomeInvalidInput means the observer coordinates were rejected.
	OutcomeInvalidInput
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoFlight:
		return "no_flight"
	case OutcomeFlight:
		return "flight"
	case OutcomeUpstreamFailure:
		return "upstream_failure"
	case OutcomeInvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Recorder receives one observation per Resolve call.
type Recorder interface {
	ObserveResolution(outcome Outcome, elapsed time.Duration)
}

// Service wires a DataSource to the filter, selector and summary builder.
type Service struct {
	source   adsb.DataSource
	radius   int
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithRadius overrides SearchRadius.
func WithRadius(radius int) Option {
	return func(s *Service) {
		if radius > 0 {
			s.radius = radius
		}
	}
}

// NewService creates a resolution service on top of source.
func NewService(source adsb.DataSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		radius: SearchRadius,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolution is the internal result of one query; err is kept only for
// logging.
type resolution struct {
	summary *FlightSummary
	outcome Outcome
	err     error
}

// Resolve returns the summary of the aircraft nearest to observer, or nil
// when none qualifies or the feed failed.
func (s *Service) Resolve(ctx context.Context, observer coordinates.Geographic) (*FlightSummary, error) {
	start := time.Now()
	res := s.resolve(ctx, observer)
	if s.recorder != nil {
		s.recorder.ObserveResolution(res.outcome, time.Since(start))
	}

	switch res.outcome {
	case OutcomeInvalidInput:
		return nil, res.err
	case OutcomeUpstreamFailure:
		if rle, ok := adsb.IsRateLimitError(res.err); ok {
			s.logger.Warn("feed rate limited",
				"retry_after", rle.RetryAfter,
				"remaining", rle.Headers.Remaining,
				"limit", rle.Headers.Limit)
		} else if ctx.Err() != nil {
			s.logger.Debug("feed query abandoned", "err", res.err)
		} else {
			s.logger.Error("feed query failed", "err", res.err,
				"lat", observer.Latitude, "lon", observer.Longitude)
		}
		return nil, nil
	default:
		return res.summary, nil
	}
}

func (s *Service) resolve(ctx context.Context, observer coordinates.Geographic) resolution {
	if !observer.Valid() {
		return resolution{outcome: OutcomeInvalidInput, err: ErrInvalidCoordinates}
	}

	s.logger.Debug("querying feed",
		"lat", fmt.Sprintf("%.4f", observer.Latitude),
		"lon", fmt.Sprintf("%.4f", observer.Longitude),
		"radius", s.radius)

	records, err := s.source.GetAircraft(ctx, observer.Latitude, observer.Longitude, s.radius)
	if err != nil {
		return resolution{outcome: OutcomeUpstreamFailure, err: err}
	}

	filtered := FilterRecords(records)
	if len(filtered) == 0 {
		s.logger.Debug("no qualifying aircraft", "received", len(records))
		return resolution{outcome: OutcomeNoFlight}
	}

	rec, meters, _ := Nearest(observer, filtered)
	summary := BuildSummary(rec)

	s.logger.Debug("selected aircraft",
		"hex", rec.Hex,
		"callsign", rec.Callsign(),
		"distance_nm", fmt.Sprintf("%.2f", meters/coordinates.MetersPerNauticalMile),
		"candidates", len(filtered))

	return resolution{summary: &summary, outcome: OutcomeFlight}
}

// Response is the body of the resolution endpoint: zero or one flight.
type Response struct {
	Flights []FlightSummary `json:"flights"`
}

// NewResponse wraps an optional summary. Flights is never nil so it
// encodes as [] rather than null.
func NewResponse(summary *FlightSummary) Response {
	if summary == nil {
		return Response{Flights: []FlightSummary{}}
	}
	return Response{Flights: []FlightSummary{*summary}}
}
