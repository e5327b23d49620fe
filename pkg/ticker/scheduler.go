package ticker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unklstewy/overhead/pkg/coordinates"
	"github.com/unklstewy/overhead/pkg/overhead"
)

// DefaultPollInterval is how often the feed is queried while a session is active.
const DefaultPollInterval = 20 * time.Second

// Resolver produces the flight overhead an observer, or nil.
// *overhead.Service satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, observer coordinates.Geographic) (*overhead.FlightSummary, error)
}

// Scheduler polls a Resolver for one observer position at a time and hands
// results to a Board. Each Start begins a new session; results that arrive
// for an older session are discarded.
type Scheduler struct {
	resolver Resolver
	board    *Board
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	// lifecycle serializes Start and Stop
	lifecycle sync.Mutex

	mu       sync.Mutex
	session  uint64
	observer coordinates.Geographic
	cancel   context.CancelFunc
	done     chan struct{}
	refresh  chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock sets the clock driving the poll ticker.
func WithSchedulerClock(c clockwork.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerLogger sets the logger (default slog.Default()).
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates an idle scheduler.
func NewScheduler(resolver Resolver, board *Board, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		resolver: resolver,
		board:    board,
		clock:    clockwork.NewRealClock(),
		interval: DefaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start ends any running session and begins polling for observer: once
// immediately, then every poll interval. The board is reset first. Invalid
// coordinates leave the board empty without querying and return
// overhead.ErrInvalidCoordinates.
func (s *Scheduler) Start(ctx context.Context, observer coordinates.Geographic) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.stop()
	if !observer.Valid() {
		return overhead.ErrInvalidCoordinates
	}

	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	refresh := make(chan struct{}, 1)

	s.mu.Lock()
	s.session++
	id := s.session
	s.observer = observer
	s.cancel = cancel
	s.done = done
	s.refresh = refresh
	s.mu.Unlock()

	s.logger.Info("polling started",
		"lat", observer.Latitude, "lon", observer.Longitude, "interval", s.interval)

	go s.run(sctx, id, observer, done, refresh)
	return nil
}

// Stop ends the current session, waits for its poll loop to exit and
// cancels every board timer. It is safe to call when idle.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
}

// Refresh asks the running session to poll now instead of waiting for the
// next tick. It never blocks and does nothing while idle.
func (s *Scheduler) Refresh() {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()
	if refresh == nil {
		return
	}
	select {
	case refresh <- struct{}{}:
	default:
	}
}

// Observer returns the coordinates of the running session.
func (s *Scheduler) Observer() (coordinates.Geographic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observer, s.cancel != nil
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done, s.refresh = nil, nil, nil
	s.observer = coordinates.Geographic{}
	s.session++
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		s.logger.Info("polling stopped")
	}
	s.board.Reset()
}

func (s *Scheduler) run(ctx context.Context, id uint64, observer coordinates.Geographic, done, refresh chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.poll(ctx, id, observer)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.poll(ctx, id, observer)
		case <-refresh:
			s.poll(ctx, id, observer)
		}
	}
}

// poll runs one resolution and applies it if the session is still current.
// Apply runs outside s.mu; a session ending in between is harmless because
// stop waits for this goroutine before it resets the board.
func (s *Scheduler) poll(ctx context.Context, id uint64, observer coordinates.Geographic) {
	summary, err := s.resolver.Resolve(ctx, observer)
	if err != nil {
		s.logger.Warn("resolution failed", "err", err)
		summary = nil
	}

	s.mu.Lock()
	current := id == s.session && ctx.Err() == nil
	s.mu.Unlock()
	if !current {
		s.logger.Debug("discarding stale result", "session", id)
		return
	}
	s.board.Apply(summary)
}
