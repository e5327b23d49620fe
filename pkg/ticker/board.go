// Package ticker drives the split-flap display: a four-row board that
// reveals a newly detected flight with a scramble-then-settle animation and
// a scheduler that keeps it fed from the resolution service.
package ticker

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unklstewy/overhead/pkg/overhead"
)

// ScrambleCharset is the alphabet used while a cell is scrambling:
// A-Z without I and O, then the digits.
const ScrambleCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// Default animation timing.
const (
	DefaultScrambleInterval = 50 * time.Millisecond
	DefaultSettleAfter      = 1000 * time.Millisecond
)

// State is the board's display state.
type State int

const (
	// StateEmpty shows the "NO FLIGHT OVERHEAD" message.
	StateEmpty State = iota
	// StateRevealing is animating toward a newly detected flight.
	StateRevealing
	// StateSettled statically shows the current flight.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateRevealing:
		return "REVEALING"
	case StateSettled:
		return "SETTLED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a copy of the board suitable for rendering.
type Snapshot struct {
	State State

	// Rows are the current cell contents, Cols runes each
	Rows [Rows]string

	// Summary is the flight currently shown (nil when empty or mid-reveal)
	Summary *overhead.FlightSummary

	// Fingerprint of Summary, "" when none
	Fingerprint string
}

// Board is the reveal state machine. It is safe for concurrent use; every
// mutation happens under its mutex, and timer callbacks are fenced by a
// generation counter so nothing scheduled before a Reset or a superseding
// Apply can touch the board afterwards.
type Board struct {
	mu sync.Mutex

	clock         clockwork.Clock
	rng           *rand.Rand
	scrambleEvery time.Duration
	settleAfter   time.Duration
	onChange      func()
	logger        *slog.Logger

	state           State
	cells           [Rows][Cols]rune
	current         *overhead.FlightSummary
	lastFingerprint string

	// reveal in progress
	gen       uint64
	pending   *overhead.FlightSummary
	target    [Rows][Cols]rune
	settled   [Rows][Cols]bool
	remaining int
	timers    timerSet
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithClock sets the clock used for animation timers.
func WithClock(c clockwork.Clock) BoardOption {
	return func(b *Board) { b.clock = c }
}

// WithTiming overrides the scramble interval and settle deadline.
func WithTiming(scrambleEvery, settleAfter time.Duration) BoardOption {
	return func(b *Board) {
		if scrambleEvery > 0 {
			b.scrambleEvery = scrambleEvery
		}
		if settleAfter > 0 {
			b.settleAfter = settleAfter
		}
	}
}

// WithRand sets the scramble character source.
func WithRand(r *rand.Rand) BoardOption {
	return func(b *Board) { b.rng = r }
}

// WithOnChange registers fn to be called, outside the board lock, after
// every visible change. fn may read the Scheduler (Observer, Refresh) but
// must not call Start or Stop.
func WithOnChange(fn func()) BoardOption {
	return func(b *Board) { b.onChange = fn }
}

// WithBoardLogger sets the logger (default slog.Default()).
func WithBoardLogger(l *slog.Logger) BoardOption {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBoard creates an empty board.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		clock:         clockwork.NewRealClock(),
		scrambleEvery: DefaultScrambleInterval,
		settleAfter:   DefaultSettleAfter,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	b.cells = cellsOf(RenderRows(nil))
	return b
}

// Apply feeds one poll result into the state machine. The reveal plays
// only when a flight appears on an empty board with a fingerprint different
// from the last one shown; every other result (including one arriving
// mid-reveal) is shown immediately.
func (b *Board) Apply(summary *overhead.FlightSummary) {
	b.mu.Lock()
	fingerprint := ""
	if summary != nil {
		s := *summary
		summary = &s
		fingerprint = s.Fingerprint()
	}

	if summary != nil && b.state == StateEmpty && fingerprint != b.lastFingerprint {
		b.startRevealLocked(summary)
	} else {
		if b.state == StateRevealing {
			b.logger.Debug("reveal superseded", "fingerprint", fingerprint)
		}
		b.settleLocked(summary)
	}
	b.mu.Unlock()
	b.notify()
}

// Reset cancels every outstanding timer and returns the board to its
// initial empty state, forgetting the last fingerprint.
func (b *Board) Reset() {
	b.mu.Lock()
	b.cancelRevealLocked()
	b.state = StateEmpty
	b.current = nil
	b.lastFingerprint = ""
	b.cells = cellsOf(RenderRows(nil))
	b.mu.Unlock()
	b.notify()
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		State:       b.state,
		Fingerprint: b.lastFingerprint,
	}
	if b.current != nil {
		s := *b.current
		snap.Summary = &s
	}
	for i := range b.cells {
		snap.Rows[i] = string(b.cells[i][:])
	}
	return snap
}

// settleLocked shows summary immediately, cancelling any reveal.
func (b *Board) settleLocked(summary *overhead.FlightSummary) {
	b.cancelRevealLocked()
	b.current = summary
	b.cells = cellsOf(RenderRows(summary))
	if summary == nil {
		b.state = StateEmpty
		b.lastFingerprint = ""
		return
	}
	b.state = StateSettled
	b.lastFingerprint = summary.Fingerprint()
}

func (b *Board) startRevealLocked(summary *overhead.FlightSummary) {
	b.cancelRevealLocked()
	gen := b.gen

	b.state = StateRevealing
	b.pending = summary
	b.target = cellsOf(RenderRows(summary))
	b.settled = [Rows][Cols]bool{}
	b.remaining = Rows * Cols
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c] = ' '
		}
	}

	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			b.armScrambleLocked(gen, r, c)
			b.timers.deadline[r][c] = b.clock.AfterFunc(b.settleAfter, func() {
				b.settleCell(gen, r, c)
			})
		}
	}
	b.logger.Debug("reveal started", "fingerprint", summary.Fingerprint())
}

func (b *Board) armScrambleLocked(gen uint64, r, c int) {
	b.timers.scramble[r][c] = b.clock.AfterFunc(b.scrambleEvery, func() {
		b.scrambleCell(gen, r, c)
	})
}

// scrambleCell writes a random character and re-arms itself until the
// cell settles.
func (b *Board) scrambleCell(gen uint64, r, c int) {
	b.mu.Lock()
	if gen != b.gen || b.settled[r][c] {
		b.mu.Unlock()
		return
	}
	b.cells[r][c] = rune(ScrambleCharset[b.rng.IntN(len(ScrambleCharset))])
	b.armScrambleLocked(gen, r, c)
	b.mu.Unlock()
	b.notify()
}

// settleCell forces a cell to its target; the last one to settle finishes
// the reveal.
func (b *Board) settleCell(gen uint64, r, c int) {
	b.mu.Lock()
	if gen != b.gen || b.settled[r][c] {
		b.mu.Unlock()
		return
	}
	b.settled[r][c] = true
	b.timers.stopCell(r, c)
	b.cells[r][c] = b.target[r][c]
	b.remaining--

	if b.remaining == 0 {
		summary := b.pending
		b.pending = nil
		b.gen++
		b.current = summary
		b.lastFingerprint = summary.Fingerprint()
		b.state = StateSettled
		b.logger.Debug("reveal finished", "fingerprint", b.lastFingerprint)
	}
	b.mu.Unlock()
	b.notify()
}

// cancelRevealLocked stops all reveal timers and invalidates callbacks
// that may already be waiting on the lock.
func (b *Board) cancelRevealLocked() {
	b.gen++
	b.timers.stopAll()
	b.pending = nil
	b.remaining = 0
}

func (b *Board) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}

// timerSet owns every timer of the current reveal.
type timerSet struct {
	scramble [Rows][Cols]clockwork.Timer
	deadline [Rows][Cols]clockwork.Timer
}

func (t *timerSet) stopCell(r, c int) {
	if t.scramble[r][c] != nil {
		t.scramble[r][c].Stop()
		t.scramble[r][c] = nil
	}
	if t.deadline[r][c] != nil {
		t.deadline[r][c].Stop()
		t.deadline[r][c] = nil
	}
}

func (t *timerSet) stopAll() {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			t.stopCell(r, c)
		}
	}
}

// active counts timers that have not been stopped or have not fired.
func (t *timerSet) active() int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if t.scramble[r][c] != nil {
				n++
			}
			if t.deadline[r][c] != nil {
				n++
			}
		}
	}
	return n
}
