package ticker

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unklstewy/overhead/pkg/overhead"
)

var united = &overhead.FlightSummary{
	AircraftID:     "abc123",
	DisplayName:    "United",
	AltitudeFeet:   35000,
	GroundSpeedMph: 450,
	HeadingDegrees: 270,
}

var delta = &overhead.FlightSummary{
	AircraftID:     "def456",
	DisplayName:    "Delta",
	AltitudeFeet:   12000,
	GroundSpeedMph: 310,
	HeadingDegrees: 45,
}

// eventually polls cond until it holds or the deadline passes. Timer
// callbacks run on their own goroutines, so assertions on their effects
// have to wait for them.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestBoard(clock clockwork.Clock) *Board {
	return NewBoard(
		WithClock(clock),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
}

func (b *Board) activeTimers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timers.active()
}

func TestNewBoardIsEmpty(t *testing.T) {
	b := newTestBoard(clockwork.NewFakeClock())
	snap := b.Snapshot()

	if snap.State != StateEmpty {
		t.Errorf("Expected EMPTY, got %v", snap.State)
	}
	if snap.Rows != RenderRows(nil) {
		t.Errorf("Expected empty message, got %q", snap.Rows)
	}
	if snap.Summary != nil || snap.Fingerprint != "" {
		t.Errorf("Expected no summary, got %+v", snap)
	}
}

// TestRevealFromEmpty checks the full EMPTY -> REVEALING -> SETTLED path.
func TestRevealFromEmpty(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := newTestBoard(clock)

	b.Apply(united)

	snap := b.Snapshot()
	if snap.State != StateRevealing {
		t.Fatalf("Expected REVEALING, got %v", snap.State)
	}
	if snap.Summary != nil {
		t.Error("Summary should not be recorded until the reveal finishes")
	}
	if got := b.activeTimers(); got != 2*Rows*Cols {
		t.Errorf("Expected %d timers, got %d", 2*Rows*Cols, got)
	}

	// One scramble step: cells fill with scramble characters.
	clock.Advance(DefaultScrambleInterval)
	eventually(t, "scrambled cells", func() bool {
		for _, row := range b.Snapshot().Rows {
			if strings.TrimSpace(row) != "" {
				return true
			}
		}
		return false
	})
	for _, row := range b.Snapshot().Rows {
		for _, ch := range row {
			if ch != ' ' && !strings.ContainsRune(ScrambleCharset, ch) {
				t.Errorf("Unexpected scramble character %q", ch)
			}
		}
	}
	if b.Snapshot().State != StateRevealing {
		t.Error("Expected REVEALING after first scramble step")
	}

	// Past the settle deadline every cell holds its target.
	clock.Advance(DefaultSettleAfter)
	eventually(t, "settled board", func() bool {
		return b.Snapshot().State == StateSettled
	})

	snap = b.Snapshot()
	if snap.Rows != RenderRows(united) {
		t.Errorf("Rows = %q, want %q", snap.Rows, RenderRows(united))
	}
	if snap.Rows[3] != "HDG W 270°    " {
		t.Errorf("Heading row = %q", snap.Rows[3])
	}
	if snap.Summary == nil || *snap.Summary != *united {
		t.Errorf("Summary = %+v, want %+v", snap.Summary, united)
	}
	if snap.Fingerprint != united.Fingerprint() {
		t.Errorf("Fingerprint = %q, want %q", snap.Fingerprint, united.Fingerprint())
	}
	eventually(t, "timers drained", func() bool { return b.activeTimers() == 0 })

	// Late scramble callbacks must not clobber settled cells.
	clock.Advance(10 * DefaultScrambleInterval)
	time.Sleep(20 * time.Millisecond)
	if got := b.Snapshot().Rows; got != RenderRows(united) {
		t.Errorf("Settled rows changed to %q", got)
	}
}

// settledOn drives b to SETTLED on summary via a complete reveal.
func settledOn(t *testing.T, clock *clockwork.FakeClock, b *Board, summary *overhead.FlightSummary) {
	t.Helper()
	b.Apply(summary)
	clock.Advance(DefaultSettleAfter + DefaultScrambleInterval)
	eventually(t, "settled board", func() bool {
		return b.Snapshot().State == StateSettled
	})
}

// TestUpdateWhileSettled checks that in-place updates skip the animation.
func TestUpdateWhileSettled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := newTestBoard(clock)
	settledOn(t, clock, b, united)

	t.Run("Different flight", func(t *testing.T) {
		b.Apply(delta)

		snap := b.Snapshot()
		if snap.State != StateSettled {
			t.Fatalf("Expected SETTLED, got %v", snap.State)
		}
		if snap.Rows != RenderRows(delta) {
			t.Errorf("Rows = %q, want %q", snap.Rows, RenderRows(delta))
		}
		if snap.Fingerprint != delta.Fingerprint() {
			t.Errorf("Fingerprint = %q", snap.Fingerprint)
		}
		if b.activeTimers() != 0 {
			t.Error("No timers expected for an in-place update")
		}
	})

	t.Run("Same flight with new speed", func(t *testing.T) {
		faster := *delta
		faster.GroundSpeedMph = 330
		b.Apply(&faster)

		snap := b.Snapshot()
		if snap.State != StateSettled {
			t.Fatalf("Expected SETTLED, got %v", snap.State)
		}
		if snap.Rows[2] != "SPD 330MPH    " {
			t.Errorf("Speed row = %q", snap.Rows[2])
		}
	})

	t.Run("Flight leaves", func(t *testing.T) {
		b.Apply(nil)

		snap := b.Snapshot()
		if snap.State != StateEmpty {
			t.Fatalf("Expected EMPTY, got %v", snap.State)
		}
		if snap.Rows != RenderRows(nil) {
			t.Errorf("Rows = %q", snap.Rows)
		}
		if snap.Fingerprint != "" || snap.Summary != nil {
			t.Errorf("Expected cleared summary, got %+v", snap)
		}
	})

	t.Run("Next flight reveals again", func(t *testing.T) {
		b.Apply(united)
		if got := b.Snapshot().State; got != StateRevealing {
			t.Errorf("Expected REVEALING, got %v", got)
		}
	})
}

// TestEmptyResultOnEmptyBoard checks that nothing animates without a flight.
func TestEmptyResultOnEmptyBoard(t *testing.T) {
	b := newTestBoard(clockwork.NewFakeClock())
	b.Apply(nil)

	snap := b.Snapshot()
	if snap.State != StateEmpty || snap.Rows != RenderRows(nil) {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if b.activeTimers() != 0 {
		t.Error("No timers expected")
	}
}

// TestResultSupersedesReveal checks that a poll result mid-reveal cancels
// the animation and is shown immediately.
func TestResultSupersedesReveal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := newTestBoard(clock)

	b.Apply(united)
	clock.Advance(DefaultScrambleInterval)
	b.Apply(delta)

	snap := b.Snapshot()
	if snap.State != StateSettled || snap.Rows != RenderRows(delta) {
		t.Fatalf("Expected settled delta, got %+v", snap)
	}
	if b.activeTimers() != 0 {
		t.Errorf("Expected reveal timers cancelled, %d active", b.activeTimers())
	}

	clock.Advance(2 * DefaultSettleAfter)
	time.Sleep(20 * time.Millisecond)
	if got := b.Snapshot(); got.Rows != RenderRows(delta) || got.Summary.AircraftID != "def456" {
		t.Errorf("Superseded reveal leaked into the board: %+v", got)
	}
}

// TestResetMidReveal checks that no cell changes after teardown.
func TestResetMidReveal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := newTestBoard(clock)

	b.Apply(united)
	clock.Advance(3 * DefaultScrambleInterval)
	eventually(t, "scrambled cells", func() bool {
		rows := b.Snapshot().Rows
		return strings.TrimSpace(strings.Join(rows[:], "")) != ""
	})

	b.Reset()
	before := b.Snapshot()
	if before.State != StateEmpty || before.Rows != RenderRows(nil) {
		t.Fatalf("Expected empty board after reset, got %+v", before)
	}
	if b.activeTimers() != 0 {
		t.Fatalf("Expected no timers after reset, got %d", b.activeTimers())
	}

	clock.Advance(5 * DefaultSettleAfter)
	time.Sleep(20 * time.Millisecond)
	if after := b.Snapshot(); after != before {
		t.Errorf("Board mutated after reset: before %+v, after %+v", before, after)
	}
}

func TestOnChange(t *testing.T) {
	clock := clockwork.NewFakeClock()
	changes := make(chan struct{}, 1024)
	b := NewBoard(WithClock(clock), WithOnChange(func() { changes <- struct{}{} }))

	b.Apply(delta)
	select {
	case <-changes:
	default:
		t.Fatal("Expected a change notification from Apply")
	}

	clock.Advance(DefaultScrambleInterval)
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a change notification from a scramble step")
	}
}

func TestStateString(t *testing.T) {
	if StateRevealing.String() != "REVEALING" {
		t.Errorf("Unexpected state name %q", StateRevealing)
	}
}
