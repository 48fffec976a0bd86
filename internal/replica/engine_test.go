package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeGame records applied updates and fails on demand.
type fakeGame struct {
	mu      sync.Mutex
	applied []int
	// failWith maps update ids to the rejection Apply should return.
	failWith map[int]error
	// block, when set, makes Apply wait for ctx like a real pacer pause.
	block chan struct{}
	// notify receives each id as Apply sees it.
	notify chan int
}

func (f *fakeGame) Apply(ctx context.Context, env Envelope) error {
	if f.notify != nil {
		f.notify <- env.UpdateID
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err, ok := f.failWith[env.UpdateID]; ok {
		return err
	}
	f.mu.Lock()
	f.applied = append(f.applied, env.UpdateID)
	f.mu.Unlock()
	return nil
}

func (f *fakeGame) Ended() bool { return false }

func (f *fakeGame) appliedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.applied...)
}

func env(id int) Envelope {
	return Envelope{UpdateID: id, Kind: "noop", Payload: json.RawMessage(`{}`)}
}

// waitForID polls until the engine has consumed the given update id.
func waitForID(t *testing.T, e *Engine, id int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if e.LastUpdateID() >= id {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("engine never reached update id %d (at %d)", id, e.LastUpdateID())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAppliesInSubmissionOrder(t *testing.T) {
	game := &fakeGame{}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	for id := 1; id <= 20; id++ {
		e.Submit(env(id))
	}
	waitForID(t, e, 20)

	want := make([]int, 20)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, game.appliedIDs())
}

func TestDuplicateDiscarded(t *testing.T) {
	game := &fakeGame{}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	e.Submit(env(1))
	e.Submit(env(1))
	e.Submit(env(2))
	waitForID(t, e, 2)

	assert.Equal(t, []int{1, 2}, game.appliedIDs())
}

func TestGapRejectedWithoutConsuming(t *testing.T) {
	game := &fakeGame{}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	resyncs := make(chan error, 1)
	e.OnResync = func(_ Envelope, reason error) { resyncs <- reason }

	e.Submit(env(1))
	waitForID(t, e, 1)
	e.Submit(env(3))

	select {
	case reason := <-resyncs:
		assert.ErrorIs(t, reason, ErrSequenceGap)
	case <-time.After(2 * time.Second):
		t.Fatal("no resync requested for the gap")
	}
	assert.Equal(t, 1, e.LastUpdateID(), "a gapped id is not consumed")

	// The missing update can still arrive and apply.
	e.Submit(env(2))
	waitForID(t, e, 2)
	assert.Equal(t, []int{1, 2}, game.appliedIDs())
}

func TestRejectionConsumesIDAndRequestsResync(t *testing.T) {
	game := &fakeGame{failWith: map[int]error{2: fmt.Errorf("%w: seat 3 acted", ErrTurnDesync)}}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	resyncs := make(chan error, 1)
	e.OnResync = func(_ Envelope, reason error) { resyncs <- reason }

	e.Submit(env(1))
	e.Submit(env(2))
	e.Submit(env(3))
	waitForID(t, e, 3)

	select {
	case reason := <-resyncs:
		assert.ErrorIs(t, reason, ErrTurnDesync)
	case <-time.After(2 * time.Second):
		t.Fatal("no resync requested for the rejection")
	}
	assert.Equal(t, []int{1, 3}, game.appliedIDs(), "the stream continues past a rejection")
}

func TestUnknownKindIgnoredWithoutResync(t *testing.T) {
	game := &fakeGame{failWith: map[int]error{1: fmt.Errorf("%w: %q", ErrUnknownKind, "confetti")}}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	var resyncs int
	e.OnResync = func(Envelope, error) { resyncs++ }

	e.Submit(env(1))
	e.Submit(env(2))
	waitForID(t, e, 2)

	assert.Equal(t, []int{2}, game.appliedIDs())
	assert.Zero(t, resyncs)
}

func TestOnAppliedObservesSuccessesOnly(t *testing.T) {
	game := &fakeGame{failWith: map[int]error{2: ErrPhaseDesync}}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	var mu sync.Mutex
	var observed []int
	e.OnApplied = func(env Envelope) {
		mu.Lock()
		observed = append(observed, env.UpdateID)
		mu.Unlock()
	}

	e.Submit(env(1))
	e.Submit(env(2))
	e.Submit(env(3))
	waitForID(t, e, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 3}, observed)
}

func TestCloseCancelsInFlightHandler(t *testing.T) {
	game := &fakeGame{block: make(chan struct{}), notify: make(chan int, 1)}
	e := NewEngine(testLogger(), game, 0)

	e.Submit(env(1))
	select {
	case <-game.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock the in-flight handler")
	}

	assert.Empty(t, game.appliedIDs(), "a cancelled handler applies nothing")
	assert.Equal(t, 0, e.LastUpdateID(), "a cancelled update is not consumed")
}

func TestSubmitAfterCloseIsSafe(t *testing.T) {
	game := &fakeGame{}
	e := NewEngine(testLogger(), game, 0)
	e.Close()

	e.Submit(env(1))
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, game.appliedIDs())
}

// overlapGame trips if two Apply calls ever run concurrently.
type overlapGame struct {
	inFlight int32
	tripped  int32
	applied  int32
}

func (g *overlapGame) Apply(ctx context.Context, env Envelope) error {
	if atomic.AddInt32(&g.inFlight, 1) != 1 {
		atomic.StoreInt32(&g.tripped, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&g.applied, 1)
	atomic.AddInt32(&g.inFlight, -1)
	return nil
}

func (g *overlapGame) Ended() bool { return false }

func TestHandlersNeverOverlap(t *testing.T) {
	// Submitting while a handler is mid-pause must enqueue, not run
	// concurrently against the same state.
	game := &overlapGame{}
	e := NewEngine(testLogger(), game, 0)
	defer e.Close()

	for id := 1; id <= 30; id++ {
		e.Submit(env(id))
	}
	waitForID(t, e, 30)

	require.Zero(t, atomic.LoadInt32(&game.tripped), "two handlers ran concurrently")
	assert.Equal(t, int32(30), atomic.LoadInt32(&game.applied))
}
