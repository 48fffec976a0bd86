// Package replica implements the update-replication engine: a strictly
// serialized queue of server updates drained by a single worker, with
// timed animation pacing between mutations.
//
// The server is the sole source of truth. The engine owns exactly one
// game replica, applies each update at most once and in order, and
// guarantees that handler N has fully completed, animation pauses
// included, before handler N+1 touches shared state.
package replica

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Game is one concrete game replica (euchre, fiddlesticks). Apply decodes
// the envelope into the game's closed update set, validates phase and turn,
// mutates the canonical state exactly once, and paces its animations via
// the Pacer the game was constructed with. Apply must leave state untouched
// when returning a rejection error.
type Game interface {
	Apply(ctx context.Context, env Envelope) error
	Ended() bool
}

// ResyncFunc is invoked when a rejected update suggests the replica has
// drifted from the server. The session layer may use it to request a fresh
// snapshot; the engine itself continues best-effort either way.
type ResyncFunc func(env Envelope, reason error)

// AppliedFunc observes every successfully applied update, e.g. for the
// Redis journal. Called from the worker goroutine after the handler and
// its animations have settled.
type AppliedFunc func(env Envelope)

// Engine serializes update application for one game instance.
type Engine struct {
	log  *logrus.Entry
	game Game

	mu      sync.Mutex
	pending []Envelope
	kick    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	lastID int // highest update id consumed, applied or not

	OnResync  ResyncFunc
	OnApplied AppliedFunc
}

// NewEngine creates an engine for the given game. lastID is the update id
// the initial snapshot was taken at; the first expected update is lastID+1.
func NewEngine(log *logrus.Entry, game Game, lastID int) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:    log,
		game:   game,
		kick:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		lastID: lastID,
	}
	go e.run()
	return e
}

// Submit enqueues an update in arrival order and returns immediately. A
// submit while the worker is mid-handler enqueues rather than running
// concurrently; the FIFO plus the single worker is what makes two in-flight
// handlers racing on the same trick and hand slices impossible.
func (e *Engine) Submit(env Envelope) {
	e.mu.Lock()
	e.pending = append(e.pending, env)
	e.mu.Unlock()
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Close tears the engine down: pending pauses are cancelled, the in-flight
// handler aborts at its next suspension point, and the worker exits. No
// handler mutates state after Close returns.
func (e *Engine) Close() {
	e.cancel()
	<-e.done
}

// LastUpdateID returns the highest update id the engine has consumed.
func (e *Engine) LastUpdateID() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastID
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		env, ok := e.next()
		if !ok {
			return
		}
		e.process(env)
	}
}

// next blocks until an update is available or the engine is torn down.
func (e *Engine) next() (Envelope, bool) {
	for {
		e.mu.Lock()
		if len(e.pending) > 0 {
			env := e.pending[0]
			e.pending = e.pending[1:]
			e.mu.Unlock()
			return env, true
		}
		e.mu.Unlock()

		select {
		case <-e.kick:
		case <-e.ctx.Done():
			return Envelope{}, false
		}
	}
}

// process applies a single update end to end. It returns only after the
// handler and all of its animation pauses have settled.
func (e *Engine) process(env Envelope) {
	log := e.log.WithFields(logrus.Fields{
		"update_id": env.UpdateID,
		"kind":      env.Kind,
	})

	e.mu.Lock()
	last := e.lastID
	e.mu.Unlock()

	switch {
	case env.UpdateID <= last:
		// At-least-once delivery: a repeat of something already consumed.
		log.Warn("duplicate update discarded")
		return
	case env.UpdateID != last+1:
		log.WithField("expected", last+1).Error("update id gap, rejecting")
		e.resync(env, ErrSequenceGap)
		return
	}

	err := e.game.Apply(e.ctx, env)
	if err != nil && errors.Is(err, context.Canceled) {
		// Teardown raced the handler; the pacer already stopped it.
		return
	}

	// The id is consumed whether the update applied or was rejected, so
	// the replica stays aligned with the server's stream.
	e.mu.Lock()
	e.lastID = env.UpdateID
	e.mu.Unlock()

	switch {
	case err == nil:
		if e.OnApplied != nil {
			e.OnApplied(env)
		}
	case errors.Is(err, ErrUnknownKind):
		log.Warn("unknown update kind ignored")
	case IsDesync(err):
		log.WithError(err).Error("update rejected, state unchanged")
		e.resync(env, err)
	default:
		log.WithError(err).Error("update failed")
	}
}

func (e *Engine) resync(env Envelope, reason error) {
	if e.OnResync != nil {
		e.OnResync(env, reason)
	}
}
