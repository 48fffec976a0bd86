package replica

import (
	"context"
	"time"
)

// Standard pauses used by update handlers to pace visible animations.
// Suspension is purely time-based: no pause waits on another update, so
// handlers cannot deadlock.
const (
	// PlaySettlePause follows each card laid on the trick.
	PlaySettlePause = 500 * time.Millisecond
	// TrickCollectPause covers sweeping a resolved trick to the winner.
	TrickCollectPause = time.Second
	// AnnouncePause covers bid, bet, and trump announcements.
	AnnouncePause = 750 * time.Millisecond
	// dealPerCard and dealCap bound the card-deal animation.
	dealPerCard = 150 * time.Millisecond
	dealCap     = 4 * time.Second
	dealSettle  = 250 * time.Millisecond
)

// DealPause returns the duration of the deal animation for the given total
// card count: min(150ms x cards, 4s) + 250ms.
func DealPause(cardCount int) time.Duration {
	d := time.Duration(cardCount) * dealPerCard
	if d > dealCap {
		d = dealCap
	}
	return d + dealSettle
}

// Pacer suspends an update handler for a fixed duration. Pause returns
// early with the context's error when the owning engine is torn down, so a
// discarded game state is never mutated by a stale timer.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

// NewPacer returns the wall-clock pacer used in production.
func NewPacer() Pacer { return timerPacer{} }

type timerPacer struct{}

func (timerPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Instant is a pacer that never sleeps. Tests use it to run handler
// sequences at full speed while keeping the cancellation semantics.
var Instant Pacer = instantPacer{}

type instantPacer struct{}

func (instantPacer) Pause(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
