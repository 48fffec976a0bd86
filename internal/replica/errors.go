package replica

import "errors"

// Error taxonomy for rejected updates. Every rejection leaves the game
// state untouched; the dispatcher logs the error and moves on to the next
// queued update.
var (
	// ErrTurnDesync: the update's seat does not match the expected actor.
	ErrTurnDesync = errors.New("update seat does not match expected actor")

	// ErrPhaseDesync: the update arrived in a phase that cannot accept it.
	ErrPhaseDesync = errors.New("update arrived in unexpected phase")

	// ErrMalformedPayload: a required payload field is missing or
	// contradicts the known local state.
	ErrMalformedPayload = errors.New("malformed update payload")

	// ErrUnknownKind: the update kind is not part of the game's closed
	// update set.
	ErrUnknownKind = errors.New("unknown update kind")

	// ErrSequenceGap: the update id skips ahead of the expected sequence.
	ErrSequenceGap = errors.New("update id gap in sequence")
)

// IsDesync reports whether err is one of the rejections that indicate the
// replica may have drifted from the server and a resync is worth asking for.
func IsDesync(err error) bool {
	return errors.Is(err, ErrTurnDesync) ||
		errors.Is(err, ErrPhaseDesync) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrSequenceGap)
}
