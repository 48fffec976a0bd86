package fiddlesticks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// echo runs an intent's payload back through the update decoder, the way
// the server echoes an accepted action.
func echo(t *testing.T, intent replica.Intent) Update {
	t.Helper()
	raw, err := json.Marshal(intent.Payload)
	require.NoError(t, err)
	u, err := decodeUpdate(replica.Envelope{UpdateID: 1, Kind: intent.Kind, Payload: raw})
	require.NoError(t, err)
	return u
}

func TestIntentWireShapes(t *testing.T) {
	raw, err := json.Marshal(BetIntent(2, 3).Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seat":2,"amount":3}`, string(raw))

	card := engine.NewCard(engine.SuitSpades, engine.RankTen)
	raw, err = json.Marshal(PlayCardIntent(1, 0, card).Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seat":1,"card_index":0,"card":{"suit":"spades","rank":10}}`, string(raw))
}

func TestIntentsEchoAsUpdates(t *testing.T) {
	assert.Equal(t, Bet{Seat: 2, Amount: 3}, echo(t, BetIntent(2, 3)))

	card := engine.NewCard(engine.SuitHearts, engine.RankQueen)
	assert.Equal(t,
		PlayCard{Seat: 1, CardIndex: 0, Card: card},
		echo(t, PlayCardIntent(1, 0, card)))
}
