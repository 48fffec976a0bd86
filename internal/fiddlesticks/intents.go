package fiddlesticks

import (
	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Intent constructors for the player actions a fiddlesticks client can
// send. The replica mutates only when the server echoes an action back as
// an update.

// BetIntent declares the number of tricks the seat expects to take.
func BetIntent(seat, amount int) replica.Intent {
	return replica.Intent{Kind: KindBet, Payload: struct {
		Seat   int `json:"seat"`
		Amount int `json:"amount"`
	}{seat, amount}}
}

// PlayCardIntent lays the card at cardIndex onto the trick.
func PlayCardIntent(seat, cardIndex int, card engine.Card) replica.Intent {
	return replica.Intent{Kind: KindPlayCard, Payload: struct {
		Seat      int         `json:"seat"`
		CardIndex int         `json:"card_index"`
		Card      engine.Card `json:"card"`
	}{seat, cardIndex, card}}
}
