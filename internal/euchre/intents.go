package euchre

import (
	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Intent constructors for the player actions a euchre client can send.
// Intents are requests, not state changes: the replica mutates only when
// the server echoes the action back as an update.

// PassIntent declines to order up the turned card.
func PassIntent(seat int) replica.Intent {
	return replica.Intent{Kind: KindPass, Payload: struct {
		Seat int `json:"seat"`
	}{seat}}
}

// BidIntent orders up the turned card's suit as trump.
func BidIntent(seat int, goingAlone bool) replica.Intent {
	return replica.Intent{Kind: KindBid, Payload: struct {
		Seat       int  `json:"seat"`
		GoingAlone bool `json:"going_alone"`
	}{seat, goingAlone}}
}

// BidChooseTrumpIntent names trump in the forced dealer bid.
func BidChooseTrumpIntent(seat int, goingAlone bool, trump engine.Suit) replica.Intent {
	return replica.Intent{Kind: KindBidChooseTrump, Payload: struct {
		Seat       int         `json:"seat"`
		GoingAlone bool        `json:"going_alone"`
		TrumpSuit  engine.Suit `json:"trump_suit"`
	}{seat, goingAlone, trump}}
}

// DealerSubstituteIntent discards the card at cardIndex for the turned card.
func DealerSubstituteIntent(seat, cardIndex int) replica.Intent {
	return replica.Intent{Kind: KindDealerSubstitutesCard, Payload: struct {
		Seat      int `json:"seat"`
		CardIndex int `json:"card_index"`
	}{seat, cardIndex}}
}

// PlayCardIntent lays the card at cardIndex onto the trick.
func PlayCardIntent(seat, cardIndex int, card engine.Card) replica.Intent {
	return replica.Intent{Kind: KindPlayCard, Payload: struct {
		Seat      int         `json:"seat"`
		CardIndex int         `json:"card_index"`
		Card      engine.Card `json:"card"`
	}{seat, cardIndex, card}}
}
