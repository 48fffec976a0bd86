package fiddlesticks

import (
	"encoding/json"
	"fmt"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Update kinds recognized by the fiddlesticks replica; the set is closed.
const (
	KindDealRound = "deal-round"
	KindBet       = "bet"
	KindPlayCard  = "play-card"
)

// Update is the sealed sum of fiddlesticks update variants.
type Update interface{ updateKind() string }

// DealRound starts a round: the hand size, the dealer, the turned trump
// card, and this client's hand.
type DealRound struct {
	Round      int
	DealerSeat int
	TrumpCard  engine.Card
	Hand       []engine.Card
}

// Bet is one player's declared trick count for the round.
type Bet struct {
	Seat   int
	Amount int
}

// PlayCard lays the card at CardIndex onto the current trick, carrying the
// card value for hidden-hand replication.
type PlayCard struct {
	Seat      int
	CardIndex int
	Card      engine.Card
}

func (DealRound) updateKind() string { return KindDealRound }
func (Bet) updateKind() string       { return KindBet }
func (PlayCard) updateKind() string  { return KindPlayCard }

type dealRoundPayload struct {
	Round      *int          `json:"round"`
	DealerSeat *int          `json:"dealer_seat"`
	TrumpCard  *engine.Card  `json:"trump_card"`
	Hand       []engine.Card `json:"hand"`
}

type betPayload struct {
	Seat   *int `json:"seat"`
	Amount *int `json:"amount"`
}

type playCardPayload struct {
	Seat      *int         `json:"seat"`
	CardIndex *int         `json:"card_index"`
	Card      *engine.Card `json:"card"`
}

// decodeUpdate maps an envelope onto the closed update set.
func decodeUpdate(env replica.Envelope) (Update, error) {
	switch env.Kind {
	case KindDealRound:
		var p dealRoundPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Round == nil || p.DealerSeat == nil || p.TrumpCard == nil {
			return nil, fmt.Errorf("%w: deal-round requires round, dealer_seat, trump_card", replica.ErrMalformedPayload)
		}
		return DealRound{Round: *p.Round, DealerSeat: *p.DealerSeat, TrumpCard: *p.TrumpCard, Hand: p.Hand}, nil

	case KindBet:
		var p betPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil || p.Amount == nil {
			return nil, fmt.Errorf("%w: bet requires seat, amount", replica.ErrMalformedPayload)
		}
		return Bet{Seat: *p.Seat, Amount: *p.Amount}, nil

	case KindPlayCard:
		var p playCardPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil || p.CardIndex == nil {
			return nil, fmt.Errorf("%w: play-card requires seat, card_index", replica.ErrMalformedPayload)
		}
		card := engine.Hidden
		if p.Card != nil {
			card = *p.Card
		}
		return PlayCard{Seat: *p.Seat, CardIndex: *p.CardIndex, Card: card}, nil
	}
	return nil, fmt.Errorf("%w: %q", replica.ErrUnknownKind, env.Kind)
}

func unmarshal(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", replica.ErrMalformedPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", replica.ErrMalformedPayload, err)
	}
	return nil
}
