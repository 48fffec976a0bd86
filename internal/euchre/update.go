package euchre

import (
	"encoding/json"
	"fmt"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Update kinds recognized by the euchre replica. The set is closed: the
// envelope is decoded into exactly one of the Update variants below at the
// dispatch boundary, and anything else is rejected before a handler runs.
const (
	KindDealRound             = "deal-round"
	KindPass                  = "pass"
	KindBid                   = "bid"
	KindBidChooseTrump        = "bid-choose-trump"
	KindDealerSubstitutesCard = "dealer-substitutes-card"
	KindPlayCard              = "play-card"
)

// Update is the sealed sum of euchre update variants.
type Update interface{ updateKind() string }

// DealRound starts a round: dealer, turned trump card, and this client's
// hand. Other seats are replicated as hidden hands of HandSize cards.
type DealRound struct {
	Round      int
	DealerSeat int
	TrumpCard  engine.Card
	// Hand is this client's dealt hand; nil for spectators.
	Hand []engine.Card
}

// Pass declines to order up the turned card.
type Pass struct {
	Seat int
}

// Bid orders up the turned card's suit as trump.
type Bid struct {
	Seat       int
	GoingAlone bool
}

// BidChooseTrump is the dealer's forced trump call after everyone passed.
type BidChooseTrump struct {
	Seat       int
	GoingAlone bool
	TrumpSuit  engine.Suit
}

// DealerSubstitutesCard has the dealer pick up the trump card and discard
// the card at CardIndex.
type DealerSubstitutesCard struct {
	Seat      int
	CardIndex int
}

// PlayCard lays the card at CardIndex onto the current trick. Card carries
// the value itself so hidden hands can be replicated and known hands can be
// cross-checked against the index.
type PlayCard struct {
	Seat      int
	CardIndex int
	Card      engine.Card
}

func (DealRound) updateKind() string             { return KindDealRound }
func (Pass) updateKind() string                  { return KindPass }
func (Bid) updateKind() string                   { return KindBid }
func (BidChooseTrump) updateKind() string        { return KindBidChooseTrump }
func (DealerSubstitutesCard) updateKind() string { return KindDealerSubstitutesCard }
func (PlayCard) updateKind() string              { return KindPlayCard }

// Wire payloads use pointer fields so that a missing required field is
// distinguishable from a zero value and rejected as malformed.
type dealRoundPayload struct {
	Round      *int          `json:"round"`
	DealerSeat *int          `json:"dealer_seat"`
	TrumpCard  *engine.Card  `json:"trump_card"`
	Hand       []engine.Card `json:"hand"`
}

type seatPayload struct {
	Seat *int `json:"seat"`
}

type bidPayload struct {
	Seat       *int  `json:"seat"`
	GoingAlone *bool `json:"going_alone"`
}

type bidChooseTrumpPayload struct {
	Seat       *int         `json:"seat"`
	GoingAlone *bool        `json:"going_alone"`
	TrumpSuit  *engine.Suit `json:"trump_suit"`
}

type cardIndexPayload struct {
	Seat      *int `json:"seat"`
	CardIndex *int `json:"card_index"`
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

	case KindPass:
		var p seatPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil {
			return nil, fmt.Errorf("%w: pass requires seat", replica.ErrMalformedPayload)
		}
		return Pass{Seat: *p.Seat}, nil

	case KindBid:
		var p bidPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil || p.GoingAlone == nil {
			return nil, fmt.Errorf("%w: bid requires seat, going_alone", replica.ErrMalformedPayload)
		}
		return Bid{Seat: *p.Seat, GoingAlone: *p.GoingAlone}, nil

	case KindBidChooseTrump:
		var p bidChooseTrumpPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil || p.GoingAlone == nil || p.TrumpSuit == nil {
			return nil, fmt.Errorf("%w: bid-choose-trump requires seat, going_alone, trump_suit", replica.ErrMalformedPayload)
		}
		return BidChooseTrump{Seat: *p.Seat, GoingAlone: *p.GoingAlone, TrumpSuit: *p.TrumpSuit}, nil

	case KindDealerSubstitutesCard:
		var p cardIndexPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Seat == nil || p.CardIndex == nil {
			return nil, fmt.Errorf("%w: dealer-substitutes-card requires seat, card_index", replica.ErrMalformedPayload)
		}
		return DealerSubstitutesCard{Seat: *p.Seat, CardIndex: *p.CardIndex}, nil

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
