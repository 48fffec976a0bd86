// Package engine implements the pure card rules shared by the gray-online
// trick-taking games.
//
// The package is dependency-free and side-effect-free: it knows nothing
// about servers, updates, or animation. Everything stateful lives in the
// game packages under internal/.
package engine

import (
	"encoding/json"
	"fmt"
)

// Suit identifies one of the four standard suits.
type Suit uint8

const (
	SuitDiamonds Suit = iota
	SuitClubs
	SuitHearts
	SuitSpades
	numSuits
)

var suitNames = [numSuits]string{"diamonds", "clubs", "hearts", "spades"}

// String returns the lowercase suit name used on the wire.
func (s Suit) String() string {
	if s >= numSuits {
		return "unknown"
	}
	return suitNames[s]
}

// IsRed reports whether the suit is red (diamonds or hearts).
func (s Suit) IsRed() bool { return s == SuitDiamonds || s == SuitHearts }

// SameColor returns the other suit of the same color: the left-bower
// pairing (diamonds<->hearts, clubs<->spades).
func (s Suit) SameColor() Suit {
	switch s {
	case SuitDiamonds:
		return SuitHearts
	case SuitHearts:
		return SuitDiamonds
	case SuitClubs:
		return SuitSpades
	default:
		return SuitClubs
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Suit) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Suit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if string(text) == name {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", text)
}

// Rank constants. Number cards carry their printed value; faces continue
// the sequence up to the ace.
const (
	RankTwo   = 2
	RankThree = 3
	RankFour  = 4
	RankFive  = 5
	RankSix   = 6
	RankSeven = 7
	RankEight = 8
	RankNine  = 9
	RankTen   = 10
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Card is an immutable suit/rank pair. Cards compare by value, so they can
// key maps and be tested with ==.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// NewCard constructs a Card.
func NewCard(suit Suit, rank int) Card { return Card{Suit: suit, Rank: rank} }

// Valid reports whether the rank falls in the playable range.
func (c Card) Valid() bool { return c.Rank >= RankTwo && c.Rank <= RankAce && c.Suit < numSuits }

var rankNames = map[int]string{
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankAce:   "A",
}

// String renders a short human form, e.g. "J-diamonds" or "9-spades".
func (c Card) String() string {
	if name, ok := rankNames[c.Rank]; ok {
		return fmt.Sprintf("%s-%s", name, c.Suit)
	}
	return fmt.Sprintf("%d-%s", c.Rank, c.Suit)
}

// Hidden is the placeholder for a card whose identity the replica does not
// know (an opponent's hand slot). It is invalid by construction.
var Hidden = Card{Suit: numSuits, Rank: 0}

// IsHidden reports whether the card is the unknown-card placeholder.
func (c Card) IsHidden() bool { return !c.Valid() }

// MarshalJSON keeps hidden cards off the wire as null.
func (c Card) MarshalJSON() ([]byte, error) {
	if c.IsHidden() {
		return []byte("null"), nil
	}
	type alias Card
	return json.Marshal(alias(c))
}

// UnmarshalJSON maps null back to the hidden placeholder.
func (c *Card) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Hidden
		return nil
	}
	type alias Card
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Card(a)
	return nil
}
