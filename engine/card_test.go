package engine

import (
	"encoding/json"
	"testing"
)

// TestCardEquality: cards are value types and compare with ==.
func TestCardEquality(t *testing.T) {
	a := NewCard(SuitHearts, RankNine)
	b := NewCard(SuitHearts, RankNine)
	if a != b {
		t.Errorf("expected %v == %v", a, b)
	}
	if a == NewCard(SuitSpades, RankNine) {
		t.Error("cards of different suits must not be equal")
	}
}

// TestSameColor verifies the red/black bower pairings.
func TestSameColor(t *testing.T) {
	pairs := map[Suit]Suit{
		SuitDiamonds: SuitHearts,
		SuitHearts:   SuitDiamonds,
		SuitClubs:    SuitSpades,
		SuitSpades:   SuitClubs,
	}
	for s, want := range pairs {
		if got := s.SameColor(); got != want {
			t.Errorf("SameColor(%v) = %v, want %v", s, got, want)
		}
	}
}

// TestCardJSONRoundTrip: suit names and ranks survive the wire format.
func TestCardJSONRoundTrip(t *testing.T) {
	c := NewCard(SuitClubs, RankJack)
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"suit":"clubs","rank":11}` {
		t.Errorf("unexpected wire form %s", data)
	}
	var back Card
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != c {
		t.Errorf("round trip %v != %v", back, c)
	}
}

// TestHiddenCardJSON: the unknown-card placeholder serializes as null.
func TestHiddenCardJSON(t *testing.T) {
	data, err := json.Marshal(Hidden)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}
	var c Card
	if err := json.Unmarshal([]byte("null"), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !c.IsHidden() {
		t.Error("null must decode to the hidden placeholder")
	}
}

// TestSuitUnmarshalRejectsGarbage.
func TestSuitUnmarshalRejectsGarbage(t *testing.T) {
	var s Suit
	if err := s.UnmarshalText([]byte("wands")); err == nil {
		t.Error("expected error for unknown suit name")
	}
}
