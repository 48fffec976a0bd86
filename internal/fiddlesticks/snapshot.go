package fiddlesticks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dgray001/gray-online-sub000/engine"
)

// Snapshot is the full game object delivered once by the game-joined
// response.
type Snapshot struct {
	MatchID      string           `json:"match_id"`
	MySeat       int              `json:"my_seat"`
	Settings     Settings         `json:"settings"`
	Players      []PlayerSnapshot `json:"players"`
	LastUpdateID int              `json:"last_update_id"`
}

// PlayerSnapshot is one seat within a Snapshot. Hand is present only for
// this client's own seat.
type PlayerSnapshot struct {
	Seat      int           `json:"seat"`
	ClientID  string        `json:"client_id"`
	Nickname  string        `json:"nickname"`
	Hand      []engine.Card `json:"hand,omitempty"`
	HandSize  int           `json:"hand_size"`
	Connected bool          `json:"connected"`
	Score     int           `json:"score"`
}

func newStateFromSnapshot(snap Snapshot) (*GameState, error) {
	if err := snap.Settings.validate(); err != nil {
		return nil, err
	}
	if len(snap.Players) < MinTablePlayers {
		return nil, fmt.Errorf("fiddlesticks needs at least %d players, snapshot has %d", MinTablePlayers, len(snap.Players))
	}
	matchID, err := uuid.Parse(snap.MatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match id %q: %w", snap.MatchID, err)
	}
	if snap.MySeat < -1 || snap.MySeat >= len(snap.Players) {
		return nil, fmt.Errorf("seat %d out of range", snap.MySeat)
	}

	state := &GameState{
		MatchID:             matchID,
		MySeat:              snap.MySeat,
		Settings:            snap.Settings,
		Players:             make([]*Player, len(snap.Players)),
		LastAppliedUpdateID: snap.LastUpdateID,
		Round:               RoundState{Phase: PhaseDealing},
	}

	for _, ps := range snap.Players {
		if ps.Seat < 0 || ps.Seat >= len(snap.Players) || state.Players[ps.Seat] != nil {
			return nil, fmt.Errorf("bad or duplicate seat %d in snapshot", ps.Seat)
		}
		clientID, err := uuid.Parse(ps.ClientID)
		if err != nil {
			return nil, fmt.Errorf("invalid client id for seat %d: %w", ps.Seat, err)
		}
		p := &Player{
			Seat:      ps.Seat,
			ClientID:  clientID,
			Nickname:  ps.Nickname,
			Connected: ps.Connected,
			Score:     ps.Score,
			Bet:       -1,
		}
		if ps.Seat == snap.MySeat && ps.Hand != nil {
			p.Hand = append([]engine.Card(nil), ps.Hand...)
			p.HandKnown = true
		} else {
			p.Hand = hiddenHand(ps.HandSize)
		}
		state.Players[ps.Seat] = p
	}

	return state, nil
}

func hiddenHand(n int) []engine.Card {
	hand := make([]engine.Card, n)
	for i := range hand {
		hand[i] = engine.Hidden
	}
	return hand
}
