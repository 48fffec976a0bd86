package euchre

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dgray001/gray-online-sub000/engine"
)

// Snapshot is the full game object delivered once by the game-joined
// response. The replica is built from it and from that point mutated only
// by the update stream.
type Snapshot struct {
	MatchID      string           `json:"match_id"`
	MySeat       int              `json:"my_seat"`
	Players      []PlayerSnapshot `json:"players"`
	Scores       [NumTeams]int    `json:"scores"`
	RoundNumber  int              `json:"round_number"`
	DealerSeat   int              `json:"dealer_seat"`
	LastUpdateID int              `json:"last_update_id"`
}

// PlayerSnapshot is one seat within a Snapshot. Hand is present only for
// this client's own seat; other seats carry just a hand size.
type PlayerSnapshot struct {
	Seat      int           `json:"seat"`
	ClientID  string        `json:"client_id"`
	Nickname  string        `json:"nickname"`
	Hand      []engine.Card `json:"hand,omitempty"`
	HandSize  int           `json:"hand_size"`
	Connected bool          `json:"connected"`
}

// newStateFromSnapshot validates the snapshot and builds the canonical
// GameState, starting in the dealing phase.
func newStateFromSnapshot(snap Snapshot) (*GameState, error) {
	if len(snap.Players) != NumPlayers {
		return nil, fmt.Errorf("euchre needs exactly %d players, snapshot has %d", NumPlayers, len(snap.Players))
	}
	matchID, err := uuid.Parse(snap.MatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match id %q: %w", snap.MatchID, err)
	}
	if snap.MySeat < -1 || snap.MySeat >= NumPlayers {
		return nil, fmt.Errorf("seat %d out of range", snap.MySeat)
	}

	state := &GameState{
		MatchID:             matchID,
		MySeat:              snap.MySeat,
		WinningTeam:         -1,
		LastAppliedUpdateID: snap.LastUpdateID,
		Round: RoundState{
			Number:     snap.RoundNumber,
			DealerSeat: snap.DealerSeat,
			Phase:      PhaseDealing,
		},
	}

	for t := 0; t < NumTeams; t++ {
		state.Teams[t] = &Team{
			Index: t,
			Seats: [2]int{t, t + NumTeams},
			Score: snap.Scores[t],
		}
	}

	seen := make(map[int]bool, NumPlayers)
	for _, ps := range snap.Players {
		if ps.Seat < 0 || ps.Seat >= NumPlayers || seen[ps.Seat] {
			return nil, fmt.Errorf("bad or duplicate seat %d in snapshot", ps.Seat)
		}
		seen[ps.Seat] = true

		clientID, err := uuid.Parse(ps.ClientID)
		if err != nil {
			return nil, fmt.Errorf("invalid client id for seat %d: %w", ps.Seat, err)
		}

		p := &Player{
			Seat:      ps.Seat,
			ClientID:  clientID,
			Nickname:  ps.Nickname,
			Connected: ps.Connected,
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

// hiddenHand builds a placeholder hand of n unknown cards.
func hiddenHand(n int) []engine.Card {
	hand := make([]engine.Card, n)
	for i := range hand {
		hand[i] = engine.Hidden
	}
	return hand
}
