// Package fiddlesticks replicates the oscillating-round betting game
// against the server's update stream. Unlike euchre the table size is
// variable and every player scores individually.
package fiddlesticks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dgray001/gray-online-sub000/engine"
)

// MinTablePlayers is the smallest table the game supports.
const MinTablePlayers = 2

// Settings are the per-match rule knobs, fixed at table creation and
// delivered in the snapshot.
type Settings struct {
	// MinRound and MaxRound bound the hand size; rounds oscillate
	// MinRound up to MaxRound and back down to MinRound.
	MinRound int `json:"min_round"`
	MaxRound int `json:"max_round"`
	// RoundPoints and TrickPoints set the exact-bet payout:
	// RoundPoints + TrickPoints * bet.
	RoundPoints int `json:"round_points"`
	TrickPoints int `json:"trick_points"`
}

func (s Settings) validate() error {
	if s.MinRound < 1 || s.MaxRound < s.MinRound {
		return fmt.Errorf("bad round bounds [%d, %d]", s.MinRound, s.MaxRound)
	}
	if s.RoundPoints < 0 || s.TrickPoints < 0 {
		return fmt.Errorf("negative payout settings")
	}
	return nil
}

// TotalRounds is the length of the oscillation.
func (s Settings) TotalRounds() int { return 2*(s.MaxRound-s.MinRound) + 1 }

// Phase is the closed lifecycle enum for a fiddlesticks round.
type Phase uint8

const (
	PhaseDealing Phase = iota
	PhaseBetting
	PhasePlaying
	PhaseRoundEnd
	PhaseGameEnd
)

var phaseNames = map[Phase]string{
	PhaseDealing:  "dealing",
	PhaseBetting:  "betting",
	PhasePlaying:  "playing",
	PhaseRoundEnd: "round_end",
	PhaseGameEnd:  "game_end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Player is one seat's replica. Bet is -1 until placed this round.
type Player struct {
	Seat      int
	ClientID  uuid.UUID
	Nickname  string
	Hand      []engine.Card
	HandKnown bool
	Connected bool
	Score     int
	Bet       int
	Tricks    int
}

func (p *Player) removeCard(idx int) (engine.Card, error) {
	if idx < 0 || idx >= len(p.Hand) {
		return engine.Hidden, fmt.Errorf("card index %d out of range for hand of %d", idx, len(p.Hand))
	}
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return c, nil
}

// RoundState tracks the in-round bookkeeping reset by every deal-round.
type RoundState struct {
	// Number is the hand size this round.
	Number     int
	DealerSeat int
	TurnSeat   int
	Phase      Phase
	// TrumpCard is turned after the deal; its suit is trump, no bowers.
	TrumpCard engine.Card
	// descending flips once the oscillation peaks at MaxRound.
	descending  bool
	betsPlaced  int
	cardsPlayed int
}

// GameState is the canonical mutable record for one fiddlesticks match,
// built once from the snapshot and mutated only by the update dispatcher.
type GameState struct {
	MatchID  uuid.UUID
	Settings Settings
	// MySeat is this client's seat, or -1 for a spectator.
	MySeat         int
	Players        []*Player
	Round          RoundState
	Trick          []engine.PlayedCard
	ArchivedTricks [][]engine.PlayedCard
	GameEnded      bool
	// Winners holds every seat tied for the top score at game end.
	Winners             []int
	LastAppliedUpdateID int
}

func (s *GameState) nextSeat(from int) int { return (from + 1) % len(s.Players) }

// nextRoundNumber returns the hand size the following deal must carry and
// whether the oscillation will then be on its way down.
func (s *GameState) nextRoundNumber() (int, bool) {
	n, desc := s.Round.Number, s.Round.descending
	if n == 0 {
		return s.Settings.MinRound, false
	}
	if !desc && n >= s.Settings.MaxRound {
		desc = true
	}
	if desc {
		return n - 1, true
	}
	return n + 1, false
}

// lastRound reports whether the current round closes the oscillation.
func (s *GameState) lastRound() bool {
	if s.Settings.MaxRound == s.Settings.MinRound {
		return s.Round.Number == s.Settings.MinRound
	}
	return s.Round.descending && s.Round.Number == s.Settings.MinRound
}

// Ranking is a plain trump ranking; fiddlesticks has no bowers.
func (s *GameState) Ranking() engine.Ranking {
	return engine.Ranking{Trump: s.Round.TrumpCard.Suit}
}

// HandSizeSum is cards still held plus cards played; constant in a round.
func (s *GameState) HandSizeSum() int {
	sum := s.Round.cardsPlayed
	for _, p := range s.Players {
		sum += len(p.Hand)
	}
	return sum
}
