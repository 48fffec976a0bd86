// Package euchre replicates the 4-player partnership bidding game against
// the server's update stream.
package euchre

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dgray001/gray-online-sub000/engine"
)

const (
	// NumPlayers is fixed: two partnerships of two.
	NumPlayers = 2 * NumTeams
	// NumTeams of two seats each, assigned by seat % 2.
	NumTeams = 2
	// HandSize dealt to each player every round.
	HandSize = 5
	// TricksPerRound equals the hand size.
	TricksPerRound = HandSize
	// WinningScore ends the game the instant a team reaches it.
	WinningScore = 10
)

// Phase is the closed lifecycle enum for a euchre round. Exactly one phase
// is active at a time by construction.
type Phase uint8

const (
	// PhaseDealing: waiting for the server's deal-round update.
	PhaseDealing Phase = iota
	// PhaseBidding: seats after the dealer decide on the turned card.
	PhaseBidding
	// PhaseBiddingChooseTrump: everyone passed, the dealer must name trump.
	PhaseBiddingChooseTrump
	// PhaseDealerSubstituting: the dealer picks up trump and discards.
	PhaseDealerSubstituting
	// PhasePlaying: tricks are played.
	PhasePlaying
	// PhaseRoundEnd: scoring applied, waiting for the next deal-round.
	PhaseRoundEnd
	// PhaseGameEnd: a team reached the winning score.
	PhaseGameEnd
)

var phaseNames = map[Phase]string{
	PhaseDealing:            "dealing",
	PhaseBidding:            "bidding",
	PhaseBiddingChooseTrump: "bidding_choose_trump",
	PhaseDealerSubstituting: "dealer_substituting",
	PhasePlaying:            "playing",
	PhaseRoundEnd:           "round_end",
	PhaseGameEnd:            "game_end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Player is one seat's replica. The hand is index-addressed: update
// payloads reference cards by current position, so removals happen before
// any later index is interpreted. Opponents' hands hold Hidden placeholders
// of the correct length.
type Player struct {
	Seat      int
	ClientID  uuid.UUID
	Nickname  string
	Hand      []engine.Card
	HandKnown bool
	Connected bool
}

// removeCard takes the card at idx out of the hand and returns it.
func (p *Player) removeCard(idx int) (engine.Card, error) {
	if idx < 0 || idx >= len(p.Hand) {
		return engine.Hidden, fmt.Errorf("card index %d out of range for hand of %d", idx, len(p.Hand))
	}
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return c, nil
}

// Team is one partnership. Seats are assigned by seat % 2.
type Team struct {
	Index           int
	Seats           [2]int
	Score           int
	TricksThisRound int
}

// RoundState tracks the in-round bookkeeping reset by every deal-round.
type RoundState struct {
	Number          int
	DealerSeat      int
	TurnSeat        int
	TrickLeaderSeat int
	Phase           Phase
	// TrumpSuit is nil until a bid commits it.
	TrumpSuit *engine.Suit
	// TrumpCard is the turned card revealed by the deal.
	TrumpCard engine.Card
	// passes counts bidding passes so the forced dealer bid can trigger.
	passes int
	// cardsPlayed backs the hand-size conservation invariant.
	cardsPlayed int
}

// BidState records the committed bid, set once per round.
type BidState struct {
	BidderSeat int
	GoingAlone bool
}

// MakersTeam returns the index of the bidding partnership.
func (b *BidState) MakersTeam() int { return b.BidderSeat % NumTeams }

// SittingOutSeat returns the ally seat that sits out when the bidder goes
// alone, or -1 when everyone plays.
func (b *BidState) SittingOutSeat() int {
	if b == nil || !b.GoingAlone {
		return -1
	}
	return (b.BidderSeat + 2) % NumPlayers
}

// GameState is the canonical mutable record for one euchre match. It is
// constructed once from the joined-game snapshot and mutated only by the
// update dispatcher.
type GameState struct {
	MatchID uuid.UUID
	// MySeat is this client's seat, or -1 for a spectator.
	MySeat  int
	Players [NumPlayers]*Player
	Teams   [NumTeams]*Team
	Round   RoundState
	// Trick grows from 0 to the number of active players, then is
	// archived and cleared.
	Trick          []engine.PlayedCard
	ArchivedTricks [][]engine.PlayedCard
	Bid            *BidState
	GameEnded      bool
	// WinningTeam and Winners are set at game end.
	WinningTeam int
	Winners     []int
	// LastAppliedUpdateID is the id of the last update that mutated state.
	LastAppliedUpdateID int
}

// TeamForSeat returns the partnership owning the given seat.
func (s *GameState) TeamForSeat(seat int) *Team { return s.Teams[seat%NumTeams] }

// ActivePlayers is the number of seats playing the current round: three
// when the bidder went alone, four otherwise.
func (s *GameState) ActivePlayers() int {
	if s.Bid != nil && s.Bid.GoingAlone {
		return NumPlayers - 1
	}
	return NumPlayers
}

// nextSeat advances the turn pointer by one seat, skipping the sitting-out
// ally when the bidder went alone.
func (s *GameState) nextSeat(from int) int {
	next := (from + 1) % NumPlayers
	if s.Bid != nil && next == s.Bid.SittingOutSeat() {
		next = (next + 1) % NumPlayers
	}
	return next
}

// HandSizeSum returns the total cards still held plus cards played this
// round; it is constant within a round.
func (s *GameState) HandSizeSum() int {
	sum := s.Round.cardsPlayed
	for _, p := range s.Players {
		sum += len(p.Hand)
	}
	return sum
}

// Ranking returns the effective-rank rules for the current round. Only
// meaningful once trump is committed.
func (s *GameState) Ranking() engine.Ranking {
	var trump engine.Suit
	if s.Round.TrumpSuit != nil {
		trump = *s.Round.TrumpSuit
	}
	return engine.Ranking{Trump: trump, Bowers: true}
}
