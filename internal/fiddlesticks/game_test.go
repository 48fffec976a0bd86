package fiddlesticks

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testSnapshot(players, mySeat int, settings Settings) Snapshot {
	snap := Snapshot{
		MatchID:  uuid.NewString(),
		MySeat:   mySeat,
		Settings: settings,
	}
	for seat := 0; seat < players; seat++ {
		snap.Players = append(snap.Players, PlayerSnapshot{
			Seat:      seat,
			ClientID:  uuid.NewString(),
			Nickname:  "player",
			Connected: true,
		})
	}
	return snap
}

func newTestGame(t *testing.T, players, mySeat int, settings Settings) *Game {
	t.Helper()
	g, err := New(testLogger(), replica.Instant, testSnapshot(players, mySeat, settings))
	require.NoError(t, err)
	return g
}

func apply(t *testing.T, g *Game, kind string, payload interface{}) error {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return g.Apply(context.Background(), replica.Envelope{
		UpdateID: g.State().LastAppliedUpdateID + 1,
		Kind:     kind,
		Payload:  raw,
	})
}

func mustApply(t *testing.T, g *Game, kind string, payload interface{}) {
	t.Helper()
	require.NoError(t, apply(t, g, kind, payload))
}

func dealPayload(round, dealer int, trump engine.Card) map[string]interface{} {
	return map[string]interface{}{"round": round, "dealer_seat": dealer, "trump_card": trump}
}

func betBody(seat, amount int) map[string]interface{} {
	return map[string]interface{}{"seat": seat, "amount": amount}
}

func playPayload(seat, idx int, card engine.Card) map[string]interface{} {
	return map[string]interface{}{"seat": seat, "card_index": idx, "card": card}
}

func TestSettingsValidation(t *testing.T) {
	_, err := New(testLogger(), replica.Instant, testSnapshot(3, 0, Settings{MinRound: 0, MaxRound: 3}))
	assert.Error(t, err)
	_, err = New(testLogger(), replica.Instant, testSnapshot(3, 0, Settings{MinRound: 4, MaxRound: 2}))
	assert.Error(t, err)
	_, err = New(testLogger(), replica.Instant, testSnapshot(1, 0, Settings{MinRound: 1, MaxRound: 3}))
	assert.Error(t, err, "a single player is not a table")
}

func TestRoundOscillation(t *testing.T) {
	g := newTestGame(t, 3, -1, Settings{MinRound: 1, MaxRound: 3, RoundPoints: 10, TrickPoints: 5})
	s := g.State()
	assert.Equal(t, 5, s.Settings.TotalRounds())

	steps := []struct {
		number     int
		descending bool
		next       int
		last       bool
	}{
		{1, false, 2, false},
		{2, false, 3, false},
		{3, false, 2, false},
		{2, true, 1, false},
		{1, true, 0, true},
	}
	for _, step := range steps {
		s.Round.Number = step.number
		s.Round.descending = step.descending
		next, _ := s.nextRoundNumber()
		assert.Equal(t, step.next, next)
		assert.Equal(t, step.last, s.lastRound())
	}
}

func TestDealRejectsOutOfSequenceRound(t *testing.T) {
	g := newTestGame(t, 3, -1, Settings{MinRound: 1, MaxRound: 3})
	trump := engine.NewCard(engine.SuitClubs, engine.RankTwo)

	err := apply(t, g, KindDealRound, dealPayload(2, 0, trump))
	assert.ErrorIs(t, err, replica.ErrPhaseDesync, "first round must be the minimum")
	assert.Equal(t, PhaseDealing, g.State().Round.Phase)

	mustApply(t, g, KindDealRound, dealPayload(1, 0, trump))
	assert.Equal(t, PhaseBetting, g.State().Round.Phase)
	assert.Equal(t, 1, g.State().Round.TurnSeat)
}

func TestBettingFlow(t *testing.T) {
	g := newTestGame(t, 3, -1, Settings{MinRound: 2, MaxRound: 2})
	s := g.State()
	mustApply(t, g, KindDealRound, dealPayload(2, 0, engine.NewCard(engine.SuitDiamonds, engine.RankTwo)))

	err := apply(t, g, KindBet, betBody(0, 1))
	assert.ErrorIs(t, err, replica.ErrTurnDesync, "betting starts left of the dealer")

	err = apply(t, g, KindBet, betBody(1, 3))
	assert.ErrorIs(t, err, replica.ErrMalformedPayload, "bet cannot exceed the hand size")
	assert.Equal(t, -1, s.Players[1].Bet)

	mustApply(t, g, KindBet, betBody(1, 1))
	mustApply(t, g, KindBet, betBody(2, 2))
	assert.Equal(t, PhaseBetting, s.Round.Phase)
	mustApply(t, g, KindBet, betBody(0, 0))

	assert.Equal(t, PhasePlaying, s.Round.Phase)
	assert.Equal(t, 1, s.Round.TurnSeat, "play starts left of the dealer")
}

func TestExactBetScoring(t *testing.T) {
	g := newTestGame(t, 3, -1, Settings{MinRound: 2, MaxRound: 2, RoundPoints: 10, TrickPoints: 5})
	s := g.State()
	mustApply(t, g, KindDealRound, dealPayload(2, 0, engine.NewCard(engine.SuitDiamonds, engine.RankTwo)))

	mustApply(t, g, KindBet, betBody(1, 1))
	mustApply(t, g, KindBet, betBody(2, 2))
	mustApply(t, g, KindBet, betBody(0, 0))

	var gotWinners, gotScores []int
	g.OnGameEnd = func(winners, scores []int) { gotWinners, gotScores = winners, scores }

	// Seat 1 trumps the first trick.
	mustApply(t, g, KindPlayCard, playPayload(1, 0, engine.NewCard(engine.SuitDiamonds, engine.RankAce)))
	mustApply(t, g, KindPlayCard, playPayload(2, 0, engine.NewCard(engine.SuitDiamonds, engine.RankKing)))
	mustApply(t, g, KindPlayCard, playPayload(0, 0, engine.NewCard(engine.SuitClubs, engine.RankThree)))
	assert.Equal(t, 1, s.Players[1].Tricks)
	assert.Equal(t, 1, s.Round.TurnSeat, "winner leads the next trick")

	// Seat 2 takes the second on a club lead.
	mustApply(t, g, KindPlayCard, playPayload(1, 0, engine.NewCard(engine.SuitClubs, engine.RankTwo)))
	mustApply(t, g, KindPlayCard, playPayload(2, 0, engine.NewCard(engine.SuitClubs, engine.RankAce)))
	mustApply(t, g, KindPlayCard, playPayload(0, 0, engine.NewCard(engine.SuitClubs, engine.RankFour)))

	assert.True(t, g.Ended(), "a min==max oscillation is a single round")
	assert.Equal(t, PhaseGameEnd, s.Round.Phase)
	assert.Equal(t, 10, s.Players[0].Score, "exact zero bet pays the round points")
	assert.Equal(t, 15, s.Players[1].Score, "exact bet pays round plus trick points")
	assert.Equal(t, 0, s.Players[2].Score, "missed bet pays nothing")
	assert.Equal(t, []int{1}, s.Winners)
	assert.Equal(t, []int{1}, gotWinners)
	assert.Equal(t, []int{10, 15, 0}, gotScores)
}

func TestDescendingFinalRoundEndsGame(t *testing.T) {
	g := newTestGame(t, 2, -1, Settings{MinRound: 1, MaxRound: 2, RoundPoints: 1})
	s := g.State()
	s.Round.Number = 1
	s.Round.descending = true
	s.Players[0].Bet = 1
	s.Players[0].Tricks = 1
	s.Players[1].Bet = 1
	s.Players[1].Tricks = 1

	require.NoError(t, g.scoreRound(context.Background()))
	assert.True(t, g.Ended())
	assert.Equal(t, []int{0, 1}, s.Winners, "ties share the win")

	err := apply(t, g, KindDealRound, dealPayload(1, 0, engine.NewCard(engine.SuitHearts, engine.RankTen)))
	assert.ErrorIs(t, err, replica.ErrPhaseDesync)
}

func TestRejectionLeavesStateUntouched(t *testing.T) {
	g := newTestGame(t, 3, -1, Settings{MinRound: 2, MaxRound: 2})
	s := g.State()
	mustApply(t, g, KindDealRound, dealPayload(2, 0, engine.NewCard(engine.SuitDiamonds, engine.RankTwo)))
	beforeRound := s.Round
	beforeID := s.LastAppliedUpdateID

	err := apply(t, g, KindPlayCard, playPayload(1, 0, engine.NewCard(engine.SuitHearts, engine.RankNine)))
	assert.ErrorIs(t, err, replica.ErrPhaseDesync)
	assert.Equal(t, beforeRound, s.Round)
	assert.Equal(t, beforeID, s.LastAppliedUpdateID)
	assert.Equal(t, 3*2, s.HandSizeSum(), "cards are conserved")
}
