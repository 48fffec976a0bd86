package fiddlesticks

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Game is the fiddlesticks replica, driven exclusively by the
// replica.Engine worker. Handlers validate before they mutate, so a
// rejected update leaves the state unchanged.
type Game struct {
	log   *logrus.Entry
	pacer replica.Pacer
	state *GameState

	// OnGameEnd fires once when the final round has been scored.
	OnGameEnd func(winners []int, scores []int)
}

// New builds a fiddlesticks replica from the joined-game snapshot.
func New(log *logrus.Entry, pacer replica.Pacer, snap Snapshot) (*Game, error) {
	state, err := newStateFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &Game{
		log:   log.WithField("game", "fiddlesticks").WithField("match_id", state.MatchID),
		pacer: pacer,
		state: state,
	}, nil
}

// State exposes the canonical replica for rendering; read-only for callers.
func (g *Game) State() *GameState { return g.state }

// Ended implements replica.Game.
func (g *Game) Ended() bool { return g.state.GameEnded }

// Apply implements replica.Game.
func (g *Game) Apply(ctx context.Context, env replica.Envelope) error {
	u, err := decodeUpdate(env)
	if err != nil {
		return err
	}

	switch u := u.(type) {
	case DealRound:
		err = g.applyDealRound(ctx, u)
	case Bet:
		err = g.applyBet(ctx, u)
	case PlayCard:
		err = g.applyPlayCard(ctx, u)
	default:
		err = fmt.Errorf("%w: %T", replica.ErrUnknownKind, u)
	}
	if err != nil {
		return err
	}
	g.state.LastAppliedUpdateID = env.UpdateID
	return nil
}

func requireTurn(seat, expected int) error {
	if seat != expected {
		return fmt.Errorf("%w: seat %d acted, expected %d", replica.ErrTurnDesync, seat, expected)
	}
	return nil
}

// applyDealRound checks the hand size against the oscillation, resets all
// round state, and opens betting at the seat after the dealer.
func (g *Game) applyDealRound(ctx context.Context, u DealRound) error {
	s := g.state
	if s.GameEnded {
		return fmt.Errorf("%w: deal-round after game end", replica.ErrPhaseDesync)
	}
	if u.DealerSeat < 0 || u.DealerSeat >= len(s.Players) {
		return fmt.Errorf("%w: dealer seat %d out of range", replica.ErrMalformedPayload, u.DealerSeat)
	}
	if !u.TrumpCard.Valid() {
		return fmt.Errorf("%w: invalid trump card", replica.ErrMalformedPayload)
	}
	wantRound, descending := s.nextRoundNumber()
	if u.Round != wantRound {
		return fmt.Errorf("%w: dealt round %d, oscillation expects %d", replica.ErrPhaseDesync, u.Round, wantRound)
	}
	if u.Hand != nil && len(u.Hand) != u.Round {
		return fmt.Errorf("%w: dealt hand has %d cards, want %d", replica.ErrMalformedPayload, len(u.Hand), u.Round)
	}

	s.Round = RoundState{
		Number:     u.Round,
		DealerSeat: u.DealerSeat,
		TurnSeat:   s.nextSeat(u.DealerSeat),
		Phase:      PhaseBetting,
		TrumpCard:  u.TrumpCard,
		descending: descending,
	}
	s.Trick = nil
	s.ArchivedTricks = nil
	for _, p := range s.Players {
		p.Bet = -1
		p.Tricks = 0
		if p.Seat == s.MySeat && u.Hand != nil {
			p.Hand = append([]engine.Card(nil), u.Hand...)
			p.HandKnown = true
		} else {
			p.Hand = hiddenHand(u.Round)
			p.HandKnown = false
		}
	}

	g.log.WithFields(logrus.Fields{
		"round":      u.Round,
		"dealer":     u.DealerSeat,
		"trump_card": u.TrumpCard.String(),
	}).Info("round dealt")

	return g.pacer.Pause(ctx, replica.DealPause(len(s.Players)*u.Round))
}

// applyBet records one bet; betting closes when every seat has declared.
func (g *Game) applyBet(ctx context.Context, u Bet) error {
	s := g.state
	if s.Round.Phase != PhaseBetting {
		return fmt.Errorf("%w: bet during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	if err := requireTurn(u.Seat, s.Round.TurnSeat); err != nil {
		return err
	}
	if u.Amount < 0 || u.Amount > s.Round.Number {
		return fmt.Errorf("%w: bet %d outside [0, %d]", replica.ErrMalformedPayload, u.Amount, s.Round.Number)
	}

	s.Players[u.Seat].Bet = u.Amount
	s.Round.betsPlaced++
	if s.Round.betsPlaced == len(s.Players) {
		s.Round.Phase = PhasePlaying
	}
	s.Round.TurnSeat = s.nextSeat(s.Round.TurnSeat)

	g.log.WithFields(logrus.Fields{"seat": u.Seat, "bet": u.Amount}).Debug("bet placed")
	return g.pacer.Pause(ctx, replica.AnnouncePause)
}

// applyPlayCard appends to the trick, resolves it when full, and scores the
// round once every trick is taken.
func (g *Game) applyPlayCard(ctx context.Context, u PlayCard) error {
	s := g.state
	if s.Round.Phase != PhasePlaying {
		return fmt.Errorf("%w: play-card during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	if err := requireTurn(u.Seat, s.Round.TurnSeat); err != nil {
		return err
	}
	player := s.Players[u.Seat]
	if u.CardIndex < 0 || u.CardIndex >= len(player.Hand) {
		return fmt.Errorf("%w: card index %d out of range for hand of %d", replica.ErrMalformedPayload, u.CardIndex, len(player.Hand))
	}

	card := u.Card
	local := player.Hand[u.CardIndex]
	if !local.IsHidden() {
		if !card.IsHidden() && card != local {
			return fmt.Errorf("%w: payload card %v does not match hand card %v at index %d",
				replica.ErrMalformedPayload, card, local, u.CardIndex)
		}
		card = local
	}
	if card.IsHidden() {
		return fmt.Errorf("%w: play-card for a hidden hand must carry the card", replica.ErrMalformedPayload)
	}

	if _, err := player.removeCard(u.CardIndex); err != nil {
		return fmt.Errorf("%w: %v", replica.ErrMalformedPayload, err)
	}
	s.Round.cardsPlayed++
	s.Trick = append(s.Trick, engine.PlayedCard{Seat: u.Seat, Card: card})

	g.log.WithFields(logrus.Fields{"seat": u.Seat, "card": card.String()}).Debug("card played")
	if err := g.pacer.Pause(ctx, replica.PlaySettlePause); err != nil {
		return err
	}

	if len(s.Trick) < len(s.Players) {
		s.Round.TurnSeat = s.nextSeat(s.Round.TurnSeat)
		return nil
	}
	return g.resolveTrick(ctx)
}

func (g *Game) resolveTrick(ctx context.Context) error {
	s := g.state

	winnerIdx := s.Ranking().TrickWinner(s.Trick)
	winnerSeat := s.Trick[winnerIdx].Seat
	s.Players[winnerSeat].Tricks++

	s.ArchivedTricks = append(s.ArchivedTricks, s.Trick)
	s.Trick = nil
	s.Round.TurnSeat = winnerSeat

	g.log.WithField("seat", winnerSeat).Info("trick taken")
	if err := g.pacer.Pause(ctx, replica.TrickCollectPause); err != nil {
		return err
	}

	if len(s.ArchivedTricks) < s.Round.Number {
		return nil
	}
	return g.scoreRound(ctx)
}

// scoreRound pays every exact bet and ends the game after the final round
// of the oscillation.
func (g *Game) scoreRound(ctx context.Context) error {
	s := g.state
	for _, p := range s.Players {
		if p.Tricks == p.Bet {
			p.Score += s.Settings.RoundPoints + s.Settings.TrickPoints*p.Bet
		}
	}
	s.Round.Phase = PhaseRoundEnd

	g.log.WithField("round", s.Round.Number).Info("round scored")
	if err := g.pacer.Pause(ctx, replica.AnnouncePause); err != nil {
		return err
	}

	if !s.lastRound() {
		return nil
	}

	s.GameEnded = true
	s.Round.Phase = PhaseGameEnd
	best := s.Players[0].Score
	for _, p := range s.Players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}
	scores := make([]int, len(s.Players))
	for i, p := range s.Players {
		scores[i] = p.Score
		if p.Score == best {
			s.Winners = append(s.Winners, p.Seat)
		}
	}
	g.log.WithField("winners", s.Winners).Info("game ended")
	if g.OnGameEnd != nil {
		g.OnGameEnd(s.Winners, scores)
	}
	return nil
}
