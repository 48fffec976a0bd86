package euchre

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dgray001/gray-online-sub000/engine"
	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// Game is the euchre replica: one instance per joined match, driven
// exclusively by the replica.Engine worker. Handlers validate before they
// mutate, so a rejected update leaves the state byte-for-byte unchanged.
type Game struct {
	log   *logrus.Entry
	pacer replica.Pacer
	state *GameState

	// OnGameEnd fires once when a team reaches the winning score.
	OnGameEnd func(winningTeam int, winners []int, scores [NumTeams]int)
}

// New builds a euchre replica from the joined-game snapshot.
func New(log *logrus.Entry, pacer replica.Pacer, snap Snapshot) (*Game, error) {
	state, err := newStateFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &Game{
		log:   log.WithField("game", "euchre").WithField("match_id", state.MatchID),
		pacer: pacer,
		state: state,
	}, nil
}

// State exposes the canonical replica for rendering. Callers must treat it
// as read-only; only the dispatcher mutates it.
func (g *Game) State() *GameState { return g.state }

// Ended implements replica.Game.
func (g *Game) Ended() bool { return g.state.GameEnded }

// Apply implements replica.Game: decode at the boundary, route to the
// handler for the variant, record the consumed id on success.
func (g *Game) Apply(ctx context.Context, env replica.Envelope) error {
	u, err := decodeUpdate(env)
	if err != nil {
		return err
	}

	switch u := u.(type) {
	case DealRound:
		err = g.applyDealRound(ctx, u)
	case Pass:
		err = g.applyPass(ctx, u)
	case Bid:
		err = g.applyBid(ctx, u)
	case BidChooseTrump:
		err = g.applyBidChooseTrump(ctx, u)
	case DealerSubstitutesCard:
		err = g.applyDealerSubstitutesCard(ctx, u)
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

// requireTurn rejects an update whose actor is not the expected seat.
func requireTurn(seat, expected int) error {
	if seat != expected {
		return fmt.Errorf("%w: seat %d acted, expected %d", replica.ErrTurnDesync, seat, expected)
	}
	return nil
}

// applyDealRound resets all round state and starts bidding at the seat
// after the dealer.
func (g *Game) applyDealRound(ctx context.Context, u DealRound) error {
	s := g.state
	if s.GameEnded {
		return fmt.Errorf("%w: deal-round after game end", replica.ErrPhaseDesync)
	}
	if u.DealerSeat < 0 || u.DealerSeat >= NumPlayers {
		return fmt.Errorf("%w: dealer seat %d out of range", replica.ErrMalformedPayload, u.DealerSeat)
	}
	if !u.TrumpCard.Valid() {
		return fmt.Errorf("%w: invalid trump card", replica.ErrMalformedPayload)
	}
	if u.Hand != nil && len(u.Hand) != HandSize {
		return fmt.Errorf("%w: dealt hand has %d cards, want %d", replica.ErrMalformedPayload, len(u.Hand), HandSize)
	}

	s.Round = RoundState{
		Number:     u.Round,
		DealerSeat: u.DealerSeat,
		TurnSeat:   (u.DealerSeat + 1) % NumPlayers,
		Phase:      PhaseBidding,
		TrumpCard:  u.TrumpCard,
	}
	s.Bid = nil
	s.Trick = nil
	s.ArchivedTricks = nil
	for _, t := range s.Teams {
		t.TricksThisRound = 0
	}
	for _, p := range s.Players {
		if p.Seat == s.MySeat && u.Hand != nil {
			p.Hand = append([]engine.Card(nil), u.Hand...)
			p.HandKnown = true
		} else {
			p.Hand = hiddenHand(HandSize)
			p.HandKnown = false
		}
	}

	g.log.WithFields(logrus.Fields{
		"round":      u.Round,
		"dealer":     u.DealerSeat,
		"trump_card": u.TrumpCard.String(),
	}).Info("round dealt")

	return g.pacer.Pause(ctx, replica.DealPause(NumPlayers*HandSize))
}

// applyPass advances bidding; when every other seat has passed and the
// turn lands on the dealer, the dealer is forced to name trump.
func (g *Game) applyPass(ctx context.Context, u Pass) error {
	s := g.state
	if s.Round.Phase != PhaseBidding {
		return fmt.Errorf("%w: pass during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	if err := requireTurn(u.Seat, s.Round.TurnSeat); err != nil {
		return err
	}

	s.Round.passes++
	s.Round.TurnSeat = (s.Round.TurnSeat + 1) % NumPlayers
	if s.Round.TurnSeat == s.Round.DealerSeat && s.Round.passes >= NumPlayers-1 {
		s.Round.Phase = PhaseBiddingChooseTrump
	}

	g.log.WithField("seat", u.Seat).Debug("pass")
	return g.pacer.Pause(ctx, replica.AnnouncePause)
}

// applyBid orders up the turned card's suit.
func (g *Game) applyBid(ctx context.Context, u Bid) error {
	s := g.state
	if s.Round.Phase != PhaseBidding {
		return fmt.Errorf("%w: bid during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	if err := requireTurn(u.Seat, s.Round.TurnSeat); err != nil {
		return err
	}
	return g.commitBid(ctx, u.Seat, u.GoingAlone, s.Round.TrumpCard.Suit)
}

// applyBidChooseTrump is the dealer's forced call after a round of passes.
func (g *Game) applyBidChooseTrump(ctx context.Context, u BidChooseTrump) error {
	s := g.state
	if s.Round.Phase != PhaseBiddingChooseTrump {
		return fmt.Errorf("%w: bid-choose-trump during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	if err := requireTurn(u.Seat, s.Round.TurnSeat); err != nil {
		return err
	}
	return g.commitBid(ctx, u.Seat, u.GoingAlone, u.TrumpSuit)
}

// commitBid sets trump and the maker partnership, then moves to the dealer
// substitution (or straight to play when the bidder goes alone).
func (g *Game) commitBid(ctx context.Context, seat int, alone bool, trump engine.Suit) error {
	s := g.state
	s.Bid = &BidState{BidderSeat: seat, GoingAlone: alone}
	s.Round.TrumpSuit = &trump
	s.Round.TurnSeat = s.nextSeat(s.Round.DealerSeat)
	s.Round.TrickLeaderSeat = s.Round.TurnSeat
	if alone {
		s.Round.Phase = PhasePlaying
	} else {
		s.Round.Phase = PhaseDealerSubstituting
	}

	g.log.WithFields(logrus.Fields{
		"seat":  seat,
		"trump": trump.String(),
		"alone": alone,
	}).Info("trump committed")
	return g.pacer.Pause(ctx, replica.AnnouncePause)
}

// applyDealerSubstitutesCard: the dealer discards by index and takes the
// turned trump card into hand.
func (g *Game) applyDealerSubstitutesCard(ctx context.Context, u DealerSubstitutesCard) error {
	s := g.state
	if s.Round.Phase != PhaseDealerSubstituting {
		return fmt.Errorf("%w: dealer-substitutes-card during %s", replica.ErrPhaseDesync, s.Round.Phase)
	}
	// The substitution is dealer-driven regardless of the turn pointer.
	if err := requireTurn(u.Seat, s.Round.DealerSeat); err != nil {
		return err
	}
	dealer := s.Players[s.Round.DealerSeat]
	if u.CardIndex < 0 || u.CardIndex >= len(dealer.Hand) {
		return fmt.Errorf("%w: card index %d out of range", replica.ErrMalformedPayload, u.CardIndex)
	}

	if _, err := dealer.removeCard(u.CardIndex); err != nil {
		return fmt.Errorf("%w: %v", replica.ErrMalformedPayload, err)
	}
	// The picked-up trump card is public knowledge even in a hidden hand.
	dealer.Hand = append(dealer.Hand, s.Round.TrumpCard)
	s.Round.Phase = PhasePlaying

	g.log.WithField("seat", u.Seat).Debug("dealer substituted card")
	return g.pacer.Pause(ctx, replica.PlaySettlePause)
}

// applyPlayCard appends to the trick, resolves it when full, and closes out
// the round once every trick is taken.
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

	// Resolve the played card: prefer local knowledge, cross-check when
	// both the payload and the hand know the card.
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

	g.log.WithFields(logrus.Fields{
		"seat": u.Seat,
		"card": card.String(),
	}).Debug("card played")
	if err := g.pacer.Pause(ctx, replica.PlaySettlePause); err != nil {
		return err
	}

	if len(s.Trick) < s.ActivePlayers() {
		s.Round.TurnSeat = s.nextSeat(s.Round.TurnSeat)
		return nil
	}
	return g.resolveTrick(ctx)
}

// resolveTrick settles a full trick, then either continues the round with
// the winner leading or applies round-end scoring.
func (g *Game) resolveTrick(ctx context.Context) error {
	s := g.state

	winnerIdx := s.Ranking().TrickWinner(s.Trick)
	winnerSeat := s.Trick[winnerIdx].Seat
	s.TeamForSeat(winnerSeat).TricksThisRound++

	s.ArchivedTricks = append(s.ArchivedTricks, s.Trick)
	s.Trick = nil
	s.Round.TrickLeaderSeat = winnerSeat
	s.Round.TurnSeat = winnerSeat

	g.log.WithField("seat", winnerSeat).Info("trick taken")
	if err := g.pacer.Pause(ctx, replica.TrickCollectPause); err != nil {
		return err
	}

	if s.Teams[0].TricksThisRound+s.Teams[1].TricksThisRound < TricksPerRound {
		return nil
	}
	return g.scoreRound(ctx)
}

// scoreRound applies the partnership scoring table and detects game end.
func (g *Game) scoreRound(ctx context.Context) error {
	s := g.state
	makers := s.Teams[s.Bid.MakersTeam()]
	defenders := s.Teams[1-makers.Index]

	switch {
	case makers.TricksThisRound == TricksPerRound && s.Bid.GoingAlone:
		makers.Score += 4
	case makers.TricksThisRound == TricksPerRound:
		makers.Score += 2
	case makers.TricksThisRound >= 3:
		makers.Score++
	default:
		// Euchred: the defense takes two.
		defenders.Score += 2
	}
	s.Round.Phase = PhaseRoundEnd

	g.log.WithFields(logrus.Fields{
		"makers":        makers.Index,
		"makers_tricks": makers.TricksThisRound,
		"scores":        [NumTeams]int{s.Teams[0].Score, s.Teams[1].Score},
	}).Info("round scored")
	if err := g.pacer.Pause(ctx, replica.AnnouncePause); err != nil {
		return err
	}

	for _, team := range s.Teams {
		if team.Score >= WinningScore {
			s.GameEnded = true
			s.Round.Phase = PhaseGameEnd
			s.WinningTeam = team.Index
			s.Winners = team.Seats[:]
			g.log.WithField("team", team.Index).Info("game ended")
			if g.OnGameEnd != nil {
				g.OnGameEnd(team.Index, s.Winners, [NumTeams]int{s.Teams[0].Score, s.Teams[1].Score})
			}
			break
		}
	}
	return nil
}
