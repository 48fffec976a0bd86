package engine

// Effective ranks for the two bowers. The right bower (trump jack) beats
// everything; the left bower (same-color jack) sits just below it, above
// the trump ace.
const (
	rankLeftBower  = 15
	rankRightBower = 16
)

// Ranking captures a game's trump interpretation for one round.
// Bowers is true for euchre-style jack promotion; fiddlesticks plays a
// plain trump suit.
type Ranking struct {
	Trump  Suit
	Bowers bool
}

// EffectiveSuit returns the suit a card follows for trick purposes: the
// trump suit when the card is the left bower, otherwise its printed suit.
func (r Ranking) EffectiveSuit(c Card) Suit {
	if r.Bowers && c.Rank == RankJack && c.Suit == r.Trump.SameColor() {
		return r.Trump
	}
	return c.Suit
}

// EffectiveRank returns the card's rank under trump: right bower 16, left
// bower 15, anything else its printed rank.
func (r Ranking) EffectiveRank(c Card) int {
	if r.Bowers && c.Rank == RankJack {
		switch c.Suit {
		case r.Trump:
			return rankRightBower
		case r.Trump.SameColor():
			return rankLeftBower
		}
	}
	return c.Rank
}

// IsTrump reports whether the card belongs to the trump suit after bower
// reassignment.
func (r Ranking) IsTrump(c Card) bool { return r.EffectiveSuit(c) == r.Trump }

// PlayedCard pairs a card with the seat that played it.
type PlayedCard struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// TrickWinner resolves a completed trick and returns the index into trick
// of the winning play. The highest trump wins if any trump was played;
// otherwise the highest card following the effective suit of the lead.
// Panics on an empty trick: callers only resolve full tricks.
func (r Ranking) TrickWinner(trick []PlayedCard) int {
	if len(trick) == 0 {
		panic("engine: cannot resolve empty trick")
	}
	leadSuit := r.EffectiveSuit(trick[0].Card)

	winner := 0
	winnerTrump := r.IsTrump(trick[0].Card)
	winnerRank := r.EffectiveRank(trick[0].Card)

	for i := 1; i < len(trick); i++ {
		c := trick[i].Card
		trump := r.IsTrump(c)
		rank := r.EffectiveRank(c)
		switch {
		case trump && !winnerTrump:
			winner, winnerTrump, winnerRank = i, true, rank
		case trump == winnerTrump && r.EffectiveSuit(c) == r.effectiveWinningSuit(leadSuit, winnerTrump) && rank > winnerRank:
			winner, winnerRank = i, rank
		}
	}
	return winner
}

// effectiveWinningSuit is the suit a challenger must follow to beat the
// current winner: trump once trump has appeared, the lead suit otherwise.
func (r Ranking) effectiveWinningSuit(leadSuit Suit, winnerIsTrump bool) Suit {
	if winnerIsTrump {
		return r.Trump
	}
	return leadSuit
}
