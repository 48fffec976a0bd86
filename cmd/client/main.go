// Command client joins a game server, replicates the match it is placed
// into, and follows the update stream until the game ends or the process
// is interrupted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dgray001/gray-online-sub000/internal/cache"
	"github.com/dgray001/gray-online-sub000/internal/config"
	"github.com/dgray001/gray-online-sub000/internal/database"
	"github.com/dgray001/gray-online-sub000/internal/euchre"
	"github.com/dgray001/gray-online-sub000/internal/fiddlesticks"
	"github.com/dgray001/gray-online-sub000/internal/replica"
	"github.com/dgray001/gray-online-sub000/internal/session"
	"github.com/dgray001/gray-online-sub000/internal/transport"
)

func main() {
	cfg := config.Load()
	cfg.ApplyLogLevel()
	log := logrus.WithField("component", "client")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.Parse(cfg.AuthToken)
	if err != nil && !errors.Is(err, session.ErrNoToken) {
		log.WithError(err).Fatal("bad session token")
	}
	if sess != nil {
		if err := sess.Valid(time.Now()); err != nil {
			log.WithError(err).Fatal("session token unusable")
		}
		log = log.WithField("client_id", sess.ClientID)
	}

	if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
		log.WithError(err).Warn("update journal unavailable, continuing without it")
	}
	if err := database.InitDB(ctx, cfg.PostgresDSN); err != nil {
		log.WithError(err).Warn("match archive unavailable, continuing without it")
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	client, err := transport.Dial(dialCtx, log, cfg.ServerURL, cfg.AuthToken)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("could not reach game server")
	}
	defer client.Close()

	r := &runner{ctx: ctx, log: log, client: client, pacer: replica.NewPacer()}
	defer r.teardown()

	err = client.Listen(ctx, transport.Handlers{
		OnJoined: r.joined,
		OnUpdate: r.update,
	})
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Error("connection lost")
		os.Exit(1)
	}
	log.Info("client shut down")
}

// runner owns at most one live replica engine at a time; a new game-joined
// message tears the previous one down.
type runner struct {
	ctx    context.Context
	log    *logrus.Entry
	client *transport.Client
	pacer  replica.Pacer

	engine  *replica.Engine
	matchID string
}

func (r *runner) joined(game string, snapshot json.RawMessage) {
	r.teardown()

	var (
		g      replica.Game
		lastID int
		err    error
	)
	switch game {
	case "euchre":
		var snap euchre.Snapshot
		if err = json.Unmarshal(snapshot, &snap); err == nil {
			var eg *euchre.Game
			if eg, err = euchre.New(r.log, r.pacer, snap); err == nil {
				eg.OnGameEnd = func(winningTeam int, winners []int, scores [euchre.NumTeams]int) {
					database.ArchiveMatch(database.FinishedMatch{
						MatchID:      snap.MatchID,
						Game:         game,
						Winners:      winners,
						FinalScores:  scores[:],
						LastUpdateID: eg.State().LastAppliedUpdateID,
					})
				}
				g, lastID = eg, eg.State().LastAppliedUpdateID
				r.matchID = snap.MatchID
			}
		}
	case "fiddlesticks":
		var snap fiddlesticks.Snapshot
		if err = json.Unmarshal(snapshot, &snap); err == nil {
			var fg *fiddlesticks.Game
			if fg, err = fiddlesticks.New(r.log, r.pacer, snap); err == nil {
				fg.OnGameEnd = func(winners, scores []int) {
					database.ArchiveMatch(database.FinishedMatch{
						MatchID:      snap.MatchID,
						Game:         game,
						Winners:      winners,
						FinalScores:  scores,
						LastUpdateID: fg.State().LastAppliedUpdateID,
					})
				}
				g, lastID = fg, fg.State().LastAppliedUpdateID
				r.matchID = snap.MatchID
			}
		}
	default:
		r.log.WithField("game", game).Error("joined an unsupported game")
		return
	}
	if err != nil {
		r.log.WithError(err).WithField("game", game).Error("bad joined-game snapshot")
		return
	}

	engine := replica.NewEngine(r.log.WithField("game", game), g, lastID)
	engine.OnApplied = func(env replica.Envelope) {
		cache.JournalUpdate(cache.UpdateRecord{
			MatchID:  r.matchID,
			UpdateID: env.UpdateID,
			Kind:     env.Kind,
			Payload:  json.RawMessage(env.Payload),
			SeenAt:   time.Now(),
		})
	}
	engine.OnResync = func(env replica.Envelope, reason error) {
		cache.JournalUpdate(cache.UpdateRecord{
			MatchID:    r.matchID,
			UpdateID:   env.UpdateID,
			Kind:       env.Kind,
			Rejected:   true,
			RejectedAs: reason.Error(),
			SeenAt:     time.Now(),
		})
		if err := r.client.RequestResync(r.ctx); err != nil {
			r.log.WithError(err).Warn("resync request failed")
		}
	}
	r.engine = engine
	r.log.WithFields(logrus.Fields{"game": game, "match_id": r.matchID}).Info("joined game")
}

func (r *runner) update(env replica.Envelope) {
	if r.engine == nil {
		r.log.WithField("update_id", env.UpdateID).Warn("update before any game was joined")
		return
	}
	r.engine.Submit(env)
}

func (r *runner) teardown() {
	if r.engine != nil {
		r.engine.Close()
		r.engine = nil
	}
}
