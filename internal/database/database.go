// Package database archives finished matches to Postgres. Like the Redis
// journal it is optional and nil-guarded: without a configured pool every
// call is a no-op, and writes never run on the update worker.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool, nil until InitDB succeeds.
var DB *pgxpool.Pool

// FinishedMatch is the archived record of one completed game.
type FinishedMatch struct {
	MatchID     string `json:"match_id"`
	Game        string `json:"game"`
	Winners     []int  `json:"winners"`
	FinalScores []int  `json:"final_scores"`
	// LastUpdateID ties the archive row back to the journal.
	LastUpdateID int `json:"last_update_id"`
}

// InitDB connects the archive pool and ensures the table exists. An empty
// dsn leaves the archive disabled.
func InitDB(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres ping: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS finished_matches (
			match_id uuid PRIMARY KEY,
			game text NOT NULL,
			result jsonb NOT NULL,
			finished_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return fmt.Errorf("ensure finished_matches table: %w", err)
	}
	DB = pool
	logrus.Info("match archive connected")
	return nil
}

// StoreFinishedMatch upserts the final record for one match.
func StoreFinishedMatch(ctx context.Context, m FinishedMatch) error {
	if DB == nil {
		return nil
	}
	result, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal finished match: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO finished_matches (match_id, game, result)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO UPDATE SET result = EXCLUDED.result`,
		m.MatchID, m.Game, result)
	if err != nil {
		return fmt.Errorf("store finished match: %w", err)
	}
	return nil
}

// ArchiveMatch stores asynchronously with its own deadline; failures are
// logged and dropped.
func ArchiveMatch(m FinishedMatch) {
	if DB == nil {
		return
	}
	go func(m FinishedMatch) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := StoreFinishedMatch(ctx, m); err != nil {
			logrus.WithError(err).WithField("match_id", m.MatchID).Warn("match archive failed")
		}
	}(m)
}
