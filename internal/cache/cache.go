// Package cache journals processed updates to a Redis queue so an external
// historian can replay a match. The journal is optional: when Rdb is nil
// every publish is a no-op, and a slow or absent Redis never blocks the
// update worker.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client, nil until InitRedis succeeds.
var Rdb *redis.Client

const updateQueueKey = "game_update_journal"

// UpdateRecord is one journal entry for a processed update.
type UpdateRecord struct {
	MatchID    string    `json:"match_id"`
	UpdateID   int       `json:"update_id"`
	Kind       string    `json:"kind"`
	Payload    any       `json:"payload,omitempty"`
	Rejected   bool      `json:"rejected,omitempty"`
	RejectedAs string    `json:"rejected_as,omitempty"`
	SeenAt     time.Time `json:"seen_at"`
}

// InitRedis connects the journal client. An empty addr leaves the journal
// disabled.
func InitRedis(ctx context.Context, addr, password string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	logrus.WithField("addr", addr).Info("update journal connected")
	return nil
}

// PublishUpdate pushes one record onto the journal queue.
func PublishUpdate(ctx context.Context, rec UpdateRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal update record: %w", err)
	}
	if err := Rdb.LPush(ctx, updateQueueKey, data).Err(); err != nil {
		return fmt.Errorf("journal push: %w", err)
	}
	return nil
}

// JournalUpdate publishes asynchronously with its own deadline; failures
// are logged and dropped.
func JournalUpdate(rec UpdateRecord) {
	if Rdb == nil {
		return
	}
	go func(rec UpdateRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := PublishUpdate(ctx, rec); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"match_id":  rec.MatchID,
				"update_id": rec.UpdateID,
			}).Warn("update journal publish failed")
		}
	}(rec)
}
