// Package transport is the websocket adapter between the game server and
// the replica engine: it dials, receives the joined-game snapshot, streams
// update envelopes inward, and forwards player intents outward.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/dgray001/gray-online-sub000/internal/replica"
)

// serverMessage is the framing for everything the server sends.
type serverMessage struct {
	Type string `json:"type"`
	// Game and Snapshot are set on "game-joined".
	Game     string          `json:"game,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	// Update is set on "update".
	Update *replica.Envelope `json:"update,omitempty"`
	// Reason is set on "error".
	Reason string `json:"reason,omitempty"`
}

// clientMessage is the framing for everything the client sends.
type clientMessage struct {
	Type    string      `json:"type"`
	Kind    string      `json:"kind,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Handlers receive the decoded server stream. OnJoined fires once per join
// with the raw snapshot for the named game; OnUpdate fires per update in
// arrival order and should hand off to Engine.Submit without blocking.
type Handlers struct {
	OnJoined func(game string, snapshot json.RawMessage)
	OnUpdate func(env replica.Envelope)
}

// Client is one websocket connection to the game server.
type Client struct {
	log  *logrus.Entry
	conn *websocket.Conn
}

// Dial connects to the game server, presenting the session token as a
// bearer credential.
func Dial(ctx context.Context, log *logrus.Entry, url, token string) (*Client, error) {
	opts := &websocket.DialOptions{}
	if token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + token}}
	}
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("dial game server: %w", err)
	}
	// Update payloads are small; the default limit only hurts snapshots.
	conn.SetReadLimit(1 << 20)
	return &Client{log: log.WithField("server", url), conn: conn}, nil
}

// Listen reads server messages until the context ends or the connection
// drops, dispatching to the handlers from this goroutine so updates reach
// the engine in arrival order.
func (c *Client) Listen(ctx context.Context, h Handlers) error {
	for {
		var msg serverMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return fmt.Errorf("read server message: %w", err)
		}
		switch msg.Type {
		case "game-joined":
			if h.OnJoined != nil {
				h.OnJoined(msg.Game, msg.Snapshot)
			}
		case "update":
			if msg.Update == nil {
				c.log.Warn("update message without envelope")
				continue
			}
			if h.OnUpdate != nil {
				h.OnUpdate(*msg.Update)
			}
		case "error":
			c.log.WithField("reason", msg.Reason).Warn("server reported an error")
		default:
			c.log.WithField("type", msg.Type).Debug("unhandled server message")
		}
	}
}

// SendIntent forwards a player action request. The replica never applies
// the intent locally; it waits for the echoed update.
func (c *Client) SendIntent(ctx context.Context, intent replica.Intent) error {
	msg := clientMessage{Type: "intent", Kind: intent.Kind, Payload: intent.Payload}
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("send intent %q: %w", intent.Kind, err)
	}
	return nil
}

// RequestResync asks the server for a fresh snapshot of the current game.
func (c *Client) RequestResync(ctx context.Context) error {
	if err := wsjson.Write(ctx, c.conn, clientMessage{Type: "resync"}); err != nil {
		return fmt.Errorf("request resync: %w", err)
	}
	return nil
}

// Close ends the connection politely.
func (c *Client) Close() {
	c.conn.Close(websocket.StatusNormalClosure, "client closing")
}
