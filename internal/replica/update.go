package replica

import "encoding/json"

// Envelope is the transport-level frame for one server update. The payload
// stays raw until the owning game decodes it into its closed update set at
// the dispatch boundary.
type Envelope struct {
	UpdateID int             `json:"update_id"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
}

// Intent is a player-initiated action request addressed to the server. The
// replica never applies its own intents locally; it waits for the server's
// echoed update.
type Intent struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}
