// Package broker routes chat payloads to per-user private channels.
//
// A user may hold several live sessions (tabs, devices). Delivering to a
// user writes the frame to every session of that user. Delivery is
// at-most-once: offline users and full session queues simply miss the frame.
package broker

import (
	"context"
	"encoding/json"
)

// Private channel names.
const (
	ChannelMessages = "messages"
	ChannelErrors   = "errors"
	ChannelTyping   = "typing"
)

// Deliverer sends a payload to one user's private channel.
type Deliverer interface {
	Deliver(ctx context.Context, userID int, channel string, payload any) error
}

// Envelope is the outbound frame written to a client connection.
type Envelope struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(channel string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Channel: channel, Payload: body})
}
