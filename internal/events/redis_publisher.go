package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher sends raw payloads on a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// ChannelForwarder relays events to a pub/sub channel so other dashboard
// instances know to re-fetch.
type ChannelForwarder struct {
	publisher Publisher
	channel   string
}

// NewChannelForwarder builds a forwarder for channel.
func NewChannelForwarder(publisher Publisher, channel string) *ChannelForwarder {
	return &ChannelForwarder{publisher: publisher, channel: channel}
}

// Handle is an EventHandler.
func (f *ChannelForwarder) Handle(ctx context.Context, event Event) error {
	if f == nil || f.publisher == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if _, err := f.publisher.Publish(ctx, f.channel, payload); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
