package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bus is the in-process pub/sub channel between handlers and the reporter
// worker. Messages are JSON-encoded event payloads keyed by topic.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		newWatermillLogger(log),
	)
	return &Bus{pubsub: pubsub, log: log}
}

// Publish encodes the payload and publishes it to topic. The caller is on the
// request path, so failures are logged and returned but never fatal.
func (b *Bus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	msg := message.NewMessage(uuid.NewString(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.log.Error().Err(err).Str("topic", topic).Msg("Failed to publish event")
		return fmt.Errorf("publishing %s event: %w", topic, err)
	}
	return nil
}

// Subscribe returns the message stream for topic. ctx cancellation closes the
// stream.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
