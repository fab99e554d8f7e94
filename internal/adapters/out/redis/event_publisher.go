package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cmr/internal/core/domain/model/shipment"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultEventChannel is the pub/sub channel used when none is configured.
const DefaultEventChannel = "cmr.shipment.status"

// StatusChangedMessage is the wire form of shipment.StatusChanged.
type StatusChangedMessage struct {
	ShipmentID string    `json:"shipmentId"`
	From       string    `json:"fromStatus"`
	To         string    `json:"toStatus"`
	OccurredAt time.Time `json:"timestamp"`
}

// NewStatusChangedMessage converts a domain event to its wire form.
func NewStatusChangedMessage(event shipment.StatusChanged) StatusChangedMessage {
	return StatusChangedMessage{
		ShipmentID: event.ShipmentID.String(),
		From:       event.From.String(),
		To:         event.To.String(),
		OccurredAt: event.OccurredAt.UTC(),
	}
}

// EventPublisher implements ports.EventPublisher over Redis PUBLISH.
// Delivery is at-most-once: subscribers that are not connected miss the message.
type EventPublisher struct {
	client  goredis.UniversalClient
	channel string
}

func NewEventPublisher(client goredis.UniversalClient, channel string) *EventPublisher {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &EventPublisher{client: client, channel: channel}
}

func (p *EventPublisher) Publish(ctx context.Context, event shipment.StatusChanged) error {
	payload, err := json.Marshal(NewStatusChangedMessage(event))
	if err != nil {
		return err
	}

	if err = p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return nil
}
