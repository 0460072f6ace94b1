package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// User event types.
const (
	EventUserRegistered     = "user.registered"
	EventUserUpdated        = "user.updated"
	EventUserResumeUploaded = "user.resume_uploaded"
)

const eventTypeAttr = "event"

// Event describes a change to a user record.
type Event struct {
	Type       string    `json:"type"`
	UserID     int       `json:"user_id"`
	Asset      string    `json:"asset,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher encodes events as JSON onto the MQ default channel.
type EventPublisher struct {
	mq  *MQ
	now func() time.Time
}

func NewEventPublisher(m *MQ) *EventPublisher {
	return &EventPublisher{mq: m, now: time.Now}
}

// Publish stamps the event if needed and sends it.
func (p *EventPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if _, err := p.mq.Publish(ctx, p.mq.Channel(), data, map[string]string{eventTypeAttr: event.Type}); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		event.Type = msg.Attributes[eventTypeAttr]
	}
	return event, nil
}
