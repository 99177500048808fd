package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// eventTTL covers the billing source's retry window with room to spare.
const eventTTL = 7 * 24 * time.Hour

// EventLedger provides billing-event replay checks backed by Redis.
// Key format: billing:event:<event_id>
type EventLedger struct {
	client *redis.Client
}

// NewEventLedger creates an EventLedger wrapping the given Redis client.
func NewEventLedger(client *redis.Client) *EventLedger {
	return &EventLedger{client: client}
}

// Seen reports whether this event ID has already been applied.
func (l *EventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// Record marks the event ID as applied (expires after eventTTL).
func (l *EventLedger) Record(ctx context.Context, eventID string) error {
	return l.client.Set(ctx, l.key(eventID), "1", eventTTL).Err()
}

func (l *EventLedger) key(eventID string) string {
	return "billing:event:" + eventID
}
