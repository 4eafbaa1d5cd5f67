package events

import (
	"context"
	"log/slog"
)

// RegisterAuditLog writes one structured log line per access-control change.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := logger.With("component", "audit")
	for _, eventType := range AccessEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
			attrs := []any{"event_type", event.EventType(), "event_id", event.EventID(), "occurred_at", event.OccurredAt()}
			if data, ok := event.Payload().(map[string]interface{}); ok {
				for k, v := range data {
					attrs = append(attrs, k, v)
				}
			}
			audit.InfoContext(ctx, "access change", attrs...)
			return nil
		})
	}
}
