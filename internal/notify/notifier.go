package notify

import (
	"context"
	"log/slog"

	"github.com/tkellner/timeclock/internal/models"
	"github.com/tkellner/timeclock/internal/store"
)

// Notifier records lifecycle events for recipients. Delivery is at least
// once and strictly best effort: a failed write is logged and swallowed so
// the state transition that produced the event is never rolled back.
type Notifier struct {
	store store.Store
	bus   *Bus
}

// New creates a Notifier. The bus may be nil when no live subscribers are
// wanted (e.g. one-shot CLI invocations).
func New(s store.Store, bus *Bus) *Notifier {
	return &Notifier{store: s, bus: bus}
}

// Notify writes one NotificationEvent per recipient and publishes the event
// on the bus. It never returns an error.
func (n *Notifier) Notify(ctx context.Context, recipients []string, event *models.NotificationEvent) {
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		record := &models.NotificationEvent{
			RecipientID: recipient,
			Type:        event.Type,
			TaskID:      event.TaskID,
			ActorID:     event.ActorID,
			Message:     event.Message,
		}
		if err := n.store.CreateNotification(ctx, record); err != nil {
			slog.Error("notify: failed to record notification",
				"recipient", recipient, "type", event.Type, "error", err)
		}
	}

	if n.bus != nil {
		n.bus.Publish(EventType(event.Type), event.TaskID, event.ActorID)
	}
}
