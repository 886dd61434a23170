package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// KindForStatus maps a request status to the notification kind emitted when a
// request enters that status. The bool is false for statuses that do not
// generate notifications (pending, denied, failed).
func KindForStatus(status string) (Kind, bool) {
	switch status {
	case "submitted", "queued":
		return KindRequestSubmitted, true
	case "downloading":
		return KindRequestDownloading, true
	case "partially_available":
		return KindRequestPartiallyAvailable, true
	case "available":
		return KindRequestAvailable, true
	case "removed":
		return KindRequestRemoved, true
	default:
		return "", false
	}
}

// Dispatcher fans events out to all registered notifiers. A failing notifier
// is logged and skipped; it never blocks delivery to the others.
type Dispatcher struct {
	mu        sync.RWMutex
	notifiers []Notifier
	logger    zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Register adds a notifier to the fan-out set.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers = append(d.notifiers, n)
}

// Dispatch delivers the event to every registered notifier.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	targets := make([]Notifier, len(d.notifiers))
	copy(targets, d.notifiers)
	d.mu.RUnlock()

	for _, n := range targets {
		if err := n.Notify(ctx, event); err != nil {
			d.logger.Warn().
				Err(err).
				Str("notifier", n.Name()).
				Str("kind", string(event.Kind)).
				Int64("request_id", event.RequestID).
				Msg("Failed to deliver notification")
			continue
		}
		d.logger.Debug().
			Str("notifier", n.Name()).
			Str("kind", string(event.Kind)).
			Int64("request_id", event.RequestID).
			Msg("Notification delivered")
	}
}
