package mock

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/notification"
)

// Record stores a delivered notification for inspection
type Record struct {
	ID     int64              `json:"id"`
	Event  notification.Event `json:"event"`
	SentAt time.Time          `json:"sentAt"`
}

// Notifier is an in-memory notification provider used in tests and dev runs.
// It logs all notifications and keeps the most recent ones for inspection.
type Notifier struct {
	name   string
	logger zerolog.Logger

	mu         sync.RWMutex
	records    []Record
	nextID     int64
	maxRecords int
}

// New creates a new mock notifier
func New(name string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		name:       name,
		logger:     logger.With().Str("notifier", "mock").Str("name", name).Logger(),
		records:    make([]Record, 0),
		nextID:     1,
		maxRecords: 100,
	}
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	n.logger.Info().Msg("Test notification")
	return nil
}

func (n *Notifier) Notify(ctx context.Context, event notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.records = append(n.records, Record{
		ID:     n.nextID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	n.nextID++
	if len(n.records) > n.maxRecords {
		n.records = n.records[len(n.records)-n.maxRecords:]
	}

	n.logger.Info().
		Str("kind", string(event.Kind)).
		Int64("request_id", event.RequestID).
		Str("title", event.Title).
		Msg("Notification")
	return nil
}

// Records returns a copy of the stored notifications, oldest first.
func (n *Notifier) Records() []Record {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Record, len(n.records))
	copy(out, n.records)
	return out
}

// Reset clears all stored notifications.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = n.records[:0]
}
