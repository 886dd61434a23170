package notification

import (
	"context"
	"time"
)

// Event describes a request lifecycle change worth telling someone about.
type Event struct {
	Kind            Kind      `json:"kind"`
	RequestID       int64     `json:"requestId"`
	RequestType     string    `json:"requestType"`
	ExternalMediaID int64     `json:"externalMediaId"`
	Title           string    `json:"title"`
	RequestedBy     int64     `json:"requestedBy"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// Notifier delivers events to a single destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event Event) error
	Test(ctx context.Context) error
}
