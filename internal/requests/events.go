package requests

import (
	"time"
)

const (
	EventRequestCreated = "request:created"
	EventRequestUpdated = "request:updated"
	EventRequestDeleted = "request:deleted"
)

type RequestCreatedPayload struct {
	RequestID   int64     `json:"requestId"`
	RequestType string    `json:"requestType"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	RequestedBy int64     `json:"requestedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RequestUpdatedPayload struct {
	RequestID      int64     `json:"requestId"`
	RequestType    string    `json:"requestType"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type RequestDeletedPayload struct {
	RequestID   int64  `json:"requestId"`
	RequestType string `json:"requestType"`
	Title       string `json:"title"`
}

// Broadcaster pushes events to connected UI clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// EventBroadcaster translates request mutations into websocket events.
type EventBroadcaster struct {
	hub Broadcaster
}

func NewEventBroadcaster(hub Broadcaster) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

func (b *EventBroadcaster) BroadcastRequestCreated(request *Request) {
	if b.hub == nil {
		return
	}
	b.hub.Broadcast(EventRequestCreated, RequestCreatedPayload{
		RequestID:   request.ID,
		RequestType: request.RequestType,
		Title:       request.Title,
		Status:      request.Status,
		RequestedBy: request.RequestedBy,
		CreatedAt:   request.CreatedAt,
	})
}

func (b *EventBroadcaster) BroadcastRequestUpdated(request *Request, previousStatus string) {
	if b.hub == nil {
		return
	}
	b.hub.Broadcast(EventRequestUpdated, RequestUpdatedPayload{
		RequestID:      request.ID,
		RequestType:    request.RequestType,
		Title:          request.Title,
		Status:         request.Status,
		PreviousStatus: previousStatus,
		UpdatedAt:      request.UpdatedAt,
	})
}

func (b *EventBroadcaster) BroadcastRequestDeleted(request *Request) {
	if b.hub == nil {
		return
	}
	b.hub.Broadcast(EventRequestDeleted, RequestDeletedPayload{
		RequestID:   request.ID,
		RequestType: request.RequestType,
		Title:       request.Title,
	})
}
