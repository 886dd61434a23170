package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/notification"
)

// Settings contains webhook-specific configuration
type Settings struct {
	URL      string            `json:"url"`
	Method   string            `json:"method,omitempty"`
	Username string            `json:"username,omitempty"`
	Password string            `json:"password,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Payload is the JSON body sent to the webhook endpoint
type Payload struct {
	EventType       string    `json:"eventType"`
	InstanceName    string    `json:"instanceName"`
	RequestID       int64     `json:"requestId,omitempty"`
	RequestType     string    `json:"requestType,omitempty"`
	ExternalMediaID int64     `json:"externalMediaId,omitempty"`
	Title           string    `json:"title,omitempty"`
	RequestedBy     int64     `json:"requestedBy,omitempty"`
	Message         string    `json:"message,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Notifier sends request lifecycle events to a custom webhook endpoint
type Notifier struct {
	name       string
	settings   Settings
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new webhook notifier
func New(name string, settings Settings, httpClient *http.Client, logger zerolog.Logger) *Notifier {
	if settings.Method == "" {
		settings.Method = "POST"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Notifier{
		name:       name,
		settings:   settings,
		httpClient: httpClient,
		logger:     logger.With().Str("notifier", "webhook").Str("name", name).Logger(),
	}
}

func (n *Notifier) Name() string {
	return n.name
}

func (n *Notifier) Test(ctx context.Context) error {
	return n.send(ctx, Payload{
		EventType:    "test",
		InstanceName: "Requesterr",
		Message:      "Test notification from Requesterr",
		Timestamp:    time.Now().UTC(),
	})
}

func (n *Notifier) Notify(ctx context.Context, event notification.Event) error {
	return n.send(ctx, Payload{
		EventType:       string(event.Kind),
		InstanceName:    "Requesterr",
		RequestID:       event.RequestID,
		RequestType:     event.RequestType,
		ExternalMediaID: event.ExternalMediaID,
		Title:           event.Title,
		RequestedBy:     event.RequestedBy,
		Timestamp:       event.OccurredAt,
	})
}

func (n *Notifier) send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, n.settings.Method, n.settings.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.settings.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(n.settings.Username + ":" + n.settings.Password))
		req.Header.Set("Authorization", "Basic "+auth)
	}
	for key, value := range n.settings.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
