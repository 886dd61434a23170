package health

import (
	"time"
)

// Status represents the health state of a tracked item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Category represents the category of health items.
type Category string

const (
	CategoryServices  Category = "services"
	CategoryDatabase  Category = "database"
	CategoryWatchlist Category = "watchlist"
	CategorySync      Category = "sync"
)

// AllCategories returns all health categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryServices,
		CategoryDatabase,
		CategoryWatchlist,
		CategorySync,
	}
}

// Item represents a single health-tracked item.
type Item struct {
	ID        string     `json:"id"`
	Category  Category   `json:"category"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// CategorySummary provides counts for a health category.
type CategorySummary struct {
	Category Category `json:"category"`
	OK       int      `json:"ok"`
	Warning  int      `json:"warning"`
	Error    int      `json:"error"`
}

// HasIssues returns true if there are any warning or error items.
func (c CategorySummary) HasIssues() bool {
	return c.Warning > 0 || c.Error > 0
}

// Response contains all health items grouped by category.
type Response struct {
	Services  []Item `json:"services"`
	Database  []Item `json:"database"`
	Watchlist []Item `json:"watchlist"`
	Sync      []Item `json:"sync"`
}

// Summary provides an overview of system health.
type Summary struct {
	Categories []CategorySummary `json:"categories"`
	HasIssues  bool              `json:"hasIssues"`
}

// UpdatePayload is the WebSocket payload for health updates.
type UpdatePayload struct {
	Category  Category   `json:"category"`
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
