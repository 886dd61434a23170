package health

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// alertCooldown limits how often a repeating failure on the same item is
// logged at warn level. The tracked status itself always updates.
const alertCooldown = 15 * time.Minute

// Broadcaster defines the interface for sending WebSocket messages.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// Service manages the health state of all tracked items.
// All state is in-memory and resets on application restart.
type Service struct {
	items       map[Category]map[string]*Item
	lastAlerted map[string]time.Time
	mu          sync.RWMutex
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger) *Service {
	s := &Service{
		items:       make(map[Category]map[string]*Item),
		lastAlerted: make(map[string]time.Time),
		logger:      logger.With().Str("component", "health").Logger(),
	}
	for _, cat := range AllCategories() {
		s.items[cat] = make(map[string]*Item)
	}
	return s
}

// SetBroadcaster sets the WebSocket broadcaster for real-time updates.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// RegisterItem adds a new item to health tracking with OK status.
func (s *Service) RegisterItem(category Category, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &Item{
		ID:       id,
		Category: category,
		Name:     name,
		Status:   StatusOK,
	}
	s.items[category][id] = item

	s.logger.Debug().
		Str("category", string(category)).
		Str("id", id).
		Str("name", name).
		Msg("Registered health item")

	s.broadcastUpdate(item)
}

// UnregisterItem removes an item from health tracking.
func (s *Service) UnregisterItem(category Category, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[category], id)
}

// SetError sets an item to Error status with a message.
func (s *Service) SetError(category Category, id, message string) {
	s.setStatus(category, id, StatusError, message)
}

// SetWarning sets an item to Warning status with a message.
func (s *Service) SetWarning(category Category, id, message string) {
	s.setStatus(category, id, StatusWarning, message)
}

// ClearStatus resets an item to OK status.
func (s *Service) ClearStatus(category Category, id string) {
	s.setStatus(category, id, StatusOK, "")
}

func (s *Service) setStatus(category Category, id string, status Status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[category][id]
	if !exists {
		// Auto-register so callers do not have to care about ordering
		// between startup registration and the first probe result.
		item = &Item{ID: id, Category: category, Name: id, Status: StatusOK}
		s.items[category][id] = item
	}

	if item.Status == status && item.Message == message {
		if status != StatusOK {
			s.alertThrottled(category, id, item.Name, status, message)
		}
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message
	if status != StatusOK {
		now := time.Now()
		item.Timestamp = &now
	} else {
		item.Timestamp = nil
		delete(s.lastAlerted, alertKey(category, id))
	}

	s.logger.Info().
		Str("category", string(category)).
		Str("id", id).
		Str("name", item.Name).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Str("message", message).
		Msg("Health status changed")

	s.broadcastUpdate(item)
}

func (s *Service) alertThrottled(category Category, id, name string, status Status, message string) {
	key := alertKey(category, id)
	if last, ok := s.lastAlerted[key]; ok && time.Since(last) < alertCooldown {
		return
	}
	s.lastAlerted[key] = time.Now()
	s.logger.Warn().
		Str("category", string(category)).
		Str("id", id).
		Str("name", name).
		Str("status", string(status)).
		Str("message", message).
		Msg("Health issue persists")
}

func alertKey(category Category, id string) string {
	return string(category) + "/" + id
}

func (s *Service) broadcastUpdate(item *Item) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast("health:update", UpdatePayload{
		Category:  item.Category,
		ID:        item.ID,
		Name:      item.Name,
		Status:    item.Status,
		Message:   item.Message,
		Timestamp: item.Timestamp,
	})
}

// GetAll returns all health items grouped by category.
func (s *Service) GetAll() *Response {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Response{
		Services:  s.itemsToSlice(CategoryServices),
		Database:  s.itemsToSlice(CategoryDatabase),
		Watchlist: s.itemsToSlice(CategoryWatchlist),
		Sync:      s.itemsToSlice(CategorySync),
	}
}

// GetItem returns a single item by category and ID.
func (s *Service) GetItem(category Category, id string) *Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[category][id]; exists {
		copied := *item
		return &copied
	}
	return nil
}

// GetSummary returns counts per category for the dashboard.
func (s *Service) GetSummary() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &Summary{
		Categories: make([]CategorySummary, 0, len(AllCategories())),
	}
	for _, cat := range AllCategories() {
		catSummary := CategorySummary{Category: cat}
		for _, item := range s.items[cat] {
			switch item.Status {
			case StatusOK:
				catSummary.OK++
			case StatusWarning:
				catSummary.Warning++
			case StatusError:
				catSummary.Error++
			}
		}
		summary.Categories = append(summary.Categories, catSummary)
		if catSummary.HasIssues() {
			summary.HasIssues = true
		}
	}
	return summary
}

func (s *Service) itemsToSlice(category Category) []Item {
	items := make([]Item, 0, len(s.items[category]))
	for _, item := range s.items[category] {
		items = append(items, *item)
	}
	return items
}
