// Package services is the directory of configured external automation
// services. It resolves, decrypts, and caches per-type service credentials
// so that a reconciliation pass touching many requests does not decrypt
// and re-query configuration on every external call.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/crypto"
	"github.com/requesterr/requesterr/internal/database/sqlc"
)

// Service types known to the directory.
const (
	TypeRadarr   = "radarr"
	TypeSonarr   = "sonarr"
	TypeProwlarr = "prowlarr"
)

var (
	ErrNotConfigured   = errors.New("no enabled service of this type is configured")
	ErrUnknownType     = errors.New("unknown service type")
	ErrInstanceMissing = errors.New("service instance not found")
)

// cacheTTL keeps the resolve-decrypt path off hot loops while still
// picking up credential rotation within seconds.
const cacheTTL = 10 * time.Second

// Settings is the per-instance config blob handed to clients.
type Settings struct {
	RootFolder       string `json:"rootFolder"`
	QualityProfileID int64  `json:"qualityProfileId"`
	SeriesType       string `json:"seriesType,omitempty"`
	SeasonFolder     bool   `json:"seasonFolder,omitempty"`
}

// Instance is a resolved external service with its decrypted credential.
type Instance struct {
	ID        int64
	Type      string
	Name      string
	BaseURL   string
	APIKey    string
	Settings  Settings
	IsDefault bool
}

type cacheEntry struct {
	instance *Instance
	expires  time.Time
}

// Directory resolves service instances by type.
type Directory struct {
	queries *sqlc.Queries
	secrets *crypto.SecretStore
	logger  zerolog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewDirectory creates a service directory.
func NewDirectory(queries *sqlc.Queries, secrets *crypto.SecretStore, logger zerolog.Logger) *Directory {
	return &Directory{
		queries: queries,
		secrets: secrets,
		logger:  logger.With().Str("component", "service-directory").Logger(),
		cache:   make(map[string]cacheEntry),
	}
}

// Resolve returns the active instance for a service type: the one flagged
// as default, else the most recently created enabled one. It returns
// ErrNotConfigured when nothing is enabled so callers can skip optional
// integrations gracefully.
func (d *Directory) Resolve(ctx context.Context, serviceType string) (*Instance, error) {
	if !isKnownType(serviceType) {
		return nil, ErrUnknownType
	}

	d.mu.Lock()
	if entry, ok := d.cache[serviceType]; ok && time.Now().Before(entry.expires) {
		d.mu.Unlock()
		return entry.instance, nil
	}
	d.mu.Unlock()

	rows, err := d.queries.ListEnabledServiceInstancesByType(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotConfigured
	}

	// Rows come back ordered is_default first, then newest created.
	instance, err := d.toInstance(rows[0])
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cache[serviceType] = cacheEntry{instance: instance, expires: time.Now().Add(cacheTTL)}
	d.mu.Unlock()

	return instance, nil
}

// ClearCache invalidates the cached instance for a type. Called on any
// config change so the next Resolve sees fresh credentials.
func (d *Directory) ClearCache(serviceType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if serviceType == "" {
		d.cache = make(map[string]cacheEntry)
		return
	}
	delete(d.cache, serviceType)
}

func (d *Directory) toInstance(row *sqlc.ServiceInstance) (*Instance, error) {
	apiKey, err := d.secrets.Decrypt(row.ApiKey)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if row.Settings != "" {
		if err := json.Unmarshal([]byte(row.Settings), &settings); err != nil {
			d.logger.Warn().Err(err).Int64("instanceID", row.ID).Msg("invalid settings blob, using defaults")
		}
	}

	return &Instance{
		ID:        row.ID,
		Type:      row.Type,
		Name:      row.Name,
		BaseURL:   row.BaseUrl,
		APIKey:    apiKey,
		Settings:  settings,
		IsDefault: row.IsDefault == 1,
	}, nil
}

// CreateInput holds the fields for registering a service instance.
type CreateInput struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	BaseURL   string   `json:"baseUrl"`
	APIKey    string   `json:"apiKey"`
	Settings  Settings `json:"settings"`
	Enabled   bool     `json:"enabled"`
	IsDefault bool     `json:"isDefault"`
}

// Create registers a new service instance, encrypting its API key at rest.
func (d *Directory) Create(ctx context.Context, input CreateInput) (*Instance, error) {
	if !isKnownType(input.Type) {
		return nil, ErrUnknownType
	}

	encKey, err := d.secrets.Encrypt(input.APIKey)
	if err != nil {
		return nil, err
	}

	settings, err := json.Marshal(input.Settings)
	if err != nil {
		return nil, err
	}

	row, err := d.queries.CreateServiceInstance(ctx, sqlc.CreateServiceInstanceParams{
		Type:      input.Type,
		Name:      input.Name,
		BaseUrl:   input.BaseURL,
		ApiKey:    encKey,
		Settings:  string(settings),
		Enabled:   boolToInt(input.Enabled),
		IsDefault: boolToInt(input.IsDefault),
	})
	if err != nil {
		return nil, err
	}

	d.ClearCache(input.Type)
	d.logger.Info().Str("type", input.Type).Str("name", input.Name).Msg("service instance registered")
	return d.toInstance(row)
}

// Update replaces an instance's configuration. An empty APIKey keeps the
// stored one.
func (d *Directory) Update(ctx context.Context, id int64, input CreateInput) (*Instance, error) {
	existing, err := d.queries.GetServiceInstance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstanceMissing
		}
		return nil, err
	}

	encKey := existing.ApiKey
	if input.APIKey != "" {
		encKey, err = d.secrets.Encrypt(input.APIKey)
		if err != nil {
			return nil, err
		}
	}

	settings, err := json.Marshal(input.Settings)
	if err != nil {
		return nil, err
	}

	row, err := d.queries.UpdateServiceInstance(ctx, sqlc.UpdateServiceInstanceParams{
		Name:      input.Name,
		BaseUrl:   input.BaseURL,
		ApiKey:    encKey,
		Settings:  string(settings),
		Enabled:   boolToInt(input.Enabled),
		IsDefault: boolToInt(input.IsDefault),
		ID:        id,
	})
	if err != nil {
		return nil, err
	}

	d.ClearCache(existing.Type)
	return d.toInstance(row)
}

// Get loads one instance by id with its API key decrypted. Used by the
// connection test, which needs the live credential.
func (d *Directory) Get(ctx context.Context, id int64) (*Instance, error) {
	row, err := d.queries.GetServiceInstance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstanceMissing
		}
		return nil, err
	}
	return d.toInstance(row)
}

// Delete removes an instance.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	existing, err := d.queries.GetServiceInstance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInstanceMissing
		}
		return err
	}

	if err := d.queries.DeleteServiceInstance(ctx, id); err != nil {
		return err
	}

	d.ClearCache(existing.Type)
	return nil
}

// List returns all registered instances with API keys redacted.
func (d *Directory) List(ctx context.Context) ([]*Instance, error) {
	rows, err := d.queries.ListServiceInstances(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Instance, 0, len(rows))
	for _, row := range rows {
		instance, err := d.toInstance(row)
		if err != nil {
			d.logger.Warn().Err(err).Int64("instanceID", row.ID).Msg("failed to decrypt instance, skipping")
			continue
		}
		instance.APIKey = ""
		result = append(result, instance)
	}
	return result, nil
}

func isKnownType(t string) bool {
	switch t {
	case TypeRadarr, TypeSonarr, TypeProwlarr:
		return true
	}
	return false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
