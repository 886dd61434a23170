// Package conncheck verifies that a configured service instance is
// reachable and that its stored credential is accepted.
package conncheck

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/arr/radarr"
	"github.com/requesterr/requesterr/internal/arr/sonarr"
	"github.com/requesterr/requesterr/internal/services"
)

// Run performs one cheap authenticated call against the instance. The
// returned error classifies the same way client calls do, so arr.IsAuth
// distinguishes a bad key from an unreachable host.
func Run(ctx context.Context, instance *services.Instance, logger *zerolog.Logger) error {
	switch instance.Type {
	case services.TypeRadarr:
		client, err := radarr.New(instance, logger)
		if err != nil {
			return err
		}
		_, err = client.GetQualityProfiles(ctx)
		return err

	case services.TypeSonarr:
		client, err := sonarr.New(instance, logger)
		if err != nil {
			return err
		}
		_, err = client.GetQualityProfiles(ctx)
		return err

	case services.TypeProwlarr:
		client, err := arr.NewClient("prowlarr", arr.ClientConfig{
			URL:    instance.BaseURL,
			APIKey: instance.APIKey,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		var indexers json.RawMessage
		return client.GetJSON(ctx, "prowlarr.ListIndexers", "/api/v1/indexer", &indexers)

	default:
		return services.ErrUnknownType
	}
}
