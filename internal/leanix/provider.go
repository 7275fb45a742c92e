package leanix

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/synchrotron/c4c4/internal/source"
)

// Provider is the "leanix" snapshot source.
type Provider struct {
	// HTTPClient overrides the default client; tests point it at httptest.
	HTTPClient *http.Client
	Log        *zap.Logger
}

func (p *Provider) Name() string { return "leanix" }

func (p *Provider) Configure() []source.ConfigQuestion {
	return []source.ConfigQuestion{
		{Key: KeyGraphQLURL, Prompt: "LeanIX GraphQL URL", Type: "text"},
		{Key: KeyAPIToken, Prompt: "LeanIX API token", Type: "secret"},
		{Key: KeyPlatformID, Prompt: "Tech platform fact sheet id", Type: "text", Default: "3f828194-de4a-4dee-9ca6-e071cc2e0eae"},
	}
}

// Fetch checks the connection, reads one platform and all interfaces, then
// maps them.
func (p *Provider) Fetch(ctx context.Context, config map[string]string) (*source.Snapshot, error) {
	cfg, err := ConfigFromMap(config)
	if err != nil {
		return nil, err
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	client := NewClient(cfg, p.HTTPClient, log)

	count, err := client.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("leanix: connect: %w", err)
	}
	log.Info("leanix.connected", zap.Int("applications", count))

	platform, err := client.Platform(ctx, cfg.PlatformID)
	if err != nil {
		return nil, err
	}
	interfaces, err := client.Interfaces(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("leanix.fetched",
		zap.String("platform", platform.Label()),
		zap.Int("applications", len(platform.Applications.Edges)),
		zap.Int("interfaces", len(interfaces)))

	snap, err := NewMapper(log).Map(platform, interfaces)
	if err != nil {
		return nil, fmt.Errorf("map platform %s: %w", cfg.PlatformID, err)
	}
	return snap, nil
}
