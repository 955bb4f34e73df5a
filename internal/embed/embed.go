// Package embed maps text to fixed-dimension vectors. A single
// capability interface has two interchangeable implementations: a
// deterministic offline provider used for testing and air-gapped
// operation, and a remote provider backed by an embeddings API.
package embed

import (
	"context"
	"fmt"

	"github.com/semcommit/semcommit/internal/config"
)

// Provider turns a batch of texts into one vector per text.
type Provider interface {
	// Embed returns one vector per input text, in input order. An
	// empty input yields an empty result.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// NewFromConfig selects a provider from configuration: the local
// toggle wins; otherwise an API key is required.
func NewFromConfig(cfg *config.Config) (Provider, error) {
	if cfg.Embeddings.Local {
		return Deterministic{}, nil
	}
	if cfg.Embeddings.APIKey == "" {
		return nil, fmt.Errorf("embeddings API key not configured: set %s, or set %s=1 for offline deterministic embeddings",
			config.EnvAPIKey, config.EnvLocalEmbeddings)
	}
	return NewRemote(RemoteConfig{
		Endpoint: cfg.Embeddings.Endpoint,
		Model:    cfg.Embeddings.Model,
		APIKey:   cfg.Embeddings.APIKey,
		Timeout:  cfg.Embeddings.Timeout(),
	}), nil
}
