// Package config loads semcommit configuration from an optional
// .semcommit.yaml at the repository root, with environment variables
// taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up at the repository root.
const ConfigFileName = ".semcommit.yaml"

// Environment variables recognized by Load. The API key is never read
// from the config file.
const (
	EnvLocalEmbeddings = "SEMCOMMIT_LOCAL_EMBEDDINGS"
	EnvAPIKey          = "EMBEDDINGS_API_KEY"
	EnvEndpoint        = "SEMCOMMIT_EMBEDDINGS_URL"
	EnvModel           = "SEMCOMMIT_EMBEDDINGS_MODEL"
	EnvThreshold       = "SEMCOMMIT_SIMILARITY_THRESHOLD"
)

// Config holds all semcommit settings.
type Config struct {
	// SimilarityThreshold is the cosine similarity above which two
	// changes land in the same group.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	Embeddings EmbeddingsConfig `yaml:"embeddings"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Local selects the deterministic offline provider.
	Local bool `yaml:"local"`

	// Endpoint is the embeddings API base URL.
	Endpoint string `yaml:"endpoint"`

	// Model is the embedding model name sent with each request.
	Model string `yaml:"model"`

	// TimeoutSeconds bounds each embeddings HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// APIKey is env-only (EMBEDDINGS_API_KEY); never stored in YAML.
	APIKey string `yaml:"-"`
}

// Timeout returns the request timeout as a duration.
func (e EmbeddingsConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SimilarityThreshold: 0.80,
		Embeddings: EmbeddingsConfig{
			Endpoint:       "https://api.openai.com/v1/embeddings",
			Model:          "text-embedding-3-small",
			TimeoutSeconds: 30,
		},
	}
}

// Load reads configuration for a repository: defaults, then
// .semcommit.yaml if present, then environment overrides.
func Load(repoPath string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(repoPath, ConfigFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	applyEnv(cfg)

	if cfg.SimilarityThreshold < -1 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in [-1, 1], got %v", cfg.SimilarityThreshold)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLocalEmbeddings); v != "" {
		cfg.Embeddings.Local = v == "1" || v == "true"
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Embeddings.APIKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Embeddings.Endpoint = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Embeddings.Model = v
	}
	if v := os.Getenv(EnvThreshold); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SimilarityThreshold = t
		}
	}
}
