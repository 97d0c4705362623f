package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/secrets"
	"github.com/spigell/resume-analyzer/internal/similarity"
	"github.com/spigell/resume-analyzer/internal/similarity/gemini"
	"github.com/spigell/resume-analyzer/internal/similarity/hashing"
)

const (
	providerHashing = "hashing"
	providerGemini  = "gemini"
)

// newSimilarity builds the similarity service for the configured provider.
// The backend itself is created lazily on first use.
func newSimilarity(cfg *SimilarityConfig, log *zap.Logger) (*similarity.Service, error) {
	if cfg == nil {
		cfg = &SimilarityConfig{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	provider, model := providerAndModel(cfg)

	loader, err := newLoader(provider, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := similarity.New(loader, logger.WithCommonFields(log, provider, model))
	svc.SetMaxLogLength(cfg.MaxLogLength)

	return svc, nil
}

func providerAndModel(cfg *SimilarityConfig) (string, string) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerHashing
	}

	var model string
	if provider == providerGemini && cfg.Gemini != nil {
		model = cfg.Gemini.Model
	}

	return provider, model
}

func newLoader(provider string, cfg *SimilarityConfig, log *zap.Logger) (similarity.Loader, error) {
	switch provider {
	case providerHashing:
		dimensions := 0
		if cfg.Hashing != nil {
			dimensions = cfg.Hashing.Dimensions
		}
		return func(context.Context) (similarity.Embedder, error) {
			return hashing.New(dimensions), nil
		}, nil

	case providerGemini:
		gcfg := cfg.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}
		return func(ctx context.Context) (similarity.Embedder, error) {
			apiKey, err := secrets.Load(secrets.Source{
				Name: "gemini api key",
				File: gcfg.APIKeyFile,
				Env:  "GEMINI_API_KEY",
			})
			if err != nil {
				return nil, fmt.Errorf("%w (set similarity.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
			}

			genLogger := log.With(zap.Int("embedding_retry_attempts", gcfg.MaxRetries))
			embedder, err := gemini.NewEmbedder(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, genLogger)
			if err != nil {
				return nil, err
			}
			return embedder, nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported similarity provider: %s", cfg.Provider)
	}
}
