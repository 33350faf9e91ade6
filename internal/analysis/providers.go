package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis/anthropic"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis/gemini"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis/openai"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
)

// NewProvider builds the provider named in cfg. It returns nil for the
// simulated provider; the Service then simulates every analysis.
func NewProvider(ctx context.Context, cfg common.AnalysisConfig, logger *slog.Logger) (Provider, error) {
	p, ok := constants.CanonicalProvider(cfg.Provider)
	if !ok && cfg.Provider != "" {
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown analysis provider %q", cfg.Provider), common.ErrValidation)
	}

	switch p {
	case constants.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case constants.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case constants.ProviderAnthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float64(cfg.Temperature),
		}, logger), nil
	default:
		return nil, nil
	}
}
