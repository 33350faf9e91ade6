package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	sdkoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joseph-ayodele/doc-analyzer/constants"
)

type Config struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL     string
	Model       string // e.g. "claude-3-5-haiku-latest"
	MaxTokens   int
	Temperature float64
}

// Client implements analysis.Provider over the Messages API.
type Client struct {
	cfg    Config
	api    sdk.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []sdkoption.RequestOption{sdkoption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, sdkoption.WithBaseURL(cfg.BaseURL))
	}
	return &Client{cfg: cfg, api: sdk.NewClient(opts...), logger: logger}
}

func (c *Client) Name() string {
	return string(constants.ProviderAnthropic)
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	msg, err := c.api.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.cfg.Model),
		MaxTokens:   int64(c.cfg.MaxTokens),
		Temperature: sdk.Float(c.cfg.Temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Error("anthropic.message_failed", "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(sdk.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: no text in response")
	}
	c.logger.Debug("anthropic.message_ok",
		"model", c.cfg.Model,
		"stop_reason", msg.StopReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}
