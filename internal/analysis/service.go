package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
)

type Config struct {
	Timeout     time.Duration // per provider call, default 60s
	PromptChars int           // text embedded in the prompt, default 15000
}

// Service runs a provider under a timeout and always produces an analysis,
// falling back to Simulate when the provider is absent or fails.
type Service struct {
	cfg      Config
	provider Provider
	cache    Cache
	schema   map[string]any
	logger   *slog.Logger
}

type Option func(*Service)

func WithProvider(p Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func NewService(cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PromptChars <= 0 {
		cfg.PromptChars = 15000
	}
	s := &Service{cfg: cfg, schema: AnalysisJSONSchema(), logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProviderName reports the configured provider, "simulated" when none is.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return string(constants.ProviderSimulated)
	}
	return s.provider.Name()
}

// CacheKey is the digest analyses are cached under.
func CacheKey(provider, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "analysis:" + provider + ":" + hex.EncodeToString(sum[:])
}

// Analyze never fails. Provider errors are reported on Outcome.Err next to a
// simulated analysis.
func (s *Service) Analyze(ctx context.Context, text, fileName string) Outcome {
	name := s.ProviderName()
	if s.provider == nil {
		s.logger.Info("analysis.simulated", "file_name", fileName, "reason", "no provider configured")
		return Outcome{Analysis: Simulate(text, fileName), Provider: name, Simulated: true}
	}

	key := CacheKey(name, text)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var a Analysis
			if err := json.Unmarshal(raw, &a); err == nil {
				s.logger.Debug("analysis.cache_hit", "file_name", fileName, "provider", name)
				return Outcome{Analysis: a, Provider: name, Cached: true}
			}
			s.logger.Warn("analysis.cache_corrupt", "key", key)
		}
	}

	a, err := s.complete(ctx, text, fileName)
	if err != nil {
		return Outcome{Analysis: Simulate(text, fileName), Provider: name, Simulated: true, Err: err}
	}
	if s.cache != nil {
		if raw, err := json.Marshal(a); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return Outcome{Analysis: a, Provider: name}
}

func (s *Service) complete(ctx context.Context, text, fileName string) (Analysis, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()
	name := s.provider.Name()

	ctx, cancel := context.WithTimeoutCause(ctx, s.cfg.Timeout, common.ErrTimeout)
	defer cancel()

	prompt := BuildPrompt(text, fileName, s.cfg.PromptChars)
	s.logger.Info("analysis.start",
		"req_id", rid,
		"provider", name,
		"file_name", fileName,
		"text_len", len(text),
		"prompt_len", len(prompt),
	)

	completion, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(context.Cause(ctx), common.ErrTimeout) {
			err = common.NewAppError(common.CodeTimeout,
				fmt.Sprintf("analysis provider %s did not answer within %s", name, s.cfg.Timeout), common.ErrTimeout)
		} else {
			err = common.NewAppError(common.CodeServiceUnavailable,
				fmt.Sprintf("analysis provider %s failed", name), fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err))
		}
		s.logger.Warn("analysis.provider_failed",
			"req_id", rid, "provider", name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Analysis{}, err
	}

	a, err := s.parse(completion)
	if err != nil {
		s.logger.Warn("analysis.parse_failed",
			"req_id", rid, "provider", name, "error", err,
			"completion_len", len(completion),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Analysis{}, common.NewAppError(common.CodeServiceUnavailable,
			fmt.Sprintf("analysis provider %s returned an unusable answer", name), fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err))
	}

	s.logger.Info("analysis.ok",
		"req_id", rid,
		"provider", name,
		"insights", len(a.KeyInsights),
		"recommendations", len(a.Recommendations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return a, nil
}

// parse extracts, normalizes and validates a completion.
func (s *Service) parse(completion string) (Analysis, error) {
	raw, err := ExtractJSONObject(completion)
	if err != nil {
		return Analysis{}, err
	}
	cleaned, _, err := NormalizeAnalysisJSON(raw, s.logger)
	if err != nil {
		return Analysis{}, err
	}
	if err := ValidateJSONAgainstSchema(s.schema, cleaned); err != nil {
		return Analysis{}, err
	}
	var a Analysis
	if err := json.Unmarshal(cleaned, &a); err != nil {
		return Analysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return a, nil
}
