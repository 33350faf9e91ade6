package analysis

import "context"

// Analysis is the normalized shape every provider's answer is coerced into.
type Analysis struct {
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"keyInsights"`
	Metrics         Metrics  `json:"metrics"`
	Recommendations []string `json:"recommendations"`
}

type Metrics struct {
	Sentiment  float64  `json:"sentiment"`  // 0..1, higher is more positive
	Confidence float64  `json:"confidence"` // 0..1
	Topics     []string `json:"topics"`
}

// Provider is a hosted model that turns a prompt into raw completion text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Cache stores encoded analyses keyed by a digest of the analyzed text.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Outcome is what Service.Analyze hands back. Err is the provider failure
// that forced the simulated result, nil otherwise.
type Outcome struct {
	Analysis  Analysis
	Provider  string
	Simulated bool
	Cached    bool
	Err       error
}
