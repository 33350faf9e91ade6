package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("Sure!\n```json\n{\"summary\":\"x\",\"metrics\":{\"topics\":[]}}\n```\nDone.")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"x","metrics":{"topics":[]}}`, string(got))

	_, err = ExtractJSONObject("no object here")
	assert.ErrorIs(t, err, errNoJSONObject)
}

func TestNormalizeAnalysisJSON(t *testing.T) {
	raw := []byte(`{
		"summary": "  S  ",
		"key_insights": ["a", "", null, 3],
		"recommendations": "single",
		"topics": ["t1"],
		"metrics": {"sentiment": "0.9", "confidence": 85, "extra": true},
		"notes": "dropped"
	}`)

	out, changed, err := NormalizeAnalysisJSON(raw, nil)
	require.NoError(t, err)
	assert.Contains(t, changed, "key_insights->keyInsights")
	assert.Contains(t, changed, "notes(unknown)")

	var a Analysis
	require.NoError(t, json.Unmarshal(out, &a))
	assert.Equal(t, "S", a.Summary)
	assert.Equal(t, []string{"a", "3"}, a.KeyInsights)
	assert.Equal(t, []string{"single"}, a.Recommendations)
	assert.Equal(t, []string{"t1"}, a.Metrics.Topics)
	assert.InDelta(t, 0.9, a.Metrics.Sentiment, 1e-9)
	assert.InDelta(t, 0.85, a.Metrics.Confidence, 1e-9)

	require.NoError(t, ValidateJSONAgainstSchema(AnalysisJSONSchema(), out))
}

func TestNormalizeDefaultsMetrics(t *testing.T) {
	out, _, err := NormalizeAnalysisJSON([]byte(`{"summary":"S"}`), nil)
	require.NoError(t, err)

	var a Analysis
	require.NoError(t, json.Unmarshal(out, &a))
	assert.Equal(t, defaultSentiment, a.Metrics.Sentiment)
	assert.Equal(t, defaultConfidence, a.Metrics.Confidence)
	assert.Empty(t, a.KeyInsights)
	require.NoError(t, ValidateJSONAgainstSchema(AnalysisJSONSchema(), out))
}

func TestCoerceUnit(t *testing.T) {
	assert.Equal(t, 0.5, coerceUnit(nil, 0.5))
	assert.Equal(t, 0.5, coerceUnit("n/a", 0.5))
	assert.InDelta(t, 0.7, coerceUnit("70%", 0.5), 1e-9)
	assert.Equal(t, 0.0, coerceUnit(-3.0, 0.5))
	assert.Equal(t, 1.0, coerceUnit(250.0, 0.5))
}

func TestValidateRejectsMissingSummary(t *testing.T) {
	err := ValidateJSONAgainstSchema(AnalysisJSONSchema(),
		[]byte(`{"keyInsights":[],"recommendations":[],"metrics":{"sentiment":0.5,"confidence":0.7,"topics":[]}}`))
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("short text", "a.txt", 100)
	assert.Contains(t, p, `Document name: "a.txt"`)
	assert.Contains(t, p, "short text")
	assert.NotContains(t, p, "truncated for size")

	p = BuildPrompt("abcdefghij", "a.txt", 4)
	assert.Contains(t, p, "abcd\n... (text truncated for size)")
	assert.NotContains(t, p, "abcde")
}
