package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

var reJSONObject = regexp.MustCompile(`\{[\s\S]*\}`)

var errNoJSONObject = errors.New("no JSON object in completion")

// ExtractJSONObject returns the span from the first '{' to the last '}' of a
// completion. Models often wrap the object in prose or markdown fences.
func ExtractJSONObject(completion string) ([]byte, error) {
	m := reJSONObject.FindString(completion)
	if m == "" {
		return nil, errNoJSONObject
	}
	return []byte(m), nil
}

const (
	defaultSentiment  = 0.5
	defaultConfidence = 0.7
)

// NormalizeAnalysisJSON
// - Renames snake_case and short synonyms (key_insights -> keyInsights)
// - Wraps bare strings into lists and drops empty list entries
// - Coerces numeric strings and clamps metrics to 0..1
// - Removes unknown top-level keys
func NormalizeAnalysisJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}

	changed := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}
	rename("key_insights", "keyInsights")
	rename("insights", "keyInsights")
	rename("recommendation", "recommendations")

	if s, ok := m["summary"].(string); ok {
		m["summary"] = strings.TrimSpace(s)
	} else if _, present := m["summary"]; present {
		delete(m, "summary")
		changed = append(changed, "summary(type)")
	}

	for _, k := range []string{"keyInsights", "recommendations"} {
		m[k] = coerceStringList(m[k])
	}

	metrics, ok := m["metrics"].(map[string]any)
	if !ok {
		metrics = map[string]any{}
		changed = append(changed, "metrics(missing)")
	}
	if _, has := metrics["topics"]; !has {
		if top, ok := m["topics"]; ok {
			metrics["topics"] = top
			changed = append(changed, "topics->metrics.topics")
		}
	}
	metrics["topics"] = coerceStringList(metrics["topics"])
	metrics["sentiment"] = coerceUnit(metrics["sentiment"], defaultSentiment)
	metrics["confidence"] = coerceUnit(metrics["confidence"], defaultConfidence)
	for k := range maps.Clone(metrics) {
		switch k {
		case "sentiment", "confidence", "topics":
		default:
			delete(metrics, k)
		}
	}
	m["metrics"] = metrics

	allowed := map[string]struct{}{
		"summary": {}, "keyInsights": {}, "metrics": {}, "recommendations": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Debug("analysis.normalize", "changed", changed)
	}
	return out, changed, nil
}

func coerceStringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			var s string
			switch it := item.(type) {
			case string:
				s = it
			case nil:
				continue
			case map[string]any, []any:
				b, err := json.Marshal(it)
				if err != nil {
					continue
				}
				s = string(b)
			default:
				s = fmt.Sprint(it)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func coerceUnit(v any, def float64) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return def
		}
		f = parsed
		if strings.HasSuffix(strings.TrimSpace(t), "%") {
			f /= 100
		}
	default:
		return def
	}
	// models sometimes answer on a 0..100 scale
	if f > 1 && f <= 100 {
		f /= 100
	}
	return min(max(f, 0), 1)
}
