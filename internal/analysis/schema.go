package analysis

// AnalysisJSONSchema is the contract a provider answer must meet after
// normalization.
func AnalysisJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":     map[string]any{"type": "string", "minLength": 1},
			"keyInsights": stringList(),
			"metrics": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sentiment":  unitInterval(),
					"confidence": unitInterval(),
					"topics":     stringList(),
				},
				"required": []string{"sentiment", "confidence", "topics"},
			},
			"recommendations": stringList(),
		},
		"required": []string{"summary", "keyInsights", "metrics", "recommendations"},
	}
}

func stringList() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func unitInterval() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
