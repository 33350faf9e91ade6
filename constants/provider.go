package constants

import "strings"

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderSimulated Provider = "simulated"
)

var allProviders = []Provider{
	ProviderGemini,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderSimulated,
}

// Providers returns the supported analysis provider names.
func Providers() []string {
	result := make([]string, len(allProviders))
	for i, p := range allProviders {
		result[i] = string(p)
	}
	return result
}

// CanonicalProvider maps user input (env values, flags) to a Provider.
func CanonicalProvider(input string) (Provider, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return ProviderSimulated, false
	}

	synonyms := map[string]Provider{
		"google":  ProviderGemini,
		"genai":   ProviderGemini,
		"gpt":     ProviderOpenAI,
		"claude":  ProviderAnthropic,
		"none":    ProviderSimulated,
		"offline": ProviderSimulated,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}
	for _, p := range allProviders {
		if normalized == string(p) {
			return p, true
		}
	}
	return ProviderSimulated, false
}
