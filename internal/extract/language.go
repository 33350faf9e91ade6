package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// minDetectRunes keeps the detector away from headers and stray tokens.
const minDetectRunes = 40

// detectSample bounds how much text is handed to the detector.
const detectSample = 4000

// LinguaDetector detects the dominant language with lingua-go, restricted to
// a small set of languages to keep model loading cheap.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

func NewLinguaDetector(languages ...lingua.Language) *LinguaDetector {
	if len(languages) == 0 {
		languages = []lingua.Language{
			lingua.English, lingua.French, lingua.German, lingua.Spanish,
			lingua.Italian, lingua.Portuguese, lingua.Dutch,
		}
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.1).
			Build(),
	}
}

func (d *LinguaDetector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minDetectRunes {
		return "", false
	}
	if sample, clipped := Truncate(text, detectSample); clipped {
		text = sample
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
