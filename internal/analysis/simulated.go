package analysis

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	SimulatedSentiment  = 0.65
	SimulatedConfidence = 0.78
	noSummary           = "No readable summary could be extracted from this document."

	summaryScanChars = 2000
	summaryMaxChars  = 500
	summaryMinLine   = 30
	topicCount       = 5
	topicInsights    = 3
	minTopicLen      = 4 // topic words must be longer than this
)

var (
	reNonWord = regexp.MustCompile(`[^\w\s]`)
	reYear    = regexp.MustCompile(`\d{4}`)
	reDecimal = regexp.MustCompile(`\d+\.\d+`)

	stopwords = map[string]struct{}{
		"about": {}, "after": {}, "again": {}, "below": {}, "could": {}, "every": {},
		"first": {}, "found": {}, "great": {}, "other": {}, "since": {}, "sound": {},
		"still": {}, "their": {}, "there": {}, "these": {}, "thing": {}, "think": {},
		"those": {}, "where": {}, "which": {}, "would": {},
	}

	defaultTopics = []string{"content", "analysis", "documentation", "review", "information"}

	simulatedRecommendations = []string{
		"Review the document in detail to validate extracted information",
		"Consider using more advanced analysis tools for deeper content extraction",
		"Compare the document with related materials to establish context",
		"Follow up on key topics identified in the analysis",
		"Share this document with relevant team members for additional perspectives",
	}
)

// Simulate builds an analysis from word-frequency statistics alone. It is the
// stand-in whenever no provider answer is available.
func Simulate(text, fileName string) Analysis {
	var summary string
	var topics, insights []string

	if text != "" {
		summary = simulatedSummary(text)
		topics = TopTopics(text, topicCount)
		for i, topic := range topics {
			if i >= topicInsights {
				break
			}
			insights = append(insights, fmt.Sprintf("The document emphasizes %s as a key area of focus.", topic))
		}
		insights = append(insights, fmt.Sprintf("The document contains approximately %d paragraphs of content.", countParagraphs(text)))
		if strings.Contains(strings.ToLower(text), "table") || strings.Contains(text, "|") {
			insights = append(insights, "The document includes tabular data that may contain important metrics or comparison information.")
		}
		if reYear.MatchString(text) {
			insights = append(insights, "The document references specific years, indicating historical data or timeline information is present.")
		}
		if reDecimal.MatchString(text) {
			insights = append(insights, "The document contains numerical data points which may represent important metrics or financial information.")
		}
	}

	if len(insights) == 0 {
		base := baseName(fileName)
		insights = []string{
			fmt.Sprintf("%s appears to cover multiple business or organizational topics", base),
			"The document structure suggests it may contain important information for decision-making",
			"Several sections may require further detailed analysis",
			"Review recommended for complete understanding of the document's implications",
		}
	}
	if len(topics) == 0 {
		topics = append([]string{}, defaultTopics...)
	}
	if summary == "" {
		summary = noSummary
	}

	return Analysis{
		Summary:     summary,
		KeyInsights: insights,
		Metrics: Metrics{
			Sentiment:  SimulatedSentiment,
			Confidence: SimulatedConfidence,
			Topics:     topics,
		},
		Recommendations: append([]string{}, simulatedRecommendations...),
	}
}

// simulatedSummary keeps the first three lines longer than 30 characters
// from the head of the text, or the head itself when none qualify.
func simulatedSummary(text string) string {
	head := prefixRunes(text, summaryScanChars)
	var lines []string
	for _, line := range strings.Split(head, "\n") {
		if utf8.RuneCountInString(strings.TrimSpace(line)) > summaryMinLine {
			lines = append(lines, line)
			if len(lines) == 3 {
				break
			}
		}
	}
	summary := strings.TrimSpace(prefixRunes(strings.Join(lines, "\n\n"), summaryMaxChars))
	if summary == "" {
		summary = strings.TrimSpace(prefixRunes(text, summaryMaxChars))
	}
	return summary
}

// TopTopics returns up to n words ranked by frequency. Ties keep first
// occurrence order.
func TopTopics(text string, n int) []string {
	cleaned := reNonWord.ReplaceAllString(strings.ToLower(text), " ")
	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) <= minTopicLen {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func countParagraphs(text string) int {
	n := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func baseName(fileName string) string {
	if fileName == "" {
		return "document"
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
