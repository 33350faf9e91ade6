package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateHelloWorld(t *testing.T) {
	a := Simulate("hello world", "hello.txt")

	assert.Equal(t, "hello world", a.Summary)
	assert.Equal(t, []string{"hello", "world"}, a.Metrics.Topics)
	assert.Equal(t, []string{
		"The document emphasizes hello as a key area of focus.",
		"The document emphasizes world as a key area of focus.",
		"The document contains approximately 1 paragraphs of content.",
	}, a.KeyInsights)
	assert.Equal(t, SimulatedSentiment, a.Metrics.Sentiment)
	assert.Equal(t, SimulatedConfidence, a.Metrics.Confidence)
	assert.Len(t, a.Recommendations, 5)
}

func TestSimulateEmptyTextUsesDefaults(t *testing.T) {
	a := Simulate("", "quarterly-report.pdf")

	assert.Equal(t, noSummary, a.Summary)
	assert.Equal(t, defaultTopics, a.Metrics.Topics)
	require.Len(t, a.KeyInsights, 4)
	assert.Equal(t, "quarterly-report appears to cover multiple business or organizational topics", a.KeyInsights[0])
}

func TestSimulateContentHints(t *testing.T) {
	text := "In 2023 revenue grew 4.5 percent.\n\nSee the table below | Q1 | Q2 |"
	a := Simulate(text, "r.txt")

	joined := strings.Join(a.KeyInsights, "\n")
	assert.Contains(t, joined, "approximately 2 paragraphs")
	assert.Contains(t, joined, "tabular data")
	assert.Contains(t, joined, "specific years")
	assert.Contains(t, joined, "numerical data points")
}

func TestSimulatedSummaryPrefersLongLines(t *testing.T) {
	text := "Title\n" +
		"This first line is clearly longer than thirty characters.\n" +
		"short\n" +
		"The second qualifying line is also long enough to keep.\n" +
		"The third qualifying line is long enough to be kept too.\n" +
		"A fourth long line that should not appear in the summary."

	got := simulatedSummary(text)
	assert.Equal(t,
		"This first line is clearly longer than thirty characters.\n\n"+
			"The second qualifying line is also long enough to keep.\n\n"+
			"The third qualifying line is long enough to be kept too.",
		got)
}

func TestSimulatedSummaryIsCapped(t *testing.T) {
	line := strings.Repeat("abcdefghij", 30)
	got := simulatedSummary(line + "\n" + line)
	assert.Equal(t, 500, len(got))
}

func TestTopTopics(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"frequency order", "alpha alpha gamma delta delta delta", []string{"delta", "alpha", "gamma"}},
		{"short words dropped", "beta beta beta gamma", []string{"gamma"}},
		{"stopwords dropped", "there there there report", []string{"report"}},
		{"punctuation splits words", "budget, budget; budget-plan", []string{"budget"}},
		{"ties keep first occurrence", "zebra apple mango", []string{"zebra", "apple", "mango"}},
		{"case folded", "Report REPORT report", []string{"report"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TopTopics(tc.text, 5))
		})
	}
}

func TestTopTopicsLimit(t *testing.T) {
	got := TopTopics("aaaaa bbbbb ccccc ddddd eeeee fffff ggggg", 5)
	assert.Equal(t, []string{"aaaaa", "bbbbb", "ccccc", "ddddd", "eeeee"}, got)
}
