package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "1700000000123-report.pdf", ObjectName(now, "report.pdf"))
	assert.Equal(t, "1700000000123-a_b_c.txt", ObjectName(now, "a/b\\c.txt"))
	assert.Equal(t, "1700000000123-upload", ObjectName(now, "  "))
}

func TestAnalysisKey(t *testing.T) {
	assert.Equal(t, "analysis-report.pdf", AnalysisKey("1700000000123-report.pdf"))
	assert.Equal(t, "analysis-report.pdf", AnalysisKey("report.pdf"))
	assert.Equal(t, "analysis-my-file.txt", AnalysisKey("17-my-file.txt"))
}

func TestAssociatedAnalysisKey(t *testing.T) {
	assert.Equal(t, "analysis-report.pdf", associatedAnalysisKey("1700000000123-report.pdf"))
	assert.Equal(t, "analysis-plain", associatedAnalysisKey("plain"))
}

func TestAnalysisCandidates(t *testing.T) {
	cases := []struct {
		id   string
		want []string
	}{
		{"analysis-report.pdf", []string{"analysis-report.pdf"}},
		{"report.pdf", []string{"analysis-report.pdf", "report.pdf"}},
		{"17-report.pdf", []string{"analysis-17-report.pdf", "analysis-report.pdf", "17-report.pdf", "analysis-report"}},
		{"17-notes", []string{"analysis-17-notes", "analysis-notes", "17-notes"}},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, AnalysisCandidates(tc.id))
		})
	}
}

func TestPartialMatches(t *testing.T) {
	got := partialMatches(
		[]string{"analysis-report"},
		[]string{"analysis-report-final.pdf", "analysis-other.txt", "17-report.pdf"},
	)
	assert.Equal(t, []string{"analysis-report", "analysis-report-final.pdf"}, got)
}
