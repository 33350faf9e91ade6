package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"prose", "The annual report covers revenue, costs and outlook.", true},
		{"no letter run", "12 34 56 78 90 ab 12 34 56 78 90", false},
		{"special heavy", "abc#$%^&*#$%^&*#$%^&*", false},
		{"binary heavy", "abc\x00\x01\x02\x03\x04\x05\x06", false},
		{"empty", "", false},
		{"latin1 accents count as non-printable", "caf\xe9 caf\xe9 caf\xe9", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, looksLikeText(tc.in))
		})
	}
}

func TestLooksLikeTextRatioBoundaries(t *testing.T) {
	// 2 non-printable bytes out of 10 is exactly 20% and passes
	assert.True(t, looksLikeText("abcdefgh\x00\x01"))
	// 3 of 10 exceeds the threshold
	assert.False(t, looksLikeText("abcdefg\x00\x01\x02"))
	// 3 specials of 10 is exactly 30% and passes
	assert.True(t, looksLikeText("abcdefg#$%"))
	assert.False(t, looksLikeText("abcdef#$%&"))
}

func TestScanCandidatesLiteralsInStreams(t *testing.T) {
	data := []byte("xx stream (Hello \\(nested\\) world) endstream (abc) (also here)")
	got := scanCandidates(data)
	require.NotEmpty(t, got)

	assert.Equal(t, `Hello \(nested\) world`, got[0].content)
	assert.Equal(t, bytes.Index(data, []byte("Hello")), got[0].startOffset)

	var contents []string
	for _, c := range got {
		contents = append(contents, c.content)
	}
	assert.Contains(t, contents, "also here")
	assert.NotContains(t, contents, "abc")
}

func TestScanCandidatesPrintableRuns(t *testing.T) {
	data := append([]byte{0x00, 0x01}, []byte("This sentence is long enough to count as text")...)
	data = append(data, 0x00)
	data = append(data, bytes.Repeat([]byte{0xff}, 40)...)

	got := scanCandidates(data)
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Equal(t, "This sentence is long enough to count as text", c.content)
		assert.Equal(t, 2, c.startOffset)
	}
}

func TestFallbackChunksOrderingAndLimit(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	b.WriteString("(Short words here) ")
	b.WriteString("(A much longer literal sentence lives here) ")
	b.WriteString("(Short words here) ")
	b.WriteByte(0x00)

	chunks := fallbackChunks(b.Bytes(), 2)
	require.Len(t, chunks, 2)
	assert.GreaterOrEqual(t, len(chunks[0]), len(chunks[1]))

	all := fallbackChunks(b.Bytes(), 0)
	seen := map[string]int{}
	for _, c := range all {
		seen[c]++
	}
	for c, n := range seen {
		assert.Equal(t, 1, n, "duplicate chunk %q", c)
	}
}

func TestFallbackChunksDecodesLatin1(t *testing.T) {
	data := []byte("\x00(R\xe9sum\xe9 of the caf\xe9 meeting notes)\x00")
	chunks := fallbackChunks(data, 10)
	require.NotEmpty(t, chunks)
	assert.True(t, strings.Contains(strings.Join(chunks, "\n"), "Résumé of the café meeting notes"))
}

func TestFallbackChunksNothingReadable(t *testing.T) {
	assert.Empty(t, fallbackChunks(bytes.Repeat([]byte{0x00, 0xff, 0x10}, 500), 50))
}
