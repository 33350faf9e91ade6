package extract

import (
	"regexp"
	"sort"
	"strings"
)

const (
	FallbackPrefix     = "[PDF Content (extracted using fallback method)]:\n\n"
	FallbackUnreadable = "[Unable to extract readable text from PDF. The file may be scanned, image-based, or encrypted.]"
)

// Heuristic thresholds for the byte scan.
const (
	minLiteralLen        = 3   // literals must be longer than this
	minRunLen            = 20  // printable runs must be longer than this
	maxRunLen            = 300 // sliding runs stop here
	scanWindow           = 512
	slidingTail          = 30 // sliding scan stops this many bytes before the end
	maxNonPrintableRatio = 0.2
	maxSpecialRatio      = 0.3
)

var (
	reStream  = regexp.MustCompile(`(?s)stream(.*?)endstream`)
	reLiteral = regexp.MustCompile(`\(([^()\\]*(?:\\.[^()\\]*)*)\)`)
	reLetters = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// textChunkCandidate is a run of bytes that might be prose. content holds raw
// latin1 bytes.
type textChunkCandidate struct {
	content     string
	startOffset int
}

// fallbackChunks scans a PDF payload that the parser rejected and returns the
// topN most plausible text runs, longest first, decoded from latin1.
func fallbackChunks(data []byte, topN int) []string {
	candidates := filterCandidates(dedupe(scanCandidates(data)))
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].content) > len(candidates[j].content)
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = latin1ToUTF8(c.content)
	}
	return out
}

// scanCandidates collects literal strings inside content streams, literal
// strings anywhere, sliding printable runs and per-window printable runs, in
// that order.
func scanCandidates(data []byte) []textChunkCandidate {
	var out []textChunkCandidate

	for _, sm := range reStream.FindAllSubmatchIndex(data, -1) {
		base := sm[2]
		out = appendLiterals(out, data[sm[2]:sm[3]], base)
	}
	out = appendLiterals(out, data, 0)

	for i := 0; i < len(data)-slidingTail; i++ {
		if data[i] < 32 || data[i] > 126 {
			continue
		}
		j := i
		for j < len(data) && j < i+maxRunLen && isTextByte(data[j]) {
			j++
		}
		run := data[i:j]
		if len(run) > minRunLen && reLetters.Match(run) {
			out = append(out, textChunkCandidate{content: string(run), startOffset: i})
			i = j - 1
		} else if j < i+maxRunLen {
			// every later start inside this run yields a suffix that fails too
			i = j - 1
		}
	}

	for off := 0; off < len(data); off += scanWindow {
		end := min(off+scanWindow, len(data))
		runStart := -1
		for j := off; j < end; j++ {
			if isTextByte(data[j]) {
				if runStart < 0 {
					runStart = j
				}
				continue
			}
			out = appendRun(out, data, runStart, j)
			runStart = -1
		}
		out = appendRun(out, data, runStart, end)
	}
	return out
}

func appendLiterals(out []textChunkCandidate, src []byte, base int) []textChunkCandidate {
	for _, m := range reLiteral.FindAllSubmatchIndex(src, -1) {
		if m[3]-m[2] > minLiteralLen {
			out = append(out, textChunkCandidate{content: string(src[m[2]:m[3]]), startOffset: base + m[2]})
		}
	}
	return out
}

func appendRun(out []textChunkCandidate, data []byte, start, end int) []textChunkCandidate {
	if start < 0 {
		return out
	}
	run := data[start:end]
	if len(run) > minRunLen && reLetters.Match(run) {
		out = append(out, textChunkCandidate{content: string(run), startOffset: start})
	}
	return out
}

func dedupe(in []textChunkCandidate) []textChunkCandidate {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, c := range in {
		if _, ok := seen[c.content]; ok {
			continue
		}
		seen[c.content] = struct{}{}
		out = append(out, c)
	}
	return out
}

func filterCandidates(in []textChunkCandidate) []textChunkCandidate {
	out := in[:0]
	for _, c := range in {
		if looksLikeText(c.content) {
			out = append(out, c)
		}
	}
	return out
}

// looksLikeText rejects binary noise: too many non-printable bytes, no 3+
// letter run, or too many special characters.
func looksLikeText(s string) bool {
	if len(s) == 0 {
		return false
	}
	var nonPrintable, special int
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !isTextByte(b) {
			nonPrintable++
		}
		if isSpecialByte(b) {
			special++
		}
	}
	n := float64(len(s))
	if float64(nonPrintable)/n > maxNonPrintableRatio {
		return false
	}
	if !reLetters.MatchString(s) {
		return false
	}
	return float64(special)/n <= maxSpecialRatio
}

// isTextByte accepts printable ASCII plus tab, LF and CR.
func isTextByte(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r'
}

func isSpecialByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return false
	case b == ' ', b == '\t', b == '\n', b == '\v', b == '\f', b == '\r', b == 0xA0:
		return false
	}
	return !strings.ContainsRune(`.,;:'"!?()-`, rune(b))
}

func latin1ToUTF8(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}
