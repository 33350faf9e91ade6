package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

type fakeDoc struct {
	pages   []string
	pageErr error
}

func (d fakeDoc) NumPages() int { return len(d.pages) }

func (d fakeDoc) PageText(i int) (string, error) {
	if d.pageErr != nil {
		return "", d.pageErr
	}
	return d.pages[i-1], nil
}

type fakeParser struct {
	doc     PDFDocument
	err     error
	panicky bool
}

func (p fakeParser) Open([]byte) (PDFDocument, error) {
	if p.panicky {
		panic("malformed xref")
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

func newTestExtractor(cfg Config, opts ...Option) *Extractor {
	return NewExtractor(cfg, nil, opts...)
}

func upload(name, ct string, payload []byte) (entity.UploadedFile, entity.ClassifiedType) {
	f := entity.UploadedFile{FileName: name, DeclaredContentType: ct, Payload: payload}
	return f, Classify(payload, ct)
}

func TestExtractPlainTextVerbatim(t *testing.T) {
	e := newTestExtractor(Config{})
	f, ct := upload("notes.txt", "text/plain", []byte("hello world"))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, entity.MethodDirect, res.Method)
	assert.False(t, res.Truncated)
	assert.Empty(t, res.Warnings)
}

func TestExtractPlainTextKeepsInvalidUTF8Bytes(t *testing.T) {
	payload := []byte{'a', 0xff, 'b', '\r', '\n'}
	e := newTestExtractor(Config{})
	f, ct := upload("raw.txt", "text/plain", payload)

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, payload, []byte(res.Text))
}

func TestExtractTruncatesAtCeiling(t *testing.T) {
	e := newTestExtractor(Config{MaxChars: 10})
	f, ct := upload("long.txt", "text/plain", []byte("héllo wörld and more"))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "héllo wörl", res.Text)

	// feeding truncated output back is a no-op
	f2, ct2 := upload("long.txt", "text/plain", []byte(res.Text))
	again, err := e.Extract(context.Background(), f2, ct2)
	require.NoError(t, err)
	assert.False(t, again.Truncated)
	assert.Equal(t, res.Text, again.Text)
}

func TestExtractAtCeilingIsNotTruncated(t *testing.T) {
	e := newTestExtractor(Config{MaxChars: 5})
	f, ct := upload("five.txt", "text/plain", []byte("abcde"))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	assert.Equal(t, "abcde", res.Text)
}

func TestExtractInvalidPDFUsesFallback(t *testing.T) {
	e := newTestExtractor(Config{})
	f, ct := upload("broken.pdf", "application/pdf", []byte("%PDF-1.4\n%%EOF"))

	var res Result
	var err error
	require.NotPanics(t, func() {
		res, err = e.Extract(context.Background(), f, ct)
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MethodPDFFallback, res.Method)
	assert.Equal(t, FallbackUnreadable, res.Text)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractGarbagePDFNeverFails(t *testing.T) {
	payload := append([]byte("%PDF-1.7\n"), []byte(strings.Repeat("\x00\x01\xfe garbage \x02", 200))...)
	e := newTestExtractor(Config{})
	f, ct := upload("junk.bin", "application/octet-stream", payload)
	require.Equal(t, entity.KindPDF, ct.Kind)

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, entity.MethodPDFFallback, res.Method)
	assert.True(t, res.Text == FallbackUnreadable || strings.HasPrefix(res.Text, FallbackPrefix))
}

func TestExtractPDFPrimaryWithPageCap(t *testing.T) {
	pages := make([]string, 5)
	for i := range pages {
		pages[i] = fmt.Sprintf("page %d text", i+1)
	}
	e := newTestExtractor(Config{MaxPages: 2}, WithPDFParser(fakeParser{doc: fakeDoc{pages: pages}}))
	f, ct := upload("report.pdf", "application/pdf", []byte("%PDF-1.4 ..."))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, entity.MethodPDFPrimary, res.Method)
	assert.Equal(t, 5, res.Pages)
	assert.Equal(t, "page 1 text\n\npage 2 text\n\n[Note: Only the first 2 pages were processed out of 5 total pages]", res.Text)
}

func TestExtractPDFPrimaryAllPages(t *testing.T) {
	e := newTestExtractor(Config{}, WithPDFParser(fakeParser{doc: fakeDoc{pages: []string{"one", "two"}}}))
	f, ct := upload("report.pdf", "application/pdf", []byte("%PDF-1.4"))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", res.Text)
	assert.NotContains(t, res.Text, "[Note:")
}

func TestExtractPDFParserFailuresFallBack(t *testing.T) {
	body := []byte("%PDF-1.4\n1 0 obj\nstream\nBT (Quarterly revenue grew across all regions) Tj ET\nendstream\n%%EOF")
	cases := map[string]PDFParser{
		"open error": fakeParser{err: errors.New("xref not found")},
		"page error": fakeParser{doc: fakeDoc{pages: []string{"x"}, pageErr: errors.New("bad font")}},
		"panic":      fakeParser{panicky: true},
		"empty text": fakeParser{doc: fakeDoc{pages: []string{"  ", "\n"}}},
		"no pages":   fakeParser{doc: fakeDoc{}},
	}
	for name, parser := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestExtractor(Config{}, WithPDFParser(parser))
			f, ct := upload("q.pdf", "application/pdf", body)

			res, err := e.Extract(context.Background(), f, ct)
			require.NoError(t, err)
			assert.Equal(t, entity.MethodPDFFallback, res.Method)
			assert.True(t, strings.HasPrefix(res.Text, FallbackPrefix))
			assert.Contains(t, res.Text, "Quarterly revenue grew across all regions")
		})
	}
}

func TestExtractPDFCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newTestExtractor(Config{})
	f, ct := upload("a.pdf", "application/pdf", []byte("%PDF-1.4"))

	_, err := e.Extract(ctx, f, ct)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractUnknownPlaceholder(t *testing.T) {
	e := newTestExtractor(Config{})
	f, ct := upload("archive.zip", "application/zip", []byte{0x50, 0x4b})
	require.Equal(t, entity.KindUnknown, ct.Kind)

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, entity.MethodPlaceholder, res.Method)
	assert.Contains(t, res.Text, "archive.zip")
	assert.Contains(t, res.Text, "application/zip")
	assert.Equal(t, Placeholder("archive.zip", "application/zip"), res.Text)
}

type stubLanguage struct{ lang string }

func (s stubLanguage) Detect(string) (string, bool) { return s.lang, s.lang != "" }

func TestExtractTagsLanguage(t *testing.T) {
	e := newTestExtractor(Config{}, WithLanguageDetector(stubLanguage{lang: "en"}))
	f, ct := upload("a.txt", "text/plain", []byte("some text"))

	res, err := e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)

	f, ct = upload("a.zip", "application/zip", []byte("PK"))
	res, err = e.Extract(context.Background(), f, ct)
	require.NoError(t, err)
	assert.Empty(t, res.Language)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestExtractReaderUnreadable(t *testing.T) {
	e := newTestExtractor(Config{})
	_, err := e.ExtractReader(context.Background(), entity.UploadedFile{FileName: "x.txt", DeclaredContentType: "text/plain"}, failingReader{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNREADABLE")
}

func TestExtractFileMissing(t *testing.T) {
	e := newTestExtractor(Config{})
	_, err := e.ExtractFile(context.Background(), t.TempDir()+"/nope.txt", "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNREADABLE")
}

func TestTruncate(t *testing.T) {
	s, clipped := Truncate("abc", 0)
	assert.Equal(t, "abc", s)
	assert.False(t, clipped)

	s, clipped = Truncate("日本語テキスト", 3)
	assert.Equal(t, "日本語", s)
	assert.True(t, clipped)
}
