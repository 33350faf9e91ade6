package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

// PDFParser opens a PDF payload for page-by-page text access.
type PDFParser interface {
	Open(data []byte) (PDFDocument, error)
}

type PDFDocument interface {
	NumPages() int
	// PageText returns the text of page i, 1-based.
	PageText(i int) (string, error)
}

// LedongthucParser is the PDFParser backed by github.com/ledongthuc/pdf.
type LedongthucParser struct{}

func (LedongthucParser) Open(data []byte) (PDFDocument, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucDoc{r: r}, nil
}

type ledongthucDoc struct {
	r *pdf.Reader
}

func (d ledongthucDoc) NumPages() int {
	return d.r.NumPage()
}

func (d ledongthucDoc) PageText(i int) (string, error) {
	p := d.r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// extractPDF runs the primary parser and falls back to the heuristic byte scan
// on any failure.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (Result, error) {
	text, pages, err := e.primaryPDF(ctx, data)
	if err == nil {
		return Result{Text: text, Method: entity.MethodPDFPrimary, Pages: pages}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	e.logger.Warn("extract.pdf.primary_failed", "error", err, "size", len(data))
	res := Result{Method: entity.MethodPDFFallback, Pages: pages}
	res.Warnings = append(res.Warnings, "primary PDF extraction failed; text recovered with heuristic fallback (quality may be degraded)")

	chunks := fallbackChunks(data, e.cfg.FallbackTopN)
	if len(chunks) == 0 {
		res.Text = FallbackUnreadable
		res.Warnings = append(res.Warnings, "no readable text found in PDF")
		return res, nil
	}
	res.Text = FallbackPrefix + strings.Join(chunks, "\n\n")
	e.logger.Debug("extract.pdf.fallback", "chunks", len(chunks), "chars", len(res.Text))
	return res, nil
}

// primaryPDF returns ErrPDFParse wrapped around whatever went wrong, including
// panics raised by the parser on malformed input.
func (e *Extractor) primaryPDF(ctx context.Context, data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: parser panic: %v", common.ErrPDFParse, r)
		}
	}()

	doc, err := e.parser.Open(data)
	if err != nil {
		return "", 0, fmt.Errorf("%w: open: %v", common.ErrPDFParse, err)
	}
	pages = doc.NumPages()
	if pages <= 0 {
		return "", pages, fmt.Errorf("%w: document has no pages", common.ErrPDFParse)
	}

	limit := min(pages, e.cfg.MaxPages)
	texts := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return "", pages, err
		}
		t, err := doc.PageText(i)
		if err != nil {
			return "", pages, fmt.Errorf("%w: page %d: %v", common.ErrPDFParse, i, err)
		}
		texts = append(texts, t)
	}

	joined := strings.Join(texts, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", pages, fmt.Errorf("%w: no text layer", common.ErrPDFParse)
	}
	if pages > limit {
		joined += fmt.Sprintf("\n\n[Note: Only the first %d pages were processed out of %d total pages]", limit, pages)
	}
	return joined, pages, nil
}
