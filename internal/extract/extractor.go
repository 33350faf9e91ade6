package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

type Config struct {
	MaxPages       int // primary PDF page cap, default 20
	MaxChars       int // ceiling on returned text in runes, default 15000
	FallbackTopN   int // candidates kept by the heuristic scan, default 50
	DetectLanguage bool
}

type Result struct {
	Text      string
	Method    entity.ExtractionMethod
	Truncated bool
	Warnings  []string
	Pages     int
	Language  string
	Duration  time.Duration
}

// LanguageDetector tags extracted text with an ISO 639-1 code.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

type Extractor struct {
	cfg      Config
	parser   PDFParser
	language LanguageDetector
	logger   *slog.Logger
}

type Option func(*Extractor)

// WithPDFParser replaces the default ledongthuc/pdf backed parser.
func WithPDFParser(p PDFParser) Option {
	return func(e *Extractor) {
		if p != nil {
			e.parser = p
		}
	}
}

func WithLanguageDetector(d LanguageDetector) Option {
	return func(e *Extractor) {
		e.language = d
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 15000
	}
	if cfg.FallbackTopN <= 0 {
		cfg.FallbackTopN = 50
	}
	e := &Extractor{cfg: cfg, parser: LedongthucParser{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.language == nil && cfg.DetectLanguage {
		e.language = NewLinguaDetector()
	}
	return e
}

// Extract produces text for a classified upload. PDF parse failures are
// recovered locally and never returned.
func (e *Extractor) Extract(ctx context.Context, file entity.UploadedFile, ct entity.ClassifiedType) (Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	e.logger.Debug("extract.start", "file_name", file.FileName, "kind", ct.Kind, "size", file.Size())

	var res Result
	switch ct.Kind {
	case entity.KindPlainText:
		res = Result{Text: string(file.Payload), Method: entity.MethodDirect}
	case entity.KindPDF:
		var err error
		if res, err = e.extractPDF(ctx, file.Payload); err != nil {
			return Result{}, err
		}
	default:
		res = Result{Text: Placeholder(file.FileName, ct.DeclaredContentType), Method: entity.MethodPlaceholder}
	}

	res.Text, res.Truncated = Truncate(res.Text, e.cfg.MaxChars)
	if res.Truncated {
		res.Warnings = append(res.Warnings, fmt.Sprintf("text truncated to %d characters", e.cfg.MaxChars))
	}
	if e.language != nil && res.Method != entity.MethodPlaceholder {
		if lang, ok := e.language.Detect(res.Text); ok {
			res.Language = lang
		}
	}
	res.Duration = time.Since(start)

	e.logger.Info("extract.done",
		"file_name", file.FileName,
		"method", res.Method,
		"chars", utf8.RuneCountInString(res.Text),
		"truncated", res.Truncated,
		"pages", res.Pages,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ExtractReader buffers r (at most limit bytes when limit > 0), classifies it
// and extracts it. Read failures are reported as ErrUnreadable.
func (e *Extractor) ExtractReader(ctx context.Context, file entity.UploadedFile, r io.Reader, limit int64) (Result, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		e.logger.Error("extract.read_failed", "file_name", file.FileName, "error", err)
		return Result{}, common.NewAppError(common.CodeUnreadable, "could not read payload", fmt.Errorf("%w: %v", common.ErrUnreadable, err))
	}
	file.Payload = data
	return e.Extract(ctx, file, Classify(data, file.DeclaredContentType))
}

// ExtractFile reads a local file and extracts it under the given declared type.
func (e *Extractor) ExtractFile(ctx context.Context, path, declaredContentType string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, common.NewAppError(common.CodeUnreadable, "could not open file", fmt.Errorf("%w: %v", common.ErrUnreadable, err))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("extract.close_failed", "path", path, "error", cerr)
		}
	}()
	file := entity.UploadedFile{FileName: filepath.Base(path), DeclaredContentType: declaredContentType}
	return e.ExtractReader(ctx, file, f, 0)
}

// Placeholder is the stand-in text for types no extractor handles.
func Placeholder(fileName, declaredContentType string) string {
	return fmt.Sprintf("[This is placeholder text for %s. In a production environment, you would use specialized libraries to extract text from this file type (%s).]", fileName, declaredContentType)
}

// Truncate clips s to max runes. It reports whether clipping happened.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
