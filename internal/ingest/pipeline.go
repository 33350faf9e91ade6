package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
	"github.com/joseph-ayodele/doc-analyzer/internal/extract"
)

// TextExtractor is the extraction step the pipeline delegates to.
type TextExtractor interface {
	Extract(ctx context.Context, file entity.UploadedFile, ct entity.ClassifiedType) (extract.Result, error)
}

// Headers carries the transport headers ingestion depends on. ContentLength
// is the raw header value, "" when absent.
type Headers struct {
	ContentType   string
	ContentLength string
}

type Config struct {
	MaxUploadBytes int64         // default 50 MiB
	BufferTimeout  time.Duration // default 2m
}

// Result is the output of one ingestion run, ready for storage and analysis.
type Result struct {
	OriginalFileName    string                  `json:"originalFileName"`
	DeclaredContentType string                  `json:"declaredContentType"`
	PayloadSize         int                     `json:"payloadSize"`
	ExtractedText       string                  `json:"extractedText"`
	ExtractionMethod    entity.ExtractionMethod `json:"extractionMethod"`
	Truncated           bool                    `json:"truncated"`
	Warnings            []string                `json:"warnings"`
	Kind                entity.FileKind         `json:"kind"`
	Language            string                  `json:"language,omitempty"`
	Pages               int                     `json:"pages,omitempty"`
	DurationMs          int64                   `json:"durationMs"`

	File entity.UploadedFile `json:"-"`
}

// Error records the stage an ingestion run was in when it failed.
type Error struct {
	Stage constants.Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest failed in %s: %v", strings.ToLower(string(e.Stage)), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded on an ingestion error, or "".
func FailedStage(err error) constants.Stage {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Stage
	}
	return ""
}

type Pipeline struct {
	cfg       Config
	extractor TextExtractor
	logger    *slog.Logger
}

func NewPipeline(cfg Config, extractor TextExtractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if cfg.BufferTimeout <= 0 {
		cfg.BufferTimeout = 2 * time.Minute
	}
	return &Pipeline{cfg: cfg, extractor: extractor, logger: logger}
}

// Ingest validates the headers, buffers exactly Content-Length bytes of body,
// then decodes, classifies and extracts the first file part.
func (p *Pipeline) Ingest(ctx context.Context, body io.Reader, h Headers) (Result, error) {
	start := time.Now()
	stage := constants.StageReceiving
	fail := func(err error) (Result, error) {
		p.logger.Warn("ingest.failed",
			"stage", stage,
			"code", common.ErrorCode(err),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, &Error{Stage: stage, Err: err}
	}

	boundary, length, err := p.validate(h)
	if err != nil {
		return fail(err)
	}
	raw, err := p.buffer(ctx, body, length)
	if err != nil {
		return fail(err)
	}

	file, err := Decode(raw, boundary)
	if err != nil {
		return fail(err)
	}
	p.logger.Debug("ingest.stage", "from", stage, "to", constants.StageDecoded)
	return p.ingestDecoded(ctx, file, start)
}

// IngestFile classifies and extracts an already decoded file, as read from
// disk by the batch command.
func (p *Pipeline) IngestFile(ctx context.Context, file entity.UploadedFile) (Result, error) {
	if int64(file.Size()) > p.cfg.MaxUploadBytes {
		err := common.NewAppError(common.CodeBadLength,
			fmt.Sprintf("File of %d bytes exceeds the %d byte limit", file.Size(), p.cfg.MaxUploadBytes),
			common.ErrPayloadTooLarge)
		return Result{}, &Error{Stage: constants.StageDecoded, Err: err}
	}
	return p.ingestDecoded(ctx, file, time.Now())
}

func (p *Pipeline) ingestDecoded(ctx context.Context, file entity.UploadedFile, start time.Time) (Result, error) {
	stage := constants.StageDecoded
	fail := func(err error) (Result, error) {
		p.logger.Warn("ingest.failed",
			"stage", stage,
			"file_name", file.FileName,
			"code", common.ErrorCode(err),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, &Error{Stage: stage, Err: err}
	}
	advance := func(next constants.Stage) {
		p.logger.Debug("ingest.stage", "from", stage, "to", next)
		stage = next
	}

	ct := extract.Classify(file.Payload, file.DeclaredContentType)
	advance(constants.StageClassified)

	res, err := p.extractor.Extract(ctx, file, ct)
	if err != nil {
		return fail(err)
	}
	advance(constants.StageExtracted)

	out := Result{
		OriginalFileName:    file.FileName,
		DeclaredContentType: file.DeclaredContentType,
		PayloadSize:         file.Size(),
		ExtractedText:       res.Text,
		ExtractionMethod:    res.Method,
		Truncated:           res.Truncated,
		Warnings:            append([]string{}, res.Warnings...),
		Kind:                ct.Kind,
		Language:            res.Language,
		Pages:               res.Pages,
		DurationMs:          time.Since(start).Milliseconds(),
		File:                file,
	}
	advance(constants.StageDone)

	p.logger.Info("ingest.done",
		"file_name", out.OriginalFileName,
		"content_type", out.DeclaredContentType,
		"size", out.PayloadSize,
		"kind", out.Kind,
		"method", out.ExtractionMethod,
		"truncated", out.Truncated,
		"elapsed_ms", out.DurationMs,
	)
	return out, nil
}

func (p *Pipeline) validate(h Headers) (boundary string, length int64, err error) {
	if !strings.Contains(strings.ToLower(h.ContentType), constants.ContentTypeMultipart) {
		return "", 0, common.NewAppError(common.CodeBadContentType, "Content type must be multipart/form-data", common.ErrBadContentType)
	}
	boundary = BoundaryFromContentType(h.ContentType)
	if boundary == "" {
		return "", 0, common.NewAppError(common.CodeBadBoundary, "Invalid boundary in multipart/form-data", common.ErrBadBoundary)
	}

	raw := strings.TrimSpace(h.ContentLength)
	if raw == "" {
		return "", 0, common.NewAppError(common.CodeBadLength, "Missing or invalid content-length header", common.ErrBadLength)
	}
	length, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil || length < 0 {
		return "", 0, common.NewAppError(common.CodeBadLength, "Missing or invalid content-length header", common.ErrBadLength)
	}
	if length > p.cfg.MaxUploadBytes {
		return "", 0, common.NewAppError(common.CodeBadLength,
			fmt.Sprintf("Upload of %d bytes exceeds the %d byte limit", length, p.cfg.MaxUploadBytes),
			common.ErrPayloadTooLarge)
	}
	return boundary, length, nil
}

type readResult struct {
	data []byte
	err  error
}

// buffer reads exactly length bytes. A stalled body is abandoned after the
// buffer timeout; a cancelled ctx stops buffering. Partial data is dropped.
func (p *Pipeline) buffer(ctx context.Context, body io.Reader, length int64) ([]byte, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, p.cfg.BufferTimeout, common.ErrTimeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		buf := make([]byte, length)
		n, err := io.ReadFull(body, buf)
		if err != nil {
			done <- readResult{err: fmt.Errorf("read %d of %d bytes: %w", n, length, err)}
			return
		}
		var probe [1]byte
		if m, _ := body.Read(probe[:]); m > 0 {
			done <- readResult{err: errBodyTooLong}
			return
		}
		done <- readResult{data: buf}
	}()

	select {
	case <-ctx.Done():
		abandon(body)
		if errors.Is(context.Cause(ctx), common.ErrTimeout) {
			return nil, common.NewAppError(common.CodeTimeout,
				fmt.Sprintf("Upload not received within %s", p.cfg.BufferTimeout), common.ErrTimeout)
		}
		return nil, fmt.Errorf("buffering aborted: %w", ctx.Err())
	case r := <-done:
		if r.err == nil {
			p.logger.Debug("ingest.buffered", "bytes", len(r.data))
			return r.data, nil
		}
		if errors.Is(r.err, io.ErrUnexpectedEOF) || errors.Is(r.err, io.EOF) || errors.Is(r.err, errBodyTooLong) {
			return nil, common.NewAppError(common.CodeBadLength, "Body length does not match content-length header", common.ErrBadLength)
		}
		return nil, common.NewAppError(common.CodeUnreadable, "Upload body could not be read", fmt.Errorf("%w: %v", common.ErrUnreadable, r.err))
	}
}

var errBodyTooLong = errors.New("body longer than content-length")

// Aborter is implemented by bodies whose blocked Read can be cut short, such
// as a server request body bound to its connection.
type Aborter interface {
	Abort()
}

// abandon releases a body the buffer goroutine may still be reading. Close
// runs in the background: a server request body's Close waits for an
// in-flight Read.
func abandon(body io.Reader) {
	if a, ok := body.(Aborter); ok {
		a.Abort()
	}
	if c, ok := body.(io.Closer); ok {
		go func() { _ = c.Close() }()
	}
}
