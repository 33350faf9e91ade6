package core

import (
	"context"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis"
	"github.com/joseph-ayodele/doc-analyzer/internal/async"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
	"github.com/joseph-ayodele/doc-analyzer/internal/events"
	"github.com/joseph-ayodele/doc-analyzer/internal/ingest"
	"github.com/joseph-ayodele/doc-analyzer/internal/repository"
	"github.com/joseph-ayodele/doc-analyzer/internal/storage"
)

const (
	uploadMessage   = "File uploaded and analyzed successfully"
	analysisTitle   = "Analysis Summary"
	previewRunes    = 500
	previewEllipsis = "..."
)

// Ingester turns a raw multipart request into extracted text.
type Ingester interface {
	Ingest(ctx context.Context, body io.Reader, h ingest.Headers) (ingest.Result, error)
	IngestFile(ctx context.Context, file entity.UploadedFile) (ingest.Result, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text, fileName string) analysis.Outcome
	ProviderName() string
}

// UploadResult is the response body of a processed upload.
type UploadResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Ingestion    ingest.Result `json:"ingestion"`
	File         FileSummary   `json:"file"`
	Analysis     AnalysisView  `json:"analysis"`
	SkippedSteps []string      `json:"skippedSteps"`
}

type FileSummary struct {
	OriginalName   string             `json:"originalName"`
	Size           int                `json:"size"`
	Type           string             `json:"type"`
	SavedAs        string             `json:"savedAs,omitempty"`
	Storage        string             `json:"storage"`
	StorageDetails *storage.PutResult `json:"storageDetails,omitempty"`
	Location       string             `json:"location,omitempty"`
	AnalysisID     *string            `json:"analysisId"`
	AnalysisURL    *string            `json:"analysisUrl"`
}

type AnalysisView struct {
	Title        string    `json:"title"`
	Timestamp    time.Time `json:"timestamp"`
	DocumentText string    `json:"documentText"`
	analysis.Analysis
	Provider  string `json:"provider"`
	Simulated bool   `json:"simulated"`
	Cached    bool   `json:"cached,omitempty"`
}

// Processor coordinates ingest → store → analyze → persist, then hands the
// registry upsert and event publish to the post-processing queue.
type Processor struct {
	logger    *slog.Logger
	ingester  Ingester
	analyzer  Analyzer
	catalog   *storage.Catalog
	docsRepo  repository.DocumentRepository
	publisher events.Publisher
	queue     async.Queue
	now       func() time.Time
}

type Option func(*Processor)

// WithCatalog enables object storage. Without it uploads are analyzed but
// not kept.
func WithCatalog(c *storage.Catalog) Option {
	return func(p *Processor) { p.catalog = c }
}

func WithRegistry(r repository.DocumentRepository) Option {
	return func(p *Processor) { p.docsRepo = r }
}

func WithPublisher(pub events.Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithQueue sets where post-processing jobs run. The default runs them inline.
func WithQueue(q async.Queue) Option {
	return func(p *Processor) {
		if q != nil {
			p.queue = q
		}
	}
}

func NewProcessor(ingester Ingester, analyzer Analyzer, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:   logger,
		ingester: ingester,
		analyzer: analyzer,
		queue:    async.Inline{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) ProviderName() string { return p.analyzer.ProviderName() }

// ProcessUpload only fails when ingestion fails. Every later step that cannot
// complete is logged and named in SkippedSteps.
func (p *Processor) ProcessUpload(ctx context.Context, body io.Reader, h ingest.Headers) (UploadResult, error) {
	start := time.Now()
	ing, err := p.ingester.Ingest(ctx, body, h)
	if err != nil {
		return UploadResult{}, err
	}
	return p.process(ctx, ing, start), nil
}

// ProcessFile runs an already decoded file, such as one read from disk,
// through the same steps as an upload.
func (p *Processor) ProcessFile(ctx context.Context, file entity.UploadedFile) (UploadResult, error) {
	start := time.Now()
	ing, err := p.ingester.IngestFile(ctx, file)
	if err != nil {
		return UploadResult{}, err
	}
	return p.process(ctx, ing, start), nil
}

func (p *Processor) process(ctx context.Context, ing ingest.Result, start time.Time) UploadResult {
	rid := common.RequestIDFromContext(ctx)

	out := UploadResult{
		Success:      true,
		Message:      uploadMessage,
		Ingestion:    ing,
		SkippedSteps: []string{},
		File: FileSummary{
			OriginalName: ing.OriginalFileName,
			Size:         ing.PayloadSize,
			Type:         ing.DeclaredContentType,
			Storage:      constants.StorageNone,
		},
	}
	skip := func(step string, cause error) {
		out.SkippedSteps = append(out.SkippedSteps, step)
		p.logger.Warn("processor.step_skipped", "step", step, "file_name", ing.OriginalFileName, "req_id", rid, "error", cause)
	}

	// 1) store the raw upload
	var put *storage.PutResult
	if p.catalog == nil {
		skip(constants.StepStorage, errStorageDisabled)
	} else if res, err := p.catalog.SaveUpload(ctx, ing.File); err != nil {
		skip(constants.StepStorage, err)
	} else {
		put = &res
		out.File.SavedAs = res.Key
		out.File.Storage = p.catalog.Store().Driver()
		out.File.StorageDetails = put
		out.File.Location = res.URL
	}

	// 2) analyze
	outcome := p.analyzer.Analyze(ctx, ing.ExtractedText, ing.OriginalFileName)
	if outcome.Simulated {
		cause := outcome.Err
		if cause == nil {
			cause = errNoProvider
		}
		skip(constants.StepAnalysis, cause)
	}
	out.Analysis = AnalysisView{
		Title:        analysisTitle,
		Timestamp:    p.now().UTC(),
		DocumentText: preview(ing.ExtractedText),
		Analysis:     outcome.Analysis,
		Provider:     outcome.Provider,
		Simulated:    outcome.Simulated,
		Cached:       outcome.Cached,
	}

	// 3) persist the analysis next to the upload
	var analysisKey string
	switch {
	case put == nil:
		skip(constants.StepAnalysisPersist, errNotStored)
	default:
		res, err := p.catalog.SaveAnalysis(ctx, put.Key, ing.OriginalFileName, outcome.Analysis)
		if err != nil {
			skip(constants.StepAnalysisPersist, err)
			break
		}
		analysisKey = res.Key
		out.File.AnalysisID = &res.Key
		out.File.AnalysisURL = &res.URL
	}

	// 4) registry + events, off the request path
	if put != nil {
		doc := entity.Document{
			ObjectKey:        put.Key,
			FileName:         ing.OriginalFileName,
			ContentType:      ing.DeclaredContentType,
			SizeBytes:        int64(ing.PayloadSize),
			ExtractionMethod: ing.ExtractionMethod,
			Truncated:        ing.Truncated,
			Language:         ing.Language,
			TextChars:        utf8.RuneCountInString(ing.ExtractedText),
			AnalysisKey:      analysisKey,
			Summary:          outcome.Analysis.Summary,
			Sentiment:        outcome.Analysis.Metrics.Sentiment,
			Confidence:       outcome.Analysis.Metrics.Confidence,
			Simulated:        outcome.Simulated,
		}
		p.enqueueRegistry(ctx, doc, rid, skip)
		p.enqueueEvent(ctx, doc, outcome.Provider, rid, skip)
	} else if p.docsRepo != nil {
		skip(constants.StepRegistry, errNotStored)
	}

	p.logger.Info("processor.upload_done",
		"file_name", ing.OriginalFileName,
		"object_key", out.File.SavedAs,
		"provider", outcome.Provider,
		"simulated", outcome.Simulated,
		"skipped", out.SkippedSteps,
		"req_id", rid,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

func (p *Processor) enqueueRegistry(ctx context.Context, doc entity.Document, rid string, skip func(string, error)) {
	if p.docsRepo == nil {
		return
	}
	err := p.queue.Enqueue(ctx, async.Job{
		Kind:        constants.StepRegistry,
		ObjectKey:   doc.ObjectKey,
		SubmittedAt: p.now(),
		TraceID:     rid,
		Run: func(ctx context.Context) error {
			_, err := p.docsRepo.Upsert(ctx, doc)
			return err
		},
	})
	if err != nil {
		skip(constants.StepRegistry, err)
	}
}

func (p *Processor) enqueueEvent(ctx context.Context, doc entity.Document, provider, rid string, skip func(string, error)) {
	if p.publisher == nil {
		return
	}
	ev := events.DocumentAnalyzed{
		Type:             events.TypeDocumentAnalyzed,
		ObjectKey:        doc.ObjectKey,
		FileName:         doc.FileName,
		ContentType:      doc.ContentType,
		SizeBytes:        doc.SizeBytes,
		ExtractionMethod: string(doc.ExtractionMethod),
		AnalysisKey:      doc.AnalysisKey,
		Provider:         provider,
		Simulated:        doc.Simulated,
		RequestID:        rid,
		OccurredAt:       p.now().UTC(),
	}
	err := p.queue.Enqueue(ctx, async.Job{
		Kind:        constants.StepEvents,
		ObjectKey:   doc.ObjectKey,
		SubmittedAt: p.now(),
		TraceID:     rid,
		Run: func(ctx context.Context) error {
			return p.publisher.Publish(ctx, ev)
		},
	})
	if err != nil {
		skip(constants.StepEvents, err)
	}
}

// preview is the first 500 characters of the text followed by "...".
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text + previewEllipsis
	}
	n := 0
	for i := range text {
		if n == previewRunes {
			return text[:i] + previewEllipsis
		}
		n++
	}
	return text + previewEllipsis
}
