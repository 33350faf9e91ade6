package events

import (
	"context"
	"time"
)

const TypeDocumentAnalyzed = "document.analyzed"

// DocumentAnalyzed is published once an upload has been stored and analyzed.
type DocumentAnalyzed struct {
	Type             string    `json:"type"`
	DocumentID       string    `json:"documentId,omitempty"`
	ObjectKey        string    `json:"objectKey"`
	FileName         string    `json:"fileName"`
	ContentType      string    `json:"contentType"`
	SizeBytes        int64     `json:"sizeBytes"`
	ExtractionMethod string    `json:"extractionMethod"`
	AnalysisKey      string    `json:"analysisKey,omitempty"`
	Provider         string    `json:"provider"`
	Simulated        bool      `json:"simulated"`
	RequestID        string    `json:"requestId,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event DocumentAnalyzed) error
	Close() error
}

// Nop drops every event. It stands in when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, DocumentAnalyzed) error { return nil }

func (Nop) Close() error { return nil }
