package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a registry row describing one processed upload.
type Document struct {
	ID               uuid.UUID        `json:"id"`
	ObjectKey        string           `json:"object_key"`
	FileName         string           `json:"file_name"`
	ContentType      string           `json:"content_type"`
	SizeBytes        int64            `json:"size_bytes"`
	ExtractionMethod ExtractionMethod `json:"extraction_method"`
	Truncated        bool             `json:"truncated"`
	Language         string           `json:"language,omitempty"`
	TextChars        int              `json:"text_chars"`
	AnalysisKey      string           `json:"analysis_key,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	Sentiment        float64          `json:"sentiment"`
	Confidence       float64          `json:"confidence"`
	Simulated        bool             `json:"simulated"`
	CreatedAt        time.Time        `json:"created_at"`
}
