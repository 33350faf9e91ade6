package entity

// UploadedFile is the single file part decoded from a multipart body.
type UploadedFile struct {
	FileName            string `json:"file_name"`
	DeclaredContentType string `json:"declared_content_type"`
	Payload             []byte `json:"-"`
}

// Size returns the payload length in bytes.
func (f UploadedFile) Size() int {
	return len(f.Payload)
}

// FileKind selects the extraction strategy for a payload.
type FileKind string

const (
	KindPlainText FileKind = "PLAIN_TEXT"
	KindPDF       FileKind = "PDF"
	KindUnknown   FileKind = "UNKNOWN"
)

// ClassifiedType is the classifier verdict plus the declared MIME string it
// was derived from.
type ClassifiedType struct {
	Kind                FileKind `json:"kind"`
	DeclaredContentType string   `json:"declared_content_type"`
}

// ExtractionMethod records which strategy produced an extraction result.
type ExtractionMethod string

const (
	MethodDirect      ExtractionMethod = "direct"
	MethodPDFPrimary  ExtractionMethod = "pdf-primary"
	MethodPDFFallback ExtractionMethod = "pdf-fallback"
	MethodPlaceholder ExtractionMethod = "placeholder"
)
