package constants

import "strings"

// Declared content types the classifier and the HTTP layer care about.
const (
	ContentTypePDF         = "application/pdf"
	ContentTypeText        = "text/plain"
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeMultipart   = "multipart/form-data"
	ContentTypeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PDFMagic is looked for in the first PDFMagicWindow bytes of a payload.
const (
	PDFMagic       = "%PDF"
	PDFMagicWindow = 5
)

// UnknownFileName is used when a multipart file part carries no filename.
const UnknownFileName = "unknown"

// Object naming in the document bucket.
const (
	AnalysisObjectPrefix = "analysis-"
	UploadFallbackName   = "upload"
)

// BatchExtensions are picked up by the batch command when no --ext is given.
var BatchExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"md":   {},
	"csv":  {},
	"json": {},
}

// StaticContentTypes maps cacheable static extensions to their content type.
var StaticContentTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "application/javascript; charset=utf-8",
	"json": "application/json",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"png":  "image/png",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// BaseContentType strips parameters such as "; charset=utf-8" and lowercases.
func BaseContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
