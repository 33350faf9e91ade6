package ingest

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

var (
	reBoundary    = regexp.MustCompile(`(?i)boundary=(?:"([^"]+)"|([^;]+))`)
	reFilename    = regexp.MustCompile(`(?i)filename="([^"]+)"`)
	reContentType = regexp.MustCompile(`(?i)Content-Type:[ \t]*([^\r\n]+)`)

	headerSeparator = []byte("\r\n\r\n")
	crlf            = []byte("\r\n")
	filenameAttr    = []byte("filename=")
)

// BoundaryFromContentType returns the boundary parameter of a multipart
// content type, or "" when there is none.
func BoundaryFromContentType(contentType string) string {
	m := reBoundary.FindStringSubmatch(contentType)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return strings.TrimSpace(m[2])
}

// Decode extracts the first file part from a multipart/form-data body.
// Ordinary form fields and any further file parts are ignored.
func Decode(body []byte, boundary string) (entity.UploadedFile, error) {
	if boundary == "" {
		return entity.UploadedFile{}, common.NewAppError(common.CodeMissingBoundary, "boundary token missing", common.ErrMissingBoundary)
	}

	parts := bytes.Split(body, []byte("--"+boundary))
	for _, part := range parts[1:] {
		headerEnd := bytes.Index(part, headerSeparator)
		headers := part
		if headerEnd >= 0 {
			headers = part[:headerEnd]
		}
		if !bytes.Contains(headers, filenameAttr) {
			continue
		}
		if headerEnd < 0 {
			return entity.UploadedFile{}, common.NewAppError(common.CodeMalformedHeaders, "file part has no header/body separator", common.ErrMalformedHeaders)
		}

		name := constants.UnknownFileName
		if m := reFilename.FindSubmatch(headers); m != nil {
			name = string(m[1])
		}
		ct := constants.ContentTypeOctetStream
		if m := reContentType.FindSubmatch(headers); m != nil {
			if v := strings.TrimSpace(string(m[1])); v != "" {
				ct = v
			}
		}

		payload := part[headerEnd+len(headerSeparator):]
		payload = bytes.TrimSuffix(payload, crlf)

		return entity.UploadedFile{
			FileName:            name,
			DeclaredContentType: ct,
			Payload:             bytes.Clone(payload),
		}, nil
	}
	return entity.UploadedFile{}, common.NewAppError(common.CodeNoFileFound, "No file found in the upload data", common.ErrNoFileFound)
}

// Encode builds a single-file multipart body. fields are written as ordinary
// form fields before the file part.
func Encode(boundary string, file entity.UploadedFile, fields map[string]string) []byte {
	var b bytes.Buffer
	for k, v := range fields {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + k + `"` + "\r\n\r\n")
		b.WriteString(v + "\r\n")
	}
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString(`Content-Disposition: form-data; name="file"; filename="` + file.FileName + `"` + "\r\n")
	b.WriteString("Content-Type: " + file.DeclaredContentType + "\r\n\r\n")
	b.Write(file.Payload)
	b.WriteString("\r\n--" + boundary + "--\r\n")
	return b.Bytes()
}
