package extract

import (
	"bytes"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

// Classify decides the extraction strategy from the payload signature and the
// declared content type. It is total and deterministic.
func Classify(payload []byte, declaredContentType string) entity.ClassifiedType {
	head := payload
	if len(head) > constants.PDFMagicWindow {
		head = head[:constants.PDFMagicWindow]
	}

	kind := entity.KindUnknown
	switch {
	case bytes.Contains(head, []byte(constants.PDFMagic)), declaredContentType == constants.ContentTypePDF:
		kind = entity.KindPDF
	case declaredContentType == constants.ContentTypeText:
		kind = entity.KindPlainText
	}
	return entity.ClassifiedType{Kind: kind, DeclaredContentType: declaredContentType}
}
