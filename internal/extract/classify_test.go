package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		payload  []byte
		declared string
		want     entity.FileKind
	}{
		{"pdf magic wins over declared", []byte("%PDF-1.4 ..."), "text/plain", entity.KindPDF},
		{"pdf magic with octet stream", []byte("%PDF-1.7"), "application/octet-stream", entity.KindPDF},
		{"magic offset by one", []byte(" %PDF"), "", entity.KindPDF},
		{"magic too late", []byte("xx%PDF"), "", entity.KindUnknown},
		{"declared pdf", []byte("not really"), "application/pdf", entity.KindPDF},
		{"plain text", []byte("hello"), "text/plain", entity.KindPlainText},
		{"text with params is unknown", []byte("hello"), "text/plain; charset=utf-8", entity.KindUnknown},
		{"zip", []byte{0x50, 0x4b}, "application/zip", entity.KindUnknown},
		{"empty", nil, "", entity.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.payload, tc.declared)
			assert.Equal(t, tc.want, got.Kind)
			assert.Equal(t, tc.declared, got.DeclaredContentType)
			assert.Equal(t, got, Classify(tc.payload, tc.declared))
		})
	}
}
