package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

type stubDocs struct {
	docs []*entity.Document
	err  error
}

func (s stubDocs) Upsert(context.Context, entity.Document) (*entity.Document, error) {
	return nil, errors.New("not implemented")
}

func (s stubDocs) GetByObjectKey(context.Context, string) (*entity.Document, error) {
	return nil, errors.New("not implemented")
}

func (s stubDocs) List(_ context.Context, limit int) ([]*entity.Document, error) {
	if limit > 0 && len(s.docs) > limit {
		return s.docs[:limit], s.err
	}
	return s.docs, s.err
}

func (s stubDocs) Count(context.Context) (int, error) { return len(s.docs), s.err }

func TestExportDocumentsXLSX(t *testing.T) {
	docs := []*entity.Document{
		{
			ObjectKey:        "2-b.pdf",
			FileName:         "b.pdf",
			ContentType:      "application/pdf",
			SizeBytes:        10,
			ExtractionMethod: entity.MethodPDFPrimary,
			Summary:          strings.Repeat("s", 400),
			Sentiment:        0.9,
			CreatedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{ObjectKey: "1-a.txt", FileName: "a.txt", ExtractionMethod: entity.MethodDirect},
	}
	svc := NewService(stubDocs{docs: docs}, nil)

	out, err := svc.ExportDocumentsXLSX(context.Background(), 0)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Uploaded At", rows[0][0])
	assert.Equal(t, "2024-05-01T12:00:00Z", rows[1][0])
	assert.Equal(t, "b.pdf", rows[1][1])
	assert.Equal(t, "pdf-primary", rows[1][5])
	assert.Len(t, []rune(rows[1][12]), 280)
	assert.Equal(t, "a.txt", rows[2][1])
	assert.Equal(t, []string{sheet}, f.GetSheetList())
}

func TestExportPropagatesRepositoryError(t *testing.T) {
	svc := NewService(stubDocs{err: errors.New("db down")}, nil)
	_, err := svc.ExportDocumentsXLSX(context.Background(), 10)
	assert.ErrorContains(t, err, "db down")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "héllo", truncate("héllo", 5))
}
