package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-analyzer/db/ent/schema"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

const documentsTable = "documents"

var documentColumns = []string{
	"id", "object_key", "file_name", "content_type", "size_bytes",
	"extraction_method", "truncated", "language", "text_chars", "analysis_key",
	"summary", "sentiment", "confidence", "simulated", "created_at",
}

type DocumentRepository interface {
	// Upsert inserts doc or, when object_key already exists, overwrites every
	// column except id and created_at. It returns the stored row.
	Upsert(ctx context.Context, doc entity.Document) (*entity.Document, error)
	GetByObjectKey(ctx context.Context, objectKey string) (*entity.Document, error)
	List(ctx context.Context, limit int) ([]*entity.Document, error)
	Count(ctx context.Context) (int, error)
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

func (r *documentRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func (r *documentRepo) Upsert(ctx context.Context, doc entity.Document) (*entity.Document, error) {
	if doc.ObjectKey == "" {
		return nil, common.NewAppError(common.CodeInvalidInput, "object key is required", common.ErrInvalidInput)
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	values := []any{
		doc.ID, doc.ObjectKey, doc.FileName, doc.ContentType, doc.SizeBytes,
		string(doc.ExtractionMethod), doc.Truncated, doc.Language, doc.TextChars, doc.AnalysisKey,
		doc.Summary, doc.Sentiment, doc.Confidence, doc.Simulated, doc.CreatedAt.UnixMilli(),
	}
	if err := validateDocument(values); err != nil {
		r.logger.Warn("document rejected by schema", "object_key", doc.ObjectKey, "error", err)
		return nil, err
	}
	values[0] = doc.ID.String()

	query, args := r.builder().Insert(documentsTable).
		Columns(documentColumns...).
		Values(values...).
		OnConflict(
			entsql.ConflictColumns("object_key"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range documentColumns {
					if c == "id" || c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		).
		Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to upsert document", "object_key", doc.ObjectKey, "error", err)
		return nil, dbError("upsert document", err)
	}
	return r.GetByObjectKey(ctx, doc.ObjectKey)
}

func (r *documentRepo) GetByObjectKey(ctx context.Context, objectKey string) (*entity.Document, error) {
	query, args := r.builder().Select(documentColumns...).
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("object_key", objectKey)).
		Limit(1).
		Query()
	docs, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to get document by object key", "object_key", objectKey, "error", err)
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NewAppError(common.CodeNotFound, "document not found",
			fmt.Errorf("%w: document %s", common.ErrNotFound, objectKey))
	}
	return docs[0], nil
}

// List returns the newest documents first. limit <= 0 means no limit.
func (r *documentRepo) List(ctx context.Context, limit int) ([]*entity.Document, error) {
	sel := r.builder().Select(documentColumns...).
		From(entsql.Table(documentsTable)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("object_key"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	docs, err := r.query(ctx, query, args)
	if err != nil {
		r.logger.Error("failed to list documents", "limit", limit, "error", err)
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) Count(ctx context.Context) (int, error) {
	query, args := r.builder().Select(entsql.Count("*")).From(entsql.Table(documentsTable)).Query()
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		return 0, dbError("count documents", err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, dbError("count documents", err)
	}
	return n, nil
}

func (r *documentRepo) query(ctx context.Context, query string, args []any) ([]*entity.Document, error) {
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, dbError("query documents", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		var (
			d         entity.Document
			id        string
			method    string
			createdAt int64
		)
		if err := rows.Scan(
			&id, &d.ObjectKey, &d.FileName, &d.ContentType, &d.SizeBytes,
			&method, &d.Truncated, &d.Language, &d.TextChars, &d.AnalysisKey,
			&d.Summary, &d.Sentiment, &d.Confidence, &d.Simulated, &createdAt,
		); err != nil {
			return nil, dbError("scan document", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, dbError("scan document id", err)
		}
		d.ID = parsed
		d.ExtractionMethod = entity.ExtractionMethod(method)
		d.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate documents", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrDatabase, err)
}

// IsNotFound reports whether err is a missing-row error from this package.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

// documentFields are the schema fields in column order.
var documentFields = schema.Document{}.Fields()

// validateDocument runs the schema's field validators over row values given
// in documentColumns order.
func validateDocument(values []any) error {
	for i, f := range documentFields {
		d := f.Descriptor()
		for _, v := range d.Validators {
			if err := runValidator(v, values[i]); err != nil {
				return common.NewAppError(common.CodeInvalidInput,
					fmt.Sprintf("invalid %s: %v", d.Name, err), common.ErrInvalidInput)
			}
		}
	}
	return nil
}

func runValidator(fn, value any) error {
	switch fn := fn.(type) {
	case func(string) error:
		s, _ := value.(string)
		return fn(s)
	case func(int) error:
		n, _ := value.(int)
		return fn(n)
	case func(int64) error:
		n, _ := value.(int64)
		return fn(n)
	case func(float64) error:
		x, _ := value.(float64)
		return fn(x)
	}
	return nil
}
