package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/ingest"
	"github.com/joseph-ayodele/doc-analyzer/internal/storage"
)

const (
	statusAvailable   = "available"
	statusUnavailable = "unavailable"
	statusDisabled    = "disabled"
)

// handleHealth always answers 200; degraded collaborators are reported in
// the body.
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	st := s.probe(ctx)
	overall := "ok"
	if st.storage == statusUnavailable || st.registry == statusUnavailable {
		overall = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           overall,
		"timestamp":        time.Now().UTC(),
		"storage":          st.storage,
		"analysisProvider": s.deps.Processor.ProviderName(),
		"registry":         st.registry,
	})
}

type probeResult struct {
	storage  string
	registry string
}

func (s *Server) probe(ctx context.Context) probeResult {
	out := probeResult{storage: statusDisabled, registry: statusDisabled}
	if s.deps.Catalog != nil {
		out.storage = statusAvailable
		pctx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
		if err := s.deps.Catalog.Ping(pctx); err != nil {
			s.logger.Warn("health.storage_unavailable", "error", err)
			out.storage = statusUnavailable
		}
		cancel()
	}
	if s.deps.DB != nil {
		out.registry = statusAvailable
		if err := s.deps.DB.HealthCheck(ctx, s.cfg.HealthTimeout, s.logger); err != nil {
			out.registry = statusUnavailable
		}
	}
	return out
}

func (s *Server) handleUpload(c *gin.Context) {
	r := c.Request
	h := ingest.Headers{
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.Header.Get("Content-Length"),
	}
	if h.ContentLength == "" && r.ContentLength >= 0 {
		h.ContentLength = strconv.FormatInt(r.ContentLength, 10)
	}

	body := uploadBody{ReadCloser: r.Body, conn: connFromContext(r.Context())}
	res, err := s.deps.Processor.ProcessUpload(r.Context(), body, h)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// uploadBody lets ingestion abandon a stalled upload: Abort expires the
// connection's read deadline so the pending Read fails at once.
type uploadBody struct {
	io.ReadCloser
	conn net.Conn
}

func (b uploadBody) Abort() {
	if b.conn != nil {
		_ = b.conn.SetReadDeadline(time.Now())
	}
}

func (s *Server) handleListFiles(c *gin.Context) {
	start := time.Now()
	if s.deps.Catalog == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"message":          "Object storage is not configured",
			"timestamp":        time.Now().UTC(),
			"storage_status":   statusDisabled,
			"response_time_ms": time.Since(start).Milliseconds(),
			"files_count":      0,
			"files":            []storage.FileEntry{},
		})
		return
	}

	files, err := s.deps.Catalog.ListFiles(c.Request.Context())
	storageStatus := statusAvailable
	if err != nil {
		if errors.Is(err, common.ErrTimeout) {
			s.handleError(c, err, gin.H{"files": []storage.FileEntry{}})
			return
		}
		// a broken listing degrades to an empty one
		s.logger.Warn("files.list_failed", "error", err)
		storageStatus = statusUnavailable
	}
	if files == nil {
		files = []storage.FileEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Files retrieved successfully",
		"timestamp":        time.Now().UTC(),
		"storage_status":   storageStatus,
		"response_time_ms": time.Since(start).Milliseconds(),
		"files_count":      len(files),
		"files":            files,
	})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		s.handleError(c, missingParam("file ID"), nil)
		return
	}
	if s.deps.Catalog == nil {
		s.handleError(c, unavailable("Object storage"), nil)
		return
	}

	ctx, cancel := context.WithTimeoutCause(c.Request.Context(), s.cfg.AnalysisLookup, common.ErrTimeout)
	defer cancel()
	key, data, err := s.deps.Catalog.FindAnalysis(ctx, id)
	if err != nil {
		if errors.Is(context.Cause(ctx), common.ErrTimeout) {
			err = common.NewAppError(common.CodeTimeout, "Analysis retrieval timed out", common.ErrTimeout)
		}
		s.handleError(c, err, nil)
		return
	}

	var payload any = json.RawMessage(data)
	if !json.Valid(data) {
		payload = gin.H{"rawData": string(data)}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Analysis retrieved successfully",
		"analysisId": key,
		"data":       payload,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		s.handleError(c, missingParam("document ID"), nil)
		return
	}
	if s.deps.Catalog == nil {
		s.handleError(c, unavailable("Object storage"), nil)
		return
	}

	rc, info, name, err := s.deps.Catalog.Open(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			err = common.NewAppError(common.CodeNotFound, "Document not found", err)
		}
		s.handleError(c, err, nil)
		return
	}
	defer rc.Close()

	ct := info.ContentType
	if ct == "" {
		ct = constants.ContentTypeOctetStream
	}
	c.DataFromReader(http.StatusOK, info.Size, ct, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	if s.deps.Documents == nil {
		s.handleError(c, unavailable("Document registry"), nil)
		return
	}
	limit, err := queryLimit(c, s.cfg.DocumentsLimit)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	docs, err := s.deps.Documents.List(ctx, limit)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}
	total, err := s.deps.Documents.Count(ctx)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(docs),
		"total":     total,
		"documents": docs,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	if s.deps.Exporter == nil {
		s.handleError(c, unavailable("Document registry"), nil)
		return
	}
	limit, err := queryLimit(c, s.cfg.ExportLimit)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}
	xlsx, err := s.deps.Exporter.ExportDocumentsXLSX(c.Request.Context(), limit)
	if err != nil {
		s.handleError(c, err, nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, constants.ContentTypeXLSX, xlsx)
}

func queryLimit(c *gin.Context, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewAppError(common.CodeInvalidInput, "limit must be a non-negative integer", common.ErrInvalidInput)
	}
	return n, nil
}
