package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/ingest"
)

// handleError writes the standard failure body. Status and code come from
// the error chain; 5xx messages are redacted in production.
func (s *Server) handleError(c *gin.Context, err error, extra gin.H) {
	status := common.HTTPStatus(err)
	body := gin.H{
		"success": false,
		"code":    common.ErrorCode(err),
		"message": common.PublicMessage(err, s.cfg.Production),
	}
	if stage := ingest.FailedStage(err); stage != "" {
		body["stage"] = stage
	}
	for k, v := range extra {
		body[k] = v
	}

	attrs := []any{
		"path", c.Request.URL.Path,
		"status", status,
		"code", body["code"],
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.failed", attrs...)
	} else {
		s.logger.Warn("http.rejected", attrs...)
	}
	c.AbortWithStatusJSON(status, body)
}

func unavailable(what string) error {
	return common.NewAppError(common.CodeServiceUnavailable, what+" is not configured", common.ErrServiceUnavailable)
}

func missingParam(name string) error {
	return common.NewAppError(common.CodeInvalidInput, "Missing "+name+" parameter", common.ErrInvalidInput)
}
