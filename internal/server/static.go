package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-analyzer/internal/cache"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
)

const indexFile = "index.html"

func (s *Server) handleIndex(c *gin.Context) {
	s.serveStatic(c, indexFile)
}

// handleStatic serves files under the static root. Unknown .html pages fall
// back to index.html; anything else is a 404.
func (s *Server) handleStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		s.notFound(c)
		return
	}
	name := strings.TrimPrefix(c.Request.URL.Path, "/")
	if strings.HasPrefix(name, "api/") {
		s.notFound(c)
		return
	}
	s.serveStatic(c, name)
}

func (s *Server) serveStatic(c *gin.Context, name string) {
	if s.deps.Static == nil {
		s.notFound(c)
		return
	}
	f, err := s.deps.Static.Load(name)
	if err != nil && strings.EqualFold(path.Ext(name), ".html") && name != indexFile {
		f, err = s.deps.Static.Load(indexFile)
	}
	if err != nil {
		if !cache.IsNotExist(err) {
			s.logger.Warn("static.read_failed", "file", name, "error", err)
		}
		s.notFound(c)
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Body)
}

func (s *Server) notFound(c *gin.Context) {
	s.handleError(c, common.NewAppError(common.CodeNotFound, "Not found", common.ErrNotFound), nil)
}
