// Package http serves the watcher's status API: which namespaces are
// monitored, how far each audit has advanced, and the persisted audit
// history. It exposes read-only state and never triggers audits itself.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plexi/internal/domain"
	"plexi/internal/usecase"
)

type HistoryReader interface {
	ListByNamespace(ctx context.Context, namespace string, limit int) ([]domain.AuditResult, error)
}

type Server struct {
	addr    string
	watcher *usecase.Watcher
	history HistoryReader
	log     *zap.Logger
	r       *gin.Engine
}

func NewServer(addr string, watcher *usecase.Watcher, history HistoryReader, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{addr: addr, watcher: watcher, history: history, log: log, r: r}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealthz)
	s.r.GET("/namespaces", s.handleNamespaces)
	s.r.GET("/namespaces/:namespace", s.handleNamespace)
	s.r.GET("/namespaces/:namespace/audits", s.handleAudits)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.r}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleNamespaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"namespaces": s.watcher.Snapshots()})
}

func (s *Server) handleNamespace(c *gin.Context) {
	snap, ok := s.watcher.NamespaceSnapshot(c.Param("namespace"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "namespace not monitored"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleAudits(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit history is not configured"})
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	results, err := s.history.ListByNamespace(c.Request.Context(), c.Param("namespace"), limit)
	if err != nil {
		s.log.Warn("audit history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": results})
}
