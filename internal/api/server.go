// Package api exposes the pipeline over HTTP: upload a service-history CSV,
// run extraction and reconciliation, then fetch the resulting tables.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleetscan/internal/export"
	"fleetscan/internal/extract"
	"fleetscan/internal/metrics"
	"fleetscan/internal/store"
)

// Server builds one orchestrator per run so an upload can override the batch
// size without affecting concurrent runs.
type Server struct {
	extractor *extract.Extractor
	batchSize int
	store     *store.Store
	metrics   *metrics.Registry
	sink      *export.S3Sink // nil when artifact publishing is disabled
	log       *logrus.Logger
}

func NewServer(extractor *extract.Extractor, batchSize int, st *store.Store, reg *metrics.Registry, sink *export.S3Sink, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{extractor: extractor, batchSize: batchSize, store: st, metrics: reg, sink: sink, log: log}
}

// Router wires all routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/runs", s.createRun)
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
		v1.GET("/runs/:id/events", s.getEvents)
		v1.GET("/runs/:id/state", s.getState)
	}
	return r
}
