package api

import (
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/gltfkit/internal/loader"
	"github.com/samcharles93/gltfkit/internal/logger"
)

const defaultMaxUploadBytes = 256 << 20

type Config struct {
	Loader loader.Loader

	// MaxUploadBytes caps request bodies. Zero uses 256 MiB.
	MaxUploadBytes int64

	// UploadsPerSecond throttles document creation. Zero disables throttling.
	UploadsPerSecond float64
	UploadBurst      int

	Logger logger.Logger
}

type Server struct {
	store     *DocumentStore
	loader    loader.Loader
	limiter   *rate.Limiter
	maxUpload int64
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(store *DocumentStore, cfg Config) *Server {
	if store == nil {
		store = NewDocumentStore()
	}
	s := &Server{
		store:     store,
		loader:    cfg.Loader,
		maxUpload: cfg.MaxUploadBytes,
		log:       cfg.Logger,
		clock:     time.Now,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUploadBytes
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if cfg.UploadsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.UploadsPerSecond), max(cfg.UploadBurst, 1))
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/documents", s.handleListDocuments)
	e.POST("/v1/documents", s.handleCreateDocument)
	e.GET("/v1/documents/:id", s.handleGetDocument)
	e.DELETE("/v1/documents/:id", s.handleDeleteDocument)
	e.GET("/v1/documents/:id/accessors/:index", s.handleGetAccessor)
	e.GET("/v1/documents/:id/glb", s.handleExportDocument)
}
