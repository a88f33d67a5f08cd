package web

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/QuivrHQ/Judge/internal/judge"
)

const defaultMaxBodyBytes = 32 << 20

// Server is the judge HTTP API
type Server struct {
	judge        *judge.Judge
	router       *gin.Engine
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewServer creates a new API server over j. maxBodyBytes <= 0 uses 32MB.
func NewServer(j *judge.Judge, logger *slog.Logger, maxBodyBytes int64) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		judge:        j,
		router:       router,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}

	api := router.Group("/api")
	{
		api.GET("/dataset", s.handleDataset)
		api.GET("/questions", s.handleQuestions)
		api.GET("/chunks/:id", s.handleChunk)
		api.POST("/evaluate", s.handleEvaluate)
		api.POST("/evaluate/fuzzy", s.handleEvaluateFuzzy)
	}

	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run starts the web server
func (s *Server) Run(addr string) error {
	s.logger.Info("api listening", slog.String("addr", addr))
	return s.router.Run(addr)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
