package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/internal/config"
	"github.com/ib-77/queueautomator/internal/monitoring"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

// Server wraps the HTTP server and the pipeline it feeds.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	pipeline *automator.Automator
	metrics  *monitoring.Metrics
	router   *gin.Engine
	http     *http.Server
}

// NewServer wires the routes. metrics may be nil, in which case nothing is
// recorded and no metrics route is served.
func NewServer(cfg *config.Config, pipeline *automator.Automator, metrics *monitoring.Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		log:      log.Named("http"),
		pipeline: pipeline,
		metrics:  metrics,
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(s.log), CORS())
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}

	submit := []gin.HandlerFunc{s.process}
	if cfg.RateLimit.Enabled {
		submit = append([]gin.HandlerFunc{RateLimit(cfg.RateLimit)}, submit...)
	}
	router.POST("/process/:data", submit...)
	router.GET("/output", s.output)
	router.GET("/stages", s.stages)
	router.GET("/health", s.health)
	if metrics != nil && cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	s.router = router
	s.http = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve starts the pipeline and serves HTTP on ln. The pipeline lives until
// ctx is done or Shutdown is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.pipeline.RunForever(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	s.log.Info("serving pipeline",
		zap.String("addr", ln.Addr().String()),
		zap.String("automator", s.pipeline.String()),
		zap.String("run_id", s.pipeline.RunID()))

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.pipeline.Kill()
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then kills the pipeline without
// draining it. When graceful shutdown times out the listener is closed hard.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if serr := s.http.Shutdown(ctx); serr != nil {
		err = multierr.Append(serr, s.http.Close())
	}

	s.pipeline.Kill()
	s.log.Info("server stopped", zap.Error(err))
	return err
}
