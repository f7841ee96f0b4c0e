// Package api serves the oracle over HTTP: authenticated calls under
// /v1/tx, read-only queries under /v1, and health probes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/app/health"
)

// Server represents the API server
type Server struct {
	router     *gin.Engine
	app        *app.OracleApp
	checker    *health.Checker
	config     Config
	logger     log.Logger
	auth       *AuthService
	audit      *AuditLogger
	httpServer *http.Server
}

// Config holds server configuration
type Config struct {
	Listen          string
	JWTSecret       []byte
	JWTIssuer       string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestSize  int64
	AuditLogDir     string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Listen:          "127.0.0.1:8080",
		JWTIssuer:       app.AppName,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  MaxRequestSize,
	}
}

// ConfigFromApp converts the daemon's api section
func ConfigFromApp(cfg app.APIConfig) Config {
	out := DefaultConfig()
	out.Listen = cfg.Listen
	out.JWTSecret = []byte(cfg.JWTSecret)
	out.JWTIssuer = cfg.JWTIssuer
	out.CORSOrigins = cfg.CORSOrigins
	out.RateLimitRPS = cfg.RateLimitRPS
	out.RateLimitBurst = cfg.RateLimitBurst
	out.AuditLogDir = cfg.AuditDir
	if cfg.ReadTimeout > 0 {
		out.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		out.WriteTimeout = cfg.WriteTimeout
	}
	return out
}

// NewServer creates a new API server instance
func NewServer(oracle *app.OracleApp, checker *health.Checker, cfg Config, logger log.Logger) (*Server, error) {
	auth, err := NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}

	audit, err := NewAuditLogger(cfg.AuditLogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit logger: %w", err)
	}

	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = MaxRequestSize
	}

	s := &Server{
		app:     oracle,
		checker: checker,
		config:  cfg,
		logger:  logger.With("module", "api"),
		auth:    auth,
		audit:   audit,
	}
	s.setupRouter()
	return s, nil
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	// asset ids such as ETH/USD arrive path-escaped
	s.router.UseRawPath = true

	// Recovery must be first to catch panics in every later middleware
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestSizeLimitMiddleware(s.config.MaxRequestSize))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(MetricsMiddleware(NewHTTPMetrics()))
	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(CORSMiddleware(s.config.CORSOrigins))
	}
	if s.config.RateLimitRPS > 0 {
		s.router.Use(s.RateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	s.registerRoutes()
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Auth returns the token service
func (s *Server) Auth() *AuthService {
	return s.auth
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return s.audit.Close()
}

// Close releases the audit log
func (s *Server) Close() error {
	return s.audit.Close()
}
