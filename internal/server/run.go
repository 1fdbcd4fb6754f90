package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/iwvelando/property-calc/internal/cache"
	"github.com/iwvelando/property-calc/internal/config"
	"github.com/iwvelando/property-calc/internal/leads"
	"github.com/iwvelando/property-calc/internal/metrics"
	"go.uber.org/zap"
)

// Server owns the HTTP listener and the resources behind the handler.
type Server struct {
	cfg     *Config
	logger  *zap.Logger
	http    *http.Server
	limiter *RateLimiter
	closers []io.Closer
}

// New builds a Server from the server and calculation configuration. The
// Redis backend is connected eagerly so a bad address fails at startup.
func New(ctx context.Context, cfg *Config, conf *config.Configuration, logger *zap.Logger, version string) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if conf == nil {
		conf = config.Default()
	}

	s := &Server{cfg: cfg, logger: logger}

	var resultCache cache.Cache
	switch cfg.Cache.Backend {
	case CacheBackendRedis:
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.Redis, cfg.Cache.KeyPrefix)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, redisCache)
		resultCache = redisCache
	case CacheBackendMemory:
		resultCache = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	handler := NewHandler(Options{
		Logger:      logger,
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
		Borrowing:   conf.Borrowing,
		TaxTable:    conf.Tax.Brackets,
		Cache:       resultCache,
		CacheTTL:    cfg.Cache.TTLDuration(),
		Metrics:     metrics.New(),
		Leads:       leads.NewService(nil, logger),
		Limiter:     s.limiter,
	})

	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.release()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("op", "server.Serve"),
			zap.String("address", ln.Addr().String()),
		)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server", zap.String("op", "server.Serve"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeoutDuration())
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	s.logger.Info("server exited", zap.String("op", "server.Serve"))
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.release()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) release() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("failed to release resource", zap.String("op", "server.release"), zap.Error(err))
		}
	}
	s.closers = nil
}
