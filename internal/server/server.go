package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-redis/redis/v8"

	"github.com/gravitas-games/craftworks/internal/catalog"
	"github.com/gravitas-games/craftworks/internal/config"
	"github.com/gravitas-games/craftworks/internal/errors"
	"github.com/gravitas-games/craftworks/internal/store"
)

// Server runs the session tick loop, persists snapshots and serves the
// health and status endpoints.
type Server struct {
	config  *config.Config
	session *Session
	httpSrv *http.Server
	logger  *slog.Logger

	// nil when persistence is disabled
	redis *redis.Client
	store *store.Store

	// Shutdown
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new server instance. When a Redis address is configured the
// server connects, and restores any saved snapshots into the session.
func New(cfg *config.Config, cat *catalog.Catalog, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing server")

	ctx, cancel := context.WithCancel(context.Background())

	session, err := NewSession("main", cfg, cat, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	srv := &Server{
		config:  cfg,
		session: session,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if cfg.Redis.Address != "" {
		client, err := store.Dial(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			cancel()
			return nil, err
		}
		logger.Info("connected to redis", "address", cfg.Redis.Address)

		st, err := store.New(&store.Config{Client: client, KeyPrefix: cfg.Redis.KeyPrefix})
		if err != nil {
			_ = client.Close()
			cancel()
			return nil, err
		}
		if err := session.Restore(ctx, st); err != nil {
			_ = client.Close()
			cancel()
			return nil, errors.Wrap(err, "failed to restore session")
		}
		srv.redis = client
		srv.store = st
	} else {
		logger.Warn("redis address not configured, persistence disabled")
	}

	srv.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server initialized")
	return srv, nil
}

// Session returns the world driven by the server.
func (s *Server) Session() *Session { return s.session }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start launches the tick loop and serves HTTP until Shutdown.
func (s *Server) Start() error {
	s.wg.Add(1)
	go s.run()

	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// run ticks the session at the configured rate and saves snapshots on the
// save interval.
func (s *Server) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval())
	defer ticker.Stop()

	var saves <-chan time.Time
	if s.store != nil && s.config.Redis.SaveInterval > 0 {
		saveTicker := time.NewTicker(s.config.Redis.SaveInterval)
		defer saveTicker.Stop()
		saves = saveTicker.C
	}

	last := time.Now()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.session.Tick(now.Sub(last))
			last = now
		case <-saves:
			if err := s.session.Save(s.ctx, s.store); err != nil {
				s.logger.ErrorContext(s.ctx, "periodic save failed", "error", err)
			}
		}
	}
}

// Shutdown gracefully stops the server and writes a final snapshot.
func (s *Server) Shutdown() error {
	var result error
	s.stopOnce.Do(func() {
		s.logger.Info("shutting down server")

		s.cancel()
		s.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}

		if s.store != nil {
			if err := s.session.Save(ctx, s.store); err != nil {
				result = errors.Wrap(err, "final save failed")
			}
		}
		s.session.Close()

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				s.logger.Error("redis close error", "error", err)
			}
		}

		s.logger.Info("server shutdown complete")
	})
	return result
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, map[string]string{"status": "ok"}
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			s.logger.WarnContext(r.Context(), "health check: redis unreachable", "error", err)
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": err.Error()}
		}
	}
	writeJSON(w, r, status, body)
}

// handleStatus reports tick and job counters
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Status())
}

// writeJSON encodes v, compressed with br or gzip when the client accepts it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	cw := brotli.HTTPCompressor(w, r)
	w.WriteHeader(status)
	_ = json.NewEncoder(cw).Encode(v)
	_ = cw.Close()
}
