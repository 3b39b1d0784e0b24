package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-inbox-server/internal/inbox"
	"chat-inbox-server/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultAddr         = "0.0.0.0:8080"
	defaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

// Server defines fields used in HTTP processing
type Server struct {
	logger        *zap.SugaredLogger
	httpServer    *http.Server
	store         storage.Store
	afterShutdown []func()
}

// NewServer returns new Server struct serving the inbox routes over provided storage.Store
func NewServer(logger *zap.SugaredLogger, store storage.Store, opts ...Option) (*Server, error) {
	cfg := &config{
		httpServer:   &http.Server{Addr: defaultAddr},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	h := &handler{
		inbox: inbox.NewService(logger, store),
	}

	d := &dispatcher{
		logger:       logger,
		routes:       h.routes(),
		maxBodyBytes: cfg.maxBodyBytes,
	}

	cfg.httpServer.Handler = log(d, logger.Desugar())

	return &Server{
		logger:        logger,
		httpServer:    cfg.httpServer,
		store:         store,
		afterShutdown: cfg.afterShutdown,
	}, nil
}

// Handler returns the root http.Handler of the server
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start calls ListenAndServe on http.Server instance inside Server struct
// and implements graceful shutdown via goroutine waiting for SIGINT or SIGTERM
func (s *Server) Start() error {
	idleConnsClosed := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		s.logger.Info("Shutting down HTTP server")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Errorf("srv.Shutdown: %v", err)
		}
		s.logger.Info("HTTP server is stopped")

		close(idleConnsClosed)
	}()

	s.logger.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("s.httpServer.ListenAndServe: %w", err)
	}

	<-idleConnsClosed

	s.close()

	return nil
}

func (s *Server) close() {
	s.logger.Info("Closing store")
	if err := s.store.Close(); err != nil {
		s.logger.Errorf("store.Close: %v", err)
	}
	s.logger.Info("Store is closed")

	for _, f := range s.afterShutdown {
		f()
	}
}
