package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Server envuelve el http.Server con timeouts sanos y shutdown ordenado.
type Server struct {
	srv *http.Server
}

// ServerConfig son los parámetros del listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration // default 10s
	WriteTimeout    time.Duration // default 30s
	IdleTimeout     time.Duration // default 60s
	ShutdownTimeout time.Duration // default 15s
}

func (c *ServerConfig) defaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
}

// NewServer crea el server con el handler raíz ya armado.
func NewServer(cfg ServerConfig, handler http.Handler) *Server {
	cfg.defaults()
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run sirve hasta que el contexto se cancele y después drena con el timeout
// de shutdown. ErrServerClosed no es error: es el cierre esperado.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("http server draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
