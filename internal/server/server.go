// Package server implements the development file server: a static file handler
// confined to a web root, decorated with response headers and access logging,
// and an http.Server lifecycle that shuts down when its context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clean-dependency-project/devserve/internal/config"
)

// PortInUseError reports that the listen address is already bound.
type PortInUseError struct {
	Port int
	Err  error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use", e.Port)
}

func (e *PortInUseError) Unwrap() error {
	return e.Err
}

// NextPort is the port suggested to the user instead.
func (e *PortInUseError) NextPort() int {
	return e.Port + 1
}

// Server serves files from a single web root.
type Server struct {
	cfg     config.Config
	root    *os.Root
	logger  *slog.Logger
	handler http.Handler
}

// New opens cfg.Root and builds the handler chain. The caller must Close the
// server to release the root.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	root, err := os.OpenRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open root directory: %w", err)
	}

	files := &fileHandler{root: root, logger: logger}
	handler := WithHeaders(WithAccessLog(allowMethods(files), logger), cfg.Headers)

	return &Server{
		cfg:     cfg,
		root:    root,
		logger:  logger,
		handler: handler,
	}, nil
}

// Handler returns the complete request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address. A busy port yields *PortInUseError;
// any other failure is returned wrapped with the OS detail intact.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, &PortInUseError{Port: s.cfg.Port, Err: err}
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Debug("listening", "addr", ln.Addr().String(), "root", s.cfg.Root)
	return ln, nil
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. In-flight requests get the configured shutdown timeout before
// their connections are closed. A nil return means a clean stop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.GetShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown timed out, closing connections", "error", err)
			_ = srv.Close()
		}
		return nil
	})
	return g.Wait()
}

// Close releases the web root.
func (s *Server) Close() error {
	return s.root.Close()
}

// URL returns the browser URL for a bound listener.
func URL(ln net.Listener) string {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d", addr.Port)
	}
	return "http://" + ln.Addr().String()
}
