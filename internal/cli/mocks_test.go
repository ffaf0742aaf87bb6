package cli

import (
	"context"
	"log/slog"
	"net"

	"github.com/clean-dependency-project/devserve/internal/config"
)

// mockFileServer implements FileServer for testing.
type mockFileServer struct {
	listenFn func() (net.Listener, error)
	serveFn  func(ctx context.Context, ln net.Listener) error
	closed   bool
	cfg      config.Config
}

// Listen implements FileServer.
func (m *mockFileServer) Listen() (net.Listener, error) {
	if m.listenFn != nil {
		return m.listenFn()
	}
	return net.Listen("tcp", "127.0.0.1:0")
}

// Serve implements FileServer.
func (m *mockFileServer) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	if m.serveFn != nil {
		return m.serveFn(ctx, ln)
	}
	<-ctx.Done()
	return nil
}

// Close implements FileServer.
func (m *mockFileServer) Close() error {
	m.closed = true
	return nil
}

// factoryFor returns a ServerFactory handing out m and recording the config.
func factoryFor(m *mockFileServer) ServerFactory {
	return func(cfg config.Config, _ *slog.Logger) (FileServer, error) {
		m.cfg = cfg
		return m, nil
	}
}
