package cli

import (
	"context"
	"log/slog"
	"net"

	"github.com/clean-dependency-project/devserve/internal/config"
	"github.com/clean-dependency-project/devserve/internal/server"
)

// FileServer abstracts the server lifecycle for testing.
// Following Dave Cheney's principle: "Accept interfaces, return structs"
type FileServer interface {
	// Listen binds the configured address.
	Listen() (net.Listener, error)

	// Serve handles connections on ln until ctx is done.
	Serve(ctx context.Context, ln net.Listener) error

	// Close releases the web root.
	Close() error
}

// ServerFactory builds a FileServer from a validated configuration.
type ServerFactory func(cfg config.Config, log *slog.Logger) (FileServer, error)

// newFileServer is the production ServerFactory.
func newFileServer(cfg config.Config, log *slog.Logger) (FileServer, error) {
	srv, err := server.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return srv, nil
}
