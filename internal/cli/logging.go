package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/clean-dependency-project/devserve/internal/config"
	"github.com/clean-dependency-project/devserve/internal/console"
	"github.com/clean-dependency-project/devserve/internal/logger"
)

// newLogger creates the request/diagnostic logger. The console format shares
// the stdout printer so access lines and banner use the same color decision.
func newLogger(cfg config.Config, stdout io.Writer, p *console.Printer) (*slog.Logger, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, stdout, p)
	if err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	return log, nil
}
