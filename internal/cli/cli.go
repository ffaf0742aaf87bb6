// Package cli provides the command-line interface for the development file server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/clean-dependency-project/devserve/internal/config"
	"github.com/clean-dependency-project/devserve/internal/console"
	"github.com/clean-dependency-project/devserve/internal/server"
)

// AppName is the program name used in usage and hint messages.
const AppName = "devserve"

// ErrUsage reports malformed command-line arguments.
var ErrUsage = errors.New("usage error")

// runner holds the process streams and the printers built from them once the
// color flag is known.
type runner struct {
	stdout io.Writer
	stderr io.Writer
	out    *console.Printer
	errOut *console.Printer

	newServer ServerFactory
}

// Run executes the application with args (args[0] is the program name) and
// returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, stdout, stderr, newFileServer)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory ServerFactory) int {
	r := &runner{stdout: stdout, stderr: stderr, newServer: factory}
	app := r.newApp()
	if err := app.RunContext(ctx, args); err != nil {
		return r.report(err)
	}
	return 0
}

// NewApp creates and configures the CLI application writing to the process streams.
func NewApp() *cli.App {
	r := &runner{stdout: os.Stdout, stderr: os.Stderr, newServer: newFileServer}
	return r.newApp()
}

func (r *runner) newApp() *cli.App {
	return &cli.App{
		Name:      AppName,
		Usage:     "Serve a directory over HTTP with CORS headers for local development",
		UsageText: AppName + " [options] [port]",
		ArgsUsage: "[port]",
		Version:   "1.0.0",
		Compiled:  time.Now(),
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		// Errors are reported by Run; never let the library call os.Exit.
		ExitErrHandler:  func(*cli.Context, error) {},
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "directory to serve (default: the directory containing the executable)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "interface to bind (default: all interfaces)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML or TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "color",
				Value: "auto",
				Usage: "colorize output (auto, always, never)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "console",
				Usage: "log format (console, text, json)",
			},
			&cli.StringFlag{
				Name:  "title",
				Value: config.DefaultTitle,
				Usage: "banner title",
			},
		},
		Action: r.serve,
	}
}

// serve is the main action: build the configuration, bind, print the banner,
// and serve until interrupted.
func (r *runner) serve(c *cli.Context) error {
	if err := r.setupPrinters(c.String("color")); err != nil {
		return err
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	if err := r.setupPrinters(cfg.Color); err != nil {
		return err
	}

	log, err := newLogger(cfg, r.stdout, r.out)
	if err != nil {
		return err
	}

	srv, err := r.newServer(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Debug("failed to close root", "error", closeErr)
		}
	}()

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	r.out.PrintBanner(console.Banner{
		Title: cfg.Title,
		URL:   server.URL(ln),
		Root:  cfg.Root,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln); err != nil {
		return err
	}

	r.out.Println("")
	r.out.Warning("Server stopped by user")
	return nil
}

// buildConfig layers the optional config file, the positional port and the
// flags over the defaults, resolves the web root and validates the result.
// The port argument is parsed first so a bad value fails before anything else.
func buildConfig(c *cli.Context) (config.Config, error) {
	if c.NArg() > 1 {
		return config.Config{}, fmt.Errorf("%w: expected at most one port argument, got %d", ErrUsage, c.NArg())
	}

	port := -1
	if c.NArg() == 1 {
		p, err := config.ParsePort(c.Args().First())
		if err != nil {
			return config.Config{}, err
		}
		port = p
	}

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if port >= 0 {
		cfg.Port = port
	}
	if c.IsSet("dir") {
		cfg.Root = c.String("dir")
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("color") {
		cfg.Color = c.String("color")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("title") {
		cfg.Title = c.String("title")
	}

	if cfg.Root == "" {
		dir, err := config.ExecutableDir()
		if err != nil {
			return config.Config{}, err
		}
		cfg.Root = dir
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}
	cfg.Root = abs

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (r *runner) setupPrinters(color string) error {
	mode, err := console.ParseColorMode(color)
	if err != nil {
		return err
	}
	r.out = console.New(r.stdout, mode)
	r.errOut = console.New(r.stderr, mode)
	return nil
}

// report prints err for the user and returns the exit status.
func (r *runner) report(err error) int {
	p := r.errOut
	if p == nil {
		p = console.New(r.stderr, console.ColorAuto)
	}

	var inUse *server.PortInUseError
	switch {
	case errors.As(err, &inUse):
		p.Failure("Error: port %d is already in use", inUse.Port)
		p.Hint("Try another port: %s %d", AppName, inUse.NextPort())
	case errors.Is(err, config.ErrInvalidPort):
		p.Failure("Error: %v", err)
		p.Hint("The port must be an integer between 0 and %d", config.MaxPort)
	default:
		p.Failure("Error: %v", err)
	}
	return 1
}
