// Package console renders human-facing terminal output: severity tags,
// the startup banner and status lines, colorized when the output supports it.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ErrInvalidColorMode is returned by ParseColorMode for unknown values.
var ErrInvalidColorMode = errors.New("invalid color mode")

// ColorMode selects when output is colorized.
type ColorMode int

const (
	// ColorAuto colorizes only when the writer is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways always emits escape codes.
	ColorAlways
	// ColorNever never emits escape codes.
	ColorNever
)

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("%w: %q", ErrInvalidColorMode, s)
	}
}

const rule = "============================================================"

// Banner is the startup summary shown once the listener is bound.
type Banner struct {
	Title string
	URL   string
	Root  string
}

// Printer writes lines to a single writer. It is safe for concurrent use.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	blue   *color.Color
	cyan   *color.Color
}

// New creates a Printer for w.
func New(w io.Writer, mode ColorMode) *Printer {
	p := &Printer{
		w:       w,
		enabled: colorEnabled(w, mode),
		green:   color.New(color.FgHiGreen),
		red:     color.New(color.FgHiRed),
		yellow:  color.New(color.FgHiYellow),
		blue:    color.New(color.FgHiBlue),
		cyan:    color.New(color.FgHiCyan),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow, p.blue, p.cyan} {
		if p.enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// colorEnabled decides whether escape codes should be written to w.
// In auto mode fatih/color's global detection (NO_COLOR, TERM=dumb) must agree
// with a terminal check on w itself.
func colorEnabled(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Colored reports whether the printer emits escape codes.
func (p *Printer) Colored() bool {
	return p.enabled
}

// Tag returns the bracketed severity tag for level, e.g. "[INFO]".
func (p *Printer) Tag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return p.red.Sprint("[ERROR]")
	case level >= slog.LevelWarn:
		return p.yellow.Sprint("[WARN]")
	case level >= slog.LevelInfo:
		return p.green.Sprint("[INFO]")
	default:
		return p.cyan.Sprint("[DEBUG]")
	}
}

// Log writes "<tag> <msg>".
func (p *Printer) Log(level slog.Level, msg string) {
	p.Println(p.Tag(level) + " " + msg)
}

// Success writes a line prefixed with a green check mark.
func (p *Printer) Success(format string, args ...any) {
	p.Println(p.green.Sprint("✓") + " " + fmt.Sprintf(format, args...))
}

// Failure writes a line prefixed with a red cross.
func (p *Printer) Failure(format string, args ...any) {
	p.Println(p.red.Sprint("✗") + " " + fmt.Sprintf(format, args...))
}

// Warning writes a line prefixed with a yellow warning sign.
func (p *Printer) Warning(format string, args ...any) {
	p.Println(p.yellow.Sprint("⚠") + " " + fmt.Sprintf(format, args...))
}

// Hint writes an indented follow-up line.
func (p *Printer) Hint(format string, args ...any) {
	p.Println("   " + fmt.Sprintf(format, args...))
}

// PrintBanner writes the startup banner.
func (p *Printer) PrintBanner(b Banner) {
	p.Println("\n" + rule)
	p.Println(p.blue.Sprint("🚀 " + b.Title))
	p.Println(rule)
	p.Success("Server started on %s", b.URL)
	p.Success("Directory: %s", b.Root)
	p.Success("Press Ctrl+C to stop")
	p.Println(rule + "\n")
}

// Println writes s followed by a newline as a single write.
func (p *Printer) Println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, s+"\n")
}
