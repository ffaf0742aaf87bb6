package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clean-dependency-project/devserve/internal/console"
)

// ClientKey is the attribute rendered before the message by ConsoleHandler,
// producing "[INFO] <client> - <message>".
const ClientKey = "client"

// ConsoleHandler is a slog.Handler writing one human-readable line per record
// through a console.Printer.
type ConsoleHandler struct {
	printer *console.Printer
	level   slog.Leveler
	attrs   []slog.Attr
	group   string
}

// NewConsoleHandler creates a ConsoleHandler enabled at level and above.
func NewConsoleHandler(p *console.Printer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{printer: p, level: level}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var client string
	var extra []string

	appendAttr := func(a slog.Attr, group string) {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			return
		}
		if group != "" {
			a.Key = group + "." + a.Key
		}
		if a.Key == ClientKey {
			client = a.Value.String()
			return
		}
		extra = append(extra, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}

	// Stored attrs already carry their group prefix.
	for _, a := range h.attrs {
		appendAttr(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a, h.group)
		return true
	})

	var b strings.Builder
	if client != "" {
		b.WriteString(client)
		b.WriteString(" - ")
	}
	b.WriteString(r.Message)
	for _, e := range extra {
		b.WriteByte(' ')
		b.WriteString(e)
	}

	h.printer.Log(r.Level, b.String())
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	h2.group = name
	return &h2
}
