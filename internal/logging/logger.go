// Package logging builds the application logger.
package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// New creates a logger that writes "LEVEL: message key=value" lines to w.
// Level names are coloured when colour is set. The "error" key is
// standardized to "err".
func New(w io.Writer, level slog.Level, colour bool) *slog.Logger {
	profile := termenv.Ascii
	if colour {
		profile = termenv.ANSI
	}
	return slog.New(&Handler{
		w:       w,
		mu:      &sync.Mutex{},
		level:   level,
		profile: profile,
	})
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ColourEnabled reports whether w is a terminal that accepts colour,
// honouring NO_COLOR and CLICOLOR_FORCE.
func ColourEnabled(w io.Writer) bool {
	return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
}

// Handler is a slog.Handler for short single-line console messages.
type Handler struct {
	w       io.Writer
	mu      *sync.Mutex
	level   slog.Leveler
	profile termenv.Profile
	prefix  string
	attrs   []byte
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(h.levelText(r.Level))
	buf.WriteString(": ")
	buf.WriteString(r.Message)
	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))
	for _, a := range attrs {
		appendAttr(buf, h.prefix, a)
	}
	clone := *h
	clone.attrs = buf.Bytes()
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) levelText(level slog.Level) string {
	name := level.String()
	var colour termenv.Color
	switch {
	case level >= slog.LevelError:
		colour = h.profile.Color("9")
	case level >= slog.LevelWarn:
		colour = h.profile.Color("11")
	case level >= slog.LevelInfo:
		colour = h.profile.Color("12")
	default:
		colour = h.profile.Color("8")
	}
	return h.profile.String(name).Foreground(colour).String()
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Key == "error" {
		a.Key = "err"
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, group, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(quoteIfNeeded(valueText(a.Value)))
}

func valueText(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\n\r") {
		return strconv.Quote(s)
	}
	return s
}
