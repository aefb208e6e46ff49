package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"golang.org/x/term"
)

// Shared by a [Handler] and every handler derived from it.
type state struct {
	mu        sync.Mutex
	level     slog.LevelVar
	w         io.Writer
	pretty    bool
	verbose   bool
	buffering bool
	pending   []pending
}

// A record held until [Handler.Flush].
type pending struct {
	h *Handler
	r slog.Record
}

// A [slog.Handler] with deferred configuration.
//
// Handlers derived through WithAttrs and WithGroup share the parent's level,
// format, stream and buffer.
type Handler struct {
	s      *state
	attrs  []slog.Attr                       // Accumulated attributes, keys qualified by group.
	prefix string                            // Dotted group prefix for record attributes.
	ops    []func(slog.Handler) slog.Handler // Replayed on the text handler.
}

// Creates a buffering [Handler] at info level writing plain text to stderr.
func NewHandler() *Handler {
	return &Handler{s: &state{w: os.Stderr, buffering: true}}
}

// Sets the minimum level.
func (h *Handler) SetLevel(l slog.Level) {
	h.s.level.Set(l)
}

// Enables or disables pretty output.
func (h *Handler) SetPretty(enabled bool) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.pretty = enabled
}

// Enables or disables attribute output for informational records in pretty
// mode.
func (h *Handler) SetVerbose(enabled bool) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.verbose = enabled
}

// Sets the output stream.
func (h *Handler) SetStream(w io.Writer) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.w = w
}

// Writes the buffered records and switches to direct output.
//
// Buffered records below the current level are discarded. Calling Flush again
// has no effect.
func (h *Handler) Flush() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	for _, p := range h.s.pending {
		if p.r.Level >= h.s.level.Level() {
			p.h.write(p.r)
		}
	}

	h.s.pending = nil
	h.s.buffering = false
}

// Implements [slog.Handler].
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	if h.s.buffering {
		return true
	}
	return l >= h.s.level.Level()
}

// Implements [slog.Handler].
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.s.buffering {
		h.s.pending = append(h.s.pending, pending{h: h, r: r.Clone()})
		return nil
	}

	return h.write(r)
}

// Implements [slog.Handler].
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := h.clone()
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, qualify(h.prefix, a))
	}
	h2.ops = append(h2.ops, func(th slog.Handler) slog.Handler { return th.WithAttrs(attrs) })
	return h2
}

// Implements [slog.Handler].
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := h.clone()
	h2.prefix = h.prefix + name + "."
	h2.ops = append(h2.ops, func(th slog.Handler) slog.Handler { return th.WithGroup(name) })
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		s:      h.s,
		attrs:  slices.Clone(h.attrs),
		prefix: h.prefix,
		ops:    slices.Clone(h.ops),
	}
}

// Writes r in the configured format. The state lock must be held.
func (h *Handler) write(r slog.Record) error {
	if h.s.pretty {
		return h.writePretty(r)
	}

	var th slog.Handler = slog.NewTextHandler(h.s.w, &slog.HandlerOptions{Level: slog.LevelDebug})
	for _, op := range h.ops {
		th = op(th)
	}
	return th.Handle(context.Background(), r)
}

// Returns a with its key qualified by prefix.
func qualify(prefix string, a slog.Attr) slog.Attr {
	if prefix == "" {
		return a
	}
	return slog.Attr{Key: prefix + a.Key, Value: a.Value}
}

// Returns true if w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
