package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

var (
	colArrow = color.HEX("#FFEB3B")
	colDebug = color.Gray
	colWarn  = color.Warn
	colError = color.Error
	colKey   = color.Gray
)

// Writes r as a single colored line. The state lock must be held.
func (h *Handler) writePretty(r slog.Record) error {
	var b strings.Builder

	switch {
	case r.Level >= slog.LevelError:
		b.WriteString(colError.Sprint(" error "))
		b.WriteByte(' ')
		b.WriteString(r.Message)
	case r.Level >= slog.LevelWarn:
		b.WriteString(colWarn.Sprint("warning:"))
		b.WriteByte(' ')
		b.WriteString(r.Message)
	case r.Level >= slog.LevelInfo:
		b.WriteString(colArrow.Sprint("->"))
		b.WriteByte(' ')
		b.WriteString(r.Message)
	default:
		b.WriteString(colDebug.Sprint("-> " + r.Message))
	}

	if h.s.verbose || r.Level >= slog.LevelWarn {
		for _, a := range h.attrs {
			writeAttr(&b, "", a)
		}
		r.Attrs(func(a slog.Attr) bool {
			writeAttr(&b, h.prefix, a)
			return true
		})
	}

	b.WriteByte('\n')

	_, err := fmt.Fprint(h.s.w, b.String())
	return err
}

// Writes " key=value", flattening groups into dotted keys.
func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(colKey.Sprint(prefix + a.Key + "="))
	b.WriteString(formatValue(a.Value))
}

// Returns v as text, quoted when it contains spaces or quotes.
func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
