package logging

import (
	"context"
	"log/slog"
	"strings"
)

var _ slog.Handler = (*Handler)(nil)

// Handler is a slog.Handler that writes through a Logger, so slog call sites
// get the same non-blocking handoff to the drain goroutine.
type Handler struct {
	logger *Logger
	level  slog.Leveler
	attrs  string // preformatted " k=v" pairs
	group  string // dotted prefix for attribute keys
}

// NewHandler returns a Handler writing through l. A nil opts or nil
// opts.Level means slog.LevelInfo.
func NewHandler(l *Logger, opts *slog.HandlerOptions) *Handler {
	h := &Handler{logger: l, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle queues the record as one line. Every line carries a timestamp, so a
// record with a zero Time is stamped with the manager's clock rather than
// having its time omitted.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.group, a)
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = h.logger.m.now()
	}
	h.logger.logAt(t, levelFromSlog(r.Level), b.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.group, a)
	}
	h2 := *h
	h2.attrs = b.String()
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			appendAttr(b, prefix, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
