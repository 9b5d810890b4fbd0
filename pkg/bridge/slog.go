package bridge

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/record"
	"github.com/arthur-debert/lumen/pkg/render"
)

// SlogHandler is a slog.Handler that renders through a Renderer.
type SlogHandler struct {
	r      *render.Renderer
	name   string
	attrs  map[string]any
	prefix string
}

// NewSlogHandler returns a handler whose records are named name.
func NewSlogHandler(r *render.Renderer, name string) *SlogHandler {
	return &SlogHandler{r: r, name: name}
}

// FromSlog maps a slog level onto the canonical levels. The gap between
// INFO and WARN holds NOTE.
func FromSlog(l slog.Level) level.Level {
	switch {
	case l < slog.LevelDebug:
		return level.Trace
	case l < slog.LevelInfo:
		return level.Debug
	case l < slog.LevelInfo+2:
		return level.Info
	case l < slog.LevelWarn:
		return level.Note
	case l < slog.LevelError:
		return level.Warning
	case l < slog.LevelError+4:
		return level.Error
	default:
		return level.Critical
	}
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.r.Enabled(FromSlog(l))
}

// Handle implements slog.Handler.
func (h *SlogHandler) Handle(_ context.Context, sr slog.Record) error {
	lvl := FromSlog(sr.Level)
	rec := record.New(h.name, lvl, h.r.Levels().Name(lvl), "")
	if !sr.Time.IsZero() {
		rec.Created = sr.Time
	}
	if sr.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{sr.PC})
		f, _ := frames.Next()
		rec.Pathname, rec.Lineno = f.File, f.Line
		rec.FuncName = record.ShortFuncName(f.Function)
	}

	fields := make(map[string]any, len(h.attrs)+sr.NumAttrs())
	for k, v := range h.attrs {
		fields[k] = v
	}
	sr.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Resolve().Any().(error); ok && rec.Err == nil {
			rec.Err = err
			return true
		}
		addAttr(fields, h.prefix, a)
		return true
	})
	rec.Msg = appendFields(sr.Message, fields)
	return h.r.Emit(rec)
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		addAttr(c.attrs, c.prefix, a)
	}
	return c
}

// WithGroup implements slog.Handler. Grouped keys are joined with dots.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = c.prefix + name + "."
	return c
}

func (h *SlogHandler) clone() *SlogHandler {
	c := *h
	c.attrs = make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		c.attrs[k] = v
	}
	return &c
}

func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(fields, p, ga)
		}
		return
	}
	switch v.Kind() {
	case slog.KindTime:
		fields[prefix+a.Key] = v.Time()
	case slog.KindDuration:
		fields[prefix+a.Key] = v.Duration().String()
	default:
		fields[prefix+a.Key] = v.Any()
	}
}
