package render

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/record"
)

// ExceptMarker is appended to messages logged with Except.
const ExceptMarker = " ▾"

// Logger creates records and hands them to a Renderer. It stands in for
// a host logging framework; see package bridge for adapters to others.
type Logger struct {
	r      *Renderer
	name   string
	fields map[string]any
}

// Logger returns a logger with the given name, DefaultName if empty.
func (r *Renderer) Logger(name string) *Logger {
	if name == "" {
		name = DefaultName
	}
	return &Logger{r: r, name: name}
}

// Name returns the logger name.
func (l *Logger) Name() string { return l.name }

// Named returns a child logger whose name is l's name joined with
// child by a dot.
func (l *Logger) Named(child string) *Logger {
	return &Logger{r: l.r, name: l.name + "." + child, fields: l.fields}
}

// With returns a logger whose records carry key as a named argument for
// brace-style messages.
func (l *Logger) With(key string, value any) *Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{r: l.r, name: l.name, fields: fields}
}

// Enabled reports whether records at lvl would be emitted.
func (l *Logger) Enabled(lvl level.Level) bool { return l.r.Enabled(lvl) }

// log is called directly by every public logging method so the caller
// is always two frames up.
func (l *Logger) log(lvl level.Level, err error, msg string, args []any) {
	if !l.r.Enabled(lvl) {
		return
	}
	rec := record.New(l.name, lvl, l.r.levels.Name(lvl), msg, args...).WithCaller(2)
	rec.KWArgs = l.fields
	rec.Err = err
	_ = l.r.Emit(rec)
}

// Log emits a record at lvl.
func (l *Logger) Log(lvl level.Level, msg string, args ...any) { l.log(lvl, nil, msg, args) }

// Print emits a record at the renderer's default level.
func (l *Logger) Print(msg string, args ...any) { l.log(l.r.DefaultLevel(), nil, msg, args) }

func (l *Logger) Trace(msg string, args ...any) { l.log(level.Trace, nil, msg, args) }
func (l *Logger) Debug(msg string, args ...any) { l.log(level.Debug, nil, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(level.Info, nil, msg, args) }
func (l *Logger) Note(msg string, args ...any)  { l.log(level.Note, nil, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(level.Warning, nil, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(level.Error, nil, msg, args) }

// Fatal emits a record at FATAL. It does not exit.
func (l *Logger) Fatal(msg string, args ...any) { l.log(level.Fatal, nil, msg, args) }

// Except emits err at EXCEPT with a marker pointing at the error text
// that follows the message.
func (l *Logger) Except(err error, msg string, args ...any) {
	l.log(level.Except, err, strings.TrimLeft(msg, " ")+ExceptMarker, args)
}

// LogConfig emits the current configuration as DEBUG records.
func (l *Logger) LogConfig() {
	snap := l.r.Snapshot()
	debug := func(msg string, args ...any) { l.log(level.Debug, nil, msg, args) }
	debug("lumen logging config")
	debug("  .name: %s", l.name)
	debug("  .level: %s (%d)", snap.Level, int(l.r.Level()))
	debug("  .default_level: %s (%d)", snap.DefaultLevel, int(l.r.DefaultLevel()))
	debug("  + Handler: %s", snap.Destination)
	debug("    .tier: %s, interactive: %t", snap.Tier, snap.Interactive)
	debug("    + Formatter: %s (theme %s)", snap.Formatter, snap.Theme)
	debug("      .datefmt: %q", snap.DateFormat)
	debug("      .msgfmt: %q", snap.MsgFormat)
	debug("      .syntax: %s", snap.Syntax)
	debug("      theme.style: %s", snap.Style)
	debug("      theme.icons: %s", snap.Icons)
	debug("      highlighting: %t, language: %s, active: %t", snap.Highlight, snap.Language, snap.HighlightActive)
}
