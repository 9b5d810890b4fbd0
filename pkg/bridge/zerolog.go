package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/record"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/rs/zerolog"
)

// DefaultNameField is the zerolog field used as the logger name.
const DefaultNameField = "component"

// ZerologWriter renders zerolog JSON events through a Renderer. Use it
// as the output of a zerolog.Logger, or feed it captured log lines.
type ZerologWriter struct {
	r         *render.Renderer
	name      string
	nameField string
}

// NewZerologWriter returns a writer whose records are named name unless
// an event carries a component field.
func NewZerologWriter(r *render.Renderer, name string) *ZerologWriter {
	return &ZerologWriter{r: r, name: name, nameField: DefaultNameField}
}

// WithNameField changes which event field names the logger.
func (w *ZerologWriter) WithNameField(field string) *ZerologWriter {
	c := *w
	c.nameField = field
	return &c
}

// Write renders every line in p. Lines that are not JSON objects are
// rendered verbatim at the renderer's default level.
func (w *ZerologWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := w.r.Emit(w.Record(line)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter.
func (w *ZerologWriter) WriteLevel(_ zerolog.Level, p []byte) (int, error) {
	return w.Write(p)
}

// Record converts one zerolog event into a record.
func (w *ZerologWriter) Record(line []byte) *record.Record {
	levels := w.r.Levels()

	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		lvl := w.r.DefaultLevel()
		return record.New(w.name, lvl, levels.Name(lvl), string(line))
	}

	lvl := level.Info
	if s, ok := takeString(fields, zerolog.LevelFieldName); ok {
		lvl = fromZerolog(s)
	}
	msg, _ := takeString(fields, zerolog.MessageFieldName)

	rec := record.New(w.name, lvl, levels.Name(lvl), "")
	if name, ok := takeString(fields, w.nameField); ok && name != "" {
		rec.Name = name
	}
	if ts, ok := fields[zerolog.TimestampFieldName]; ok {
		if t, ok := parseTime(ts); ok {
			rec.Created = t
			delete(fields, zerolog.TimestampFieldName)
		}
	}
	if caller, ok := takeString(fields, zerolog.CallerFieldName); ok {
		rec.Pathname, rec.Lineno = splitCaller(caller)
	}
	if e, ok := takeString(fields, zerolog.ErrorFieldName); ok {
		rec.Err = errors.New(e)
	}
	if stack, ok := fields[zerolog.ErrorStackFieldName]; ok {
		delete(fields, zerolog.ErrorStackFieldName)
		if s, ok := stack.(string); ok {
			rec.Stack = s
		} else {
			b, _ := json.MarshalIndent(stack, "", "  ")
			rec.Stack = string(b)
		}
	}
	rec.Msg = appendFields(msg, fields)
	return rec
}

func takeString(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if ok {
		delete(fields, key)
	}
	return s, ok
}

func fromZerolog(s string) level.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return level.Info
	}
	switch l {
	case zerolog.TraceLevel:
		return level.Trace
	case zerolog.DebugLevel:
		return level.Debug
	case zerolog.WarnLevel:
		return level.Warning
	case zerolog.ErrorLevel:
		return level.Error
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return level.Critical
	default:
		return level.Info
	}
}

func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		for _, layout := range []string{zerolog.TimeFieldFormat, time.RFC3339Nano, time.RFC3339} {
			if layout == "" {
				continue
			}
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			switch zerolog.TimeFieldFormat {
			case zerolog.TimeFormatUnixMs:
				return time.UnixMilli(n), true
			case zerolog.TimeFormatUnixMicro:
				return time.UnixMicro(n), true
			case zerolog.TimeFormatUnixNano:
				return time.Unix(0, n), true
			default:
				return time.Unix(n, 0), true
			}
		}
		if f, err := x.Float64(); err == nil {
			sec := int64(f)
			return time.Unix(sec, int64((f-float64(sec))*1e9)), true
		}
	}
	return time.Time{}, false
}

func splitCaller(caller string) (string, int) {
	i := strings.LastIndex(caller, ":")
	if i < 0 {
		return caller, 0
	}
	line, err := strconv.Atoi(caller[i+1:])
	if err != nil {
		return caller, 0
	}
	return caller[:i], line
}
