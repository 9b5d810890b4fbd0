package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/highlight"
	"github.com/arthur-debert/lumen/pkg/record"
)

// JSONName identifies the JSON formatter to observers.
const JSONName = "json"

// DefaultFields is the field list used when none is configured.
const DefaultFields = "asctime,msecs,levelname,name,funcName,lineno,message"

// JSONConfig configures a JSON formatter.
type JSONConfig struct {
	// Fields is a comma-separated, ordered list of record fields.
	Fields     string
	DateFormat string
	// Highlighter recolors the serialized object; nil disables it.
	Highlighter *highlight.Highlighter
	Syntax      Syntax
	Exception   ExceptionFunc
	Observer    Observer
}

// JSON renders records as one compact JSON object per line.
type JSON struct {
	fields     []string
	mergeMsecs bool
	dateFormat string
	hl         *highlight.Highlighter
	syntax     Syntax
	exception  ExceptionFunc
	observer   Observer
}

// ParseFields splits a comma-separated field list, rejecting unknown
// names, blanks and duplicates.
func ParseFields(list string) ([]string, error) {
	if list == "" {
		list = DefaultFields
	}
	parts := strings.Split(list, ",")
	seen := make(map[string]bool, len(parts))
	for _, name := range parts {
		switch {
		case name == "" || strings.ContainsAny(name, " \t"):
			return nil, errors.Newf(errors.ErrTemplateParse, "invalid field %q in field list %q", name, list)
		case !IsField(name):
			return nil, errors.Newf(errors.ErrTemplateParse, "unknown field %q in field list %q", name, list).
				WithDetail("field", name)
		case seen[name]:
			return nil, errors.Newf(errors.ErrTemplateParse, "duplicate field %q in field list %q", name, list)
		}
		seen[name] = true
	}
	return parts, nil
}

// NewJSON parses the field list and returns the formatter.
func NewJSON(cfg JSONConfig) (*JSON, error) {
	fields, err := ParseFields(cfg.Fields)
	if err != nil {
		return nil, err
	}
	f := &JSON{
		dateFormat: firstNonEmpty(cfg.DateFormat, DefaultDateFormat),
		hl:         cfg.Highlighter,
		syntax:     cfg.Syntax,
		exception:  cfg.Exception,
		observer:   cfg.Observer,
	}
	hasAsctime, hasMsecs := false, false
	for _, name := range fields {
		hasAsctime = hasAsctime || name == FieldAsctime
		hasMsecs = hasMsecs || name == FieldMsecs
	}
	f.mergeMsecs = hasAsctime && hasMsecs
	for _, name := range fields {
		if f.mergeMsecs && name == FieldMsecs {
			continue
		}
		f.fields = append(f.fields, name)
	}
	return f, nil
}

// Fields returns the output keys in order.
func (f *JSON) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// Highlighting reports whether the output is recolored.
func (f *JSON) Highlighting() bool { return f.hl.Active() }

// Format renders r as one JSON object.
func (f *JSON) Format(r *record.Record) string {
	message, err := Message(r.Msg, r.Args, r.KWArgs, f.syntax)
	if err != nil && f.observer != nil {
		f.observer.Fallback(JSONName, err)
	}
	v := newView(r, message, f.dateFormat)
	if f.mergeMsecs {
		v.asctime = fmt.Sprintf("%s.%03d", v.asctime, int(r.Msecs()))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONValue(&buf, name)
		buf.WriteByte(':')
		writeJSONValue(&buf, v.value(name))
	}
	buf.WriteByte('}')

	s := buf.String()
	if f.hl.Active() {
		s = strings.TrimRight(f.hl.Highlight(s), " \t\r\n")
	}
	s = appendException(s, r, f.exception)
	if f.observer != nil {
		f.observer.Rendered(JSONName, v.levelName)
	}
	return s
}

func writeJSONValue(buf *bytes.Buffer, v any) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Reset()
		_ = enc.Encode(fmt.Sprint(v))
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}
