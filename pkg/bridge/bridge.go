// Package bridge feeds records from other logging libraries into a
// render.Renderer: zerolog through an io.Writer, log/slog through a
// slog.Handler.
//
// Structured fields that have no place in a record are appended to the
// message as one compact JSON object, which the JSON highlighter picks
// up when enabled.
package bridge

import (
	"bytes"
	"encoding/json"
	"sort"
)

// appendFields returns msg followed by fields as compact JSON. Keys are
// sorted.
func appendFields(msg string, fields map[string]any) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCompact(&buf, k)
		buf.WriteByte(':')
		writeCompact(&buf, fields[k])
	}
	buf.WriteByte('}')

	if msg == "" {
		return buf.String()
	}
	return msg + " " + buf.String()
}

func writeCompact(buf *bytes.Buffer, v any) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Reset()
		_ = enc.Encode(err.Error())
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}
