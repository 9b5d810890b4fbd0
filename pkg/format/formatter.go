// Package format renders log records into single output lines, either
// styled text driven by a theme template or compact JSON objects.
//
// Formatters are immutable once built and safe for concurrent use.
// Formatting never fails: a message whose arguments do not fit is
// emitted with its raw template and quoted arguments, and any cached
// exception or stack text is appended after the line.
package format

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/record"
)

// DefaultDateFormat is used when a theme or option gives no date layout.
const DefaultDateFormat = "2006-01-02 15:04:05"

// Formatter turns a record into one line without a trailing terminator.
type Formatter interface {
	Format(r *record.Record) string
}

// Observer is told about formatting events, typically to count them.
type Observer interface {
	Rendered(formatter, levelName string)
	Fallback(formatter string, err error)
}

// ExceptionFunc converts a record's error into text.
type ExceptionFunc func(error) string

// appendException adds exception then stack text, each separated from
// what precedes it by exactly one line break.
func appendException(s string, r *record.Record, convert ExceptionFunc) string {
	if !r.HasException() {
		return s
	}
	if text := r.ExceptionText(convert); text != "" {
		s = joinLine(s, text)
	}
	if r.Stack != "" {
		s = joinLine(s, r.Stack)
	}
	return s
}

func joinLine(s, text string) string {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s + text
}
