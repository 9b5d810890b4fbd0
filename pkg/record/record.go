// Package record defines the log record consumed by lumen's formatters.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/lumen/pkg/level"
)

// TopLevelFunc is the function name Go reports for package-level
// initialisation, the equivalent of module top level.
const TopLevelFunc = "init"

var processStart = time.Now()
var pid = os.Getpid()

// Record is one log event. Formatters treat it as read-only; the only
// mutable part is the cached exception text, guarded by a sync.Once.
type Record struct {
	Name      string
	Level     level.Level
	LevelName string

	// Msg is the message template, Args and KWArgs its arguments.
	Msg    string
	Args   []any
	KWArgs map[string]any

	Created  time.Time
	Pathname string
	Lineno   int
	FuncName string

	Thread     int64
	ThreadName string
	Process    int

	// Err carries exception info, Stack an optional stack dump.
	Err   error
	Stack string

	excOnce sync.Once
	excText string
}

// New builds a record stamped with the current time. Source location is
// added separately with WithCaller.
func New(name string, lvl level.Level, levelName, msg string, args ...any) *Record {
	return &Record{
		Name:       name,
		Level:      lvl,
		LevelName:  levelName,
		Msg:        msg,
		Args:       args,
		Created:    time.Now(),
		ThreadName: "MainThread",
		Process:    pid,
	}
}

// WithCaller fills source location from the frame skip levels above the
// caller of WithCaller.
func (r *Record) WithCaller(skip int) *Record {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return r
	}
	r.Pathname = file
	r.Lineno = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		r.FuncName = ShortFuncName(fn.Name())
	}
	return r
}

// ShortFuncName strips the package path from a runtime function name:
// "github.com/x/y/pkg.(*T).Method" becomes "Method", "pkg.init" becomes
// "init" and "pkg.init.0" stays "init.0". A version suffix such as the
// ".v3" of "gopkg.in/yaml.v3" belongs to the package name.
func ShortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.Index(full, "."); i >= 0 {
		full = full[i+1:]
	}
	for {
		head, rest, ok := strings.Cut(full, ".")
		if !ok || !isVersion(head) {
			break
		}
		full = rest
	}
	if i := strings.LastIndex(full, ")."); i >= 0 {
		full = full[i+2:]
	}
	return full
}

// isVersion reports whether s looks like "v3".
func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Filename is the base name of Pathname.
func (r *Record) Filename() string {
	if r.Pathname == "" {
		return ""
	}
	return filepath.Base(r.Pathname)
}

// Module is Filename without its extension.
func (r *Record) Module() string {
	name := r.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CreatedSeconds is the creation time as fractional Unix seconds.
func (r *Record) CreatedSeconds() float64 {
	return float64(r.Created.UnixNano()) / 1e9
}

// Msecs is the millisecond portion of the creation time.
func (r *Record) Msecs() float64 {
	return float64(r.Created.Nanosecond()) / 1e6
}

// RelativeCreated is the creation time in milliseconds relative to
// process start.
func (r *Record) RelativeCreated() float64 {
	return float64(r.Created.Sub(processStart).Nanoseconds()) / 1e6
}

// HasException reports whether the record carries exception or stack info.
func (r *Record) HasException() bool {
	return r.Err != nil || r.Stack != ""
}

// ExceptionText converts Err with convert the first time it is called and
// returns the cached text afterwards.
func (r *Record) ExceptionText(convert func(error) string) string {
	r.excOnce.Do(func() {
		if r.Err == nil {
			return
		}
		if convert == nil {
			convert = DefaultException
		}
		r.excText = convert(r.Err)
	})
	return r.excText
}

// DefaultException renders err and its wrapped causes, one per line.
func DefaultException(err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%T: %+v", err, err)
	type unwrapper interface{ Unwrap() error }
	for u, ok := err.(unwrapper); ok; u, ok = err.(unwrapper) {
		err = u.Unwrap()
		if err == nil {
			break
		}
		fmt.Fprintf(&b, "\n  caused by %T: %v", err, err)
	}
	return b.String()
}
