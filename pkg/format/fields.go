package format

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/record"
)

// Record fields understood by templates and JSON field lists.
const (
	FieldName            = "name"
	FieldLevelNo         = "levelno"
	FieldLevelName       = "levelname"
	FieldPathname        = "pathname"
	FieldFilename        = "filename"
	FieldModule          = "module"
	FieldLineno          = "lineno"
	FieldFuncName        = "funcName"
	FieldCreated         = "created"
	FieldAsctime         = "asctime"
	FieldMsecs           = "msecs"
	FieldRelativeCreated = "relativeCreated"
	FieldThread          = "thread"
	FieldThreadName      = "threadName"
	FieldProcess         = "process"
	FieldMessage         = "message"

	// Derived per-record display fields.
	FieldOn   = "on"
	FieldOff  = "off"
	FieldIcon = "icon"
)

var knownFields = map[string]bool{
	FieldName: true, FieldLevelNo: true, FieldLevelName: true,
	FieldPathname: true, FieldFilename: true, FieldModule: true,
	FieldLineno: true, FieldFuncName: true, FieldCreated: true,
	FieldAsctime: true, FieldMsecs: true, FieldRelativeCreated: true,
	FieldThread: true, FieldThreadName: true, FieldProcess: true,
	FieldMessage: true, FieldOn: true, FieldOff: true, FieldIcon: true,
}

// Fields returns every field name a template may reference.
func Fields() []string {
	return []string{
		FieldName, FieldLevelNo, FieldLevelName, FieldPathname, FieldFilename,
		FieldModule, FieldLineno, FieldFuncName, FieldCreated, FieldAsctime,
		FieldMsecs, FieldRelativeCreated, FieldThread, FieldThreadName,
		FieldProcess, FieldMessage, FieldOn, FieldOff, FieldIcon,
	}
}

// IsField reports whether name is a known template field.
func IsField(name string) bool { return knownFields[name] }

// view is the per-call set of computed values a record is rendered with.
// Records themselves are never modified.
type view struct {
	r         *record.Record
	levelName string
	message   string
	asctime   string
	on        string
	off       string
	icon      string
}

func newView(r *record.Record, message, dateFormat string) *view {
	return &view{
		r:         r,
		levelName: level.DisplayName(r.LevelName),
		message:   message,
		asctime:   r.Created.Format(dateFormat),
	}
}

func (v *view) funcName() string {
	if v.r.FuncName == record.TopLevelFunc || strings.HasPrefix(v.r.FuncName, record.TopLevelFunc+".") {
		return ""
	}
	return v.r.FuncName
}

func (v *view) value(field string) any {
	r := v.r
	switch field {
	case FieldName:
		return r.Name
	case FieldLevelNo:
		return int(r.Level)
	case FieldLevelName:
		return v.levelName
	case FieldPathname:
		return r.Pathname
	case FieldFilename:
		return r.Filename()
	case FieldModule:
		return r.Module()
	case FieldLineno:
		return r.Lineno
	case FieldFuncName:
		return v.funcName()
	case FieldCreated:
		return r.CreatedSeconds()
	case FieldAsctime:
		return v.asctime
	case FieldMsecs:
		return r.Msecs()
	case FieldRelativeCreated:
		return r.RelativeCreated()
	case FieldThread:
		return r.Thread
	case FieldThreadName:
		return r.ThreadName
	case FieldProcess:
		return r.Process
	case FieldMessage:
		return v.message
	case FieldOn:
		return v.on
	case FieldOff:
		return v.off
	case FieldIcon:
		return v.icon
	}
	return nil
}
