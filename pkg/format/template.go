package format

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
)

// Template is a compiled record template such as
// "{asctime} {levelname:<7} {message}".
type Template struct {
	src      string
	segs     []segment
	usesTime bool
}

// CompileTemplate parses src once. Unknown or positional fields are
// rejected.
func CompileTemplate(src string) (*Template, error) {
	segs, err := parseBrace(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateParse, "invalid template %q", src)
	}
	t := &Template{src: src, segs: segs}
	for _, seg := range segs {
		if !seg.field {
			continue
		}
		if !IsField(seg.name) {
			return nil, errors.Newf(errors.ErrTemplateParse, "unknown field {%s} in template %q", seg.name, src).
				WithDetail("field", seg.name)
		}
		if seg.name == FieldAsctime {
			t.usesTime = true
		}
	}
	return t, nil
}

// MustCompileTemplate is CompileTemplate that panics on error.
func MustCompileTemplate(src string) *Template {
	t, err := CompileTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source.
func (t *Template) String() string { return t.src }

// UsesTime reports whether the template references asctime.
func (t *Template) UsesTime() bool { return t.usesTime }

func (t *Template) execute(v *view) string {
	var b strings.Builder
	for _, seg := range t.segs {
		if !seg.field {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(convert(v.value(seg.name), seg))
	}
	return b.String()
}

func convert(val any, seg segment) string {
	switch seg.conv {
	case 'r':
		val = repr(val)
	case 's':
		val = toString(val)
	}
	return seg.spec.Apply(val)
}
