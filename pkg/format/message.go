package format

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
)

// Syntax selects how a message template is combined with its arguments.
type Syntax int

const (
	// SyntaxAuto tries printf substitution first and brace substitution
	// second.
	SyntaxAuto Syntax = iota
	SyntaxPrintf
	SyntaxBrace
)

func (s Syntax) String() string {
	switch s {
	case SyntaxPrintf:
		return "printf"
	case SyntaxBrace:
		return "brace"
	default:
		return "auto"
	}
}

// ParseSyntax parses "auto", "printf" or "brace".
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SyntaxAuto, nil
	case "printf", "%":
		return SyntaxPrintf, nil
	case "brace", "{":
		return SyntaxBrace, nil
	}
	return SyntaxAuto, errors.Newf(errors.ErrInvalidValue, "unknown message syntax %q", s)
}

// Message substitutes args into msg. It always returns text: when no
// syntax fits, the raw template followed by the quoted arguments is
// returned along with a FORMAT_MISMATCH error. A message with no
// positional arguments passes through unchanged unless it names one of
// kwargs.
func Message(msg string, args []any, kwargs map[string]any, syntax Syntax) (string, error) {
	if len(args) == 0 && (len(kwargs) == 0 || syntax == SyntaxPrintf || !namesField(msg)) {
		return msg, nil
	}

	var attempts []func() (string, error)
	switch syntax {
	case SyntaxPrintf:
		attempts = append(attempts, func() (string, error) { return printfMessage(msg, args) })
	case SyntaxBrace:
		attempts = append(attempts, func() (string, error) { return braceMessage(msg, args, kwargs, false) })
	default:
		if len(args) > 0 {
			attempts = append(attempts, func() (string, error) { return printfMessage(msg, args) })
		}
		attempts = append(attempts, func() (string, error) { return braceMessage(msg, args, kwargs, true) })
	}

	var last error
	for _, attempt := range attempts {
		out, err := attempt()
		if err == nil {
			return out, nil
		}
		last = err
	}
	return msg + " " + reprArgs(args, kwargs),
		errors.Wrapf(last, errors.ErrFormatMismatch, "arguments do not fit message %q", msg)
}

// namesField reports whether msg is a brace template with at least one
// named field.
func namesField(msg string) bool {
	segs, err := parseBrace(msg)
	if err != nil {
		return false
	}
	for _, seg := range segs {
		if seg.field && seg.name != "" && !isIndex(seg.name) {
			return true
		}
	}
	return false
}

// fmtMarker matches the markers fmt writes for bad verbs, missing and
// extra arguments: "%!d(string=x)", "%!s(MISSING)", "%!(EXTRA int=1)".
var fmtMarker = regexp.MustCompile(`%!.?\(`)

// printfMessage fails when fmt marked the output, ignoring markers that
// the template or the arguments themselves contain.
func printfMessage(msg string, args []any) (string, error) {
	out := fmt.Sprintf(msg, args...)
	supplied := len(fmtMarker.FindAllStringIndex(msg, -1))
	for _, a := range args {
		supplied += len(fmtMarker.FindAllStringIndex(fmt.Sprint(a), -1))
	}
	if len(fmtMarker.FindAllStringIndex(out, -1)) > supplied {
		return "", errors.Newf(errors.ErrFormatMismatch, "printf substitution failed: %s", out)
	}
	return out, nil
}

// braceMessage substitutes a brace template. With strict set, positional
// arguments that no field consumes are an error.
func braceMessage(msg string, args []any, kwargs map[string]any, strict bool) (string, error) {
	segs, err := parseBrace(msg)
	if err != nil {
		return "", err
	}
	var (
		b        strings.Builder
		next     int
		auto     bool
		manual   bool
		consumed bool
	)
	for _, seg := range segs {
		if !seg.field {
			b.WriteString(seg.literal)
			continue
		}
		var val any
		switch {
		case seg.name == "":
			if manual {
				return "", errors.New(errors.ErrFormatMismatch, "cannot mix automatic and manual field numbering")
			}
			auto = true
			if next >= len(args) {
				return "", errors.Newf(errors.ErrFormatMismatch, "missing argument %d", next)
			}
			val = args[next]
			next++
			consumed = true
		case isIndex(seg.name):
			if auto {
				return "", errors.New(errors.ErrFormatMismatch, "cannot mix automatic and manual field numbering")
			}
			manual = true
			i, _ := strconv.Atoi(seg.name)
			if i >= len(args) {
				return "", errors.Newf(errors.ErrFormatMismatch, "missing argument %d", i)
			}
			val = args[i]
			consumed = true
		default:
			v, ok := kwargs[seg.name]
			if !ok {
				return "", errors.Newf(errors.ErrFormatMismatch, "missing named argument %q", seg.name)
			}
			val = v
		}
		b.WriteString(convert(val, seg))
	}
	if strict && len(args) > 0 && !consumed {
		return "", errors.Newf(errors.ErrFormatMismatch, "no field consumes the %d arguments", len(args))
	}
	return b.String(), nil
}

func isIndex(s string) bool {
	return s != "" && leadingDigits(s) == s
}

func repr(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case nil:
		return "nil"
	case error:
		return fmt.Sprintf("%T(%q)", x, x.Error())
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func reprArgs(args []any, kwargs map[string]any) string {
	parts := make([]string, 0, len(args)+len(kwargs))
	for _, a := range args {
		parts = append(parts, repr(a))
	}
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+repr(kwargs[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
