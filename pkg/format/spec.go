package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/mattn/go-runewidth"
)

// Spec is a parsed format directive of the form
// [[fill]align][sign][0][width][.precision][type].
type Spec struct {
	Fill      rune
	Align     byte // '<', '>', '^', '=' or 0 for the type's default
	Sign      byte // '+', '-', ' ' or 0
	Zero      bool
	Width     int
	Precision int // -1 when absent
	Type      byte
}

const specTypes = "sdfFeEgGxXob%"

// ParseSpec parses a format directive such as ">10.3f".
func ParseSpec(s string) (*Spec, error) {
	sp := &Spec{Fill: ' ', Precision: -1}
	rest := s

	if rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if len(rest) > size && isAlign(rest[size]) {
			sp.Fill, sp.Align = r, rest[size]
			rest = rest[size+1:]
		} else if isAlign(rest[0]) {
			sp.Align = rest[0]
			rest = rest[1:]
		}
	}
	if rest != "" && strings.IndexByte("+- ", rest[0]) >= 0 {
		sp.Sign = rest[0]
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '0' {
		sp.Zero = true
		rest = rest[1:]
	}
	digits := leadingDigits(rest)
	if digits != "" {
		sp.Width, _ = strconv.Atoi(digits)
		rest = rest[len(digits):]
	}
	if rest != "" && rest[0] == '.' {
		digits = leadingDigits(rest[1:])
		if digits == "" {
			return nil, errors.Newf(errors.ErrTemplateParse, "missing precision in format spec %q", s)
		}
		sp.Precision, _ = strconv.Atoi(digits)
		rest = rest[1+len(digits):]
	}
	if rest != "" {
		if len(rest) > 1 || strings.IndexByte(specTypes, rest[0]) < 0 {
			return nil, errors.Newf(errors.ErrTemplateParse, "invalid format spec %q", s)
		}
		sp.Type = rest[0]
	}
	return sp, nil
}

func isAlign(c byte) bool {
	return c == '<' || c == '>' || c == '^' || c == '='
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// Apply formats v according to the spec. Values the spec's type cannot
// express are formatted with their default representation and padded.
func (sp *Spec) Apply(v any) string {
	if sp == nil {
		return toString(v)
	}
	if f, ok := toFloat(v); ok && sp.Type != 's' {
		return sp.applyNumber(v, f)
	}
	s := toString(v)
	if sp.Precision >= 0 && utf8.RuneCountInString(s) > sp.Precision {
		s = string([]rune(s)[:sp.Precision])
	}
	return sp.pad("", s, '<')
}

func (sp *Spec) applyNumber(v any, f float64) string {
	i, isInt := toInt(v)
	var body string
	switch sp.Type {
	case 'd':
		if !isInt {
			i = int64(f)
		}
		body = strconv.FormatInt(abs(i), 10)
	case 'x', 'X', 'o', 'b':
		if !isInt {
			i = int64(f)
		}
		base := map[byte]int{'x': 16, 'X': 16, 'o': 8, 'b': 2}[sp.Type]
		body = strconv.FormatInt(abs(i), base)
		if sp.Type == 'X' {
			body = strings.ToUpper(body)
		}
	case 'f', 'F', 'e', 'E', 'g', 'G', '%':
		prec := sp.Precision
		if prec < 0 {
			prec = 6
		}
		verb := sp.Type
		x := math.Abs(f)
		if verb == '%' {
			x, verb = x*100, 'f'
		}
		if verb == 'F' {
			verb = 'f'
		}
		body = strconv.FormatFloat(x, verb, prec, 64)
		if sp.Type == '%' {
			body += "%"
		}
	default:
		switch {
		case isInt:
			body = strconv.FormatInt(abs(i), 10)
		case sp.Precision >= 0:
			body = strconv.FormatFloat(math.Abs(f), 'g', sp.Precision, 64)
		default:
			body = strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
		}
	}

	sign := ""
	switch {
	case f < 0, isInt && i < 0:
		sign = "-"
	case sp.Sign == '+':
		sign = "+"
	case sp.Sign == ' ':
		sign = " "
	}
	return sp.pad(sign, body, '>')
}

func (sp *Spec) pad(sign, body string, defaultAlign byte) string {
	align, fill := sp.Align, sp.Fill
	if align == 0 {
		align = defaultAlign
		if sp.Zero && defaultAlign == '>' {
			align, fill = '=', '0'
		}
	}
	w := runewidth.StringWidth(sign + body)
	if w >= sp.Width {
		return sign + body
	}
	gap := sp.Width - w
	fills := func(n int) string { return strings.Repeat(string(fill), n) }
	switch align {
	case '<':
		return sign + body + fills(gap)
	case '^':
		return fills(gap/2) + sign + body + fills(gap-gap/2)
	case '=':
		return sign + fills(gap) + body
	default:
		return fills(gap) + sign + body
	}
}

func abs(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
