package format

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
)

// segment is either literal text or a replacement field.
type segment struct {
	literal string
	field   bool
	name    string // empty for an auto-numbered field
	conv    byte   // 0, 'r' or 's'
	spec    *Spec
}

// parseBrace splits a brace template into segments. "{{" and "}}" are
// literal braces.
func parseBrace(s string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, errors.Newf(errors.ErrTemplateParse, "unclosed '{' at offset %d", i)
			}
			seg, err := parseField(s[i+1 : i+1+end])
			if err != nil {
				return nil, err
			}
			flush()
			segs = append(segs, seg)
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, errors.Newf(errors.ErrTemplateParse, "single '}' at offset %d", i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return segs, nil
}

func parseField(body string) (segment, error) {
	seg := segment{field: true}
	name, spec, hasSpec := strings.Cut(body, ":")
	if n, conv, ok := strings.Cut(name, "!"); ok {
		if conv != "r" && conv != "s" {
			return seg, errors.Newf(errors.ErrTemplateParse, "unknown conversion %q in {%s}", conv, body)
		}
		seg.conv = conv[0]
		name = n
	}
	if strings.ContainsAny(name, "{") {
		return seg, errors.Newf(errors.ErrTemplateParse, "nested '{' in {%s}", body)
	}
	seg.name = strings.TrimSpace(name)
	if hasSpec {
		sp, err := ParseSpec(spec)
		if err != nil {
			return seg, err
		}
		seg.spec = sp
	}
	return seg, nil
}
