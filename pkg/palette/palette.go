// Package palette renders abstract color and effect names into escape
// sequences valid for a capability tier.
//
// All escape-sequence knowledge lives here. A name the tier cannot
// express maps to the nearest color it can, or to an empty string.
package palette

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/muesli/termenv"
)

var basicNames = []string{"black", "red", "green", "yellow", "blue", "purple", "cyan", "white"}

var effectSeqs = map[string]string{
	"bold":      termenv.BoldSeq,
	"dim":       termenv.FaintSeq,
	"italic":    termenv.ItalicSeq,
	"underline": termenv.UnderlineSeq,
	"blink":     termenv.BlinkSeq,
	"reverse":   termenv.ReverseSeq,
	"hide":      "8",
	"strike":    termenv.CrossOutSeq,
	"overline":  termenv.OverlineSeq,
	"end":       termenv.ResetSeq,
}

// Palette holds the foreground, background and effect tables for a tier.
type Palette struct {
	Tier terminal.Tier
	FG   map[string]string
	BG   map[string]string
	FX   map[string]string

	profile termenv.Profile
	colors  bool
}

// ProfileFor maps a tier to the termenv profile used to render it.
func ProfileFor(tier terminal.Tier) termenv.Profile {
	switch tier {
	case terminal.TierTrueColor:
		return termenv.TrueColor
	case terminal.TierExtended:
		return termenv.ANSI256
	case terminal.TierBasic:
		return termenv.ANSI
	default:
		return termenv.Ascii
	}
}

// Render builds the code tables for tier.
func Render(tier terminal.Tier) *Palette {
	p := &Palette{
		Tier:    tier,
		FG:      make(map[string]string, 280),
		BG:      make(map[string]string, 280),
		FX:      make(map[string]string, len(effectSeqs)),
		profile: ProfileFor(tier),
		colors:  tier >= terminal.TierBasic,
	}

	for i, name := range basicNames {
		p.FG[name] = p.color(termenv.ANSIColor(i), false)
		p.BG[name] = p.color(termenv.ANSIColor(i), true)
		p.FG["light"+name] = p.color(termenv.ANSIColor(i+8), false)
		p.BG["light"+name] = p.color(termenv.ANSIColor(i+8), true)
	}
	p.FG["magenta"], p.BG["magenta"] = p.FG["purple"], p.BG["purple"]
	p.FG["lightmagenta"], p.BG["lightmagenta"] = p.FG["lightpurple"], p.BG["lightpurple"]
	p.FG["default"], p.BG["default"] = p.seq("39", p.colors), p.seq("49", p.colors)

	for i := 0; i < 256; i++ {
		key := fmt.Sprintf("i%d", i)
		p.FG[key] = p.color(termenv.ANSI256Color(i), false)
		p.BG[key] = p.color(termenv.ANSI256Color(i), true)
	}

	effects := tier >= terminal.TierMonochrome
	for name, seq := range effectSeqs {
		p.FX[name] = p.seq(seq, effects)
	}
	return p
}

func (p *Palette) seq(code string, enabled bool) string {
	if !enabled || code == "" {
		return ""
	}
	return termenv.CSI + code + "m"
}

func (p *Palette) color(c termenv.Color, bg bool) string {
	if !p.colors {
		return ""
	}
	converted := p.profile.Convert(c)
	if converted == nil {
		return ""
	}
	return p.seq(converted.Sequence(bg), true)
}

// End returns the reset sequence, empty at TierNone.
func (p *Palette) End() string {
	return p.FX["end"]
}

// Fg returns the foreground code for name. Hex colors (#rrggbb) are
// converted on the fly.
func (p *Palette) Fg(name string) (string, bool) {
	return p.lookup(p.FG, name, false)
}

// Bg returns the background code for name.
func (p *Palette) Bg(name string) (string, bool) {
	return p.lookup(p.BG, name, true)
}

// Fx returns the effect code for name.
func (p *Palette) Fx(name string) (string, bool) {
	code, ok := p.FX[name]
	return code, ok
}

func (p *Palette) lookup(table map[string]string, name string, bg bool) (string, bool) {
	if code, ok := table[name]; ok {
		return code, true
	}
	if strings.HasPrefix(name, "#") && (len(name) == 7 || len(name) == 4) {
		if !p.colors {
			return "", true
		}
		return p.color(termenv.RGBColor(expandHex(name)), bg), true
	}
	return "", false
}

func expandHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}

// Compose resolves a style expression such as "fg.red+fx.bold" or
// "fg.black+bg.i14" into one code string. A bare name is tried as a
// foreground color and then as an effect.
func (p *Palette) Compose(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", nil
	}
	var b strings.Builder
	for _, part := range strings.Split(expr, "+") {
		part = strings.TrimSpace(part)
		table, name, found := strings.Cut(part, ".")
		if !found {
			table, name = "", part
		}

		var (
			code string
			ok   bool
		)
		switch table {
		case "fg":
			code, ok = p.Fg(name)
		case "bg":
			code, ok = p.Bg(name)
		case "fx":
			code, ok = p.Fx(name)
		case "":
			if code, ok = p.Fg(name); !ok {
				code, ok = p.Fx(name)
			}
		}
		if !ok {
			return "", errors.Newf(errors.ErrInvalidValue, "unknown palette entry %q in %q", part, expr)
		}
		b.WriteString(code)
	}
	return b.String(), nil
}
