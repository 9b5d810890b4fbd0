//go:build !nohighlight

package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/terminal"
)

// genericLexer backs the "generic" language.
const genericLexer = "go"

// Style is the chroma style used for every tier.
var Style = chroma.MustNewStyle("lumen", chroma.StyleEntries{
	chroma.Comment:         "italic #888888",
	chroma.Keyword:         "bold #44aacc",
	chroma.KeywordConstant: "nobold #33aaaa",
	chroma.LiteralNumber:   "#00aa00",
	chroma.NameTag:         "#44aacc",
	chroma.NameAttribute:   "#44aacc",
	chroma.Operator:        "nobold #bb9944",
	chroma.OperatorWord:    "bold #44aacc",
	chroma.Punctuation:     "nobold #bb9944",
	chroma.LiteralString:   "#ff55ff",
	chroma.GenericStrong:   "bold",
	chroma.GenericError:    "#ff5555",
})

// Available reports whether highlighting is compiled in.
func Available() bool { return true }

type chromaBackend struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
}

// Lexer resolves a language name to a chroma lexer.
func Lexer(lang string) (chroma.Lexer, error) {
	name := strings.ToLower(strings.TrimSpace(lang))
	if name == Generic {
		name = genericLexer
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		return nil, errors.Newf(errors.ErrUnsupportedLanguage, "no lexer for language %q", lang).
			WithDetail("language", lang)
	}
	return chroma.Coalesce(lexer), nil
}

func formatterFor(tier terminal.Tier) chroma.Formatter {
	switch {
	case tier >= terminal.TierExtended:
		return formatters.TTY256
	case tier == terminal.TierBasic:
		return formatters.TTY16
	default:
		return nil
	}
}

func newBackend(lang string, tier terminal.Tier) (backend, error) {
	lexer, err := Lexer(lang)
	if err != nil {
		return nil, err
	}
	f := formatterFor(tier)
	if f == nil {
		return nil, nil
	}
	return &chromaBackend{lexer: lexer, formatter: f}, nil
}

func (c *chromaBackend) render(text string) (string, error) {
	it, err := c.lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := c.formatter.Format(&b, Style, it); err != nil {
		return "", err
	}
	out := b.String()
	if !strings.HasSuffix(text, "\n") {
		out = trimAddedNewline(out)
	}
	return out, nil
}

// trimAddedNewline drops the line feed some lexers append to their
// input, keeping any reset code that followed it.
func trimAddedNewline(s string) string {
	const reset = "\x1b[0m"
	if strings.HasSuffix(s, "\n"+reset) {
		return strings.TrimSuffix(s, "\n"+reset) + reset
	}
	return strings.TrimSuffix(s, "\n")
}
