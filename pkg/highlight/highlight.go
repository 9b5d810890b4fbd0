// Package highlight recolors embedded data fragments (JSON, XML, code)
// for terminal display.
//
// A nil *Highlighter is valid and passes text through unchanged, as does
// one built for a tier that cannot show color. Builds with the
// nohighlight tag have no lexers at all; Available reports which build
// is running.
package highlight

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/terminal"
)

// Well-known language names. Any lexer name known to the highlighting
// backend is accepted as well.
const (
	JSON    = "json"
	XML     = "xml"
	Generic = "generic"
)

// DefaultWindow is how many leading runes of a message are scanned for
// the start of embedded data.
const DefaultWindow = 80

// DefaultIndent is the indentation applied to pretty-printed data that
// starts on its own line.
const DefaultIndent = 12

const (
	jsonTriggers    = "{['"
	xmlTriggers     = "<'"
	genericTriggers = "{[(:;"
)

// Triggers returns the characters that mark the start of embedded data
// for a language.
func Triggers(lang string) string {
	switch strings.ToLower(lang) {
	case JSON:
		return jsonTriggers
	case XML:
		return xmlTriggers
	default:
		return genericTriggers
	}
}

type backend interface {
	render(text string) (string, error)
}

// Highlighter recolors fragments of one language for one tier.
type Highlighter struct {
	lang     string
	triggers string
	backend  backend
}

// New builds a Highlighter for lang at tier. It fails with
// UNSUPPORTED_LANGUAGE when no lexer matches lang and with
// FEATURE_UNAVAILABLE when highlighting is compiled out.
func New(lang string, tier terminal.Tier) (*Highlighter, error) {
	b, err := newBackend(lang, tier)
	if err != nil {
		return nil, err
	}
	logger := logging.GetLogger("highlight")
	logger.Debug().
		Str("language", lang).
		Str("tier", tier.String()).
		Bool("active", b != nil).
		Msg("highlighter built")
	return &Highlighter{lang: lang, triggers: Triggers(lang), backend: b}, nil
}

// Language returns the configured language name.
func (h *Highlighter) Language() string {
	if h == nil {
		return ""
	}
	return h.lang
}

// Active reports whether Highlight emits any escape codes.
func (h *Highlighter) Active() bool {
	return h != nil && h.backend != nil
}

// Highlight returns text recolored, or text unchanged when inactive or
// when the backend fails on it.
func (h *Highlighter) Highlight(text string) string {
	if !h.Active() || text == "" {
		return text
	}
	out, err := h.backend.render(text)
	if err != nil {
		logger := logging.GetLogger("highlight")
		logger.Trace().Err(err).Msg("highlight failed, passing through")
		return text
	}
	return out
}

// Find returns the byte offset of the first trigger character within the
// first window runes of text, or -1.
func (h *Highlighter) Find(text string, window int) int {
	if h == nil {
		return -1
	}
	return Find(text, h.triggers, window)
}

// Find returns the byte offset of the first rune of text that appears
// in triggers, looking at no more than window runes. A window of zero
// or less scans everything.
func Find(text, triggers string, window int) int {
	n := 0
	for i, r := range text {
		if window > 0 && n >= window {
			break
		}
		if strings.ContainsRune(triggers, r) {
			return i
		}
		n++
	}
	return -1
}

// IndentBlock prefixes every line of text with n spaces and terminates
// the block with a newline.
func IndentBlock(text string, n int) string {
	pad := strings.Repeat(" ", n)
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(pad)
		b.WriteString(line)
	}
	b.WriteString("\n")
	return b.String()
}
