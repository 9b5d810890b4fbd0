package format

import (
	"strings"

	"github.com/arthur-debert/lumen/pkg/highlight"
	"github.com/arthur-debert/lumen/pkg/record"
	"github.com/arthur-debert/lumen/pkg/theme"
)

// StyledName identifies the styled formatter to observers.
const StyledName = "styled"

// StyledConfig configures a Styled formatter. Zero values select the
// defaults.
type StyledConfig struct {
	// Theme provides styles, icons and, unless overridden, the template
	// and date format.
	Theme *theme.Theme
	// Template overrides Theme.Template.
	Template string
	// DateFormat overrides Theme.DateFormat.
	DateFormat string
	// End is the reset code used for {off}.
	End string
	// Highlighter recolors embedded data; nil disables highlighting.
	Highlighter *highlight.Highlighter
	Syntax      Syntax
	// Window bounds the scan for embedded data, in runes.
	Window int
	// Indent is applied to pretty-printed data that starts a line.
	Indent    int
	Exception ExceptionFunc
	Observer  Observer
}

// Styled renders records through a theme template.
type Styled struct {
	tmpl       *Template
	theme      *theme.Theme
	dateFormat string
	end        string
	hl         *highlight.Highlighter
	syntax     Syntax
	window     int
	indent     int
	exception  ExceptionFunc
	observer   Observer
}

// NewStyled compiles the template and returns the formatter.
func NewStyled(cfg StyledConfig) (*Styled, error) {
	th := cfg.Theme
	if th == nil {
		th = &theme.Theme{Name: "bare", Kind: theme.KindPlain, Template: "{levelname}: {message}"}
	}
	src := cfg.Template
	if src == "" {
		src = th.Template
	}
	if src == "" {
		src = "{message}"
	}
	tmpl, err := CompileTemplate(src)
	if err != nil {
		return nil, err
	}

	f := &Styled{
		tmpl:       tmpl,
		theme:      th,
		dateFormat: firstNonEmpty(cfg.DateFormat, th.DateFormat, DefaultDateFormat),
		end:        cfg.End,
		hl:         cfg.Highlighter,
		syntax:     cfg.Syntax,
		window:     cfg.Window,
		indent:     cfg.Indent,
		exception:  cfg.Exception,
		observer:   cfg.Observer,
	}
	if f.window <= 0 {
		f.window = highlight.DefaultWindow
	}
	if f.indent <= 0 {
		f.indent = highlight.DefaultIndent
	}
	return f, nil
}

// Template returns the compiled template.
func (f *Styled) Template() *Template { return f.tmpl }

// Theme returns the theme the formatter was built with.
func (f *Styled) Theme() *theme.Theme { return f.theme }

// Highlighting reports whether embedded data is recolored.
func (f *Styled) Highlighting() bool { return f.hl.Active() }

// Format renders r as one line.
func (f *Styled) Format(r *record.Record) string {
	message, err := Message(r.Msg, r.Args, r.KWArgs, f.syntax)
	if err != nil && f.observer != nil {
		f.observer.Fallback(StyledName, err)
	}
	if f.hl.Active() {
		message = f.highlightMessage(message, r.Args)
	}

	v := newView(r, message, f.dateFormat)
	v.on = f.theme.StyleFor(v.levelName)
	v.icon = f.theme.IconFor(v.levelName)
	v.off = f.end

	s := appendException(f.tmpl.execute(v), r, f.exception)
	if f.observer != nil {
		f.observer.Rendered(StyledName, v.levelName)
	}
	return s
}

// highlightMessage recolors the part of message starting at the first
// trigger inside the scan window. When the data starts on its own line,
// the arguments are pretty-printed and indented in place of the raw text.
func (f *Styled) highlightMessage(message string, args []any) string {
	pos := f.hl.Find(message, f.window)
	if pos < 0 {
		return message
	}
	front, back := message[:pos], message[pos:]
	if strings.HasSuffix(front, "\n") {
		if len(args) > 0 {
			back = Pretty(args, f.hl.Language())
		}
		back = highlight.IndentBlock(back, f.indent)
	}
	return front + f.hl.Highlight(back)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
