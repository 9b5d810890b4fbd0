// Package render ties capability detection, themes and formatters into
// one reconfigurable rendering pipeline.
//
// A Renderer owns its state explicitly; applications create one and pass
// it (or Loggers derived from it) to whatever needs to log. Every
// reconfiguration builds a complete new formatter and publishes it
// atomically, so records being formatted concurrently always see either
// the old or the new configuration. Concurrent reconfigurations are
// serialised and the last one wins.
package render

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/format"
	"github.com/arthur-debert/lumen/pkg/highlight"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/metrics"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/record"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/arthur-debert/lumen/pkg/theme"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults applied by New.
const (
	DefaultGate     = level.Note
	DefaultLevel    = level.Info
	DefaultLanguage = highlight.Generic
	DefaultName     = "main"
)

// selection is a style table or icon set chosen by name or given
// directly. Names are re-rendered whenever the destination changes.
type selection struct {
	name  string
	table map[string]string
}

func (s selection) set() bool { return s.name != "" || s.table != nil }

// settings is the full configuration a formatter is built from. It is
// copied, modified and validated on every change.
type settings struct {
	dest    io.Writer
	cap     terminal.Capability
	handler *Handler

	themeName string
	themeVal  *theme.Theme
	style     selection
	icons     selection

	msgfmt  string
	datefmt string
	syntax  format.Syntax

	highlight         bool
	highlightExplicit bool
	language          string
	window            int
	indent            int
}

// state is what records are rendered with.
type state struct {
	settings    settings
	theme       *theme.Theme
	formatter   format.Formatter
	highlighter *highlight.Highlighter
}

// Renderer is the rendering facade.
type Renderer struct {
	mu       sync.Mutex
	settings settings
	active   atomic.Pointer[state]

	gate         atomic.Int64
	defaultLevel atomic.Int64

	detector  *terminal.Detector
	defs      *theme.Definitions
	levels    *level.Registry
	metrics   *metrics.Collector
	exception format.ExceptionFunc
}

// Option customises a Renderer at construction.
type Option func(*Renderer)

// WithDetector replaces the capability detector, mainly for tests.
func WithDetector(d *terminal.Detector) Option {
	return func(r *Renderer) { r.detector = d }
}

// WithDefinitions replaces the built-in theme definitions.
func WithDefinitions(defs *theme.Definitions) Option {
	return func(r *Renderer) { r.defs = defs }
}

// WithLevels shares a level registry between renderers.
func WithLevels(reg *level.Registry) Option {
	return func(r *Renderer) { r.levels = reg }
}

// WithMetrics registers pipeline counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Renderer) { r.metrics = metrics.New(reg) }
}

// WithException sets how record errors are converted to text.
func WithException(fn format.ExceptionFunc) Option {
	return func(r *Renderer) { r.exception = fn }
}

// WithIndent sets the indentation of pretty-printed data blocks.
func WithIndent(n int) Option {
	return func(r *Renderer) { r.settings.indent = n }
}

// WithScanWindow sets how many leading runes are searched for data.
func WithScanWindow(n int) Option {
	return func(r *Renderer) { r.settings.window = n }
}

// New creates a Renderer writing to dest, or to stderr when dest is nil.
// The theme is "auto": interactive or production depending on the
// destination.
func New(dest io.Writer, opts ...Option) (*Renderer, error) {
	if dest == nil {
		dest = os.Stderr
	}
	r := &Renderer{
		settings: settings{
			themeName: theme.Auto,
			language:  DefaultLanguage,
			window:    highlight.DefaultWindow,
			indent:    highlight.DefaultIndent,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.detector == nil {
		r.detector = terminal.NewDetector()
	}
	if r.defs == nil {
		r.defs = theme.Default()
	}
	if r.levels == nil {
		r.levels = level.NewRegistry()
	}
	if r.exception == nil {
		r.exception = record.DefaultException
	}
	r.gate.Store(int64(DefaultGate))
	r.defaultLevel.Store(int64(DefaultLevel))

	s := r.settings
	s.bind(dest, r.detector.Detect(dest))
	st, err := r.build(s)
	if err != nil {
		return nil, err
	}
	r.settings = s
	r.active.Store(st)

	logger := logging.GetLogger("render")
	logger.Debug().
		Str("tier", s.cap.Tier.String()).
		Bool("interactive", s.cap.Interactive).
		Str("theme", st.theme.Name).
		Msg("renderer created")
	return r, nil
}

// bind points the settings at a new destination.
func (s *settings) bind(dest io.Writer, c terminal.Capability) {
	s.dest = dest
	s.cap = c
	s.handler = NewHandler(dest, c)
	if !s.highlightExplicit {
		s.highlight = c.CanHighlight()
	}
}

// update applies mutate to a copy of the settings, builds the resulting
// state and publishes it. Nothing changes if mutate or the build fails.
func (r *Renderer) update(option OptionKey, mutate func(*settings) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.settings
	if err := mutate(&next); err != nil {
		return err
	}
	st, err := r.build(next)
	if err != nil {
		return err
	}
	r.settings = next
	r.active.Store(st)
	r.metrics.Reconfigured(string(option))
	logger := logging.GetLogger("render")
	logger.Debug().
		Str("option", string(option)).
		Str("theme", st.theme.Name).
		Msg("renderer reconfigured")
	return nil
}

func (r *Renderer) build(s settings) (*state, error) {
	th, err := r.resolveTheme(s)
	if err != nil {
		return nil, err
	}
	p := palette.Render(s.cap.Tier)

	switch {
	case s.style.name != "":
		if th.Style, err = r.defs.RenderStyle(s.style.name, p); err != nil {
			return nil, err
		}
	case s.style.table != nil:
		th.Style = theme.Complete(copyTable(s.style.table))
	}
	switch {
	case s.icons.name != "":
		if th.Icons, err = r.defs.IconSet(s.icons.name); err != nil {
			return nil, err
		}
	case s.icons.table != nil:
		th.Icons = theme.Complete(copyTable(s.icons.table))
	}

	var observer format.Observer
	if r.metrics != nil {
		observer = r.metrics
	}

	st := &state{settings: s, theme: th}
	switch th.Kind {
	case theme.KindJSON:
		if s.highlight {
			st.highlighter = r.highlighter(highlight.JSON, s.cap.Tier)
		}
		st.formatter, err = format.NewJSON(format.JSONConfig{
			Fields:      firstNonEmpty(s.msgfmt, th.Template),
			DateFormat:  firstNonEmpty(s.datefmt, th.DateFormat),
			Highlighter: st.highlighter,
			Syntax:      s.syntax,
			Exception:   r.exception,
			Observer:    observer,
		})
	default:
		if s.highlight && th.Kind != theme.KindPlain {
			st.highlighter = r.highlighter(s.language, s.cap.Tier)
		}
		st.formatter, err = format.NewStyled(format.StyledConfig{
			Theme:       th,
			Template:    s.msgfmt,
			DateFormat:  s.datefmt,
			End:         p.End(),
			Highlighter: st.highlighter,
			Syntax:      s.syntax,
			Window:      s.window,
			Indent:      s.indent,
			Exception:   r.exception,
			Observer:    observer,
		})
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Renderer) resolveTheme(s settings) (*theme.Theme, error) {
	if s.themeVal != nil {
		th := s.themeVal.Clone()
		th.Style = theme.Complete(th.Style)
		th.Icons = theme.Complete(th.Icons)
		if th.Kind == "" {
			th.Kind = theme.KindStyled
		}
		return th, nil
	}
	return r.defs.Lookup(s.themeName, s.cap)
}

// highlighter builds a highlighter, falling back to none when the
// language or the capability is unavailable.
func (r *Renderer) highlighter(lang string, tier terminal.Tier) *highlight.Highlighter {
	h, err := highlight.New(lang, tier)
	if err != nil {
		logger := logging.GetLogger("render")
		logger.Debug().Err(err).Str("language", lang).Msg("highlighting disabled")
		return nil
	}
	return h
}

// Format renders rec with the active formatter without delivering it.
func (r *Renderer) Format(rec *record.Record) string {
	return r.active.Load().formatter.Format(rec)
}

// Enabled reports whether records at lvl pass the level gate.
func (r *Renderer) Enabled(lvl level.Level) bool {
	return int64(lvl) >= r.gate.Load()
}

// Emit renders rec and delivers it to the bound handler, dropping it if
// it is below the level gate.
func (r *Renderer) Emit(rec *record.Record) error {
	if !r.Enabled(rec.Level) {
		return nil
	}
	st := r.active.Load()
	line := st.formatter.Format(rec)
	err := st.settings.handler.Emit(line)
	if err != nil && st.settings.handler.Closed() {
		// The destination changed while rendering.
		err = r.active.Load().settings.handler.Emit(line)
	}
	return err
}

// Handlers returns the handlers currently bound. There is always
// exactly one.
func (r *Renderer) Handlers() []*Handler {
	return []*Handler{r.active.Load().settings.handler}
}

// Capability returns the capability of the current destination.
func (r *Renderer) Capability() terminal.Capability {
	return r.active.Load().settings.cap
}

// Theme returns a copy of the theme records are rendered with.
func (r *Renderer) Theme() *theme.Theme {
	return r.active.Load().theme.Clone()
}

// Formatter returns the active formatter.
func (r *Renderer) Formatter() format.Formatter {
	return r.active.Load().formatter
}

// Levels returns the level registry.
func (r *Renderer) Levels() *level.Registry { return r.levels }

// Definitions returns the theme definitions in use.
func (r *Renderer) Definitions() *theme.Definitions { return r.defs }

// RegisterLevel adds a custom severity usable by every Logger of r.
func (r *Renderer) RegisterLevel(name string, value level.Level) (level.Handle, error) {
	return r.levels.Register(name, value)
}

// Level returns the level gate.
func (r *Renderer) Level() level.Level { return level.Level(r.gate.Load()) }

// DefaultLevel returns the level used by Logger.Print.
func (r *Renderer) DefaultLevel() level.Level { return level.Level(r.defaultLevel.Load()) }

// SetLevel sets the level gate.
func (r *Renderer) SetLevel(lvl level.Level) {
	r.gate.Store(int64(lvl))
	r.metrics.Reconfigured(string(OptLevel))
}

// SetDefaultLevel sets the level used by Logger.Print.
func (r *Renderer) SetDefaultLevel(lvl level.Level) {
	r.defaultLevel.Store(int64(lvl))
	r.metrics.Reconfigured(string(OptDefaultLevel))
}

// SetDestination re-detects the capability of dest and replaces the
// bound handler. Named themes, styles and icons are re-rendered for the
// new destination.
func (r *Renderer) SetDestination(dest io.Writer) error {
	if dest == nil {
		return errors.New(errors.ErrInvalidValue, "destination must not be nil")
	}
	c := r.detector.Detect(dest)
	var old *Handler
	err := r.update(OptDestination, func(s *settings) error {
		old = s.handler
		s.bind(dest, c)
		return nil
	})
	if err != nil {
		return err
	}
	old.Close()
	r.metrics.DestinationChanged()
	return nil
}

// SetTheme selects a theme by name, including "auto". Selecting "json"
// switches to the JSON formatter. Style, icon and template overrides are
// dropped.
func (r *Renderer) SetTheme(name string) error {
	return r.update(OptTheme, func(s *settings) error {
		s.themeName, s.themeVal = name, nil
		s.clearOverrides()
		return nil
	})
}

// SetThemeValue installs an explicit theme.
func (r *Renderer) SetThemeValue(th *theme.Theme) error {
	if th == nil {
		return errors.New(errors.ErrInvalidValue, "theme must not be nil")
	}
	return r.update(OptTheme, func(s *settings) error {
		s.themeName, s.themeVal = "", th.Clone()
		s.clearOverrides()
		return nil
	})
}

func (s *settings) clearOverrides() {
	s.style, s.icons = selection{}, selection{}
	s.msgfmt, s.datefmt = "", ""
}

// SetHighlighting turns embedded-data highlighting on or off.
func (r *Renderer) SetHighlighting(enabled bool) error {
	return r.update(OptHighlight, func(s *settings) error {
		s.highlight, s.highlightExplicit = enabled, true
		return nil
	})
}

// SetIcons replaces the icon set by name.
func (r *Renderer) SetIcons(name string) error {
	return r.update(OptIcons, func(s *settings) error {
		s.icons = selection{name: name}
		return nil
	})
}

// SetIconMap replaces the icon set with an explicit mapping.
func (r *Renderer) SetIconMap(icons map[string]string) error {
	return r.update(OptIcons, func(s *settings) error {
		s.icons = selection{table: copyTable(icons)}
		return nil
	})
}

// SetStyle replaces the level styles by style table name.
func (r *Renderer) SetStyle(name string) error {
	return r.update(OptStyle, func(s *settings) error {
		s.style = selection{name: name}
		return nil
	})
}

// SetStyleMap replaces the level styles with explicit codes.
func (r *Renderer) SetStyleMap(style map[string]string) error {
	return r.update(OptStyle, func(s *settings) error {
		s.style = selection{table: copyTable(style)}
		return nil
	})
}

// SetMsgFormat overrides the theme template. For the JSON formatter it
// is the field list.
func (r *Renderer) SetMsgFormat(tmpl string) error {
	return r.update(OptMsgFormat, func(s *settings) error {
		s.msgfmt = tmpl
		return nil
	})
}

// SetDateFormat overrides the theme's date layout.
func (r *Renderer) SetDateFormat(layout string) error {
	return r.update(OptDateFormat, func(s *settings) error {
		s.datefmt = layout
		return nil
	})
}

// SetSyntax selects how message arguments are substituted.
func (r *Renderer) SetSyntax(syntax format.Syntax) error {
	return r.update(OptSyntax, func(s *settings) error {
		s.syntax = syntax
		return nil
	})
}

// SetLanguage selects the highlighting language. Failures do not reach
// the caller: they are logged as ERROR records through r so that a bad
// setting is visible without interrupting the program.
func (r *Renderer) SetLanguage(name string) {
	err := r.update(OptLanguage, func(s *settings) error {
		if _, err := highlight.New(name, s.cap.Tier); err != nil {
			return err
		}
		s.language = name
		return nil
	})
	if err != nil {
		r.Logger("lumen").Error("lexer: %v", err)
	}
}

// Language returns the highlighting language.
func (r *Renderer) Language() string {
	return r.active.Load().settings.language
}

// Highlighting reports whether highlighting is enabled.
func (r *Renderer) Highlighting() bool {
	return r.active.Load().settings.highlight
}

func copyTable(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
