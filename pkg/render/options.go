package render

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/format"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/theme"
)

// OptionKey names one configuration option.
type OptionKey string

const (
	OptLevel        OptionKey = "level"
	OptDefaultLevel OptionKey = "default_level"
	OptDateFormat   OptionKey = "datefmt"
	OptMsgFormat    OptionKey = "msgfmt"
	OptStream       OptionKey = "stream"
	OptDestination  OptionKey = "destination"
	OptTheme        OptionKey = "theme"
	OptHighlight    OptionKey = "highlight"
	OptIcons        OptionKey = "icons"
	OptStyle        OptionKey = "style"
	OptLexer        OptionKey = "lexer"
	OptLanguage     OptionKey = "language"
	OptSyntax       OptionKey = "syntax"
)

type setter func(r *Renderer, v any) error

var setters = map[OptionKey]setter{
	OptLevel:        setLevel,
	OptDefaultLevel: setDefaultLevel,
	OptDateFormat:   stringSetter(OptDateFormat, (*Renderer).SetDateFormat),
	OptMsgFormat:    stringSetter(OptMsgFormat, (*Renderer).SetMsgFormat),
	OptStream:       setDestination,
	OptDestination:  setDestination,
	OptTheme:        setTheme,
	OptHighlight:    setHighlight,
	OptIcons:        setIcons,
	OptStyle:        setStyle,
	OptLexer:        setLanguage,
	OptLanguage:     setLanguage,
	OptSyntax:       setSyntax,
}

// Keys returns every recognised option key in sorted order.
func Keys() []OptionKey {
	keys := make([]OptionKey, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// IsOption reports whether key names a recognised option.
func IsOption(key string) bool {
	_, ok := setters[OptionKey(key)]
	return ok
}

// Set applies one option by key. Unknown keys fail with UNKNOWN_OPTION;
// values of the wrong type fail with INVALID_VALUE.
func (r *Renderer) Set(key string, value any) error {
	set, ok := setters[OptionKey(key)]
	if !ok {
		return errors.Newf(errors.ErrUnknownOption, "unknown option: %s", key).
			WithDetail("option", key)
	}
	return set(r, value)
}

// Options is the typed form of the option table. Nil fields are left
// unchanged.
type Options struct {
	Level        *level.Level
	DefaultLevel *level.Level
	Destination  io.Writer
	Theme        *string
	ThemeValue   *theme.Theme
	Style        *string
	StyleMap     map[string]string
	Icons        *string
	IconMap      map[string]string
	MsgFormat    *string
	DateFormat   *string
	Highlight    *bool
	Language     *string
	Syntax       *format.Syntax
}

// Configure applies every set field of opts through the option table.
// The destination is applied first and the theme before anything that
// overrides part of it. The first failure stops the sequence.
func (r *Renderer) Configure(opts Options) error {
	type step struct {
		key   OptionKey
		value any
		set   bool
	}
	steps := []step{
		{OptDestination, opts.Destination, opts.Destination != nil},
		{OptLevel, deref(opts.Level), opts.Level != nil},
		{OptDefaultLevel, deref(opts.DefaultLevel), opts.DefaultLevel != nil},
		{OptTheme, deref(opts.Theme), opts.Theme != nil},
		{OptTheme, opts.ThemeValue, opts.ThemeValue != nil},
		{OptStyle, deref(opts.Style), opts.Style != nil},
		{OptStyle, opts.StyleMap, opts.StyleMap != nil},
		{OptIcons, deref(opts.Icons), opts.Icons != nil},
		{OptIcons, opts.IconMap, opts.IconMap != nil},
		{OptMsgFormat, deref(opts.MsgFormat), opts.MsgFormat != nil},
		{OptDateFormat, deref(opts.DateFormat), opts.DateFormat != nil},
		{OptSyntax, deref(opts.Syntax), opts.Syntax != nil},
		{OptHighlight, deref(opts.Highlight), opts.Highlight != nil},
		{OptLanguage, deref(opts.Language), opts.Language != nil},
	}
	for _, s := range steps {
		if !s.set {
			continue
		}
		if err := r.Set(string(s.key), s.value); err != nil {
			return err
		}
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func invalid(key OptionKey, v any) error {
	return errors.Newf(errors.ErrInvalidValue, "option %s: unsupported value %v (%T)", key, v, v).
		WithDetail("option", string(key))
}

func stringSetter(key OptionKey, fn func(*Renderer, string) error) setter {
	return func(r *Renderer, v any) error {
		s, ok := v.(string)
		if !ok {
			return invalid(key, v)
		}
		return fn(r, s)
	}
}

func (r *Renderer) parseLevel(key OptionKey, v any) (level.Level, error) {
	switch x := v.(type) {
	case level.Level:
		return x, nil
	case level.Handle:
		return x.Level, nil
	case int:
		return level.Level(x), nil
	case int64:
		return level.Level(x), nil
	case float64:
		return level.Level(x), nil
	case string:
		return r.levels.Parse(x)
	}
	return 0, invalid(key, v)
}

func setLevel(r *Renderer, v any) error {
	lvl, err := r.parseLevel(OptLevel, v)
	if err != nil {
		return err
	}
	r.SetLevel(lvl)
	return nil
}

func setDefaultLevel(r *Renderer, v any) error {
	lvl, err := r.parseLevel(OptDefaultLevel, v)
	if err != nil {
		return err
	}
	r.SetDefaultLevel(lvl)
	return nil
}

func setDestination(r *Renderer, v any) error {
	w, ok := v.(io.Writer)
	if !ok || w == nil {
		return invalid(OptDestination, v)
	}
	return r.SetDestination(w)
}

func setTheme(r *Renderer, v any) error {
	switch x := v.(type) {
	case string:
		return r.SetTheme(x)
	case *theme.Theme:
		return r.SetThemeValue(x)
	case theme.Theme:
		return r.SetThemeValue(&x)
	}
	return invalid(OptTheme, v)
}

func setHighlight(r *Renderer, v any) error {
	switch x := v.(type) {
	case bool:
		return r.SetHighlighting(x)
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return invalid(OptHighlight, v)
		}
		return r.SetHighlighting(b)
	}
	return invalid(OptHighlight, v)
}

func setIcons(r *Renderer, v any) error {
	if name, ok := v.(string); ok {
		return r.SetIcons(name)
	}
	m, err := toTable(OptIcons, v)
	if err != nil {
		return err
	}
	return r.SetIconMap(m)
}

func setStyle(r *Renderer, v any) error {
	if name, ok := v.(string); ok {
		return r.SetStyle(name)
	}
	m, err := toTable(OptStyle, v)
	if err != nil {
		return err
	}
	return r.SetStyleMap(m)
}

// toTable accepts level tables as decoded from config files, where keys
// may be lower case and values untyped.
func toTable(key OptionKey, v any) (map[string]string, error) {
	switch x := v.(type) {
	case map[string]string:
		return upperKeys(x), nil
	case map[string]any:
		m := make(map[string]string, len(x))
		for k, val := range x {
			s, ok := val.(string)
			if !ok {
				return nil, invalid(key, v)
			}
			m[k] = s
		}
		return upperKeys(m), nil
	}
	return nil, invalid(key, v)
}

func upperKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func setLanguage(r *Renderer, v any) error {
	s, ok := v.(string)
	if !ok {
		return invalid(OptLanguage, v)
	}
	r.SetLanguage(s)
	return nil
}

func setSyntax(r *Renderer, v any) error {
	switch x := v.(type) {
	case format.Syntax:
		return r.SetSyntax(x)
	case string:
		syntax, err := format.ParseSyntax(x)
		if err != nil {
			return err
		}
		return r.SetSyntax(syntax)
	}
	return invalid(OptSyntax, v)
}
