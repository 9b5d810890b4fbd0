// Package config loads renderer options from layered sources: the
// embedded defaults, a TOML file and LUMEN_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/format"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/arthur-debert/lumen/pkg/theme"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes environment variables read as options.
	EnvPrefix = "LUMEN_"
	// SearchPath is looked up under the XDG config directories.
	SearchPath = "lumen/lumen.toml"

	keyThemesFile = "themes_file"
)

// LoadOptions selects the sources of a Config.
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set. When empty
	// the XDG config directories are searched.
	Path string
	// SkipSearch disables the XDG search when Path is empty.
	SkipSearch bool
	// Environ replaces os.Environ for the LUMEN_* layer.
	Environ []string
	// Overrides are applied last, typically from command line flags.
	Overrides map[string]any
}

// Settings is the decoded form of the option keys.
type Settings struct {
	Level        string `koanf:"level"`
	DefaultLevel string `koanf:"default_level"`
	Theme        string `koanf:"theme"`
	ThemesFile   string `koanf:"themes_file"`
	Style        any    `koanf:"style"`
	Icons        any    `koanf:"icons"`
	MsgFormat    string `koanf:"msgfmt"`
	DateFormat   string `koanf:"datefmt"`
	Highlight    *bool  `koanf:"highlight"`
	Language     string `koanf:"language"`
	Lexer        string `koanf:"lexer"`
	Syntax       string `koanf:"syntax"`
	Stream       string `koanf:"stream"`
	Destination  string `koanf:"destination"`
}

// Config is a loaded, validated set of options.
type Config struct {
	k    *koanf.Koanf
	path string
	opts LoadOptions
}

// Load reads every source in order and validates the resulting keys.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	defer logging.LogOperationStart(logger, "config.load")()
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	path, err := findFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("loaded config file")
	}

	// 3. Environment
	if err := loadEnv(k, opts.Environ); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	if err := validate(k); err != nil {
		return nil, err
	}
	return &Config{k: k, path: path, opts: opts}, nil
}

func findFile(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", opts.Path).
				WithDetail("path", opts.Path)
		}
		return opts.Path, nil
	}
	if opts.SkipSearch {
		return "", nil
	}
	path, err := xdg.SearchConfigFile(SearchPath)
	if err != nil {
		return "", nil
	}
	return path, nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func loadEnv(k *koanf.Koanf, environ []string) error {
	if environ == nil {
		return k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	}
	values := map[string]any{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		values[envKey(name)] = value
	}
	return k.Load(confmap.Provider(values, "."), nil)
}

// validate rejects top-level keys that are not renderer options.
func validate(k *koanf.Koanf) error {
	for key := range k.Raw() {
		if key == keyThemesFile || render.IsOption(key) {
			continue
		}
		return errors.Newf(errors.ErrUnknownOption, "unknown option: %s", key).
			WithDetail("option", key)
	}
	return nil
}

// Path returns the config file that was loaded, if any.
func (c *Config) Path() string { return c.path }

// Keys returns the top-level option keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.k.Raw()))
	for key := range c.k.Raw() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Koanf exposes the merged key map.
func (c *Config) Koanf() *koanf.Koanf { return c.k }

// Settings decodes the merged key map.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
	if err := c.k.UnmarshalWithConf("", &s, conf); err != nil {
		return s, errors.Wrap(err, errors.ErrConfigParse, "failed to decode config")
	}
	return s, nil
}

// RendererOptions returns construction options for render.New. A
// themes_file is merged over the built-in theme definitions.
func (c *Config) RendererOptions() ([]render.Option, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	if s.ThemesFile == "" {
		return nil, nil
	}
	defs, err := theme.LoadFile(expandPath(s.ThemesFile))
	if err != nil {
		return nil, err
	}
	return []render.Option{render.WithDefinitions(defs)}, nil
}

// Apply configures r with every option. The stream is bound first so
// custom style tables are composed for the capability they will be
// written with.
func (c *Config) Apply(r *render.Renderer) error {
	s, err := c.Settings()
	if err != nil {
		return err
	}

	if stream := firstNonEmpty(s.Destination, s.Stream); stream != "" {
		w, err := openStream(stream)
		if err != nil {
			return err
		}
		if err := r.Configure(render.Options{Destination: w}); err != nil {
			return err
		}
	}

	var opts render.Options
	if s.Level != "" {
		lvl, err := r.Levels().Parse(s.Level)
		if err != nil {
			return err
		}
		opts.Level = &lvl
	}
	if s.DefaultLevel != "" {
		lvl, err := r.Levels().Parse(s.DefaultLevel)
		if err != nil {
			return err
		}
		opts.DefaultLevel = &lvl
	}
	if s.Theme != "" {
		opts.Theme = &s.Theme
	}

	switch v := s.Style.(type) {
	case nil:
	case string:
		opts.Style = &v
	default:
		exprs, err := stringTable(render.OptStyle, v)
		if err != nil {
			return err
		}
		p := palette.Render(r.Capability().Tier)
		opts.StyleMap = make(map[string]string, len(exprs))
		for name, expr := range exprs {
			code, err := p.Compose(expr)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInvalidValue, "style %s", name).
					WithDetail("option", string(render.OptStyle))
			}
			opts.StyleMap[name] = code
		}
	}

	switch v := s.Icons.(type) {
	case nil:
	case string:
		opts.Icons = &v
	default:
		icons, err := stringTable(render.OptIcons, v)
		if err != nil {
			return err
		}
		opts.IconMap = icons
	}

	if s.MsgFormat != "" {
		opts.MsgFormat = &s.MsgFormat
	}
	if s.DateFormat != "" {
		opts.DateFormat = &s.DateFormat
	}
	if s.Syntax != "" {
		syntax, err := format.ParseSyntax(s.Syntax)
		if err != nil {
			return err
		}
		opts.Syntax = &syntax
	}
	opts.Highlight = s.Highlight
	if lang := firstNonEmpty(s.Lexer, s.Language); lang != "" {
		opts.Language = &lang
	}

	if err := r.Configure(opts); err != nil {
		return err
	}
	logger := logging.GetLogger("config")
	logger.Debug().Strs("keys", c.Keys()).Msg("applied config")
	return nil
}

func openStream(name string) (*os.File, error) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	return nil, errors.Newf(errors.ErrInvalidValue, "stream must be stdout or stderr, got %q", name).
		WithDetail("option", string(render.OptStream))
}

func stringTable(key render.OptionKey, v any) (map[string]string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidValue, "option %s: unsupported value %v (%T)", key, v, v).
			WithDetail("option", string(key))
	}
	out := make(map[string]string, len(m))
	for name, val := range m {
		s, ok := val.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidValue, "option %s.%s: expected a string, got %T", key, name, val).
				WithDetail("option", string(key))
		}
		out[strings.ToUpper(name)] = s
	}
	return out, nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return os.ExpandEnv(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
