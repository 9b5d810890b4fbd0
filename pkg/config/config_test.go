package config_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/lumen/pkg/config"
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/arthur-debert/lumen/pkg/testutil"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T, dest io.Writer, opts ...render.Option) *render.Renderer {
	t.Helper()
	return testutil.NewRenderer(t, dest, opts...)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	return testutil.NewTestEnvironment(t).WriteConfig(content)
}

func load(t *testing.T, opts config.LoadOptions) *config.Config {
	t.Helper()
	if opts.Environ == nil {
		opts.Environ = []string{}
	}
	opts.SkipSearch = true
	cfg, err := config.Load(opts)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := load(t, config.LoadOptions{})
	assert.Empty(t, cfg.Path())
	assert.Equal(t, []string{"default_level", "language", "level", "syntax", "theme"}, cfg.Keys())

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "auto", s.Theme)
	assert.Equal(t, "note", s.Level)
	assert.Equal(t, "info", s.DefaultLevel)
	assert.Nil(t, s.Highlight)
	assert.Nil(t, s.Style)

	assert.Contains(t, config.DefaultContent(), `theme = "auto"`)
}

func TestLayering(t *testing.T) {
	path := writeFile(t, `
level = "debug"
theme = "plain"
msgfmt = "{levelname} {message}"
`)
	cfg := load(t, config.LoadOptions{
		Path:      path,
		Environ:   []string{"LUMEN_THEME=mono", "LUMEN_HIGHLIGHT=false", "OTHER=1"},
		Overrides: map[string]any{"level": "warning"},
	})
	assert.Equal(t, path, cfg.Path())

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "warning", s.Level, "overrides win")
	assert.Equal(t, "mono", s.Theme, "environment beats file")
	assert.Equal(t, "{levelname} {message}", s.MsgFormat)
	require.NotNil(t, s.Highlight)
	assert.False(t, *s.Highlight)
}

func TestNumericLevelIsWeaklyDecoded(t *testing.T) {
	cfg := load(t, config.LoadOptions{Path: writeFile(t, "level = 30\n")})
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, cfg.Apply(r))
	assert.Equal(t, level.Warning, r.Level())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		opts config.LoadOptions
		code errors.ErrorCode
	}{
		{"missing file", config.LoadOptions{Path: filepath.Join(t.TempDir(), "nope.toml")}, errors.ErrConfigLoad},
		{"bad toml", config.LoadOptions{Path: writeFile(t, "level = \n")}, errors.ErrConfigParse},
		{"unknown key in file", config.LoadOptions{Path: writeFile(t, "colour = \"red\"\n")}, errors.ErrUnknownOption},
		{"unknown key in env", config.LoadOptions{Environ: []string{"LUMEN_BOGUS=1"}}, errors.ErrUnknownOption},
		{"unknown override", config.LoadOptions{Overrides: map[string]any{"nope": 1}}, errors.ErrUnknownOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.SkipSearch = true
			if opts.Environ == nil {
				opts.Environ = []string{}
			}
			_, err := config.Load(opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestApply(t *testing.T) {
	path := writeFile(t, `
level = "trace"
default_level = "warn"
theme = "plain"
icons = "ascii"
datefmt = "15:04"
syntax = "printf"
lexer = "json"
`)
	cfg := load(t, config.LoadOptions{Path: path})
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, cfg.Apply(r))

	assert.Equal(t, level.Trace, r.Level())
	assert.Equal(t, level.Warning, r.DefaultLevel())
	assert.Equal(t, "plain", r.Theme().Name)
	assert.Equal(t, "json", r.Language())

	snap := r.Snapshot()
	assert.Equal(t, "ascii", snap.Icons)
	assert.Equal(t, "15:04", snap.DateFormat)
	assert.Equal(t, "printf", snap.Syntax)
}

func TestApplyStyleTable(t *testing.T) {
	path := writeFile(t, `
theme = "interactive"

[style]
error = "fg.red+fx.bold"
`)
	cfg := load(t, config.LoadOptions{Path: path})
	r := newRenderer(t, &testutil.FakeTTY{})
	require.NoError(t, cfg.Apply(r))

	want, err := palette.Render(terminal.TierExtended).Compose("fg.red+fx.bold")
	require.NoError(t, err)
	assert.Equal(t, want, r.Theme().StyleFor(level.NameError))
	assert.Equal(t, "custom", r.Snapshot().Style)
}

func TestApplyIconTable(t *testing.T) {
	cfg := load(t, config.LoadOptions{Overrides: map[string]any{
		"icons": map[string]any{"info": "i", "error": "E"},
	}})
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, cfg.Apply(r))
	assert.Equal(t, "E", r.Theme().IconFor(level.NameError))
	assert.Equal(t, "i", r.Theme().IconFor(level.NameInfo))
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		code      errors.ErrorCode
	}{
		{"bad level", map[string]any{"level": "loud"}, errors.ErrUnknownLevel},
		{"bad theme", map[string]any{"theme": "neon"}, errors.ErrUnknownTheme},
		{"bad style expr", map[string]any{"style": map[string]any{"error": "fg.nocolor"}}, errors.ErrInvalidValue},
		{"bad style entry", map[string]any{"style": map[string]any{"error": 3}}, errors.ErrInvalidValue},
		{"bad syntax", map[string]any{"syntax": "percent"}, errors.ErrInvalidValue},
		{"bad stream", map[string]any{"stream": "/dev/null"}, errors.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := load(t, config.LoadOptions{Overrides: tt.overrides})
			r := newRenderer(t, &bytes.Buffer{})
			err := cfg.Apply(r)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestApplyStream(t *testing.T) {
	cfg := load(t, config.LoadOptions{Overrides: map[string]any{"stream": "stdout"}})
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, cfg.Apply(r))
	assert.Equal(t, os.Stdout, r.Handlers()[0].Destination())
}

func TestRendererOptionsThemesFile(t *testing.T) {
	dir := t.TempDir()
	themes := filepath.Join(dir, "themes.yaml")
	require.NoError(t, os.WriteFile(themes, []byte(`
themes:
  terse:
    base: plain
    template: "{levelname}: {message}"
`), 0o644))

	t.Setenv("LUMEN_TEST_THEMES", dir)
	cfg := load(t, config.LoadOptions{Overrides: map[string]any{
		"themes_file": "$LUMEN_TEST_THEMES/themes.yaml",
		"theme":       "terse",
	}})
	opts, err := cfg.RendererOptions()
	require.NoError(t, err)
	require.Len(t, opts, 1)

	var buf bytes.Buffer
	r := newRenderer(t, &buf, opts...)
	require.NoError(t, cfg.Apply(r))
	r.Logger("app").Warn("careful")
	assert.Equal(t, "WARNING: careful\n", buf.String())
}

func TestRendererOptionsWithoutThemesFile(t *testing.T) {
	opts, err := load(t, config.LoadOptions{}).RendererOptions()
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestDump(t *testing.T) {
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, r.Set("level", "debug"))

	var buf bytes.Buffer
	require.NoError(t, config.Dump(&buf, r))

	var got render.Snapshot
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "DEBUG", got.Level)
	assert.Equal(t, "auto (production)", got.Theme)
	assert.Equal(t, "none", got.Tier)
}

func TestSearchesXDGConfigHome(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	path := env.WriteConfig("theme = \"mono\"\n")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := config.Load(config.LoadOptions{Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "mono", s.Theme)
}

func TestLoadLogsOperation(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLogger(zerolog.Nop()) })

	load(t, config.LoadOptions{})
	assert.Contains(t, buf.String(), `"operation":"config.load"`)
	assert.Contains(t, buf.String(), `"duration"`)
}
