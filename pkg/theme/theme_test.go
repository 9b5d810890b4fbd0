package theme_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/arthur-debert/lumen/pkg/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capFor(tier terminal.Tier, interactive bool) terminal.Capability {
	return terminal.Capability{Tier: tier, Interactive: interactive}
}

func TestEveryThemeHasEveryLevel(t *testing.T) {
	themes, err := theme.Themes(capFor(terminal.TierExtended, true))
	require.NoError(t, err)
	require.NotEmpty(t, themes)

	for name, th := range themes {
		for _, lvl := range level.CanonicalNames() {
			assert.Contains(t, th.Style, lvl, "theme %s style", name)
			assert.Contains(t, th.Icons, lvl, "theme %s icons", name)
		}
	}
}

func TestNoneTierStylesAreEmpty(t *testing.T) {
	themes, err := theme.Themes(capFor(terminal.TierNone, false))
	require.NoError(t, err)

	for name, th := range themes {
		for lvl, code := range th.Style {
			assert.Empty(t, code, "theme %s level %s", name, lvl)
		}
		assert.NotContains(t, th.Template, "\x1b", "theme %s template", name)
	}
}

func TestTemplateCodesRendered(t *testing.T) {
	th, err := theme.Resolve("interactive", capFor(terminal.TierExtended, true))
	require.NoError(t, err)
	assert.NotContains(t, th.Template, "${")
	assert.Contains(t, th.Template, "\x1b[38;5;242m")
	assert.Contains(t, th.Template, "{message}")
}

func TestAutoResolution(t *testing.T) {
	tests := []struct {
		name string
		cap  terminal.Capability
		want string
	}{
		{"interactive", capFor(terminal.TierBasic, true), "interactive"},
		{"production", capFor(terminal.TierNone, false), "production"},
		{"linux console", terminal.Capability{Tier: terminal.TierBasic, Interactive: true, Variant: terminal.VariantLimitedPalette}, "linux_interactive"},
		{"windows production", terminal.Capability{Tier: terminal.TierBasic, Variant: terminal.VariantAltConsole}, "windows_production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := theme.Resolve(theme.Auto, tt.cap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, th.Name)
		})
	}
}

func TestBaseInheritance(t *testing.T) {
	c := terminal.Capability{Tier: terminal.TierBasic, Interactive: true, Variant: terminal.VariantAltConsole}
	win, err := theme.Resolve("windows_interactive", c)
	require.NoError(t, err)
	linux, err := theme.Resolve("linux_interactive", c)
	require.NoError(t, err)

	assert.Equal(t, linux.Template, win.Template)
	assert.Equal(t, linux.Style, win.Style)
	assert.Equal(t, "windows_interactive", win.Name)
}

func TestFramebufferStyle(t *testing.T) {
	p := palette.Render(terminal.TierBasic)
	c := terminal.Capability{Tier: terminal.TierBasic, Interactive: true, Variant: terminal.VariantLimitedPalette, Framebuffer: true}

	th, err := theme.Resolve("linux_interactive", c)
	require.NoError(t, err)
	want, err := theme.Default().RenderStyle("reverse_fbterm", p)
	require.NoError(t, err)
	assert.Equal(t, want, th.Style)
}

func TestKinds(t *testing.T) {
	c := capFor(terminal.TierBasic, true)
	for name, want := range map[string]theme.Kind{
		"interactive": theme.KindStyled,
		"plain":       theme.KindPlain,
		"json":        theme.KindJSON,
	} {
		th, err := theme.Resolve(name, c)
		require.NoError(t, err)
		assert.Equal(t, want, th.Kind, name)
	}
}

func TestUnknownNames(t *testing.T) {
	defs := theme.Default()
	c := capFor(terminal.TierBasic, true)

	_, err := defs.Lookup("nope", c)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTheme))

	_, err = defs.IconSet("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownIcons))

	_, err = defs.RenderStyle("nope", palette.Render(terminal.TierBasic))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownStyle))
}

func TestNoneIconsAndStyle(t *testing.T) {
	defs := theme.Default()
	icons, err := defs.IconSet("none")
	require.NoError(t, err)
	for _, v := range icons {
		assert.Empty(t, v)
	}
	assert.Len(t, icons, len(level.CanonicalNames()))
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
icons:
  dots:
    INFO: "."
themes:
  compact:
    icons: dots
    template: "{icon} {message}"
`), 0o644))

	defs, err := theme.LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, defs.Themes, "interactive")

	th, err := defs.Lookup("compact", capFor(terminal.TierBasic, true))
	require.NoError(t, err)
	assert.Equal(t, ".", th.IconFor("INFO"))
	assert.Equal(t, "", th.IconFor("ERROR"))
	assert.True(t, strings.HasPrefix(th.StyleFor("INFO"), "\x1b["), "default style applies")
}

func TestInheritanceCycle(t *testing.T) {
	defs, err := theme.LoadFromData([]byte(`
themes:
  a: {base: b}
  b: {base: a}
`))
	require.NoError(t, err)
	_, err = defs.Lookup("a", capFor(terminal.TierBasic, true))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidValue))
}

func TestCloneIsIndependent(t *testing.T) {
	th, err := theme.Resolve("production", capFor(terminal.TierBasic, false))
	require.NoError(t, err)
	c := th.Clone()
	c.Icons["INFO"] = "changed"
	assert.NotEqual(t, "changed", th.Icons["INFO"])
}
