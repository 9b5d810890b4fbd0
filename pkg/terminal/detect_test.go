package terminal_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/stretchr/testify/assert"
)

// fakeTTY looks like a file descriptor to the detector.
type fakeTTY struct{ bytes.Buffer }

func (f *fakeTTY) Fd() uintptr { return 99 }

func detector(env terminal.MapEnviron, tty bool) *terminal.Detector {
	return &terminal.Detector{
		Env:        env,
		IsTerminal: func(uintptr) bool { return tty },
		GOOS:       "linux",
	}
}

func TestDetectTiers(t *testing.T) {
	tests := []struct {
		name string
		env  terminal.MapEnviron
		tty  bool
		want terminal.Tier
	}{
		{"truecolor via COLORTERM", terminal.MapEnviron{"TERM": "xterm-256color", "COLORTERM": "truecolor"}, true, terminal.TierTrueColor},
		{"256 color", terminal.MapEnviron{"TERM": "xterm-256color"}, true, terminal.TierExtended},
		{"basic color", terminal.MapEnviron{"TERM": "xterm-color"}, true, terminal.TierBasic},
		{"dumb terminal", terminal.MapEnviron{"TERM": "dumb", "COLORTERM": "truecolor"}, true, terminal.TierNone},
		{"NO_COLOR", terminal.MapEnviron{"TERM": "xterm-256color", "NO_COLOR": "1"}, true, terminal.TierNone},
		{"monochrome vt220", terminal.MapEnviron{"TERM": "vt220"}, true, terminal.TierMonochrome},
		{"unknown terminal", terminal.MapEnviron{"TERM": "mystery"}, true, terminal.TierNone},
		{"not a terminal", terminal.MapEnviron{"TERM": "xterm-256color"}, false, terminal.TierNone},
		{"forced when piped", terminal.MapEnviron{"CLICOLOR_FORCE": "1"}, false, terminal.TierBasic},
		{"force disabled", terminal.MapEnviron{"TERM": "xterm-256color", "CLICOLOR_FORCE": "0"}, false, terminal.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := detector(tt.env, tt.tty).Detect(&fakeTTY{})
			assert.Equal(t, tt.want, c.Tier)
			assert.Equal(t, tt.tty, c.Interactive)
		})
	}
}

func TestDetectNonFileDestination(t *testing.T) {
	d := detector(terminal.MapEnviron{"TERM": "xterm-256color"}, true)
	c := d.Detect(&bytes.Buffer{})
	assert.Equal(t, terminal.TierNone, c.Tier)
	assert.False(t, c.Interactive)
}

func TestDetectNilDestination(t *testing.T) {
	assert.Equal(t, terminal.Capability{}, detector(nil, true).Detect(nil))
}

func TestDetectIsPure(t *testing.T) {
	d := detector(terminal.MapEnviron{"TERM": "xterm-256color"}, true)
	assert.Equal(t, d.Detect(&fakeTTY{}), d.Detect(&fakeTTY{}))
}

func TestDetectVariants(t *testing.T) {
	linux := detector(terminal.MapEnviron{"TERM": "linux"}, true).Detect(&fakeTTY{})
	assert.Equal(t, terminal.VariantLimitedPalette, linux.Variant)
	assert.False(t, linux.Framebuffer)

	fb := detector(terminal.MapEnviron{"TERM": "fbterm"}, true).Detect(&fakeTTY{})
	assert.Equal(t, terminal.VariantLimitedPalette, fb.Variant)
	assert.True(t, fb.Framebuffer)
	assert.False(t, fb.CanHighlight())

	win := &terminal.Detector{Env: terminal.MapEnviron{}, IsTerminal: func(uintptr) bool { return true }, GOOS: "windows"}
	assert.Equal(t, terminal.VariantAltConsole, win.Detect(&fakeTTY{}).Variant)
	assert.Equal(t, "windows_", terminal.VariantAltConsole.Prefix())
	assert.Equal(t, "", terminal.VariantDefault.Prefix())
}

func TestParseTier(t *testing.T) {
	for _, tier := range []terminal.Tier{
		terminal.TierNone, terminal.TierMonochrome, terminal.TierBasic,
		terminal.TierExtended, terminal.TierTrueColor,
	} {
		got, err := terminal.ParseTier(tier.String())
		assert.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := terminal.ParseTier("rainbow")
	assert.Error(t, err)
}

func TestCanHighlight(t *testing.T) {
	assert.False(t, terminal.Capability{Tier: terminal.TierMonochrome}.CanHighlight())
	assert.True(t, terminal.Capability{Tier: terminal.TierBasic}.CanHighlight())
}
