package testutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/stretchr/testify/require"
)

// FakeTTY is a buffer the test detector treats as a terminal.
type FakeTTY struct{ bytes.Buffer }

// Fd returns a fixed descriptor.
func (f *FakeTTY) Fd() uintptr { return 7 }

// Detector detects every destination with an Fd as a 256-color linux
// terminal.
func Detector() *terminal.Detector {
	return &terminal.Detector{
		Env:        terminal.MapEnviron{"TERM": "xterm-256color"},
		IsTerminal: func(uintptr) bool { return true },
		GOOS:       "linux",
	}
}

// NewRenderer creates a renderer on dest using Detector.
func NewRenderer(t *testing.T, dest io.Writer, opts ...render.Option) *render.Renderer {
	t.Helper()
	r, err := render.New(dest, append([]render.Option{render.WithDetector(Detector())}, opts...)...)
	require.NoError(t, err)
	return r
}
