// Package terminal detects the display capability of an output destination.
package terminal

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Environ is the environment the detector reads. It matches termenv's
// Environ so the same value drives both.
type Environ interface {
	Environ() []string
	Getenv(string) string
}

// OSEnviron reads the process environment.
type OSEnviron struct{}

func (OSEnviron) Environ() []string      { return os.Environ() }
func (OSEnviron) Getenv(k string) string { return os.Getenv(k) }

// MapEnviron is a fixed environment, mostly for tests.
type MapEnviron map[string]string

func (m MapEnviron) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func (m MapEnviron) Getenv(k string) string { return m[k] }

// monochromeTerms are terminals that render effects but not color.
var monochromeTerms = map[string]bool{
	"vt100":      true,
	"vt102":      true,
	"vt220":      true,
	"vt320":      true,
	"xterm-mono": true,
	"linux-m":    true,
}

// Detector inspects destinations. The zero value uses the process
// environment, isatty and runtime.GOOS.
type Detector struct {
	Env        Environ
	IsTerminal func(fd uintptr) bool
	GOOS       string
}

// NewDetector returns a detector bound to the real process environment.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect is a convenience wrapper around the default detector.
func Detect(dest io.Writer) Capability {
	return NewDetector().Detect(dest)
}

// Detect reports the capability tier of dest and whether it is an
// interactive terminal. It never fails: anything ambiguous resolves to
// TierNone. Results are not cached.
func (d *Detector) Detect(dest io.Writer) Capability {
	if dest == nil {
		return Capability{}
	}
	env := d.environ()
	term := env.Getenv("TERM")

	c := Capability{
		Term:        term,
		Variant:     d.variant(term),
		Framebuffer: term == "fbterm",
		Interactive: d.interactive(dest),
	}

	if term == "dumb" {
		return c
	}
	forced := env.Getenv("CLICOLOR_FORCE")
	if !c.Interactive && (forced == "" || forced == "0") {
		return c
	}

	out := termenv.NewOutput(dest, termenv.WithEnvironment(env), termenv.WithTTY(true))
	switch out.EnvColorProfile() {
	case termenv.TrueColor:
		c.Tier = TierTrueColor
	case termenv.ANSI256:
		c.Tier = TierExtended
	case termenv.ANSI:
		c.Tier = TierBasic
	default:
		if c.Interactive && monochromeTerms[term] && env.Getenv("NO_COLOR") == "" {
			c.Tier = TierMonochrome
		}
	}
	return c
}

func (d *Detector) environ() Environ {
	if d.Env != nil {
		return d.Env
	}
	return OSEnviron{}
}

func (d *Detector) interactive(dest io.Writer) bool {
	f, ok := dest.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	if d.IsTerminal != nil {
		return d.IsTerminal(f.Fd())
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (d *Detector) variant(term string) Variant {
	goos := d.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" {
		return VariantAltConsole
	}
	if term == "linux" || term == "fbterm" {
		return VariantLimitedPalette
	}
	return VariantDefault
}
