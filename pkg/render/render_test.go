package render_test

import (
	"bytes"
	stderrors "errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/format"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/arthur-debert/lumen/pkg/theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// fakeTTY is a buffer the test detector treats as a terminal.
type fakeTTY struct{ bytes.Buffer }

func (f *fakeTTY) Fd() uintptr { return 7 }

func testDetector() *terminal.Detector {
	return &terminal.Detector{
		Env:        terminal.MapEnviron{"TERM": "xterm-256color"},
		IsTerminal: func(uintptr) bool { return true },
		GOOS:       "linux",
	}
}

func newRenderer(t *testing.T, dest interface{ Write([]byte) (int, error) }, opts ...render.Option) *render.Renderer {
	t.Helper()
	r, err := render.New(dest, append([]render.Option{render.WithDetector(testDetector())}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestDefaultsForPipe(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)

	assert.Equal(t, terminal.TierNone, r.Capability().Tier)
	assert.Equal(t, "production", r.Theme().Name)
	assert.False(t, r.Highlighting())
	assert.Equal(t, level.Note, r.Level())
	assert.Equal(t, level.Info, r.DefaultLevel())

	log := r.Logger("app")
	log.Info("hidden")
	log.Note("hello")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "\x1b")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestDefaultsForTerminal(t *testing.T) {
	tty := &fakeTTY{}
	r := newRenderer(t, tty)

	assert.Equal(t, terminal.TierExtended, r.Capability().Tier)
	assert.True(t, r.Capability().Interactive)
	assert.Equal(t, "interactive", r.Theme().Name)
	assert.True(t, r.Highlighting())

	r.SetLanguage("json")
	r.Logger("app").Warn(`data: {"a": 1}`)
	out := tty.String()
	assert.Contains(t, out, "data: \x1b[")
	assert.Contains(t, ansi.ReplaceAllString(out, ""), `data: {"a": 1}`)
}

func TestSetDestinationRebindsOneHandler(t *testing.T) {
	var first, second bytes.Buffer
	r := newRenderer(t, &first)
	old := r.Handlers()[0]

	tty := &fakeTTY{}
	require.NoError(t, r.SetDestination(tty))
	require.NoError(t, r.SetDestination(&second))

	handlers := r.Handlers()
	require.Len(t, handlers, 1)
	assert.Same(t, &second, handlers[0].Destination())
	assert.True(t, old.Closed())

	r.Logger("app").Error("after")
	assert.Empty(t, first.String())
	assert.Empty(t, tty.String())
	assert.Contains(t, second.String(), "after")
}

func TestSetDestinationRedetects(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetStyle("bold"))

	tty := &fakeTTY{}
	require.NoError(t, r.SetDestination(tty))
	assert.Equal(t, terminal.TierExtended, r.Capability().Tier)
	assert.Equal(t, "interactive", r.Theme().Name)
	assert.NotEmpty(t, r.Theme().Style["ERROR"], "named style re-rendered for the new tier")
	assert.True(t, r.Highlighting())
}

func TestSetThemeJSON(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetTheme("json"))
	_, ok := r.Formatter().(*format.JSON)
	require.True(t, ok)

	r.Logger("app").Error("boom %d", 1)
	line := strings.TrimRight(buf.String(), "\n")
	assert.Contains(t, line, `"message":"boom 1"`)
	assert.Contains(t, line, `"levelname":"ERROR"`)
}

func TestSetThemePlainDisablesHighlighting(t *testing.T) {
	tty := &fakeTTY{}
	r := newRenderer(t, tty)
	require.NoError(t, r.SetTheme("plain"))

	r.Logger("app").Error(`data: {"a": 1}`)
	assert.NotContains(t, tty.String(), "\x1b")
}

func TestSetThemeValue(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetThemeValue(&theme.Theme{
		Name:     "mine",
		Template: "[{icon}] {message}",
		Icons:    map[string]string{"WARNING": "w"},
	}))

	log := r.Logger("app")
	log.Warn("careful")
	log.Error("bad")
	assert.Equal(t, "[w] careful\n[] bad\n", buf.String())
}

func TestIconsAndStyleOverrides(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{on}{icon}{off}{message}"))
	require.NoError(t, r.SetIcons("ascii"))
	require.NoError(t, r.SetStyleMap(map[string]string{"ERROR": "<E>"}))

	r.Logger("app").Error("x")
	assert.Equal(t, "<E>Ex\n", buf.String())

	assert.True(t, errors.IsErrorCode(r.SetIcons("nope"), errors.ErrUnknownIcons))
	assert.True(t, errors.IsErrorCode(r.SetStyle("nope"), errors.ErrUnknownStyle))
	assert.True(t, errors.IsErrorCode(r.SetTheme("nope"), errors.ErrUnknownTheme))
	assert.True(t, errors.IsErrorCode(r.SetMsgFormat("{nope}"), errors.ErrTemplateParse))

	buf.Reset()
	r.Logger("app").Error("y")
	assert.Equal(t, "<E>Ey\n", buf.String(), "failed changes leave the configuration alone")
}

func TestSetUnknownOption(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	err := r.Set("colour", "red")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownOption))
	assert.Equal(t, "colour", errors.GetErrorDetails(err)["option"])
}

func TestSetTable(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)

	require.NoError(t, r.Set("level", "debug"))
	assert.Equal(t, level.Debug, r.Level())
	require.NoError(t, r.Set("default_level", "warn"))
	assert.Equal(t, level.Warning, r.DefaultLevel())
	require.NoError(t, r.Set("level", 7))
	assert.Equal(t, level.Trace, r.Level())
	require.NoError(t, r.Set("highlight", "false"))
	assert.False(t, r.Highlighting())
	require.NoError(t, r.Set("icons", map[string]any{"info": "i"}))
	assert.Equal(t, "i", r.Theme().Icons["INFO"])
	require.NoError(t, r.Set("syntax", "brace"))
	require.NoError(t, r.Set("datefmt", "15:04"))
	require.NoError(t, r.Set("msgfmt", "{asctime} {message}"))

	assert.True(t, errors.IsErrorCode(r.Set("highlight", 3), errors.ErrInvalidValue))
	assert.True(t, errors.IsErrorCode(r.Set("level", "loud"), errors.ErrUnknownLevel))
	assert.True(t, errors.IsErrorCode(r.Set("stream", "stdout"), errors.ErrInvalidValue))

	for _, key := range render.Keys() {
		assert.True(t, render.IsOption(string(key)))
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	gate := level.Info
	name := "mono"
	tmpl := "{levelname} {message}"
	require.NoError(t, r.Configure(render.Options{
		Level:     &gate,
		Theme:     &name,
		MsgFormat: &tmpl,
	}))

	assert.Equal(t, "mono", r.Theme().Name)
	r.Logger("app").Info("ok")
	assert.Equal(t, "INFO ok\n", buf.String())
}

func TestSetLanguageFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	before := r.Language()

	assert.NotPanics(t, func() { r.SetLanguage("no-such-language") })
	assert.Equal(t, before, r.Language())
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "lexer:")

	require.NoError(t, r.Set("lexer", "no-such-language"), "reported through the log, not returned")

	r.SetLanguage("xml")
	assert.Equal(t, "xml", r.Language())
}

func TestPrintUsesDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{levelname}:{message}"))

	log := r.Logger("app")
	log.Print("dropped")
	r.SetDefaultLevel(level.Warning)
	log.Print("shown")
	assert.Equal(t, "WARNING:shown\n", buf.String())
}

func TestWithFieldsKeepLiteralBraces(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{message}"))

	r.Logger("app").With("user", "bob").Warn(`data: {"a": 1}`)
	r.Logger("app").Warn(`data: {"a": 1}`)
	r.Logger("app").With("user", "bob").Warn("hello {user}")
	assert.Equal(t, "data: {\"a\": 1}\ndata: {\"a\": 1}\nhello bob\n", buf.String())
}

func TestExceptAndFatal(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{levelname} {message}"))

	log := r.Logger("app")
	log.Except(stderrors.New("disk full"), "write failed")
	log.Fatal("bye")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "EXCEPT write failed ▾", lines[0])
	assert.Contains(t, lines[1], "disk full")
	assert.Equal(t, "FATAL bye", lines[2])
}

func TestCallerAndNames(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{name} {funcName} {filename} {message}"))

	r.Logger("app").Named("db").With("table", "users").Error("read {table}")
	assert.Equal(t, "app.db TestCallerAndNames render_test.go read users\n", buf.String())
}

func TestRegisterLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetMsgFormat("{levelname} {message}"))

	_, err := r.RegisterLevel("LOUD", level.Error)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLevelCollision))

	h, err := r.RegisterLevel("LOUD", 45)
	require.NoError(t, err)
	r.Logger("app").Log(h.Level, "hey")
	assert.Equal(t, "LOUD hey\n", buf.String())
}

func TestLogConfig(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	r.SetLevel(level.Debug)
	r.Logger("app").LogConfig()

	out := buf.String()
	assert.Contains(t, out, "lumen logging config")
	assert.Contains(t, out, ".level: DEBUG (10)")
	assert.Contains(t, out, "production")
}

func TestSnapshot(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(t, &buf)
	require.NoError(t, r.SetIcons("circled"))

	snap := r.Snapshot()
	assert.Equal(t, "NOTE", snap.Level)
	assert.Equal(t, "auto (production)", snap.Theme)
	assert.Equal(t, "circled", snap.Icons)
	assert.Equal(t, "theme", snap.Style)
	assert.Equal(t, "none", snap.Tier)
}

func TestConcurrentEmitAndReconfigure(t *testing.T) {
	var buf syncBuffer
	r := newRenderer(t, &buf)
	r.SetLevel(level.Trace)
	log := r.Logger("app")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Info("line %d", j)
			}
		}()
	}
	for _, name := range []string{"plain", "json", "mono", "production"} {
		require.NoError(t, r.SetTheme(name))
	}
	wg.Wait()
	assert.Equal(t, 400, strings.Count(buf.String(), "\n"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	r := newRenderer(t, &buf, render.WithMetrics(reg))
	r.Logger("app").Error("%d {5}", "x")

	n, err := testutil.GatherAndCount(reg, "lumen_format_records_total", "lumen_format_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
