package config_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/arthur-debert/lumen/pkg/config"
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReapplies(t *testing.T) {
	path := writeFile(t, "level = \"note\"\n")
	cfg := load(t, config.LoadOptions{Path: path})
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, cfg.Apply(r))

	reloaded := make(chan *config.Config, 4)
	w := config.NewWatcher(r, cfg,
		config.WithDebounce(20*time.Millisecond),
		config.WithReloadHandler(func(c *config.Config) { reloaded <- c }),
	)
	require.NoError(t, w.Start(context.Background()))
	defer func() { assert.NoError(t, w.Stop()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("level = \"debug\"\ntheme = \"plain\"\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
	assert.Equal(t, level.Debug, r.Level())
	assert.Equal(t, "plain", r.Theme().Name)
}

func TestWatcherKeepsConfigOnError(t *testing.T) {
	path := writeFile(t, "level = \"warning\"\n")
	cfg := load(t, config.LoadOptions{Path: path})
	r := newRenderer(t, &bytes.Buffer{})
	require.NoError(t, cfg.Apply(r))

	failures := make(chan error, 4)
	w := config.NewWatcher(r, cfg,
		config.WithDebounce(20*time.Millisecond),
		config.WithErrorHandler(func(err error) { failures <- err }),
	)
	require.NoError(t, w.Start(context.Background()))
	defer func() { assert.NoError(t, w.Stop()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("verbosity = 3\n"), 0o644))

	select {
	case err := <-failures:
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownOption), "got %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload failure")
	}
	assert.Equal(t, level.Warning, r.Level())
}

func TestWatcherStopsWithContext(t *testing.T) {
	cfg := load(t, config.LoadOptions{Path: writeFile(t, "")})
	w := config.NewWatcher(newRenderer(t, &bytes.Buffer{}), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "second stop is a no-op")
}

func TestWatcherWithoutFile(t *testing.T) {
	cfg := load(t, config.LoadOptions{})
	w := config.NewWatcher(newRenderer(t, &bytes.Buffer{}), cfg)
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}
