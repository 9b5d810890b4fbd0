package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnvironment points every XDG directory at a temporary tree.
type TestEnvironment struct {
	Root      string
	ConfigDir string
	StateDir  string

	t *testing.T
}

// NewTestEnvironment creates the temporary tree and clears LUMEN_*
// variables inherited from the process environment.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:      root,
		ConfigDir: filepath.Join(root, "config"),
		StateDir:  filepath.Join(root, "state"),
		t:         t,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(env.ConfigDir, "lumen"), 0o755))
	require.NoError(t, os.MkdirAll(env.StateDir, 0o755))

	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	t.Setenv("XDG_STATE_HOME", env.StateDir)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "LUMEN_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return env
}

// WriteConfig writes a config file under the environment and returns its
// path.
func (e *TestEnvironment) WriteConfig(content string) string {
	e.t.Helper()
	path := filepath.Join(e.ConfigDir, "lumen", "lumen.toml")
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteFile writes a file relative to the environment root.
func (e *TestEnvironment) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.Root, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
