package render

import (
	"bytes"
	"os"
	"testing"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerEmit(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, terminal.Capability{})
	require.NoError(t, h.Emit("one"))
	require.NoError(t, h.Emit("two"))
	assert.Equal(t, "one\ntwo\n", buf.String())

	h.Close()
	assert.True(t, h.Closed())
	assert.True(t, errors.IsErrorCode(h.Emit("three"), errors.ErrInternal))
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestHandlerWrapsOnlyWindowsConsoles(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	plain := NewHandler(f, terminal.Capability{Interactive: true})
	assert.Same(t, f, plain.out)

	piped := NewHandler(f, terminal.Capability{Variant: terminal.VariantAltConsole})
	assert.Same(t, f, piped.out)
	assert.Same(t, f, piped.Destination())
}
