package render

import (
	"io"
	"os"
	"sync"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/mattn/go-colorable"
)

// Handler delivers rendered lines to one destination. Writes are
// serialised so concurrent records never interleave.
type Handler struct {
	mu     sync.Mutex
	dest   io.Writer
	out    io.Writer
	closed bool
}

// NewHandler binds a handler to dest. Interactive Windows consoles get
// ANSI translation.
func NewHandler(dest io.Writer, c terminal.Capability) *Handler {
	out := dest
	if f, ok := dest.(*os.File); ok && c.Interactive && c.Variant == terminal.VariantAltConsole {
		out = colorable.NewColorable(f)
	}
	return &Handler{dest: dest, out: out}
}

// Destination returns the writer the handler was bound to.
func (h *Handler) Destination() io.Writer { return h.dest }

// Emit writes line followed by a newline.
func (h *Handler) Emit(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New(errors.ErrInternal, "handler is closed")
	}
	_, err := io.WriteString(h.out, line+"\n")
	return err
}

// Close unbinds the handler. The destination itself is not closed.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// Closed reports whether Close was called.
func (h *Handler) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
