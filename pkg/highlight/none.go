//go:build nohighlight

package highlight

import (
	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/terminal"
)

// Available reports whether highlighting is compiled in.
func Available() bool { return false }

func newBackend(lang string, _ terminal.Tier) (backend, error) {
	return nil, errors.Newf(errors.ErrFeatureUnavailable, "highlighting not available in this build (language %q)", lang)
}
