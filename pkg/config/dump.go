package config

import (
	"io"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/pelletier/go-toml/v2"
)

// Dump writes the effective configuration of r as TOML.
func Dump(w io.Writer, r *render.Renderer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(r.Snapshot()); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode config")
	}
	return nil
}
