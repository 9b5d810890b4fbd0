package commands

import (
	"fmt"

	"github.com/arthur-debert/lumen/pkg/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globals) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				fmt.Fprint(out, config.DefaultContent())
				return nil
			}
			r, cfg, err := g.renderer(cmd, out)
			if err != nil {
				return err
			}
			if path := cfg.Path(); path != "" {
				fmt.Fprintf(out, "# loaded from %s\n", path)
			}
			return config.Dump(out, r)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}
