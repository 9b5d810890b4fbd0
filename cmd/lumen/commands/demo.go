package commands

import (
	"errors"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/spf13/cobra"
)

// auditLevel is registered by the demo to show a custom severity.
const auditLevel level.Level = 35

func newDemoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: MsgDemoShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.renderer(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if g.level == "" {
				r.SetLevel(level.Trace)
			}
			audit, err := r.RegisterLevel("AUDIT", auditLevel)
			if err != nil {
				return err
			}

			log := r.Logger("demo")
			log.Trace("resolving %s", "config sources")
			log.Debug("cache warmed in {:.1f}ms", 12.345)
			log.With("host", "localhost").With("port", 8080).Info("listening on {host}:{port}")
			log.Note("processed %d of %d records", 120, 200)
			log.Log(audit.Level, "policy %q applied", "strict")
			log.Named("http").Warn(`slow response: {"path": "/api/users", "ms": 950}`)
			log.Error("rejected payload\n%v", map[string]any{"id": 7, "tags": []string{"a", "b"}})
			log.Except(errors.New("connection reset by peer"), "upstream call failed")
			log.Fatal("giving up after %d retries", 3)
			log.Print("done")
			return nil
		},
	}
}
