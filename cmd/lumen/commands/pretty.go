package commands

import (
	"bufio"
	"context"
	"fmt"

	"github.com/arthur-debert/lumen/pkg/bridge"
	"github.com/arthur-debert/lumen/pkg/config"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/spf13/cobra"
)

const maxLine = 1 << 20

func newPrettyCmd(g *globals) *cobra.Command {
	var (
		name      string
		nameField string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "pretty",
		Short: MsgPrettyShort,
		Long: `pretty reads newline-delimited zerolog JSON events from stdin and renders
each as a record. Fields that are not part of the record are appended to
the message as compact JSON. Lines that are not JSON are rendered as is.

  $ myservice 2>&1 | lumen pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, err := g.renderer(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if watch {
				w := config.NewWatcher(r, cfg)
				if err := w.Start(background(cmd)); err != nil {
					return err
				}
				defer func() {
					if err := w.Stop(); err != nil {
						logger := logging.GetLogger("cmd.pretty")
						logger.Warn().Err(err).Msg("failed to stop watcher")
					}
				}()
			}

			out := bridge.NewZerologWriter(r, name).WithNameField(nameField)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 64*1024), maxLine)
			for scanner.Scan() {
				if _, err := out.Write(scanner.Bytes()); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf(MsgErrReadInput, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "main", MsgFlagName)
	cmd.Flags().StringVar(&nameField, "name-field", bridge.DefaultNameField, MsgFlagNameField)
	cmd.Flags().BoolVar(&watch, "watch", false, MsgFlagWatch)
	return cmd
}

// background is used when a command runs without a context, as in tests.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
