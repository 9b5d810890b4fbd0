package commands

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed placeholders.md
var placeholdersDoc string

func newPlaceholdersCmd(g *globals) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "placeholders",
		Short: MsgPlaceholdersShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			r, _, err := g.renderer(cmd, out)
			if err != nil {
				return err
			}

			if style == "auto" && !r.Capability().Interactive {
				style = "notty"
			}
			var options []glamour.TermRendererOption
			if style == "auto" {
				options = append(options, glamour.WithAutoStyle())
			} else {
				options = append(options, glamour.WithStylePath(style))
			}
			options = append(options, glamour.WithWordWrap(80))

			renderer, err := glamour.NewTermRenderer(options...)
			if err != nil {
				return err
			}
			rendered, err := renderer.Render(placeholdersDoc)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", MsgFlagStyle)
	return cmd
}
