package commands

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/lumen/pkg/level"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/record"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var sampleLevels = []level.Level{level.Debug, level.Info, level.Warning, level.Error, level.Fatal}

func newThemesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: MsgThemesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			r, _, err := g.renderer(cmd, out)
			if err != nil {
				return err
			}
			c := r.Capability()

			heading := lipgloss.NewRenderer(out)
			heading.SetColorProfile(palette.ProfileFor(c.Tier))
			kind := "piped"
			if c.Interactive {
				kind = "interactive"
			}
			fmt.Fprintln(out, heading.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).
				Render(fmt.Sprintf(MsgThemesHeading, kind, c.Tier)))

			if c.Tier == terminal.TierNone {
				pterm.DisableStyling()
				defer pterm.EnableStyling()
			}

			data := pterm.TableData{{"Theme", "Kind", "Icons", "Sample"}}
			for _, name := range r.Definitions().Names() {
				if err := r.SetTheme(name); err != nil {
					return err
				}
				th := r.Theme()
				icons := make([]string, 0, len(sampleLevels))
				for _, lvl := range sampleLevels {
					icons = append(icons, th.IconFor(r.Levels().Name(lvl)))
				}
				rec := record.New("app", level.Warning, r.Levels().Name(level.Warning), MsgSampleMessage, 8080)
				sample := strings.TrimRight(r.Format(rec), "\n")
				data = append(data, []string{name, string(th.Kind), strings.Join(icons, " "), sample})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, table)
			return nil
		},
	}
}
