package commands

import (
	"fmt"
	"io"

	"github.com/arthur-debert/lumen/internal/version"
	"github.com/arthur-debert/lumen/pkg/config"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	verbosity   int
	configPath  string
	theme       string
	highlight   bool
	noHighlight bool
	lexer       string
	level       string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "lumen",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&g.configPath, "config", "", MsgFlagConfig)
	flags.StringVar(&g.theme, "theme", "", MsgFlagTheme)
	flags.BoolVar(&g.highlight, "highlight", false, MsgFlagHighlight)
	flags.BoolVar(&g.noHighlight, "no-highlight", false, MsgFlagNoHighlight)
	flags.StringVar(&g.lexer, "lexer", "", MsgFlagLexer)
	flags.StringVar(&g.level, "level", "", MsgFlagLevel)
	rootCmd.MarkFlagsMutuallyExclusive("highlight", "no-highlight")

	rootCmd.AddCommand(newDemoCmd(g))
	rootCmd.AddCommand(newPrettyCmd(g))
	rootCmd.AddCommand(newThemesCmd(g))
	rootCmd.AddCommand(newPlaceholdersCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// overrides turns the flags that were set into config keys.
func (g *globals) overrides(cmd *cobra.Command) map[string]any {
	o := map[string]any{}
	if g.theme != "" {
		o[string(render.OptTheme)] = g.theme
	}
	if cmd.Flags().Changed("highlight") {
		o[string(render.OptHighlight)] = g.highlight
	}
	if g.noHighlight {
		o[string(render.OptHighlight)] = false
	}
	if g.lexer != "" {
		o[string(render.OptLexer)] = g.lexer
	}
	if g.level != "" {
		o[string(render.OptLevel)] = g.level
	}
	return o
}

// loadConfig reads the config sources with the flag overrides on top.
func (g *globals) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:      g.configPath,
		Overrides: g.overrides(cmd),
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// renderer builds a configured renderer writing to w.
func (g *globals) renderer(cmd *cobra.Command, w io.Writer) (*render.Renderer, *config.Config, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.RendererOptions()
	if err != nil {
		return nil, nil, err
	}
	r, err := render.New(w, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(r); err != nil {
		return nil, nil, err
	}
	logger := logging.GetLogger("cmd")
	logger.Debug().
		Str("theme", r.Theme().Name).
		Str("tier", r.Capability().Tier.String()).
		Msg("renderer configured")
	return r, cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
