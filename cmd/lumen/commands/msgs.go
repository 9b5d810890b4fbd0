package commands

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "Render log records for the terminal they are written to"
	MsgRootLong          = "lumen renders log records with themes, icons and data highlighting adapted\nto the capabilities of the destination terminal."
	MsgDemoShort         = "Emit one sample record per level"
	MsgPrettyShort       = "Render zerolog JSON lines read from stdin"
	MsgThemesShort       = "List themes with a rendered sample"
	MsgPlaceholdersShort = "Describe the fields usable in templates"
	MsgConfigShort       = "Print the effective configuration as TOML"
	MsgVersionShort      = "Print version information"
	MsgCompletionShort   = "Generate shell completion script"

	// Output
	MsgThemesHeading = "Themes for %s output (tier %s)"
	MsgSampleMessage = "listening on port %d"

	// Error messages
	MsgErrNoCommand  = "no command specified"
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrReadInput  = "failed to read input: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase diagnostics verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/lumen/lumen.toml)"
	MsgFlagTheme       = "Theme name, or auto"
	MsgFlagHighlight   = "Highlight data embedded in messages"
	MsgFlagNoHighlight = "Disable data highlighting"
	MsgFlagLexer       = "Highlighting language: json, xml, generic or a lexer name"
	MsgFlagLevel       = "Minimum level rendered"
	MsgFlagName        = "Logger name for records without one"
	MsgFlagNameField   = "Event field holding the logger name"
	MsgFlagWatch       = "Reload the config file when it changes"
	MsgFlagDefaults    = "Print the built-in defaults instead"
	MsgFlagStyle       = "Glamour style: auto, dark, light or notty"
)
