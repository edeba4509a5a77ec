package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardimposer/pkg/buildinfo"
	"github.com/matzehuels/cardimposer/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --verbose (-v): debug logging
//   - --config: explicit config file (default: ./impose.toml, then ~/.config/impose/impose.toml)
//
// Before any subcommand runs the configuration is loaded, the log level is
// applied and the logger is attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "Impose business cards and other small prints onto press sheets",
		Long: `impose arranges card artwork onto print sheets: it computes the densest uniform grid,
pairs fronts with backs, mirrors back sheets for duplex printing, adds crop marks and
writes a print-ready PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg

			level := cfg.Level()
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			if level == LogDebug {
				observability.SetPipelineHooks(logHooks{c.Logger})
				observability.SetCacheHooks(logHooks{c.Logger})
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: impose.toml)")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
