package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/partsengine/internal/config"
	"github.com/matzehuels/partsengine/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags are applied in PersistentPreRunE: the log level is set, the
// logger is attached to the command context, and the configuration is loaded
// with the flag overrides on top.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "partsengine resolves circuit components to JLCPCB part numbers",
		Long: `partsengine turns abstract circuit components (a 10k resistor in 0603, an
8-pin header at 2.54mm pitch) into orderable JLCPCB part numbers by querying
the jlcsearch parts catalog and preferring basic parts.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/partsengine/config.toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the catalog response cache")
	flags.StringVar(&c.cacheBackend, "cache-backend", "",
		"cache backend: "+config.BackendMemory+", "+config.BackendLRU+", "+config.BackendFile+", "+
			config.BackendRedis+", "+config.BackendMongo+" or "+config.BackendNone)

	root.AddCommand(c.findCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
