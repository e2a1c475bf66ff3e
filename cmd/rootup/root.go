package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/config"
	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/rootlog"
)

var (
	flagSkipDyld bool
	flagForce    bool
	flagPrefix   string
	flagVerbose  int
	flagOutput   string
	flagConfig   string

	cfg Config
)

// Config is the resolved configuration carried from PersistentPreRunE into
// every subcommand's RunE.
type Config = config.Config

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagSkipDyld, "skip-dyld", "d", false, "skip the post-install dyld-cache rebuild hook (recorded only; rootup runs no such hook)")
	rootCmd.PersistentFlags().BoolVarP(&flagForce, "force", "f", false, "permit unsafe replacements (dir<->file, etc.)")
	rootCmd.PersistentFlags().StringVarP(&flagPrefix, "prefix", "p", "", "overlay prefix (default \"/\")")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "verbosity, repeat for more")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "output format: text|json|yaml")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a project config.toml, overriding the depot default")
}

var rootCmd = &cobra.Command{
	Use:   "rootup <command>",
	Short: "Manage an overlay root with install/uninstall and full rollback",
	Long: `rootup layers archives onto a filesystem prefix, recording enough
of the pre-install state to uninstall cleanly later, even when later
archives have since touched the same paths.

Examples:
  rootup install ./build/agent-v2.tar.bz2
  rootup upgrade ./build/agent-v3.tar.bz2
  rootup uninstall newest
  rootup list
  rootup files superseded`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrides := config.Config{
			General: config.GeneralConfig{
				Prefix:       flagPrefix,
				Force:        flagForce,
				Verbose:      flagVerbose,
				SkipDyldHook: flagSkipDyld,
				OutputFormat: flagOutput,
			},
		}
		loaded, err := config.Load(config.LoadOptions{
			Prefix:        flagPrefix,
			ConfigPath:    flagConfig,
			FlagOverrides: &overrides,
		})
		if err != nil {
			return usageErrorf("%v", err)
		}
		if loaded.General.Prefix == "" {
			loaded.General.Prefix = "/"
		}
		cfg = loaded

		rootlog.SetDefault(rootlog.New(rootlog.Options{
			Level:           rootlog.LevelForVerbosity(cfg.General.Verbose),
			Output:          os.Stderr,
			TimeFormat:      rootlog.DefaultOptions().TimeFormat,
			ReportCaller:    cfg.General.Verbose >= 2,
			ReportTimestamp: true,
		}))

		switch cfg.General.OutputFormat {
		case "json":
			cliutil.SetMode(cliutil.ModeJSON)
		case "yaml":
			cliutil.SetMode(cliutil.ModeYAML)
		default:
			cliutil.SetMode(cliutil.ModeText)
		}
		return nil
	},
}

// Execute runs the CLI, returning any error for main to translate into an
// exit code.
func Execute() error {
	return rootCmd.Execute()
}

// openDepot opens the depot for cfg's prefix and runs a consistency check
// up front, matching the original tool's startup behavior of refusing
// further mutation while inactive archives remain. initCode is the
// command-specific depot-initialization exit code (11-16).
func openDepot(initCode int) (*depot.Depot, error) {
	if cfg.General.Prefix == "" {
		return nil, invalidPrefixErrorf("rootup: empty overlay prefix")
	}
	d, err := depot.Open(cfg.General.Prefix, depot.Options{
		Force:              cfg.General.Force,
		Verbose:            cfg.General.Verbose,
		SkipDyld:           cfg.General.SkipDyldHook,
		AutoResolveCrashes: cfg.Depot.AutoResolveCrashes,
	}, nil)
	if err != nil {
		return nil, depotInitErrorf(initCode, "%v", err)
	}
	err = d.CheckConsistency(
		func(serial int64, uuid, date, name string) {
			fmt.Fprintf(os.Stderr, "inconsistent: %d %s %s %s\n", serial, uuid, date, name)
		},
		func() bool {
			if cfg.Depot.AutoResolveCrashes {
				return true
			}
			return depot.PromptYesNo(os.Stdin, os.Stderr, "roll back these archives now? [y/N] ")
		},
	)
	if err != nil {
		d.Close()
		return nil, consistencyErrorf(initCode, "%v", err)
	}
	return d, nil
}
