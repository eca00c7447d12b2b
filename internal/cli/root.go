// Package cli provides the command-line interface for ifcpeek.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ifcpeek/ifcpeek/internal/cli/commands"
	"github.com/ifcpeek/ifcpeek/internal/cli/config"
	"github.com/ifcpeek/ifcpeek/internal/loader"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
	"github.com/ifcpeek/ifcpeek/internal/shell"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCmd creates and returns the root command. The root command
// itself is the shell: `ifcpeek FILE` loads the model and runs the
// interactive session (or processes piped stdin).
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ifcpeek [flags] FILE",
		Short: "Interactive IFC model query shell",
		Long: `ifcpeek loads an IFC (ISO 10303-21) building model and opens an
interactive shell for querying it: filter queries list matching entities
as SPF lines, and semicolon-separated value queries extract attribute
values. With piped stdin it processes one query per line.`,
		Example: `  # Open a shell on a model
  ifcpeek building.ifc

  # Extract wall names non-interactively
  echo 'IfcWall ; Name' | ifcpeek building.ifc

  # Force plain output
  ifcpeek --color never --format csv building.ifc`,
		Version: Version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return peekerr.New(peekerr.KindConfiguration, "expected exactly one model file argument")
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Help and completion must work without valid configuration,
			// `config init` is the escape hatch for a broken file, and
			// doctor reports configuration failures instead of dying
			// on them.
			switch cmd.Name() {
			case "help", "completion", "__complete", "doctor":
				return nil
			}
			if p := cmd.Parent(); p != nil && p.Name() == "config" {
				return nil
			}

			cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, level := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.Debug)
			if cfg.File != "" {
				logger.Info("using config file", "path", cfg.File)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger, level)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} v{{.Version}}
Interactive IFC model query shell
`)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./ifcpeek.yaml, then the user config dir)")
	flags.String("history-file", "", "query history file (default: state dir)")
	flags.String("cache-dir", "", "model index cache directory (default: cache dir)")
	flags.Bool("no-cache", false, "disable the model index cache")
	flags.String("color", "", "ANSI color output: auto, always, never")
	flags.String("format", "", "extraction output format: tsv, table, csv, json")
	flags.Bool("force-interactive", false, "treat stdin as interactive even when piped")
	flags.BoolP("verbose", "v", false, "info-level logging")
	flags.Bool("debug", false, "debug-level logging")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"tsv", "table", "csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewDoctorCommand(Version))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// runShell loads the model and runs a session over it.
func runShell(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	caps := shell.DetectCapabilities(cfg.ForceInteractive, cfg.ColorMode())
	logger.Debug("capabilities detected", "interactive", caps.Interactive, "color", caps.Color)

	model, err := loader.Load(ctx, path, loader.Options{
		CacheDir: cfg.EffectiveCacheDir(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	session := shell.New(model, shell.Config{
		HistoryFile: cfg.HistoryFile,
		Prompt:      cfg.Prompt,
		Format:      cfg.Mode(),
		Caps:        caps,
		Logger:      logger,
		Level:       config.GetLevel(ctx),
		BaseLevel:   config.BaseLevel(cfg.Verbose),
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	return session.Run(ctx)
}

// Execute runs the root command under ctx. Errors are printed here, the
// single print site, and returned for exit-code mapping in main.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// A canceled context means the user interrupted; the terminal
		// already shows that.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ifcpeek.

Bash:
  $ source <(ifcpeek completion bash)

Zsh:
  $ ifcpeek completion zsh > "${fpath[1]}/_ifcpeek"

Fish:
  $ ifcpeek completion fish | source

PowerShell:
  PS> ifcpeek completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
