package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ifcpeek/ifcpeek/internal/cli/config"
	intconfig "github.com/ifcpeek/ifcpeek/internal/config"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ifcpeek configuration",
		Long: `Inspect and initialize the ifcpeek configuration.

Configuration is read from ./ifcpeek.yaml, then from config.yaml in the
user config directory. Environment variables (IFCPEEK_*) and flags
override file values.`,
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Long: `Write a config.yaml with all settings at their defaults, each with a
comment, into the user config directory.`,
		Example: `  # Create the default config file
  ifcpeek config init

  # Overwrite an existing one
  ifcpeek config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	dir, err := intconfig.EnsureConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !force {
		return peekerr.New(peekerr.KindConfiguration, "%s already exists (use --force to overwrite)", path)
	}

	data, err := renderDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return peekerr.Wrap(peekerr.KindConfiguration, err, "writing %s", path)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the file to taste")
	_, _ = fmt.Fprintln(out, "  2. Run 'ifcpeek doctor' to verify the environment")
	_, _ = fmt.Fprintln(out, "  3. Run 'ifcpeek MODEL.ifc' to start querying")

	return nil
}

// renderDefaultConfig marshals the default configuration as YAML with a
// comment above every key.
func renderDefaultConfig() ([]byte, error) {
	cfg := config.Default()

	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, comment string, value any) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: comment}
		valNode := &yaml.Node{}
		if err := valNode.Encode(value); err != nil {
			return err
		}
		doc.Content = append(doc.Content, keyNode, valNode)
		return nil
	}

	steps := []struct {
		key     string
		comment string
		value   any
	}{
		{"history_file", "ifcpeek configuration. Environment variables (IFCPEEK_*) and flags\noverride these values.\n\nQuery history location. Empty means the per-user state directory.", cfg.HistoryFile},
		{"cache_dir", "Model index cache location. Empty means the per-user cache directory.", cfg.CacheDir},
		{"no_cache", "Disable the model index cache.", cfg.NoCache},
		{"color", "ANSI color output: auto, always or never.", cfg.Color},
		{"format", "Value extraction output format: tsv, table, csv or json.", cfg.Format},
		{"prompt", "Shell prompt.", cfg.Prompt},
		{"verbose", "Info-level logging.", cfg.Verbose},
		{"debug", "Debug-level logging.", cfg.Debug},
		{"force_interactive", "Treat stdin as interactive even when piped.", cfg.ForceInteractive},
	}
	for _, s := range steps {
		if err := add(s.key, s.comment, s.value); err != nil {
			return nil, err
		}
	}

	return yaml.Marshal(doc)
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show resolved configuration and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPath(cmd)
		},
	}
}

func runConfigPath(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile()
	}
	if cfgFile == "" {
		dir, err := intconfig.ConfigDir()
		if err != nil {
			return err
		}
		cfgFile = filepath.Join(dir, "config.yaml") + " (not found)"
	}
	_, _ = fmt.Fprintf(out, "config:   %s\n", cfgFile)

	history, err := intconfig.HistoryFile()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "history:  %s\n", history)

	cacheDir, err := intconfig.CacheDir()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "cache:    %s\n", cacheDir)

	return nil
}
