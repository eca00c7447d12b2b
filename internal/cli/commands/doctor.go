package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifcpeek/ifcpeek/internal/cache"
	"github.com/ifcpeek/ifcpeek/internal/cli/config"
	intconfig "github.com/ifcpeek/ifcpeek/internal/config"
	"github.com/ifcpeek/ifcpeek/internal/format"
	"github.com/ifcpeek/ifcpeek/internal/loader"
	"github.com/ifcpeek/ifcpeek/internal/shell"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(version string) *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor [FILE]",
		Short: "Check the ifcpeek environment",
		Long: `Inspect the ifcpeek environment and report anything that would keep
the shell from working: configuration, state and cache directories,
history file, terminal capabilities. With a FILE argument the model is
loaded as well, so parse problems surface here instead of at startup.`,
		Example: `  # Check the environment
  ifcpeek doctor

  # Also verify that a model loads
  ifcpeek doctor building.ifc

  # Machine-readable report
  ifcpeek doctor --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, version, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Output format: text, json")

	return cmd
}

const (
	statusOK   = "ok"
	statusWarn = "warn"
	statusFail = "fail"
)

// doctorReport is the JSON output for the doctor command.
type doctorReport struct {
	Version string        `json:"version"`
	Checks  []doctorCheck `json:"checks"`
	Healthy bool          `json:"healthy"`
}

// doctorCheck is a single probe result.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

func (r *doctorReport) add(name, status, detail string) {
	r.Checks = append(r.Checks, doctorCheck{Name: name, Status: status, Detail: detail})
	if status == statusFail {
		r.Healthy = false
	}
}

func runDoctor(cmd *cobra.Command, version string, opts *DoctorOptions, args []string) error {
	switch opts.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid doctor format %q (valid: text, json)", opts.Format)
	}

	rep := buildDoctorReport(cmd, version, args)

	if opts.Format == "json" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	caps := shell.DetectCapabilities(false, format.ColorAuto)
	renderDoctorText(cmd.OutOrStdout(), format.NewStyles(caps.Color), rep)
	return nil
}

// buildDoctorReport probes the environment. Configuration is loaded here
// rather than in the root hook so that a broken config file shows up as
// a failed check instead of aborting the command.
func buildDoctorReport(cmd *cobra.Command, version string, args []string) *doctorReport {
	rep := &doctorReport{Version: version, Healthy: true}

	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
	switch {
	case err != nil:
		rep.add("config", statusFail, err.Error())
		cfg = config.Default()
	case cfg.File != "":
		rep.add("config", statusOK, cfg.File)
	default:
		rep.add("config", statusOK, "built-in defaults")
	}

	if dir, err := intconfig.StateDir(); err != nil {
		rep.add("state directory", statusFail, err.Error())
	} else {
		rep.add("state directory", statusOK, dir)
	}

	checkHistory(rep, cfg)
	checkCache(rep, cfg)

	caps := shell.DetectCapabilities(cfg.ForceInteractive, cfg.ColorMode())
	detail := "piped"
	if caps.Interactive {
		detail = "interactive"
	}
	if caps.Color {
		detail += ", color"
	} else {
		detail += ", no color"
	}
	rep.add("terminal", statusOK, detail)

	if len(args) == 1 {
		checkModel(cmd, rep, cfg, args[0])
	}

	return rep
}

func checkHistory(rep *doctorReport, cfg *config.Config) {
	path := cfg.HistoryFile
	if path == "" {
		resolved, err := intconfig.HistoryFile()
		if err != nil {
			rep.add("history file", statusFail, err.Error())
			return
		}
		path = resolved
	}

	fi, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		rep.add("history file", statusOK, path+" (will be created on first use)")
	case err != nil:
		rep.add("history file", statusFail, err.Error())
	case fi.IsDir():
		rep.add("history file", statusFail, path+" is a directory")
	default:
		rep.add("history file", statusOK, fmt.Sprintf("%s (%d bytes)", path, fi.Size()))
	}
}

func checkCache(rep *doctorReport, cfg *config.Config) {
	if cfg.NoCache {
		rep.add("index cache", statusOK, "disabled")
		return
	}

	dir := cfg.EffectiveCacheDir()
	if dir == "" {
		resolved, err := intconfig.CacheDir()
		if err != nil {
			rep.add("index cache", statusFail, err.Error())
			return
		}
		dir = resolved
	}

	store, err := cache.Open(dir)
	if err != nil {
		// Cache failures never stop the shell, so a broken cache is only
		// worth a warning here.
		rep.add("index cache", statusWarn, fmt.Sprintf("unavailable: %v", err))
		return
	}
	defer func() { _ = store.Close() }()

	n, err := store.Entries()
	if err != nil {
		rep.add("index cache", statusWarn, fmt.Sprintf("unreadable: %v", err))
		return
	}
	rep.add("index cache", statusOK, fmt.Sprintf("%d cached models (%s)", n, store.Path()))
}

func checkModel(cmd *cobra.Command, rep *doctorReport, cfg *config.Config, path string) {
	model, err := loader.Load(cmd.Context(), path, loader.Options{
		CacheDir: cfg.EffectiveCacheDir(),
		Logger:   config.GetLogger(cmd.Context()),
	})
	if err != nil {
		rep.add("model", statusFail, err.Error())
		return
	}
	info := model.Info()
	rep.add("model", statusOK, fmt.Sprintf("%s, %d entities, %d classes", info.Schema, info.Entities, info.Classes))
}

func renderDoctorText(w io.Writer, styles *format.Styles, rep *doctorReport) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Banner.Render(fmt.Sprintf("ifcpeek v%s environment report", rep.Version)))
	_, _ = fmt.Fprintln(w, styles.Muted.Render(strings.Repeat("=", 40)))
	_, _ = fmt.Fprintln(w)

	for _, c := range rep.Checks {
		mark := styles.Info.Render("ok  ")
		switch c.Status {
		case statusWarn:
			mark = styles.Warning.Render("warn")
		case statusFail:
			mark = styles.Error.Render("FAIL")
		}
		_, _ = fmt.Fprintf(w, "  [%s] %-16s %s\n", mark, c.Name, c.Detail)
	}

	_, _ = fmt.Fprintln(w)
	if rep.Healthy {
		_, _ = fmt.Fprintln(w, "No problems found.")
	} else {
		_, _ = fmt.Fprintln(w, styles.Error.Render("Problems found. The shell may not work until they are fixed."))
	}
}
