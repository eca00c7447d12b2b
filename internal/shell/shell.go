// Package shell implements the interactive query session: the read,
// classify, dispatch, execute loop over a loaded model, with history,
// completion and recoverable per-query errors. A session runs either
// interactively through readline or over piped stdin, and terminates
// only on end of input, an exit command or a fatal error.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/ifcpeek/ifcpeek/internal/cache"
	"github.com/ifcpeek/ifcpeek/internal/complete"
	"github.com/ifcpeek/ifcpeek/internal/format"
	"github.com/ifcpeek/ifcpeek/internal/loader"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// QueryEngine executes queries against the loaded model. loader.Model
// is the production implementation.
type QueryEngine interface {
	// Filter returns one SPF line per matched instance.
	Filter(query string) ([]string, error)
	// Extract returns one row of extracted values per matched instance.
	Extract(filterQuery string, valueQueries []string) ([][]string, error)
	Info() loader.Info
	Index() *cache.Index
}

var _ QueryEngine = (*loader.Model)(nil)

// Capabilities records what the terminal supports, probed once at
// startup and fixed for the session's lifetime.
type Capabilities struct {
	// Interactive is whether stdin is a terminal (or interactivity was
	// forced). It selects readline over the stdin scanner and enables
	// the banner, prompts and error boxes.
	Interactive bool
	// Color is whether stdout gets ANSI escape sequences.
	Color bool
}

// DetectCapabilities probes stdin and stdout once.
func DetectCapabilities(forceInteractive bool, mode format.ColorMode) Capabilities {
	interactive := forceInteractive || term.IsTerminal(int(os.Stdin.Fd()))
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	return Capabilities{
		Interactive: interactive,
		Color:       format.EnableColor(mode, stdoutTTY),
	}
}

// Config configures a session.
type Config struct {
	HistoryFile string
	Prompt      string      // defaults to "> "
	Format      format.Mode // initial rendering mode, defaults to tsv
	Caps        Capabilities
	Logger      *slog.Logger
	Level       *slog.LevelVar // shared with the logger; /debug flips it
	BaseLevel   slog.Level     // level /debug returns to

	Stdin  io.Reader // piped-mode input, defaults to os.Stdin
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// Session is one run of the shell over one model. It owns the input
// source and transient per-iteration state; the model handle behind the
// engine is immutable for the session's lifetime.
type Session struct {
	engine QueryEngine
	cfg    Config
	caps   Capabilities
	mode   format.Mode
	hl     *format.Highlighter
	styles *format.Styles
	log    *slog.Logger
	level  *slog.LevelVar
	debug  bool

	stdout io.Writer
	stderr io.Writer
}

// New builds a session. Zero-value Config fields get working defaults.
func New(engine QueryEngine, cfg Config) *Session {
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}
	if cfg.Format == "" {
		cfg.Format = format.ModeTSV
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Level == nil {
		cfg.Level = new(slog.LevelVar)
		cfg.Level.Set(cfg.BaseLevel)
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Session{
		engine: engine,
		cfg:    cfg,
		caps:   cfg.Caps,
		mode:   cfg.Format,
		hl:     format.NewHighlighter(cfg.Caps.Color),
		styles: format.NewStyles(cfg.Caps.Color),
		log:    cfg.Logger,
		level:  cfg.Level,
		debug:  cfg.Level.Level() <= slog.LevelDebug,
		stdout: cfg.Stdout,
		stderr: cfg.Stderr,
	}
}

// Run executes the session until end of input, an exit command or a
// fatal error. A nil return is a clean exit.
func (s *Session) Run(ctx context.Context) error {
	if s.caps.Interactive {
		completer := complete.New(s.engine.Index(), CommandNames())
		src, err := newReadlineSource(s.cfg, completer)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()
		s.printBanner()
		return s.loop(ctx, src)
	}
	return s.loop(ctx, newScannerSource(s.cfg.Stdin))
}

// loop is the read, classify, dispatch cycle. Interrupts cancel one
// line; end of input or an exit command ends the session; a failed
// query never does.
func (s *Session) loop(ctx context.Context, src lineSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := src.ReadLine()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			_, _ = fmt.Fprintln(s.stderr, "\n(Use Ctrl-D to exit)")
			continue
		case errors.Is(err, io.EOF):
			if s.caps.Interactive {
				_, _ = fmt.Fprintln(s.stderr, "\nGoodbye!")
			}
			return nil
		case err != nil:
			return peekerr.Wrap(peekerr.KindUnknown, err, "reading input")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Every accepted line lands in history, failed queries and exit
		// commands included.
		if err := src.SaveHistory(line); err != nil {
			s.log.Warn("failed to record history", "error", err)
		}

		if s.dispatch(line) == actionExit {
			return nil
		}
	}
}

type action int

const (
	actionContinue action = iota
	actionExit
)

// dispatch classifies one trimmed, non-empty line. Unrecognized slash
// commands fall through to query execution like any other line.
func (s *Session) dispatch(line string) action {
	switch line {
	case "help", "?":
		s.printHelp()
		return actionContinue
	case "exit", "quit":
		return actionExit
	}
	if strings.HasPrefix(line, "/") {
		if act, handled := s.builtin(line); handled {
			return act
		}
	}
	s.execute(line)
	return actionContinue
}

// execute runs a query line: a plain filter, or a combined query when
// the line contains ';'.
func (s *Session) execute(line string) {
	if !strings.Contains(line, ";") {
		lines, err := s.engine.Filter(line)
		if err != nil {
			s.log.Debug("query failed", "query", line, "error", err)
			s.reportQuery(line, err)
			return
		}
		format.RenderSPF(s.stdout, s.hl, lines)
		return
	}

	parts := strings.Split(line, ";")
	filterQuery := strings.TrimSpace(parts[0])
	valueQueries := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if part = strings.TrimSpace(part); part != "" {
			valueQueries = append(valueQueries, part)
		}
	}

	if filterQuery == "" {
		s.reportCombined(filterQuery, valueQueries, peekerr.New(peekerr.KindQuery, "filter query cannot be empty"))
		return
	}

	// A trailing semicolon with no value queries is still a filter.
	if len(valueQueries) == 0 {
		lines, err := s.engine.Filter(filterQuery)
		if err != nil {
			s.reportCombined(filterQuery, valueQueries, err)
			return
		}
		format.RenderSPF(s.stdout, s.hl, lines)
		return
	}

	rows, err := s.engine.Extract(filterQuery, valueQueries)
	if err != nil {
		s.log.Debug("combined query failed", "filter", filterQuery, "error", err)
		s.reportCombined(filterQuery, valueQueries, err)
		return
	}
	if err := format.RenderRows(s.stdout, s.mode, valueQueries, rows); err != nil {
		s.log.Warn("failed to render results", "error", err)
	}
}

func (s *Session) reportQuery(query string, err error) {
	if s.caps.Interactive {
		format.QueryErrorBox(s.stderr, query, err)
		return
	}
	format.PlainError(s.stderr, err)
}

func (s *Session) reportCombined(filterQuery string, valueQueries []string, err error) {
	if s.caps.Interactive {
		format.CombinedErrorBox(s.stderr, filterQuery, valueQueries, err)
		return
	}
	format.PlainError(s.stderr, err)
}
