package shell

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ifcpeek/ifcpeek/internal/format"
)

// CommandNames lists the slash commands, for completion and help.
func CommandNames() []string {
	return []string{
		"/classes",
		"/clear",
		"/debug",
		"/exit",
		"/format",
		"/help",
		"/info",
		"/quit",
	}
}

// builtin handles a slash command. The second return is false when the
// first word is no known command, so the caller can run the line as a
// query instead.
func (s *Session) builtin(line string) (action, bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		s.printHelp()
	case "/exit", "/quit":
		return actionExit, true
	case "/debug":
		s.toggleDebug()
	case "/classes":
		prefix := ""
		if len(fields) > 1 {
			prefix = fields[1]
		}
		s.printClasses(prefix)
	case "/info":
		s.printInfo()
	case "/format":
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		s.setFormat(arg)
	case "/clear":
		s.clearScreen()
	default:
		return actionContinue, false
	}
	return actionContinue, true
}

const helpText = `IfcPeek - Interactive IFC Model Query Tool

USAGE:
  Enter a filter query to list matching entities as SPF lines, or add
  semicolon-separated value queries to extract attribute values. Press
  TAB to complete class names, attributes, property sets and keywords.

FILTER QUERIES:
  IfcWall                                  All walls (subtypes included)
  IfcWall, IfcDoor                         Walls and doors
  IfcWall + IfcSlab, material=Concrete     All walls, plus concrete slabs
  IfcWall, !IfcWallStandardCase            Exclude a subtype
  IfcWall, Name=North Wall                 Attribute equality
  IfcWall, Name*=North                     Regular expression match
  IfcDoor, OverallHeight>=2.1              Numeric comparison
  IfcWall, Pset_WallCommon.FireRating=2HR  Property value
  IfcElement, material=Concrete            Keywords: material, storey,
  IfcElement, storey=Level 1               type, id, class
  IfcWall, Description=NULL                Missing value

VALUE EXTRACTION:
  IfcWall ; Name                           One wall name per row
  IfcWall ; Name ; Tag                     Several values per row
  IfcWall ; Pset_WallCommon.FireRating     Property value
  IfcWall ; type.Name                      Type, material, storey,
  IfcWall ; material.Name                  class and id keywords
  IfcWall ; upper(Name)                    Functions: concat, int,
  IfcWall ; round(Qto_WallBaseQuantities.Width, 0.1)
                                           lower, number, round,
                                           title, upper

COMMANDS:
  /help              Show this help
  /classes [prefix]  List model classes with instance counts
  /info              Show model facts from the file header
  /format [mode]     Show or set extraction output: tsv, table, csv, json
  /debug             Toggle debug logging
  /clear             Clear the screen
  /exit, /quit       Exit the shell

HISTORY:
  Up/Down            Navigate previous queries
  Ctrl-R             Search history
  Ctrl-C             Cancel the current line
  Ctrl-D             Exit the shell

PIPED INPUT:
  echo 'IfcWall ; Name' | ifcpeek model.ifc
  Queries are read one per line; results go to stdout, errors to stderr.`

// printHelp writes the help text to stderr, keeping stdout clean for
// query results.
func (s *Session) printHelp() {
	_, _ = fmt.Fprintln(s.stderr, helpText)
}

// printBanner introduces an interactive session. Piped sessions stay
// silent so stdout carries nothing but results.
func (s *Session) printBanner() {
	info := s.engine.Info()
	_, _ = fmt.Fprintf(s.stdout, "%s (%s, %s, %d entities)\n",
		s.styles.Banner.Render("IfcPeek"), filepath.Base(info.Path), info.Schema, info.Entities)
	_, _ = fmt.Fprintln(s.stdout, "Type /help for commands, Ctrl-D to exit.")
	_, _ = fmt.Fprintln(s.stdout)
}

func (s *Session) toggleDebug() {
	s.debug = !s.debug
	if s.debug {
		s.level.Set(slog.LevelDebug)
		_, _ = fmt.Fprintln(s.stderr, "Debug mode enabled.")
		return
	}
	s.level.Set(s.cfg.BaseLevel)
	_, _ = fmt.Fprintln(s.stderr, "Debug mode disabled.")
}

// printClasses lists the model's classes and instance counts, optionally
// narrowed to a case-insensitive name prefix.
func (s *Session) printClasses(prefix string) {
	idx := s.engine.Index()
	if idx == nil {
		_, _ = fmt.Fprintln(s.stderr, "No class index available.")
		return
	}
	rows := make([][]string, 0, len(idx.Classes))
	for _, c := range idx.Classes {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(prefix)) {
			continue
		}
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	_ = format.RenderRows(s.stdout, format.ModeTable, []string{"Class", "Count"}, rows)
}

// printInfo shows the model facts gathered at load time. Header fields
// the file does not carry are omitted.
func (s *Session) printInfo() {
	info := s.engine.Info()
	_, _ = fmt.Fprintf(s.stdout, "Model: %s\n", info.Path)
	_, _ = fmt.Fprintf(s.stdout, "Schema: %s\n", info.Schema)
	_, _ = fmt.Fprintf(s.stdout, "Entities: %d\n", info.Entities)
	_, _ = fmt.Fprintf(s.stdout, "Classes: %d\n", info.Classes)

	h := info.Header
	if h.Name != "" && h.Name != filepath.Base(info.Path) {
		_, _ = fmt.Fprintf(s.stdout, "Header name: %s\n", h.Name)
	}
	if h.Timestamp != "" {
		_, _ = fmt.Fprintf(s.stdout, "Created: %s\n", h.Timestamp)
	}
	if len(h.Authors) > 0 {
		_, _ = fmt.Fprintf(s.stdout, "Authors: %s\n", strings.Join(h.Authors, ", "))
	}
	if len(h.Organizations) > 0 {
		_, _ = fmt.Fprintf(s.stdout, "Organizations: %s\n", strings.Join(h.Organizations, ", "))
	}
	if h.PreprocessorVersion != "" {
		_, _ = fmt.Fprintf(s.stdout, "Preprocessor: %s\n", h.PreprocessorVersion)
	}
	if h.OriginatingSystem != "" {
		_, _ = fmt.Fprintf(s.stdout, "Originating system: %s\n", h.OriginatingSystem)
	}
}

// setFormat shows or changes the extraction rendering mode. Feedback
// goes to stderr so piped stdout stays parseable.
func (s *Session) setFormat(arg string) {
	if arg == "" {
		_, _ = fmt.Fprintf(s.stderr, "Format: %s (valid: %s)\n", s.mode, strings.Join(format.Modes(), ", "))
		return
	}
	mode, err := format.ParseMode(arg)
	if err != nil {
		_, _ = fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return
	}
	s.mode = mode
	_, _ = fmt.Fprintf(s.stderr, "Format set to %s.\n", mode)
}

func (s *Session) clearScreen() {
	if !s.caps.Interactive {
		return
	}
	_, _ = fmt.Fprint(s.stdout, "\x1b[2J\x1b[H")
}
