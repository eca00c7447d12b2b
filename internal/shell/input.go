package shell

import (
	"bufio"
	"io"

	"github.com/chzyer/readline"

	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// lineSource yields one input line per call. Interactive sessions read
// through readline; piped sessions through a buffered scanner.
type lineSource interface {
	ReadLine() (string, error)
	SaveHistory(line string) error
	Close() error
}

type readlineSource struct {
	rl *readline.Instance
}

func newReadlineSource(cfg Config, completer readline.AutoCompleter) (*readlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 cfg.Prompt,
		HistoryFile:            cfg.HistoryFile,
		AutoComplete:           completer,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, peekerr.Wrap(peekerr.KindConfiguration, err, "failed to initialize line editor")
	}
	return &readlineSource{rl: rl}, nil
}

func (r *readlineSource) ReadLine() (string, error) {
	return r.rl.Readline()
}

// SaveHistory records the line manually so that rejected input never
// lands in the history file.
func (r *readlineSource) SaveHistory(line string) error {
	return r.rl.SaveHistory(line)
}

func (r *readlineSource) Close() error {
	return r.rl.Close()
}

type scannerSource struct {
	sc *bufio.Scanner
}

func newScannerSource(r io.Reader) *scannerSource {
	sc := bufio.NewScanner(r)
	// Generated query scripts can carry very long lines.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scannerSource{sc: sc}
}

func (s *scannerSource) ReadLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scannerSource) SaveHistory(string) error { return nil }

func (s *scannerSource) Close() error { return nil }
