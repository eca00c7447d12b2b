// Package complete provides readline auto-completion for the query
// shell, fed by the model index: entity class names, selector keywords
// and functions, attribute names, property set names and their members,
// and the shell's slash commands.
package complete

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ifcpeek/ifcpeek/internal/cache"
	"github.com/ifcpeek/ifcpeek/pkg/selector"
)

// Completer implements readline.AutoCompleter over a model index. The
// candidate pool depends on where the cursor is: slash commands at the
// start of a line, set members after a `SetName.`, attribute names after
// any other dot, NULL after a comparison operator, and the combined
// class/keyword/function/attribute pool elsewhere. Matching is
// case-insensitive, like the query language.
type Completer struct {
	commands []string
	props    map[string][]string
	attrs    []string
	words    []string
}

var _ readline.AutoCompleter = (*Completer)(nil)

// New builds a completer from a model index and the shell's command
// names (leading slash included). A nil index still completes keywords,
// functions and commands.
func New(idx *cache.Index, commands []string) *Completer {
	c := &Completer{commands: append([]string(nil), commands...)}
	sort.Strings(c.commands)

	seen := make(map[string]struct{})
	add := func(pool *[]string, names []string) {
		for _, n := range names {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			*pool = append(*pool, n)
		}
	}

	if idx != nil {
		c.props = idx.PsetProps
		for _, names := range idx.Attributes {
			add(&c.attrs, names)
		}
		sort.Strings(c.attrs)

		c.words = append(c.words, c.attrs...)
		add(&c.words, idx.ClassNames())
		add(&c.words, idx.PsetNames)
	}
	add(&c.words, selector.Keywords())
	add(&c.words, selector.Functions())
	sort.Strings(c.words)
	return c
}

// Do completes the word under the cursor. It returns the candidate
// suffixes and the length of the typed prefix, per the readline
// contract.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	head := line[:pos]
	if inString(head) {
		return nil, 0
	}

	start := pos
	for start > 0 && isWordRune(head[start-1]) {
		start--
	}
	word := string(head[start:pos])

	if strings.HasPrefix(word, "/") {
		if start != 0 {
			return nil, 0
		}
		return match(c.commands, word)
	}

	if start > 0 && head[start-1] == '.' {
		if props, ok := c.props[prevWord(head, start-1)]; ok {
			return match(props, word)
		}
		return match(c.attrs, word)
	}

	if wantsValue(head, start) {
		return match([]string{"NULL"}, word)
	}
	return match(c.words, word)
}

// match returns the suffixes of pool entries whose prefix folds equal to
// word. Exact matches contribute an empty suffix, which readline uses to
// close the candidate list.
func match(pool []string, word string) ([][]rune, int) {
	wr := []rune(word)
	var out [][]rune
	for _, cand := range pool {
		cr := []rune(cand)
		if len(cr) < len(wr) {
			continue
		}
		if !strings.EqualFold(string(cr[:len(wr)]), word) {
			continue
		}
		out = append(out, cr[len(wr):])
	}
	return out, len(wr)
}

// prevWord returns the word ending just before index i.
func prevWord(head []rune, i int) string {
	end := i
	start := end
	for start > 0 && isWordRune(head[start-1]) {
		start--
	}
	return string(head[start:end])
}

// wantsValue reports whether the word starting at start sits right after
// a comparison operator, where the only completable token is NULL. All
// operators end in '=', '>' or '<'.
func wantsValue(head []rune, start int) bool {
	for i := start - 1; i >= 0; i-- {
		switch head[i] {
		case ' ', '\t':
			continue
		case '=', '>', '<':
			return true
		default:
			return false
		}
	}
	return false
}

// inString reports whether the cursor is inside an open quoted value.
func inString(head []rune) bool {
	var delim rune
	for _, r := range head {
		switch {
		case delim == 0 && (r == '\'' || r == '"'):
			delim = r
		case r == delim:
			delim = 0
		}
	}
	return delim != 0
}

// isWordRune mirrors the query language's word characters, plus '/' so
// slash commands complete as one token.
func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '$', r == '/':
		return true
	}
	return false
}
