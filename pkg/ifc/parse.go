package ifc

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Options tunes parsing. The zero value is ready to use.
type Options struct {
	// Workers bounds the instance-parse fan-out. Zero means GOMAXPROCS.
	Workers int
}

// ParseFile reads and parses a STEP physical file from disk.
func ParseFile(ctx context.Context, path string, opts Options) (*Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse parses STEP source bytes into a Model. Instance records are
// parsed on a bounded worker pool; everything the caller sees is
// immutable once Parse returns.
func Parse(ctx context.Context, src []byte, opts Options) (*Model, error) {
	headerRecs, dataRecs, err := splitSections(src)
	if err != nil {
		return nil, err
	}

	header, err := parseHeader(headerRecs)
	if err != nil {
		return nil, err
	}

	instances, err := parseInstances(ctx, dataRecs, opts.Workers)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Header: header,
		byID:   make(map[int64]*Instance, len(instances)),
		order:  instances,
		byType: make(map[string][]*Instance),
	}
	for _, inst := range instances {
		if prev, dup := m.byID[inst.ID]; dup {
			return nil, parseErrorf(inst.line, inst.ID, "duplicate entity id (first defined as %s)", prev.Type)
		}
		m.byID[inst.ID] = inst
		m.byType[inst.Type] = append(m.byType[inst.Type], inst)
	}
	m.derive()
	return m, nil
}

// splitSections scans the file into header and data records, checking the
// ISO 10303-21 envelope on the way.
func splitSections(src []byte) (header, data []record, err error) {
	const (
		sectNone = iota
		sectHeader
		sectData
		sectOther
	)

	sc := newScanner(src)
	seenMagic := false
	sect := sectNone

	for {
		rec, ok, err := sc.next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		if !seenMagic {
			if rec.text != "ISO-10303-21" {
				return nil, nil, parseErrorf(rec.line, 0, "not a STEP exchange file (missing ISO-10303-21 header)")
			}
			seenMagic = true
			continue
		}
		switch {
		case rec.text == "END-ISO-10303-21":
			return header, data, nil
		case sect == sectNone:
			switch rec.text {
			case "HEADER":
				sect = sectHeader
			case "DATA":
				sect = sectData
			default:
				// Unknown sections (e.g. ANCHOR in part 21 ed. 3) are
				// skipped wholesale.
				sect = sectOther
			}
		case rec.text == "ENDSEC":
			sect = sectNone
		case sect == sectHeader:
			header = append(header, rec)
		case sect == sectData:
			data = append(data, rec)
		}
	}
	if !seenMagic {
		return nil, nil, parseErrorf(1, 0, "not a STEP exchange file (empty input)")
	}
	return nil, nil, parseErrorf(sc.line, 0, "unexpected end of file (missing END-ISO-10303-21)")
}

// parseMinChunk is the record count below which fan-out is not worth the
// goroutine overhead.
const parseMinChunk = 512

func parseInstances(ctx context.Context, recs []record, workers int) ([]*Instance, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]*Instance, len(recs))

	if len(recs) < parseMinChunk || workers == 1 {
		for i, rec := range recs {
			inst, err := parseInstance(rec)
			if err != nil {
				return nil, err
			}
			out[i] = inst
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (len(recs) + workers - 1) / workers
	for start := 0; start < len(recs); start += chunk {
		end := min(start+chunk, len(recs))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				inst, err := parseInstance(recs[i])
				if err != nil {
					return err
				}
				out[i] = inst
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseInstance parses one `#id=TYPE(...)` record.
func parseInstance(rec record) (*Instance, error) {
	p := &recParser{src: rec.text, line: rec.line}

	p.skipSpace()
	if !p.eat('#') {
		return nil, p.errf("expected '#' at start of data record")
	}
	id, ok := p.integer()
	if !ok || id <= 0 {
		return nil, p.errf("invalid entity id")
	}
	p.id = id

	p.skipSpace()
	if !p.eat('=') {
		return nil, p.errf("expected '=' after entity id")
	}
	p.skipSpace()
	name := p.keyword()
	if name == "" {
		return nil, p.errf("expected entity type name")
	}
	p.skipSpace()
	if !p.eat('(') {
		return nil, p.errf("expected '(' after entity type")
	}
	params, err := p.paramList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errf("trailing characters after record")
	}

	return &Instance{ID: id, Type: name, Params: params, line: rec.line}, nil
}

// recParser parses the parameter syntax of a single record.
type recParser struct {
	src  string
	pos  int
	line int
	id   int64
}

func (p *recParser) errf(format string, args ...any) error {
	return parseErrorf(p.line, p.id, format, args...)
}

func (p *recParser) eat(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *recParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *recParser) integer() (int64, bool) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	v, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// keyword reads an entity or defined-type name: letters, digits and
// underscores, starting with a letter. STEP keywords are upper-case; the
// parser normalizes to be safe.
func (p *recParser) keyword() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' || (p.pos > start && c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return strings.ToUpper(p.src[start:p.pos])
}

// paramList parses parameters up to and including the closing ')'.
func (p *recParser) paramList() ([]Param, error) {
	var params []Param
	p.skipSpace()
	if p.eat(')') {
		return params, nil
	}
	for {
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		p.skipSpace()
		switch {
		case p.eat(','):
			p.skipSpace()
		case p.eat(')'):
			return params, nil
		default:
			return nil, p.errf("expected ',' or ')' in parameter list")
		}
	}
}

func (p *recParser) param() (Param, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return Param{}, p.errf("unexpected end of record in parameter")
	}
	switch c := p.src[p.pos]; {
	case c == '$':
		p.pos++
		return Param{Kind: ParamUnset}, nil
	case c == '*':
		p.pos++
		return Param{Kind: ParamDerived}, nil
	case c == '#':
		p.pos++
		id, ok := p.integer()
		if !ok {
			return Param{}, p.errf("invalid entity reference")
		}
		return Param{Kind: ParamRef, Ref: id}, nil
	case c == '\'':
		return p.stringParam()
	case c == '"':
		return p.binaryParam()
	case c == '.':
		return p.enumParam()
	case c == '(':
		p.pos++
		list, err := p.paramList()
		if err != nil {
			return Param{}, err
		}
		return Param{Kind: ParamList, List: list}, nil
	case c == '-' || c == '+' || c >= '0' && c <= '9':
		return p.numberParam()
	case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z':
		name := p.keyword()
		p.skipSpace()
		if !p.eat('(') {
			return Param{}, p.errf("expected '(' after type name %s", name)
		}
		args, err := p.paramList()
		if err != nil {
			return Param{}, err
		}
		return Param{Kind: ParamTyped, Str: name, List: args}, nil
	}
	return Param{}, p.errf("unexpected character %q in parameter", p.src[p.pos])
}

func (p *recParser) stringParam() (Param, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return Param{}, p.errf("unterminated string")
		}
		c := p.src[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			break
		}
		b.WriteByte(c)
		p.pos++
	}
	decoded, err := decodeString(b.String())
	if err != nil {
		return Param{}, p.errf("bad string literal: %v", err)
	}
	return Param{Kind: ParamString, Str: decoded}, nil
}

func (p *recParser) binaryParam() (Param, error) {
	p.pos++ // opening quote
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return Param{}, p.errf("unterminated binary literal")
	}
	text := p.src[start:p.pos]
	p.pos++
	return Param{Kind: ParamBinary, Str: text}, nil
}

func (p *recParser) enumParam() (Param, error) {
	p.pos++ // opening dot
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '.' {
		c := p.src[p.pos]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return Param{}, p.errf("invalid enumeration value")
		}
		p.pos++
	}
	if p.pos >= len(p.src) || p.pos == start {
		return Param{}, p.errf("unterminated enumeration value")
	}
	token := p.src[start:p.pos]
	p.pos++
	return Param{Kind: ParamEnum, Str: token}, nil
}

func (p *recParser) numberParam() (Param, error) {
	start := p.pos
	if p.src[p.pos] == '-' || p.src[p.pos] == '+' {
		p.pos++
	}
	real := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.':
			real = true
			p.pos++
		case c == 'E' || c == 'e':
			real = true
			p.pos++
			if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	lit := p.src[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Param{}, p.errf("invalid numeric literal %q", lit)
	}
	kind := ParamInteger
	if real {
		kind = ParamReal
	}
	return Param{Kind: kind, Str: lit, Num: v}, nil
}

// parseHeader extracts the fields ifcpeek surfaces from the HEADER
// section. Unknown header entries are ignored.
func parseHeader(recs []record) (Header, error) {
	var h Header
	for _, rec := range recs {
		open := strings.IndexByte(rec.text, '(')
		if open < 0 {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(rec.text[:open]))
		p := &recParser{src: rec.text[open:], line: rec.line}
		if !p.eat('(') {
			continue
		}
		params, err := p.paramList()
		if err != nil {
			return Header{}, err
		}
		switch name {
		case "FILE_DESCRIPTION":
			h.Description = stringList(at(params, 0))
			h.ImplementationLevel = at(params, 1).Str
		case "FILE_NAME":
			h.Name = at(params, 0).Str
			h.Timestamp = at(params, 1).Str
			h.Authors = stringList(at(params, 2))
			h.Organizations = stringList(at(params, 3))
			h.PreprocessorVersion = at(params, 4).Str
			h.OriginatingSystem = at(params, 5).Str
			h.Authorization = at(params, 6).Str
		case "FILE_SCHEMA":
			if list := stringList(at(params, 0)); len(list) > 0 {
				h.Schema = list[0]
			}
		}
	}
	return h, nil
}

func at(params []Param, i int) Param {
	if i < len(params) {
		return params[i]
	}
	return Param{Kind: ParamUnset}
}

func stringList(p Param) []string {
	if p.Kind != ParamList {
		return nil
	}
	out := make([]string, 0, len(p.List))
	for _, el := range p.List {
		if el.Kind == ParamString {
			out = append(out, el.Str)
		}
	}
	return out
}
