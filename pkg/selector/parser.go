package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

type parser struct {
	lex  *lexer
	cur  token
	peek token
}

func newParser(src string) *parser {
	p := &parser{lex: newLexer(src)}
	p.cur = p.lex.next()
	p.peek = p.lex.next()
	return p
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.next()
}

// illegal converts an illegal token into its parse error; the lexer puts
// the reason in the literal.
func (p *parser) illegal() error {
	return parseErrorf(p.cur.pos, "%s", p.cur.lit)
}

func (p *parser) expectWord(what string) (token, error) {
	if p.cur.typ == tokIllegal {
		return token{}, p.illegal()
	}
	if p.cur.typ != tokWord {
		return token{}, parseErrorf(p.cur.pos, "expected %s, got %s", what, p.cur.typ)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// parseFilterQuery parses `group {"+" group}`.
func (p *parser) parseFilterQuery() (*Filter, error) {
	f := &Filter{}
	for {
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		f.groups = append(f.groups, g)
		if p.cur.typ != tokPlus {
			break
		}
		p.advance()
	}
	if p.cur.typ == tokIllegal {
		return nil, p.illegal()
	}
	if p.cur.typ != tokEOF {
		return nil, parseErrorf(p.cur.pos, "unexpected %s", p.cur.typ)
	}
	return f, nil
}

// parseGroup parses `facet {"," facet}`.
func (p *parser) parseGroup() (group, error) {
	var g group
	for {
		if err := p.parseFacet(&g); err != nil {
			return group{}, err
		}
		if p.cur.typ != tokComma {
			return g, nil
		}
		p.advance()
	}
}

func (p *parser) parseFacet(g *group) error {
	if p.cur.typ == tokBang {
		p.advance()
		tok, err := p.expectWord("a class name after '!'")
		if err != nil {
			return err
		}
		g.excludes = append(g.excludes, newClassFacet(tok.lit))
		return nil
	}

	first, err := p.expectWord("a class or attribute name")
	if err != nil {
		return err
	}
	path := []string{first.lit}
	for p.cur.typ == tokDot {
		p.advance()
		seg, err := p.expectWord("an attribute name after '.'")
		if err != nil {
			return err
		}
		path = append(path, seg.lit)
	}

	if !p.cur.isComparison() {
		if len(path) > 1 {
			return parseErrorf(p.cur.pos, "expected a comparison operator after attribute path")
		}
		g.classes = append(g.classes, newClassFacet(first.lit))
		return nil
	}

	op := p.cur
	p.advance()
	val, err := p.parseFacetValue(op)
	if err != nil {
		return err
	}
	g.attrs = append(g.attrs, attrFacet{path: path, op: op.typ, val: val})
	return nil
}

func (p *parser) parseFacetValue(op token) (facetValue, error) {
	if p.cur.typ == tokIllegal {
		return facetValue{}, p.illegal()
	}

	var v facetValue
	switch p.cur.typ {
	case tokString:
		v.raw = p.cur.lit
		if n, err := strconv.ParseFloat(v.raw, 64); err == nil {
			v.num, v.isNum = n, true
		}
	case tokNumber:
		n, err := strconv.ParseFloat(p.cur.lit, 64)
		if err != nil {
			return facetValue{}, parseErrorf(p.cur.pos, "invalid number %q", p.cur.lit)
		}
		v.raw, v.num, v.isNum = p.cur.lit, n, true
	case tokWord:
		v.raw = p.cur.lit
		v.isNull = v.raw == "NULL"
	default:
		return facetValue{}, parseErrorf(p.cur.pos, "expected a value, got %s", p.cur.typ)
	}

	switch op.typ {
	case tokGT, tokGE, tokLT, tokLE:
		if !v.isNum {
			return facetValue{}, parseErrorf(p.cur.pos, "%s compares numbers; %q is not numeric", op.typ, v.raw)
		}
	case tokMatch, tokNotMatch:
		if v.isNull {
			return facetValue{}, parseErrorf(p.cur.pos, "NULL is only valid with = and !=")
		}
		re, err := regexp.Compile(v.raw)
		if err != nil {
			return facetValue{}, parseErrorf(p.cur.pos, "invalid pattern %q: %v", v.raw, err)
		}
		v.re = re
	}
	p.advance()
	return v, nil
}

// parseValueQuery parses one value-extraction expression.
func (p *parser) parseValueQuery() (valueNode, error) {
	node, err := p.parseValueExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.typ == tokIllegal {
		return nil, p.illegal()
	}
	if p.cur.typ != tokEOF {
		return nil, parseErrorf(p.cur.pos, "unexpected %s", p.cur.typ)
	}
	return node, nil
}

func (p *parser) parseValueExpr() (valueNode, error) {
	switch p.cur.typ {
	case tokIllegal:
		return nil, p.illegal()
	case tokString:
		node := litNode{str: p.cur.lit}
		p.advance()
		return node, nil
	case tokNumber:
		node := litNode{str: p.cur.lit}
		p.advance()
		return node, nil
	case tokWord:
		if p.peek.typ == tokLParen {
			return p.parseCall()
		}
		return p.parsePath()
	}
	return nil, parseErrorf(p.cur.pos, "expected a value query, got %s", p.cur.typ)
}

func (p *parser) parseCall() (valueNode, error) {
	name := p.cur
	arity, ok := functions[name.lit]
	if !ok {
		return nil, parseErrorf(name.pos, "unknown function %q", name.lit)
	}
	p.advance() // function name
	p.advance() // '('

	var args []valueNode
	if p.cur.typ != tokRParen {
		for {
			arg, err := p.parseValueExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.typ != tokComma {
				break
			}
			p.advance()
		}
	}
	if p.cur.typ == tokIllegal {
		return nil, p.illegal()
	}
	if p.cur.typ != tokRParen {
		return nil, parseErrorf(p.cur.pos, "expected ')' in %s(), got %s", name.lit, p.cur.typ)
	}
	p.advance()

	if len(args) < arity.min || (arity.max >= 0 && len(args) > arity.max) {
		return nil, parseErrorf(name.pos, "%s() takes %s, got %d", name.lit, arity.describe(), len(args))
	}
	return callNode{fn: name.lit, args: args}, nil
}

func (p *parser) parsePath() (valueNode, error) {
	first, err := p.expectWord("an attribute name")
	if err != nil {
		return nil, err
	}
	segs := []string{first.lit}
	for p.cur.typ == tokDot {
		p.advance()
		seg, err := p.expectWord("an attribute name after '.'")
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg.lit)
	}
	return pathNode{segs: segs}, nil
}

func newClassFacet(name string) classFacet {
	return classFacet{
		name:    name,
		upper:   strings.ToUpper(name),
		closure: ifc.SubtypeClosure(name),
	}
}
