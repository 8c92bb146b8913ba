package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol"
)

// Grammar, "and" binding tighter than "or":
//
//	expr      := andExpr ("or" andExpr)*
//	andExpr   := unary ("and" unary)*
//	unary     := "not" unary | "(" expr ")" | predicate
//	predicate := property op value ("," value)*
//	           | number "<>" ( point ("," point)* | "[" expr "]" )
//	           | chain "." rnum "." aname
//	value     := word | quoted | number ":" number
//	point     := "{" number "," number "," number "}"

// parseError aborts parsing; the parser recovers it into an ErrorDesc.
type parseError struct {
	desc ErrorDesc
}

type parser struct {
	items []item
	pos   int
}

func parse(input string) (n node, desc *ErrorDesc) {
	items := lex(input)
	if last := items[len(items)-1]; last.typ == itemError {
		return nil, &ErrorDesc{Msg: last.val, Range: last.rng}
	}
	p := &parser{items: items}
	if p.peek().typ == itemEOF {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			n, desc = nil, &pe.desc
		}
	}()
	n = p.parseOr()
	if it := p.peek(); it.typ != itemEOF {
		if it.typ == itemRParen {
			p.failf(it.rng, "unmatched ')'")
		}
		p.failf(it.rng, "unexpected %s", it)
	}
	return n, nil
}

func (p *parser) peek() item { return p.items[p.pos] }

func (p *parser) next() item {
	it := p.items[p.pos]
	if it.typ != itemEOF {
		p.pos++
	}
	return it
}

func (p *parser) failf(rng Range, format string, args ...any) {
	panic(parseError{ErrorDesc{Msg: fmt.Sprintf(format, args...), Range: rng}})
}

// expect consumes an item of type typ or fails naming what was wanted.
func (p *parser) expect(typ itemType, what string) item {
	it := p.next()
	if it.typ != typ {
		p.failf(it.rng, "expected %s, got %s", what, it)
	}
	return it
}

func (p *parser) parseOr() node {
	left := p.parseAnd()
	for p.peek().typ == itemOr {
		op := p.next()
		if p.peek().typ == itemEOF {
			p.failf(op.rng, "dangling operator %q", op.val)
		}
		right := p.parseAnd()
		left = &binaryNode{op: opOr, left: left, right: right, rng: left.span().join(right.span())}
	}
	return left
}

func (p *parser) parseAnd() node {
	left := p.parseUnary()
	for p.peek().typ == itemAnd {
		op := p.next()
		if p.peek().typ == itemEOF {
			p.failf(op.rng, "dangling operator %q", op.val)
		}
		right := p.parseUnary()
		left = &binaryNode{op: opAnd, left: left, right: right, rng: left.span().join(right.span())}
	}
	return left
}

func (p *parser) parseUnary() node {
	it := p.peek()
	switch it.typ {
	case itemNot:
		p.next()
		if p.peek().typ == itemEOF {
			p.failf(it.rng, "dangling operator %q", it.val)
		}
		child := p.parseUnary()
		return &notNode{child: child, rng: it.rng.join(child.span())}
	case itemLParen:
		p.next()
		inner := p.parseOr()
		if closing := p.next(); closing.typ != itemRParen {
			p.failf(it.rng, "unmatched '('")
		}
		return inner
	}
	return p.parsePredicate()
}

func (p *parser) parsePredicate() node {
	it := p.next()
	switch it.typ {
	case itemWord:
	case itemEOF:
		p.failf(it.rng, "unexpected end of query")
	default:
		p.failf(it.rng, "unexpected %s", it)
	}

	switch p.peek().typ {
	case itemCmp, itemColon:
		return p.parseComparison(it)
	case itemWithin:
		return p.parseWithin(it)
	}
	if strings.Contains(it.val, ".") {
		return p.parseShorthand(it)
	}
	if _, ok := mol.LookupProp(it.val); ok {
		p.failf(it.rng, "expected comparison operator after %q", it.val)
	}
	p.failf(it.rng, "unknown property %q", it.val)
	return nil
}

func (p *parser) resolve(it item) selector {
	name := it.val
	lower := strings.ToLower(name)
	for prefix, lvl := range map[string]mol.Level{"gc.": mol.LevelChain, "gr.": mol.LevelResidue, "ga.": mol.LevelAtom} {
		if strings.HasPrefix(lower, prefix) {
			key := name[len(prefix):]
			if key == "" {
				p.failf(it.rng, "generic property %q has no key", name)
			}
			return selector{name: name, generic: true, level: lvl, key: key}
		}
	}
	prop, ok := mol.LookupProp(name)
	if !ok {
		p.failf(it.rng, "unknown property %q", name)
	}
	return selector{name: name, prop: prop}
}

func (p *parser) parseComparison(propItem item) node {
	sel := p.resolve(propItem)
	if p.peek().typ == itemColon {
		colon := p.next()
		if !sel.generic {
			p.failf(colon.rng, "only generic properties take a default value")
		}
		def := p.next()
		f, err := strconv.ParseFloat(def.val, 64)
		if def.typ != itemWord || err != nil {
			p.failf(def.rng, "default value of %q must be a number", sel.name)
		}
		sel.hasDef, sel.def = true, f
	}

	opItem := p.expect(itemCmp, "comparison operator")
	op := cmpOps[opItem.val]
	n := &compNode{sel: sel, op: op}
	for {
		v, rng := p.parseValue(sel, op)
		n.values = append(n.values, v)
		n.rng = propItem.rng.join(rng)
		if p.peek().typ != itemComma {
			break
		}
		comma := p.next()
		if op != cmpEq && op != cmpNe {
			p.failf(comma.rng, "value lists need '=' or '!='")
		}
	}
	return n
}

func (p *parser) parseValue(sel selector, op cmpOp) (value, Range) {
	it := p.next()
	if it.typ != itemWord && it.typ != itemString {
		p.failf(it.rng, "expected value for %q, got %s", sel.name, it)
	}
	numeric := sel.generic || sel.prop.IsNumeric()

	if p.peek().typ == itemColon {
		p.next()
		hiItem := p.next()
		lo, errLo := strconv.ParseFloat(it.val, 64)
		hi, errHi := strconv.ParseFloat(hiItem.val, 64)
		rng := it.rng.join(hiItem.rng)
		switch {
		case !numeric:
			p.failf(rng, "ranges need a numeric property, %q is not", sel.name)
		case op != cmpEq && op != cmpNe:
			p.failf(rng, "ranges need '=' or '!='")
		case it.typ != itemWord || hiItem.typ != itemWord || errLo != nil || errHi != nil:
			p.failf(rng, "range bounds must be numbers")
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return value{kind: valRange, lo: lo, hi: hi}, rng
	}

	if !sel.generic && sel.prop.Type == mol.PropBool {
		if op != cmpEq && op != cmpNe {
			p.failf(it.rng, "operator %s not supported for boolean property %q", op, sel.name)
		}
		b, ok := parseBool(it.val)
		if !ok {
			p.failf(it.rng, "type mismatch: %q expects true or false", sel.name)
		}
		return value{kind: valBool, b: b}, it.rng
	}

	if f, err := strconv.ParseFloat(it.val, 64); err == nil && it.typ == itemWord && numeric {
		return value{kind: valNumber, num: f}, it.rng
	}
	if numeric && !sel.generic {
		p.failf(it.rng, "type mismatch: %q expects a number", sel.name)
	}
	if op != cmpEq && op != cmpNe {
		p.failf(it.rng, "operator %s not supported for text value %q", op, it.val)
	}
	if strings.ContainsAny(it.val, "*?") {
		return value{kind: valPattern, str: it.val, pattern: wildcard(it.val)}, it.rng
	}
	return value{kind: valString, str: it.val}, it.rng
}

func (p *parser) parseWithin(radiusItem item) node {
	radius, err := strconv.ParseFloat(radiusItem.val, 64)
	if err != nil || radius < 0 {
		p.failf(radiusItem.rng, "within radius must be a non-negative number")
	}
	p.next() // <>
	n := &withinNode{radius: radius}
	switch open := p.peek(); open.typ {
	case itemLBracket:
		p.next()
		inner := p.parseOr()
		closing := p.next()
		if closing.typ != itemRBracket {
			p.failf(open.rng, "unmatched '['")
		}
		n.sub = compileProgram(inner)
		n.rng = radiusItem.rng.join(closing.rng)
	case itemLBrace:
		for {
			pt, rng := p.parsePoint()
			n.points = append(n.points, pt)
			n.rng = radiusItem.rng.join(rng)
			if p.peek().typ != itemComma {
				break
			}
			p.next()
		}
	default:
		p.failf(open.rng, "expected '{x,y,z}' or '[query]' after '<>'")
	}
	return n
}

func (p *parser) parsePoint() (geom.Vec, Range) {
	open := p.expect(itemLBrace, "'{'")
	var xyz [3]float64
	for i := range xyz {
		if i > 0 {
			p.expect(itemComma, "','")
		}
		it := p.expect(itemWord, "coordinate")
		f, err := strconv.ParseFloat(it.val, 64)
		if err != nil {
			p.failf(it.rng, "coordinate %q is not a number", it.val)
		}
		xyz[i] = f
	}
	closing := p.expect(itemRBrace, "'}'")
	return geom.V(xyz[0], xyz[1], xyz[2]), open.rng.join(closing.rng)
}

// parseShorthand expands "A.12.CA" into cname=A and rnum=12 and aname=CA.
// Any part may be "*" and trailing parts may be left out.
func (p *parser) parseShorthand(it item) node {
	parts := strings.Split(it.val, ".")
	if len(parts) > 3 {
		p.failf(it.rng, "shorthand %q has more than three parts", it.val)
	}
	names := [...]string{"cname", "rnum", "aname"}
	var out node
	for i, part := range parts {
		if part == "" {
			p.failf(it.rng, "empty part in shorthand %q", it.val)
		}
		if part == "*" {
			continue
		}
		prop, _ := mol.LookupProp(names[i])
		leaf := &compNode{sel: selector{name: names[i], prop: prop}, op: cmpEq, rng: it.rng}
		switch {
		case i == 1:
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				p.failf(it.rng, "residue number %q in shorthand is not a number", part)
			}
			leaf.values = []value{{kind: valNumber, num: f}}
		case strings.ContainsAny(part, "*?"):
			leaf.values = []value{{kind: valPattern, str: part, pattern: wildcard(part)}}
		default:
			leaf.values = []value{{kind: valString, str: part}}
		}
		if out == nil {
			out = leaf
		} else {
			out = &binaryNode{op: opAnd, left: out, right: leaf, rng: it.rng}
		}
	}
	if out == nil {
		return &constNode{val: True, rng: it.rng}
	}
	return out
}

// wildcard compiles a glob with '*' and '?' into an anchored pattern.
func wildcard(s string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range s {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}
