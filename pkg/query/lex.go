package query

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemWord   // identifiers, bare values, numbers, shorthands
	itemString // quoted value
	itemCmp    // = != < <= > >=
	itemWithin // <>
	itemAnd
	itemOr
	itemNot
	itemLParen
	itemRParen
	itemLBrace
	itemRBrace
	itemLBracket
	itemRBracket
	itemComma
	itemColon
)

const eof = -1

// Characters that end a bare word.
const wordBanned = " \t\r\n()[]{},:=!<>&|\"'"

type item struct {
	typ itemType
	val string
	rng Range
}

func (it item) String() string {
	switch it.typ {
	case itemEOF:
		return "end of query"
	case itemError:
		return it.val
	}
	return fmt.Sprintf("%q", it.val)
}

type stateFn func(lx *lexer) stateFn

// lexer turns a query string into items. It runs to completion up front;
// the parser then walks the item slice.
type lexer struct {
	input string
	start int
	pos   int
	width int
	items []item
}

func lex(input string) []item {
	lx := &lexer{input: input}
	for state := lexAny; state != nil; {
		state = state(lx)
	}
	return lx.items
}

func (lx *lexer) current() string { return lx.input[lx.start:lx.pos] }

func (lx *lexer) emit(typ itemType) {
	lx.emitValue(typ, lx.current())
}

func (lx *lexer) emitValue(typ itemType, val string) {
	lx.items = append(lx.items, item{typ: typ, val: val, rng: Range{Loc: lx.start, Length: lx.pos - lx.start}})
	lx.start = lx.pos
}

func (lx *lexer) next() rune {
	if lx.pos >= len(lx.input) {
		lx.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.width = w
	lx.pos += w
	return r
}

// backup steps back one rune. Can be called only once per call of next.
func (lx *lexer) backup() { lx.pos -= lx.width }

func (lx *lexer) ignore() { lx.start = lx.pos }

func (lx *lexer) accept(valid rune) bool {
	if lx.next() == valid {
		return true
	}
	lx.backup()
	return false
}

// errorf records an error item covering the current token and stops lexing.
func (lx *lexer) errorf(format string, args ...any) stateFn {
	if lx.pos == lx.start && lx.pos < len(lx.input) {
		lx.pos++
	}
	lx.emitValue(itemError, fmt.Sprintf(format, args...))
	return nil
}

func lexAny(lx *lexer) stateFn {
	r := lx.next()
	switch {
	case r == eof:
		lx.emit(itemEOF)
		return nil
	case isSpace(r):
		lx.ignore()
		return lexAny
	case r == '(':
		lx.emit(itemLParen)
	case r == ')':
		lx.emit(itemRParen)
	case r == '{':
		lx.emit(itemLBrace)
	case r == '}':
		lx.emit(itemRBrace)
	case r == '[':
		lx.emit(itemLBracket)
	case r == ']':
		lx.emit(itemRBracket)
	case r == ',':
		lx.emit(itemComma)
	case r == ':':
		lx.emit(itemColon)
	case r == '"' || r == '\'':
		return lexQuoted(r)
	case r == '=':
		lx.accept('=')
		lx.emitValue(itemCmp, "=")
	case r == '!':
		if lx.accept('=') {
			lx.emit(itemCmp)
		} else {
			lx.emit(itemNot)
		}
	case r == '<':
		switch {
		case lx.accept('>'):
			lx.emit(itemWithin)
		case lx.accept('='):
			lx.emit(itemCmp)
		default:
			lx.emit(itemCmp)
		}
	case r == '>':
		lx.accept('=')
		lx.emit(itemCmp)
	case r == '&':
		if !lx.accept('&') {
			return lx.errorf("expected '&&'")
		}
		lx.emit(itemAnd)
	case r == '|':
		if !lx.accept('|') {
			return lx.errorf("expected '||'")
		}
		lx.emit(itemOr)
	default:
		lx.backup()
		return lexWord
	}
	return lexAny
}

// lexWord scans a bare word and classifies the logical keywords.
func lexWord(lx *lexer) stateFn {
	for {
		r := lx.next()
		if r == eof || strings.ContainsRune(wordBanned, r) {
			if r != eof {
				lx.backup()
			}
			break
		}
	}
	switch strings.ToLower(lx.current()) {
	case "and":
		lx.emit(itemAnd)
	case "or":
		lx.emit(itemOr)
	case "not":
		lx.emit(itemNot)
	default:
		lx.emit(itemWord)
	}
	return lexAny
}

func lexQuoted(quote rune) stateFn {
	return func(lx *lexer) stateFn {
		for {
			switch lx.next() {
			case eof:
				return lx.errorf("unterminated quoted string")
			case quote:
				s := lx.current()
				lx.emitValue(itemString, s[1:len(s)-1])
				return lexAny
			}
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
