// Package stim parses textual stimulus descriptions.
//
// A description is a semicolon separated list of input assignments, each
// input receiving a comma separated list of samples or sample ranges:
//
//	a=7, 9, 100; b=2, 4, 7
//	x=0..15, -1
//
// A range lo..hi expands to lo, lo+1, ..., hi.
//
package stim

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/db47h/pipegen/internal/lex"
	"github.com/pkg/errors"
)

// Tokens
const (
	EOF lex.Type = lex.EOF
	Raw lex.Type = iota
	Ident
	Int
	Comma
	Semicolon
	Equal
	Range
)

// Lexer returns a new lexer for stimulus descriptions.
//
func Lexer(input string) lex.Interface {
	return lex.New(strings.NewReader(input), lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '-':
		n := l.Next()
		l.Backup()
		if '0' <= n && n <= '9' {
			return lexNumber
		}
		l.Emit(Raw, r)
		return lexEOF
	case r == ',':
		l.Emit(Comma, ",")
	case r == ';':
		l.Emit(Semicolon, ";")
	case r == '=':
		l.Emit(Equal, "=")
	case r == '.':
		n := l.Next()
		if n == '.' {
			l.Emit(Range, "..")
			break
		}
		l.Backup()
		fallthrough
	default:
		l.Emit(Raw, r)
		return lexEOF
	}
	return nil
}

// lexNumber emits the decimal digits of an integer, with its sign, as a
// string. Range checks are left to the parser.
//
func lexNumber(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for '0' <= r && r <= '9' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Int, buf.String())
	return nil
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Ident, buf.String())
	return nil
}

func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}

// maxRange is the maximum number of samples in a range.
const maxRange = 1 << 20

type parser struct {
	input string
	l     lex.Interface
	i     lex.Item
}

func (p *parser) next() lex.Item {
	p.i = p.l.Lex()
	return p.i
}

func (p *parser) errorAt(msg string) error {
	return parseError(p.input, p.i.Pos, msg)
}

// Parse parses a stimulus description and returns the samples of every
// input.
//
func Parse(input string) (map[string][]int64, error) {
	p := &parser{input: input, l: Lexer(input)}
	out := make(map[string][]int64)

	for p.next().Type != EOF {
		if p.i.Type != Ident {
			return nil, p.errorAt("expected input name, got " + p.i.String())
		}
		name := p.i.Value.(string)
		if _, ok := out[name]; ok {
			return nil, p.errorAt("duplicate input " + name)
		}
		if p.next().Type != Equal {
			return nil, p.errorAt("expected '=' after input name")
		}
		samples, err := p.samples()
		if err != nil {
			return nil, err
		}
		out[name] = samples
		switch p.i.Type {
		case Semicolon, EOF:
		default:
			return nil, p.errorAt("expected ',', ';' or end of input, got " + p.i.String())
		}
	}
	return out, nil
}

// samples parses a comma separated list of values and ranges. It returns with
// the first item following the list in p.i.
//
func (p *parser) samples() ([]int64, error) {
	var samples []int64
	for {
		lo, err := p.value()
		if err != nil {
			return nil, err
		}
		if p.next().Type != Range {
			samples = append(samples, lo)
		} else {
			hi, err := p.value()
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, p.errorAt("empty range")
			}
			if uint64(hi-lo) >= maxRange {
				return nil, p.errorAt("range too large")
			}
			for v := lo; v <= hi; v++ {
				samples = append(samples, v)
			}
			p.next()
		}
		if p.i.Type != Comma {
			return samples, nil
		}
	}
}

func (p *parser) value() (int64, error) {
	if p.next().Type != Int {
		return 0, p.errorAt("expected integer value, got " + p.i.String())
	}
	v, err := strconv.ParseInt(p.i.Value.(string), 10, 64)
	if err != nil {
		return 0, p.errorAt(err.Error())
	}
	return v, nil
}

func parseError(in string, pos lex.Pos, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
