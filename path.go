package ember

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PathFunc maps the distance a particle has traveled along its facing axis to
// a perpendicular offset.
type PathFunc func(x float64) float64

// pathFuncs1 and pathFuncs2 are the functions a path expression may call.
var pathFuncs1 = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"log":   math.Log,
	"exp":   math.Exp,
	"sign":  signOf,
}

var pathFuncs2 = map[string]func(a, b float64) float64{
	"pow":   math.Pow,
	"min":   math.Min,
	"max":   math.Max,
	"atan2": math.Atan2,
	"mod":   math.Mod,
}

var pathConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ParsePath compiles a path expression such as "sin(x/20)*10" into a PathFunc.
// The expression may use the variable x, numeric literals, parentheses, the
// operators + - * / % ^, and a fixed set of math functions and constants.
// Anything else is a parse error; no code is ever evaluated dynamically.
func ParsePath(expr string) (PathFunc, error) {
	p := &pathParser{src: expr}
	p.next()
	fn, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("ember: path %q: unexpected %q at offset %d", expr, p.tok.text, p.tok.pos)
	}
	return fn, nil
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type pathToken struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

type pathParser struct {
	src string
	off int
	tok pathToken
	err error
}

func (p *pathParser) next() {
	for p.off < len(p.src) && (p.src[p.off] == ' ' || p.src[p.off] == '\t') {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = pathToken{kind: tokEOF, pos: start}
		return
	}
	c := p.src[p.off]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		for p.off < len(p.src) && (p.src[p.off] >= '0' && p.src[p.off] <= '9' || p.src[p.off] == '.') {
			p.off++
		}
		text := p.src[start:p.off]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.err = fmt.Errorf("ember: path %q: bad number %q at offset %d", p.src, text, start)
			p.tok = pathToken{kind: tokEOF, pos: start}
			return
		}
		p.tok = pathToken{kind: tokNumber, text: text, value: v, pos: start}
	case isPathIdentStart(c):
		for p.off < len(p.src) && isPathIdentPart(p.src[p.off]) {
			p.off++
		}
		p.tok = pathToken{kind: tokIdent, text: p.src[start:p.off], pos: start}
	case c == '(':
		p.off++
		p.tok = pathToken{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = pathToken{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		p.off++
		p.tok = pathToken{kind: tokComma, text: ",", pos: start}
	case strings.ContainsRune("+-*/%^", rune(c)):
		p.off++
		p.tok = pathToken{kind: tokOp, text: string(c), pos: start}
	default:
		p.err = fmt.Errorf("ember: path %q: illegal character %q at offset %d", p.src, string(c), start)
		p.tok = pathToken{kind: tokEOF, pos: start}
	}
}

// parseExpr handles + and -.
func (p *pathParser) parseExpr() (PathFunc, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l := left
		if op == "+" {
			left = func(x float64) float64 { return l(x) + right(x) }
		} else {
			left = func(x float64) float64 { return l(x) - right(x) }
		}
	}
	return left, p.err
}

// parseTerm handles *, / and %.
func (p *pathParser) parseTerm() (PathFunc, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/" || p.tok.text == "%") {
		op := p.tok.text
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l := left
		switch op {
		case "*":
			left = func(x float64) float64 { return l(x) * right(x) }
		case "/":
			left = func(x float64) float64 { return l(x) / right(x) }
		default:
			left = func(x float64) float64 { return math.Mod(l(x), right(x)) }
		}
	}
	return left, p.err
}

func (p *pathParser) parseUnary() (PathFunc, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return -inner(x) }, nil
	}
	return p.parsePower()
}

// parsePower handles ^, right associative.
func (p *pathParser) parsePower() (PathFunc, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && p.tok.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return math.Pow(base(x), exp(x)) }, nil
	}
	return base, nil
}

func (p *pathParser) parsePrimary() (PathFunc, error) {
	if p.err != nil {
		return nil, p.err
	}
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.value
		p.next()
		return func(float64) float64 { return v }, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("ember: path %q: missing ) at offset %d", p.src, p.tok.pos)
		}
		p.next()
		return inner, nil
	case tokIdent:
		name := p.tok.text
		pos := p.tok.pos
		p.next()
		if p.tok.kind == tokLParen {
			return p.parseCall(name, pos)
		}
		if name == "x" {
			return func(x float64) float64 { return x }, nil
		}
		if v, ok := pathConsts[name]; ok {
			return func(float64) float64 { return v }, nil
		}
		return nil, fmt.Errorf("ember: path %q: unknown name %q at offset %d", p.src, name, pos)
	default:
		return nil, fmt.Errorf("ember: path %q: unexpected %q at offset %d", p.src, p.tok.text, p.tok.pos)
	}
}

func (p *pathParser) parseCall(name string, pos int) (PathFunc, error) {
	p.next() // consume (
	args := []PathFunc{}
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.tok.kind != tokRParen {
		return nil, fmt.Errorf("ember: path %q: missing ) after %s( at offset %d", p.src, name, p.tok.pos)
	}
	p.next()
	if fn, ok := pathFuncs1[name]; ok {
		if len(args) != 1 {
			return nil, fmt.Errorf("ember: path %q: %s takes 1 argument, got %d", p.src, name, len(args))
		}
		a := args[0]
		return func(x float64) float64 { return fn(a(x)) }, nil
	}
	if fn, ok := pathFuncs2[name]; ok {
		if len(args) != 2 {
			return nil, fmt.Errorf("ember: path %q: %s takes 2 arguments, got %d", p.src, name, len(args))
		}
		a, b := args[0], args[1]
		return func(x float64) float64 { return fn(a(x), b(x)) }, nil
	}
	return nil, fmt.Errorf("ember: path %q: unknown function %q at offset %d", p.src, name, pos)
}

func isPathIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isPathIdentPart(c byte) bool {
	return isPathIdentStart(c) || c >= '0' && c <= '9'
}
