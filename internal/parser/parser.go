// Package parser turns a token stream into a StoredDefinition (§3.1,
// §4.1). It is a hand-written recursive-descent parser for the
// declarative class/component/section grammar, switching to
// precedence-climbing (the teacher's Pratt-parser idiom) for
// expressions, where operator precedence actually varies.
package parser

import (
	"fmt"
	"strconv"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/lexer"
)

// Parser consumes tokens from a lexer.Lexer and builds a StoredDefinition.
type Parser struct {
	l    *lexer.Lexer
	file string

	cur  lexer.Token
	peek lexer.Token

	sink *errors.Sink

	prefixFns map[lexer.TokenType]func() ast.Expr
	infixFns  map[lexer.TokenType]func(ast.Expr) ast.Expr
}

// Precedence levels for the expression grammar (§4.1), lowest first.
const (
	lowest int = iota
	precOr
	precAnd
	precNot
	precRelational
	precRange
	precAdd
	precMul
	precUnary
	precPow
	precPostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       precOr,
	lexer.AND:      precAnd,
	lexer.EQEQ:     precRelational,
	lexer.NEQ:      precRelational,
	lexer.LT:       precRelational,
	lexer.GT:       precRelational,
	lexer.LTE:      precRelational,
	lexer.GTE:      precRelational,
	lexer.COLON:    precRange,
	lexer.PLUS:     precAdd,
	lexer.MINUS:    precAdd,
	lexer.DOTPLUS:  precAdd,
	lexer.DOTMINUS: precAdd,
	lexer.STAR:     precMul,
	lexer.SLASH:    precMul,
	lexer.DOTSTAR:  precMul,
	lexer.DOTSLASH: precMul,
	lexer.CARET:    precPow,
	lexer.DOTCARET: precPow,
}

// New creates a Parser over l. file is used only to label diagnostics.
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file, sink: errors.NewSink()}

	p.prefixFns = map[lexer.TokenType]func() ast.Expr{
		lexer.INT:      p.parseIntLit,
		lexer.FLOAT:    p.parseFloatLit,
		lexer.STRING:   p.parseStringLit,
		lexer.TRUE:     p.parseBoolLit,
		lexer.FALSE:    p.parseBoolLit,
		lexer.MINUS:    p.parseUnary,
		lexer.PLUS:     p.parseUnary,
		lexer.NOT:      p.parseUnary,
		lexer.LPAREN:   p.parseParenOrTuple,
		lexer.LBRACE:   p.parseArrayExpr,
		lexer.LBRACKET: p.parseMatrixExpr,
		lexer.IF:       p.parseIfExpr,
		lexer.IDENT:    p.parseComponentRefOrCall,
		lexer.DOT:      p.parseComponentRefOrCall,
		lexer.END:      p.parseEndExpr,
	}

	p.infixFns = map[lexer.TokenType]func(ast.Expr) ast.Expr{
		lexer.PLUS:     p.parseBinary,
		lexer.MINUS:    p.parseBinary,
		lexer.STAR:     p.parseBinary,
		lexer.SLASH:    p.parseBinary,
		lexer.CARET:    p.parseBinary,
		lexer.DOTPLUS:  p.parseBinary,
		lexer.DOTMINUS: p.parseBinary,
		lexer.DOTSTAR:  p.parseBinary,
		lexer.DOTSLASH: p.parseBinary,
		lexer.DOTCARET: p.parseBinary,
		lexer.EQEQ:     p.parseBinary,
		lexer.NEQ:      p.parseBinary,
		lexer.LT:       p.parseBinary,
		lexer.GT:       p.parseBinary,
		lexer.LTE:      p.parseBinary,
		lexer.GTE:      p.parseBinary,
		lexer.AND:      p.parseBinary,
		lexer.OR:       p.parseBinary,
		lexer.COLON:    p.parseRange,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Sink returns the collected diagnostics.
func (p *Parser) Sink() *errors.Sink { return p.sink }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(errors.PAR001, "expected %s, got %s %q", t, p.peek.Type, p.peek.Literal)
	return false
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{Line: p.cur.Line, Column: p.cur.Column, File: p.file}
}

func (p *Parser) span(start ast.Pos) ast.Span {
	return ast.Span{Start: start, End: p.pos()}
}

func (p *Parser) errorf(code, format string, args ...any) {
	p.sink.Add(errors.New(code, &ast.Span{Start: p.pos()}, fmt.Sprintf(format, args...)))
}

// Parse parses the full token stream into a StoredDefinition. Parser
// errors are collected in the Sink rather than aborting eagerly, so a
// caller can report every syntax error found in one pass.
func (p *Parser) Parse() *ast.StoredDefinition {
	start := p.pos()
	sd := &ast.StoredDefinition{Pos: start}

	if p.curIs(lexer.WITHIN) {
		sd.WithinSet = true
		if !p.peekIs(lexer.SEMICOLON) {
			sd.Within = p.parseDottedName()
		}
		p.expect(lexer.SEMICOLON)
		p.nextToken()
	}

	for !p.curIs(lexer.EOF) {
		final := p.consumeBool(lexer.FINAL)
		cls := p.parseClassDefinition(final)
		if cls != nil {
			sd.Classes = append(sd.Classes, cls)
		}
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return sd
}

func (p *Parser) consumeBool(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// parseDottedName reads IDENT ("." IDENT)*, leaving cur on the last part.
func (p *Parser) parseDottedName() string {
	name := p.peek.Literal
	p.nextToken()
	for p.peekIs(lexer.DOT) {
		p.nextToken() // consume "."
		if !p.expect(lexer.IDENT) {
			break
		}
		name += "." + p.cur.Literal
	}
	return name
}

func (p *Parser) parseIntLit() ast.Expr {
	v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
	return &ast.IntLit{Value: v, Pos: p.pos()}
}

func (p *Parser) parseFloatLit() ast.Expr {
	v, _ := strconv.ParseFloat(p.cur.Literal, 64)
	return &ast.RealLit{Value: v, Pos: p.pos()}
}

func (p *Parser) parseStringLit() ast.Expr {
	return &ast.StringLit{Value: p.cur.Literal, Pos: p.pos()}
}

func (p *Parser) parseBoolLit() ast.Expr {
	return &ast.BoolLit{Value: p.cur.Type == lexer.TRUE, Pos: p.pos()}
}

func (p *Parser) parseEndExpr() ast.Expr {
	return &ast.EndExpr{Pos: p.pos()}
}

func (p *Parser) parseUnary() ast.Expr {
	op := p.cur.Literal
	start := p.pos()
	p.nextToken()
	x := p.parseExpr(precUnary)
	return &ast.UnaryExpr{Op: op, X: x, Pos: start}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return lowest
}

// parseExpr is the precedence-climbing entry point for one expression.
func (p *Parser) parseExpr(prec int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf(errors.PAR008, "unexpected token %s %q in expression", p.cur.Type, p.cur.Literal)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && prec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	op := p.cur.Literal
	prec := p.curPrecedence()
	start := left.Position()
	p.nextToken()
	right := p.parseExpr(prec)
	return &ast.BinaryExpr{Op: op, L: left, R: right, Pos: start}
}

// parseRange handles a:b and a:step:b; COLON is both the range
// separator and, in this grammar, has no other infix use.
func (p *Parser) parseRange(start ast.Expr) ast.Expr {
	pos := start.Position()
	p.nextToken()
	mid := p.parseExpr(precRange)
	if p.peekIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		stop := p.parseExpr(precRange)
		return &ast.RangeExpr{Start: start, Step: mid, Stop: stop, Pos: pos}
	}
	return &ast.RangeExpr{Start: start, Stop: mid, Pos: pos}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	p.nextToken() // consume "("
	first := p.parseExpr(lowest)
	if !p.expect(lexer.RPAREN) {
		return first
	}
	return first
}

func (p *Parser) parseArrayExpr() ast.Expr {
	pos := p.pos()
	elems := []ast.Expr{}
	if p.peekIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ArrayExpr{Elements: elems, Pos: pos}
	}
	p.nextToken()
	elems = append(elems, p.parseExpr(lowest))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseExpr(lowest))
	}
	p.expect(lexer.RBRACE)
	return &ast.ArrayExpr{Elements: elems, Pos: pos}
}

func (p *Parser) parseMatrixExpr() ast.Expr {
	pos := p.pos()
	var rows [][]ast.Expr
	p.nextToken()
	rows = append(rows, p.parseMatrixRow())
	for p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		p.nextToken()
		rows = append(rows, p.parseMatrixRow())
	}
	p.expect(lexer.RBRACKET)
	return &ast.MatrixExpr{Rows: rows, Pos: pos}
}

func (p *Parser) parseMatrixRow() []ast.Expr {
	row := []ast.Expr{p.parseExpr(lowest)}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		row = append(row, p.parseExpr(lowest))
	}
	return row
}

func (p *Parser) parseIfExpr() ast.Expr {
	pos := p.pos()
	expr := &ast.IfExpr{Pos: pos}

	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	p.nextToken()
	then := p.parseExpr(lowest)
	expr.Branches = append(expr.Branches, ifBranch(cond, then))

	for p.peekIs(lexer.ELSEIF) {
		p.nextToken()
		p.nextToken()
		c := p.parseExpr(lowest)
		p.expect(lexer.THEN)
		p.nextToken()
		t := p.parseExpr(lowest)
		expr.Branches = append(expr.Branches, ifBranch(c, t))
	}
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		expr.Else = p.parseExpr(lowest)
	}
	return expr
}

// ifBranch builds one element of ast.IfExpr.Branches, whose element
// type is anonymous in the ast package.
func ifBranch(cond, then ast.Expr) struct {
	Cond ast.Expr
	Then ast.Expr
} {
	return struct {
		Cond ast.Expr
		Then ast.Expr
	}{Cond: cond, Then: then}
}
