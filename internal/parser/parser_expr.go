package parser

import (
	"strings"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/lexer"
)

// parseComponentRefOrCall parses a (possibly dotted, possibly
// subscripted) component reference, or a function call when the
// dotted chain is immediately followed by "(" and carries no
// subscripts of its own (§3.1 ComponentReference / CallExpr).
func (p *Parser) parseComponentRefOrCall() ast.Expr {
	pos := p.pos()
	global := false
	if p.curIs(lexer.DOT) {
		global = true
		p.nextToken()
	}

	parts := []ast.RefPart{p.parseRefPart()}
	for p.peekIs(lexer.DOT) {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			break
		}
		parts = append(parts, p.parseRefPart())
	}

	hasSubscripts := false
	for _, part := range parts {
		if len(part.Subscripts) > 0 {
			hasSubscripts = true
		}
	}

	if p.peekIs(lexer.LPAREN) && !hasSubscripts {
		p.nextToken() // move onto "("
		return p.parseCallArgs(joinRefName(parts), pos)
	}

	return &ast.ComponentReference{Global: global, Parts: parts, Pos: pos}
}

// parseRefPart consumes the identifier currently under cur and any
// immediately following "[...]" subscript list.
func (p *Parser) parseRefPart() ast.RefPart {
	part := ast.RefPart{Name: p.cur.Literal}
	if p.peekIs(lexer.LBRACKET) {
		p.nextToken()
		part.Subscripts = p.parseSubscriptList()
	}
	return part
}

func joinRefName(parts []ast.RefPart) string {
	names := make([]string, len(parts))
	for i, part := range parts {
		names[i] = part.Name
	}
	return strings.Join(names, ".")
}

func (p *Parser) parseSubscriptList() []ast.Expr {
	var subs []ast.Expr
	p.nextToken() // move past "[" onto first subscript
	subs = append(subs, p.parseSubscript())
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		subs = append(subs, p.parseSubscript())
	}
	p.expect(lexer.RBRACKET)
	return subs
}

func (p *Parser) parseSubscript() ast.Expr {
	if p.curIs(lexer.COLON) {
		return &ast.ColonExpr{Pos: p.pos()}
	}
	return p.parseExpr(lowest)
}

// parseCallArgs parses "(" [ argument { "," argument } ] ")" where cur
// is already positioned on "(". An argument is either a bare
// expression (positional) or "name = expr" (named, §3.1 NamedArg).
func (p *Parser) parseCallArgs(funcName string, pos ast.Pos) ast.Expr {
	call := &ast.CallExpr{Func: funcName, Pos: pos}
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return call
	}
	p.nextToken()
	for {
		if p.curIs(lexer.IDENT) && p.peekIs(lexer.EQUALS) {
			name := p.cur.Literal
			p.nextToken() // onto "="
			p.nextToken() // onto start of value expr
			call.Named = append(call.Named, ast.NamedArg{Name: name, Value: p.parseExpr(lowest)})
		} else {
			call.Args = append(call.Args, p.parseExpr(lowest))
		}
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return call
}

// parseExprList parses a comma-separated list of expressions; cur must
// already be on the first token of the first expression.
func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpr(lowest)}
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		exprs = append(exprs, p.parseExpr(lowest))
	}
	return exprs
}

// parseArrayDims parses a "[" dim { "," dim } "]" array-dimension
// suffix used on component and type declarations (not a subscript on
// an expression, but the grammar is the same).
func (p *Parser) parseArrayDims() []ast.Expr {
	p.nextToken() // consume "["
	dims := p.parseExprList()
	p.expect(lexer.RBRACKET)
	return dims
}
