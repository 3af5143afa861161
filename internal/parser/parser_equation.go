package parser

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/lexer"
)

// isSectionBoundary reports whether t starts a new composition section
// (or ends the enclosing class), so equation/algorithm loops know
// where to stop.
func isSectionBoundary(t lexer.TokenType) bool {
	switch t {
	case lexer.PUBLIC, lexer.PROTECTED, lexer.EQUATION, lexer.ALGORITHM,
		lexer.INITIAL, lexer.END, lexer.EOF:
		return true
	}
	return false
}

func (p *Parser) peekIsAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.peek.Type == t {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------
// Equations
// ----------------------------------------------------------------------

func (p *Parser) parseEquationSection() []ast.Equation {
	var eqs []ast.Equation
	for !isSectionBoundary(p.peek.Type) {
		p.nextToken()
		if eq := p.parseEquation(); eq != nil {
			eqs = append(eqs, eq)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return eqs
}

// parseEquationsUntil parses equations until peek matches one of stops,
// with cur already positioned before the first equation.
func (p *Parser) parseEquationsUntil(stops ...lexer.TokenType) []ast.Equation {
	var eqs []ast.Equation
	for !p.peekIsAny(stops...) {
		p.nextToken()
		if eq := p.parseEquation(); eq != nil {
			eqs = append(eqs, eq)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return eqs
}

func (p *Parser) parseEquation() ast.Equation {
	switch p.cur.Type {
	case lexer.IF:
		return p.parseIfEquation()
	case lexer.FOR:
		return p.parseForEquation()
	case lexer.WHEN:
		return p.parseWhenEquation()
	case lexer.CONNECT:
		return p.parseConnectEquation()
	case lexer.REINIT:
		return p.parseReinitEquation()
	case lexer.ASSERT:
		return p.parseAssertEquation()
	default:
		pos := p.pos()
		lhs := p.parseExpr(lowest)
		if !p.expect(lexer.EQUALS) {
			p.synchronize()
			return nil
		}
		p.nextToken()
		rhs := p.parseExpr(lowest)
		return &ast.SimpleEquation{Lhs: lhs, Rhs: rhs, Pos: pos}
	}
}

func (p *Parser) parseIfEquation() ast.Equation {
	pos := p.pos()
	eq := &ast.IfEquation{Pos: pos}

	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	body := p.parseEquationsUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)
	eq.Branches = append(eq.Branches, ast.CondBlock{Cond: cond, Eqs: body})

	for p.peekIs(lexer.ELSEIF) {
		p.nextToken()
		p.nextToken()
		c := p.parseExpr(lowest)
		p.expect(lexer.THEN)
		b := p.parseEquationsUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)
		eq.Branches = append(eq.Branches, ast.CondBlock{Cond: c, Eqs: b})
	}
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		eq.Else = p.parseEquationsUntil(lexer.END)
	}
	p.expect(lexer.END)
	p.expect(lexer.IF)
	return eq
}

func (p *Parser) parseForEquation() ast.Equation {
	pos := p.pos()
	p.nextToken()
	if !p.curIs(lexer.IDENT) {
		p.errorf(errors.PAR006, "expected loop index identifier, got %s", p.cur.Type)
	}
	index := p.cur.Literal
	p.expect(lexer.IN)
	p.nextToken()
	rng := p.parseExpr(lowest)
	p.expect(lexer.LOOP)
	body := p.parseEquationsUntil(lexer.END)
	p.expect(lexer.END)
	p.expect(lexer.FOR)
	return &ast.ForEquation{Index: index, Range: rng, Eqs: body, Pos: pos}
}

func (p *Parser) parseWhenEquation() ast.Equation {
	pos := p.pos()
	eq := &ast.WhenEquation{Pos: pos}

	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	body := p.parseEquationsUntil(lexer.ELSEWHEN, lexer.END)
	eq.Branches = append(eq.Branches, ast.CondBlock{Cond: cond, Eqs: body})

	for p.peekIs(lexer.ELSEWHEN) {
		p.nextToken()
		p.nextToken()
		c := p.parseExpr(lowest)
		p.expect(lexer.THEN)
		b := p.parseEquationsUntil(lexer.ELSEWHEN, lexer.END)
		eq.Branches = append(eq.Branches, ast.CondBlock{Cond: c, Eqs: b})
	}
	p.expect(lexer.END)
	p.expect(lexer.WHEN)
	return eq
}

func (p *Parser) parseComponentRefExpr() *ast.ComponentReference {
	expr := p.parseComponentRefOrCall()
	ref, ok := expr.(*ast.ComponentReference)
	if !ok {
		p.errorf(errors.PAR006, "expected a component reference")
		return nil
	}
	return ref
}

func (p *Parser) parseConnectEquation() ast.Equation {
	pos := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	lhs := p.parseComponentRefExpr()
	p.expect(lexer.COMMA)
	p.nextToken()
	rhs := p.parseComponentRefExpr()
	p.expect(lexer.RPAREN)
	return &ast.ConnectEquation{Lhs: lhs, Rhs: rhs, Pos: pos}
}

func (p *Parser) parseReinitEquation() ast.Equation {
	pos := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	ref := p.parseComponentRefExpr()
	p.expect(lexer.COMMA)
	p.nextToken()
	rhs := p.parseExpr(lowest)
	p.expect(lexer.RPAREN)
	return &ast.ReinitEquation{Ref: ref, Rhs: rhs, Pos: pos}
}

func (p *Parser) parseAssertEquation() ast.Equation {
	pos := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.COMMA)
	p.nextToken()
	msg := p.parseExpr(lowest)
	p.expect(lexer.RPAREN)
	return &ast.AssertEquation{Cond: cond, Msg: msg, Pos: pos}
}

// ----------------------------------------------------------------------
// Algorithms / statements
// ----------------------------------------------------------------------

func (p *Parser) parseAlgorithmSection() *ast.Algorithm {
	pos := p.pos()
	var stmts []ast.Statement
	for !isSectionBoundary(p.peek.Type) {
		p.nextToken()
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return &ast.Algorithm{Stmts: stmts, Pos: pos}
}

func (p *Parser) parseStatementsUntil(stops ...lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for !p.peekIsAny(stops...) {
		p.nextToken()
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.WHEN:
		return p.parseWhenStmt()
	case lexer.BREAK:
		return &ast.BreakStmt{Pos: p.pos()}
	case lexer.RETURN:
		return &ast.ReturnStmt{Pos: p.pos()}
	case lexer.ASSERT:
		return p.parseAssertStmt()
	case lexer.LPAREN:
		return p.parseTupleAssignStmt()
	default:
		pos := p.pos()
		lhs := p.parseExpr(lowest)
		if !p.expect(lexer.ASSIGNOP) {
			p.synchronize()
			return nil
		}
		p.nextToken()
		rhs := p.parseExpr(lowest)
		return &ast.AssignStmt{Lhs: lhs, Rhs: rhs, Pos: pos}
	}
}

// parseTupleAssignStmt parses "(out1, out2, ...) := f(args);". The
// output list is represented as an ArrayExpr on the Lhs, since
// Modelica has no distinct tuple-expression node.
func (p *Parser) parseTupleAssignStmt() ast.Statement {
	pos := p.pos()
	p.nextToken()
	outs := p.parseExprList()
	p.expect(lexer.RPAREN)
	p.expect(lexer.ASSIGNOP)
	p.nextToken()
	rhs := p.parseExpr(lowest)
	return &ast.AssignStmt{Lhs: &ast.ArrayExpr{Elements: outs, Pos: pos}, Rhs: rhs, Pos: pos}
}

func (p *Parser) parseIfStmt() ast.Statement {
	pos := p.pos()
	stmt := &ast.IfStmt{Pos: pos}

	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	body := p.parseStatementsUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)
	stmt.Branches = append(stmt.Branches, ast.CondStmtBlock{Cond: cond, Stmts: body})

	for p.peekIs(lexer.ELSEIF) {
		p.nextToken()
		p.nextToken()
		c := p.parseExpr(lowest)
		p.expect(lexer.THEN)
		b := p.parseStatementsUntil(lexer.ELSEIF, lexer.ELSE, lexer.END)
		stmt.Branches = append(stmt.Branches, ast.CondStmtBlock{Cond: c, Stmts: b})
	}
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		stmt.Else = p.parseStatementsUntil(lexer.END)
	}
	p.expect(lexer.END)
	p.expect(lexer.IF)
	return stmt
}

func (p *Parser) parseForStmt() ast.Statement {
	pos := p.pos()
	p.nextToken()
	if !p.curIs(lexer.IDENT) {
		p.errorf(errors.PAR007, "expected loop index identifier, got %s", p.cur.Type)
	}
	index := p.cur.Literal
	p.expect(lexer.IN)
	p.nextToken()
	rng := p.parseExpr(lowest)
	p.expect(lexer.LOOP)
	body := p.parseStatementsUntil(lexer.END)
	p.expect(lexer.END)
	p.expect(lexer.FOR)
	return &ast.ForStmt{Index: index, Range: rng, Stmts: body, Pos: pos}
}

func (p *Parser) parseWhileStmt() ast.Statement {
	pos := p.pos()
	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.LOOP)
	body := p.parseStatementsUntil(lexer.END)
	p.expect(lexer.END)
	p.expect(lexer.WHILE)
	return &ast.WhileStmt{Cond: cond, Stmts: body, Pos: pos}
}

func (p *Parser) parseWhenStmt() ast.Statement {
	pos := p.pos()
	stmt := &ast.WhenStmt{Pos: pos}

	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	body := p.parseStatementsUntil(lexer.ELSEWHEN, lexer.END)
	stmt.Branches = append(stmt.Branches, ast.CondStmtBlock{Cond: cond, Stmts: body})

	for p.peekIs(lexer.ELSEWHEN) {
		p.nextToken()
		p.nextToken()
		c := p.parseExpr(lowest)
		p.expect(lexer.THEN)
		b := p.parseStatementsUntil(lexer.ELSEWHEN, lexer.END)
		stmt.Branches = append(stmt.Branches, ast.CondStmtBlock{Cond: c, Stmts: b})
	}
	p.expect(lexer.END)
	p.expect(lexer.WHEN)
	return stmt
}

func (p *Parser) parseAssertStmt() ast.Statement {
	pos := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpr(lowest)
	p.expect(lexer.COMMA)
	p.nextToken()
	msg := p.parseExpr(lowest)
	p.expect(lexer.RPAREN)
	return &ast.AssertStmt{Cond: cond, Msg: msg, Pos: pos}
}
