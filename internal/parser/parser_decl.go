package parser

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/lexer"
)

// classKindFromToken maps a class-prefix keyword token to its ast.Kind.
func classKindFromToken(t lexer.TokenType) (ast.Kind, bool) {
	switch t {
	case lexer.MODEL:
		return ast.KindModel, true
	case lexer.CLASS:
		return ast.KindClass, true
	case lexer.BLOCK:
		return ast.KindBlock, true
	case lexer.CONNECTOR:
		return ast.KindConnector, true
	case lexer.RECORD:
		return ast.KindRecord, true
	case lexer.TYPE:
		return ast.KindType, true
	case lexer.PACKAGE:
		return ast.KindPackage, true
	case lexer.FUNCTION:
		return ast.KindFunction, true
	case lexer.OPERATOR:
		return ast.KindOperator, true
	}
	return 0, false
}

// dottedNameFromCur reads IDENT ("." IDENT)* starting at cur, leaving
// cur on the final part.
func (p *Parser) dottedNameFromCur() string {
	name := p.cur.Literal
	for p.peekIs(lexer.DOT) {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			break
		}
		name += "." + p.cur.Literal
	}
	return name
}

// parseClassDefinition parses one top-level class-prefixes + class-body,
// with cur positioned on the first prefix keyword or the kind keyword
// itself.
func (p *Parser) parseClassDefinition(finalAlready bool) *ast.ClassDefinition {
	start := p.pos()
	partial, encapsulated, final := false, false, finalAlready

prefixLoop:
	for {
		switch p.cur.Type {
		case lexer.PARTIAL:
			partial = true
		case lexer.ENCAPSULATED:
			encapsulated = true
		case lexer.FINAL:
			final = true
		default:
			break prefixLoop
		}
		p.nextToken()
	}

	return p.parseClassBody(start, partial, encapsulated, final)
}

// parseClassBody parses "kind name ( composition | '=' type-spec ) 'end' name ';'"
// with cur positioned on the kind keyword.
func (p *Parser) parseClassBody(start ast.Pos, partial, encapsulated, final bool) *ast.ClassDefinition {
	kind, ok := classKindFromToken(p.cur.Type)
	if !ok {
		p.errorf(errors.PAR001, "expected a class-definition keyword, got %s %q", p.cur.Type, p.cur.Literal)
		p.synchronize()
		return nil
	}
	if !p.expect(lexer.IDENT) {
		p.synchronize()
		return nil
	}
	name := p.cur.Literal

	cls := &ast.ClassDefinition{
		Name: name, Kind: kind,
		Partial: partial, Encapsulated: encapsulated, Final: final,
		Pos: start,
	}

	// Short class-definition: "model Foo = Bar(mods) \"desc\";"
	if p.peekIs(lexer.EQUALS) {
		p.nextToken()
		p.nextToken()

		// "type Colors = enumeration(Red, Green, Blue);": the only short
		// class-definition form whose right-hand side is a literal list
		// rather than a base-type-plus-modifiers, so it's parsed as its
		// own case instead of through parseClassModification.
		if kind == ast.KindType && p.curIs(lexer.IDENT) && p.cur.Literal == "enumeration" && p.peekIs(lexer.LPAREN) {
			p.nextToken()
			cls.EnumLiterals = p.parseEnumLiteralList()
			if p.peekIs(lexer.STRING) {
				p.nextToken()
				cls.Description = p.cur.Literal
			}
			p.expect(lexer.SEMICOLON)
			cls.Span = p.span(start)
			return cls
		}

		baseName := p.dottedNameFromCur()
		ext := &ast.Extend{TypeName: baseName, Pos: start}
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			ext.Modifier = p.parseClassModification()
		}
		cls.Extends = append(cls.Extends, ext)
		if p.peekIs(lexer.STRING) {
			p.nextToken()
			cls.Description = p.cur.Literal
		}
		p.expect(lexer.SEMICOLON)
		cls.Span = p.span(start)
		return cls
	}

	if p.peekIs(lexer.STRING) {
		p.nextToken()
		cls.Description = p.cur.Literal
	}

	p.parseComposition(cls)

	if p.peekIs(lexer.END) {
		p.nextToken()
		if p.peekIs(lexer.IDENT) {
			p.nextToken()
		}
		p.expect(lexer.SEMICOLON)
	} else {
		p.errorf(errors.PAR002, "missing 'end %s'", name)
	}
	cls.Span = p.span(start)
	return cls
}

// parseEnumLiteralList parses "(" [ IDENT { "," IDENT } ] ")" with cur
// positioned on "(", returning the literal names in declaration order
// (their position in this list is also each literal's integer value,
// per Modelica's enumeration semantics).
func (p *Parser) parseEnumLiteralList() []string {
	var lits []string
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return lits
	}
	p.nextToken()
	lits = append(lits, p.cur.Literal)
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		lits = append(lits, p.cur.Literal)
	}
	p.expect(lexer.RPAREN)
	return lits
}

// parseComposition parses the element-list/equation/algorithm sections
// of a class body, with cur on the class name and peek on the first
// section token.
func (p *Parser) parseComposition(cls *ast.ClassDefinition) {
	visibility := ast.Public

	for !p.peekIs(lexer.END) && !p.peekIs(lexer.EOF) {
		p.nextToken()
		switch p.cur.Type {
		case lexer.PUBLIC:
			visibility = ast.Public
		case lexer.PROTECTED:
			visibility = ast.Protected
		case lexer.EQUATION:
			cls.Equations = append(cls.Equations, p.parseEquationSection()...)
		case lexer.ALGORITHM:
			cls.Algorithms = append(cls.Algorithms, p.parseAlgorithmSection())
		case lexer.INITIAL:
			p.nextToken()
			if p.curIs(lexer.EQUATION) {
				cls.InitialEquations = append(cls.InitialEquations, p.parseEquationSection()...)
			} else if p.curIs(lexer.ALGORITHM) {
				cls.InitialAlgorithms = append(cls.InitialAlgorithms, p.parseAlgorithmSection())
			}
		case lexer.EXTENDS:
			cls.Extends = append(cls.Extends, p.parseExtendsClause())
		case lexer.IMPORT:
			cls.Imports = append(cls.Imports, p.parseImportClause())
		case lexer.ANNOTATION:
			cls.Annotation = p.parseAnnotationClause()
			p.expect(lexer.SEMICOLON)
		case lexer.SEMICOLON:
			// stray empty element, ignore
		default:
			p.parseElement(cls, visibility)
		}
	}
}

// componentPrefixes collects the prefix keywords that precede a
// component-clause or a nested class-definition (§3.1 Component).
type componentPrefixes struct {
	Redeclare, Replaceable, Inner, Outer, Final, Each bool
	Partial, Encapsulated                             bool
	Variability                                       ast.Variability
	Causality                                         ast.Causality
	Connector                                         ast.ConnectorPrefix
}

// parseElement parses one element of a composition: a component-clause
// or a nested class-definition, each optionally preceded by prefix
// keywords.
func (p *Parser) parseElement(cls *ast.ClassDefinition, vis ast.Visibility) {
	start := p.pos()
	pre := componentPrefixes{}

prefixLoop:
	for {
		switch p.cur.Type {
		case lexer.REDECLARE:
			pre.Redeclare = true
		case lexer.REPLACEABLE:
			pre.Replaceable = true
		case lexer.INNER:
			pre.Inner = true
		case lexer.OUTER:
			pre.Outer = true
		case lexer.FINAL:
			pre.Final = true
		case lexer.EACH:
			pre.Each = true
		case lexer.PARTIAL:
			pre.Partial = true
		case lexer.ENCAPSULATED:
			pre.Encapsulated = true
		case lexer.INPUT:
			pre.Causality = ast.Input
		case lexer.OUTPUT:
			pre.Causality = ast.Output
		case lexer.FLOW:
			pre.Connector = ast.Flow
		case lexer.STREAM:
			pre.Connector = ast.Stream
		case lexer.PARAMETER:
			pre.Variability = ast.Parameter
		case lexer.DISCRETE:
			pre.Variability = ast.Discrete
		case lexer.CONSTANT:
			pre.Variability = ast.Constant
		default:
			break prefixLoop
		}
		p.nextToken()
	}

	if _, ok := classKindFromToken(p.cur.Type); ok {
		nested := p.parseClassBody(start, pre.Partial, pre.Encapsulated, pre.Final)
		if nested != nil {
			cls.Nested = append(cls.Nested, nested)
		}
		return
	}

	if !p.curIs(lexer.IDENT) {
		p.errorf(errors.PAR003, "expected a component type or nested class, got %s %q", p.cur.Type, p.cur.Literal)
		p.synchronize()
		return
	}

	typeName := p.dottedNameFromCur()
	var typeDims []ast.Expr
	if p.peekIs(lexer.LBRACKET) {
		p.nextToken()
		typeDims = p.parseArrayDims()
	}

	for {
		comp := p.parseComponentDeclaration(typeName, typeDims, vis, pre, start)
		if comp != nil {
			cls.Components = append(cls.Components, comp)
		}
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.SEMICOLON)
}

func (p *Parser) parseComponentDeclaration(typeName string, typeDims []ast.Expr, vis ast.Visibility, pre componentPrefixes, pos ast.Pos) *ast.Component {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	comp := &ast.Component{
		Name: p.cur.Literal, TypeName: typeName, Dims: typeDims,
		Variability: pre.Variability, Causality: pre.Causality, Connector: pre.Connector,
		Inner: pre.Inner, Outer: pre.Outer, Redeclare: pre.Redeclare,
		Replaceable: pre.Replaceable, Final: pre.Final, Each: pre.Each,
		Scope: vis, Pos: pos,
	}

	if p.peekIs(lexer.LBRACKET) {
		p.nextToken()
		comp.Dims = append(comp.Dims, p.parseArrayDims()...)
	}
	if p.peekIs(lexer.IF) {
		p.nextToken()
		p.nextToken()
		comp.Condition = p.parseExpr(lowest)
	}
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		comp.Modifier = p.parseClassModification()
	}
	if p.peekIs(lexer.EQUALS) {
		p.nextToken()
		p.nextToken()
		comp.Start = p.parseExpr(lowest)
	}
	if p.peekIs(lexer.STRING) {
		p.nextToken()
		comp.Description = p.cur.Literal
	}
	if p.peekIs(lexer.ANNOTATION) {
		p.nextToken()
		comp.Annotation = p.parseAnnotationClause()
	}
	return comp
}

// parseClassModification parses "(" [ modifier { "," modifier } ] ")"
// with cur positioned on "(".
func (p *Parser) parseClassModification() *ast.Modifier {
	pos := p.pos()
	mod := &ast.Modifier{Pos: pos}
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return mod
	}
	p.nextToken()
	mod.Entries = append(mod.Entries, p.parseModifierEntry())
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		mod.Entries = append(mod.Entries, p.parseModifierEntry())
	}
	p.expect(lexer.RPAREN)
	return mod
}

func (p *Parser) parseModifierEntry() *ast.ModifierEntry {
	pos := p.pos()
	entry := &ast.ModifierEntry{Pos: pos}

prefixLoop:
	for {
		switch p.cur.Type {
		case lexer.EACH:
			entry.Each = true
		case lexer.FINAL:
			entry.Final = true
		case lexer.REDECLARE:
			entry.Redeclare = true
		default:
			break prefixLoop
		}
		p.nextToken()
	}

	entry.Name = p.dottedNameFromCur()
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		entry.Nested = p.parseClassModification()
	}
	if p.peekIs(lexer.EQUALS) {
		p.nextToken()
		p.nextToken()
		entry.Value = p.parseExpr(lowest)
	}
	return entry
}

// parseExtendsClause parses "extends type-spec [class-modification] [annotation] ;"
// with cur on EXTENDS.
func (p *Parser) parseExtendsClause() *ast.Extend {
	pos := p.pos()
	p.nextToken()
	ext := &ast.Extend{TypeName: p.dottedNameFromCur(), Pos: pos}
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		ext.Modifier = p.parseClassModification()
	}
	if p.peekIs(lexer.ANNOTATION) {
		p.nextToken()
		p.parseAnnotationClause()
	}
	p.expect(lexer.SEMICOLON)
	return ext
}

// parseImportClause parses the four import forms (§3.1 ImportClause),
// with cur on IMPORT.
func (p *Parser) parseImportClause() *ast.ImportClause {
	pos := p.pos()
	p.nextToken()
	imp := &ast.ImportClause{Pos: pos}

	if p.peekIs(lexer.EQUALS) {
		alias := p.cur.Literal
		p.nextToken()
		p.nextToken()
		imp.Kind = ast.ImportRename
		imp.Alias = alias
		imp.Name = p.dottedNameFromCur()
		p.expect(lexer.SEMICOLON)
		return imp
	}

	name := p.cur.Literal
	for p.peekIs(lexer.DOT) {
		p.nextToken()
		if p.peekIs(lexer.STAR) {
			p.nextToken()
			imp.Kind = ast.ImportUnqualified
			imp.Wildcard = true
			imp.Name = name
			p.expect(lexer.SEMICOLON)
			return imp
		}
		if p.peekIs(lexer.LBRACE) {
			p.nextToken()
			imp.Kind = ast.ImportSelective
			imp.Name = name
			p.nextToken()
			imp.Names = append(imp.Names, p.cur.Literal)
			for p.peekIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				imp.Names = append(imp.Names, p.cur.Literal)
			}
			p.expect(lexer.RBRACE)
			p.expect(lexer.SEMICOLON)
			return imp
		}
		if !p.expect(lexer.IDENT) {
			break
		}
		name += "." + p.cur.Literal
	}
	imp.Kind = ast.ImportQualified
	imp.Name = name
	p.expect(lexer.SEMICOLON)
	return imp
}

// parseAnnotationClause parses "annotation ( class-modification )" with
// cur on ANNOTATION.
func (p *Parser) parseAnnotationClause() *ast.Modifier {
	p.nextToken()
	if !p.curIs(lexer.LPAREN) {
		return nil
	}
	return p.parseClassModification()
}
