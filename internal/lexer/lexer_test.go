package lexer

import "testing"

func collect(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input, "test.mo")
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestNextTokenModel(t *testing.T) {
	input := `model Pendulum
  parameter Real L = 1.0 "length";
  Real theta(start = 0.5);
equation
  der(theta) = omega;
end Pendulum;`

	tests := []struct {
		typ TokenType
		lit string
	}{
		{MODEL, "model"},
		{IDENT, "Pendulum"},
		{PARAMETER, "parameter"},
		{IDENT, "Real"},
		{IDENT, "L"},
		{EQUALS, "="},
		{FLOAT, "1.0"},
		{STRING, "length"},
		{SEMICOLON, ";"},
		{IDENT, "Real"},
		{IDENT, "theta"},
		{LPAREN, "("},
		{IDENT, "start"},
		{EQUALS, "="},
		{FLOAT, "0.5"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{EQUATION, "equation"},
		{IDENT, "der"},
		{LPAREN, "("},
		{IDENT, "theta"},
		{RPAREN, ")"},
		{EQUALS, "="},
		{IDENT, "omega"},
		{SEMICOLON, ";"},
		{END, "end"},
		{IDENT, "Pendulum"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	toks := collect(t, input)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(tests))
	}
	for i, want := range tests {
		if toks[i].Type != want.typ || toks[i].Literal != want.lit {
			t.Errorf("token %d: got {%s %q}, want {%s %q}", i, toks[i].Type, toks[i].Literal, want.typ, want.lit)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	tests := []struct {
		typ TokenType
		lit string
	}{
		{FLOAT, "3.14"},
		{FLOAT, "2.0"},
		{FLOAT, "1e10"},
		{FLOAT, "1.5e-3"},
		{EOF, ""},
	}
	toks := collect(t, "3.14 2.0 1e10 1.5e-3")
	for i, want := range tests {
		if toks[i].Type != want.typ || toks[i].Literal != want.lit {
			t.Errorf("token %d: got {%s %q}, want {%s %q}", i, toks[i].Type, toks[i].Literal, want.typ, want.lit)
		}
	}
}

func TestRangeVsFloat(t *testing.T) {
	toks := collect(t, "1:10 1.5:0.1:2.5")
	want := []TokenType{INT, COLON, INT, FLOAT, COLON, FLOAT, COLON, FLOAT, EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"hello\nworld" "quote\"inside\""`)
	if toks[0].Literal != "hello\nworld" {
		t.Errorf("got %q", toks[0].Literal)
	}
	if toks[1].Literal != `quote"inside"` {
		t.Errorf("got %q", toks[1].Literal)
	}
}

func TestQuotedIdentifier(t *testing.T) {
	toks := collect(t, `'der(x)' 'a b'`)
	if toks[0].Type != IDENT || toks[0].Literal != "'der(x)'" {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Type != IDENT || toks[1].Literal != "'a b'" {
		t.Errorf("got %v", toks[1])
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / ^ == <> < > <= >= := = . .. .+ .- .* ./ .^ : { } [ ] ( ) , ;`
	want := []TokenType{
		PLUS, MINUS, STAR, SLASH, CARET,
		EQEQ, NEQ, LT, GT, LTE, GTE,
		ASSIGNOP, EQUALS, DOT, DOTDOT,
		DOTPLUS, DOTMINUS, DOTSTAR, DOTSLASH, DOTCARET,
		COLON, LBRACE, RBRACE, LBRACKET, RBRACKET,
		LPAREN, RPAREN, COMMA, SEMICOLON, EOF,
	}
	toks := collect(t, input)
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestKeywordsNotShadowedByBuiltins(t *testing.T) {
	builtins := []string{"der", "pre", "sample", "sin", "cos", "atan2"}
	for _, b := range builtins {
		if typ := LookupIdent(b); typ != IDENT {
			t.Errorf("builtin %q should lex as IDENT, got %s", b, typ)
		}
	}
}

func TestKeywords(t *testing.T) {
	kws := []string{
		"model", "class", "block", "connector", "record", "type", "package",
		"function", "operator", "extends", "import", "equation", "algorithm",
		"initial", "public", "protected", "within", "end", "annotation",
		"input", "output", "flow", "stream", "inner", "outer", "final",
		"partial", "encapsulated", "redeclare", "replaceable", "each",
		"discrete", "parameter", "constant", "if", "then", "elseif", "else",
		"for", "while", "loop", "when", "elsewhen", "in", "break", "return",
		"connect", "reinit", "assert", "and", "or", "not", "true", "false",
	}
	for _, kw := range kws {
		l := New(kw, "test.mo")
		tok := l.NextToken()
		if tok.Type == IDENT {
			t.Errorf("keyword %q lexed as IDENT", kw)
		}
		if tok.Literal != kw {
			t.Errorf("keyword %q: literal mismatch %q", kw, tok.Literal)
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "model M\n  Real x;\nend M;"
	l := New(input, "test.mo")

	tok := l.NextToken() // model
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("model: expected 1:1, got %d:%d", tok.Line, tok.Column)
	}
	tok = l.NextToken() // M
	if tok.Line != 1 || tok.Column != 7 {
		t.Errorf("M: expected 1:7, got %d:%d", tok.Line, tok.Column)
	}
	for tok.Type != END {
		tok = l.NextToken()
	}
	if tok.Line != 3 {
		t.Errorf("end: expected line 3, got %d", tok.Line)
	}
}

func TestComments(t *testing.T) {
	input := `// line comment
model M /* block
   comment */ Real x; end M;`

	want := []TokenType{MODEL, IDENT, IDENT, IDENT, SEMICOLON, END, IDENT, SEMICOLON, EOF}
	toks := collect(t, input)
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
		}
	}
}
