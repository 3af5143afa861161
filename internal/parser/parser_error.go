package parser

import "github.com/go-modelica/moc/internal/lexer"

// synchronize advances past tokens until it reaches a semicolon, "end",
// or EOF, so one malformed declaration doesn't cascade into spurious
// errors for everything that follows it (§7 parser recovery).
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		if p.peekIs(lexer.END) {
			p.nextToken()
			return
		}
		p.nextToken()
	}
}
