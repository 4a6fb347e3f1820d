// Package parser implements a recursive-descent parser producing
// internal/ast nodes from an internal/token stream.
package parser

import (
	"fmt"

	"rlox/internal/ast"
	"rlox/internal/loxerr"
	"rlox/internal/token"
)

const maxArgs = 255

// Parser consumes a flat token slice and produces a program: a slice of
// top-level statements, plus any parse errors collected along the way via
// synchronize-and-continue recovery.
type Parser struct {
	tokens []token.Token
	pos    int
	errs   []error
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse returns the top-level statements and any parse errors. Parsing
// continues past an error by synchronizing to the next statement boundary.
func (p *Parser) Parse() ([]ast.Stmt, []error) {
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt, ok := p.declarationRecovering()
		if ok {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errs
}

func (p *Parser) declarationRecovering() (stmt ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isParseErr := r.(parseError); isParseErr {
				p.synchronize()
				ok = false
				return
			}
			panic(r)
		}
	}()
	return p.declaration(), true
}

// parseError unwinds parsing of the current statement back to
// declarationRecovering, which then synchronizes. It is not a loxerr.Error
// itself; the diagnostic was already appended to p.errs when raised.
type parseError struct{}

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.Identifier
	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = &ast.Identifier{Name: p.previous()}
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")

	var methods []*ast.Function
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		methods = append(methods, p.function("method").(*ast.Function))
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")
	p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.reportAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")

	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.blockStmts()

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")

	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.VarDecl{Name: name, Init: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		return p.breakStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Stmts: p.blockStmts()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Expression{Expr: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.Print{Expr: expr}
}

func (p *Parser) breakStmt() ast.Stmt {
	kw := p.previous()
	p.consume(token.SEMICOLON, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: kw}
}

func (p *Parser) returnStmt() ast.Stmt {
	kw := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Keyword: kw, Value: value}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after if condition.")
	then := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}
	return &ast.If{Condition: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after while condition.")
	body := p.statement()
	return &ast.While{Condition: cond, Body: body}
}

// forStmt desugars `for (init; cond; step) body` into
// `{ init; while (cond) { body; step; } }`.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var step ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		step = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if step != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: step}}}
	}
	if cond == nil {
		cond = &ast.Literal{Token: token.Token{Type: token.TRUE, Lexeme: "true"}, Value: "true"}
	}
	body = &ast.While{Condition: cond, Body: body}

	if init != nil {
		body = &ast.Block{Stmts: []ast.Stmt{init, body}}
	}
	return body
}

func (p *Parser) blockStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		stmt, ok := p.declarationRecovering()
		if ok {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

// -------------------------------------------------------------- Expressions

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Identifier:
			return &ast.Assignment{Name: target.Name, Expr: value}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.reportAt(equals, "Invalid assignment target.")
			return expr
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EQUAL_EQUAL, token.BANG_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.STAR, token.SLASH) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.reportAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		t := p.previous()
		return &ast.Literal{Token: t, Value: "false"}
	case p.match(token.TRUE):
		t := p.previous()
		return &ast.Literal{Token: t, Value: "true"}
	case p.match(token.NIL):
		t := p.previous()
		return &ast.Literal{Token: t, Value: "nil"}
	case p.match(token.NUMBER, token.STRING):
		t := p.previous()
		return &ast.Literal{Token: t, Value: t.Lexeme}
	case p.match(token.SUPER):
		kw := p.previous()
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
		return &ast.Super{Keyword: kw, Method: method}
	case p.match(token.THIS):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.IDENTIFIER):
		return &ast.Identifier{Name: p.previous()}
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	default:
		p.reportAt(p.peek(), "Expect expression.")
		panic(parseError{})
	}
}

// -------------------------------------------------------------- Helpers

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	return !p.atEnd() && p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return p.tokens[0]
}

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.reportAt(p.peek(), message)
	panic(parseError{})
}

func (p *Parser) reportAt(tok token.Token, message string) {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = "at end"
	}
	p.errs = append(p.errs, loxerr.NewParse(tok.Line, where, message))
}

// synchronize discards tokens until the next statement boundary: a
// semicolon, or a statement-starting keyword.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
