package sqlref

// Primary expression parsing: literals, column references, function calls,
// and the special forms that begin with a keyword (CASE, CAST, EXISTS).

// parsePrimary parses a primary expression.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_STRING:
		lit := &Literal{Type: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "null"}

	case TOKEN_TRUE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "true"}

	case TOKEN_FALSE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: "false"}

	case TOKEN_CASE:
		return p.parseCaseExpr()

	case TOKEN_CAST:
		return p.parseCastExpr()

	case TOKEN_EXISTS:
		return p.parseExistsExpr(false)

	case TOKEN_LPAREN:
		return p.parseParenOrSubquery()

	case TOKEN_STAR:
		p.nextToken()
		return &StarExpr{}

	case TOKEN_IDENT:
		return p.parseIdentExpr()

	default:
		// Some keywords double as bare function names (LEFT, RIGHT, ...)
		if p.isKeyword(p.token) && p.checkPeek(TOKEN_LPAREN) {
			return p.parseFuncCall(p.token.Literal)
		}
		p.addError("unexpected token " + p.token.Type.String() + " in expression")
		p.nextToken()
		return nil
	}
}

// parseIdentExpr parses an expression beginning with an identifier:
// a bare column, a qualified column, a qualified star, or a function call.
func (p *Parser) parseIdentExpr() Expr {
	name := p.token.Literal

	// Function call
	if p.checkPeek(TOKEN_LPAREN) {
		return p.parseFuncCall(name)
	}

	// Qualified reference: t.col or t.*
	if p.checkPeek(TOKEN_DOT) {
		p.nextToken() // to DOT
		p.nextToken() // past DOT

		if p.check(TOKEN_STAR) {
			p.nextToken()
			return &StarExpr{Table: name}
		}

		if !p.check(TOKEN_IDENT) && !p.isNameToken(p.token) {
			p.addError("expected column name after " + name + ".")
			return nil
		}
		col := &ColumnRef{Table: name, Column: p.token.Literal}
		p.nextToken()
		return col
	}

	col := &ColumnRef{Column: name}
	p.nextToken()
	return col
}

// parseFuncCall parses a function call. The current token is the function
// name and the peek token is the opening parenthesis.
func (p *Parser) parseFuncCall(name string) Expr {
	fn := &FuncCall{Name: name}
	p.nextToken() // to LPAREN
	p.nextToken() // past LPAREN

	if p.check(TOKEN_STAR) {
		fn.Star = true
		p.nextToken()
	} else if !p.check(TOKEN_RPAREN) {
		if p.match(TOKEN_DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
	}
	p.expect(TOKEN_RPAREN)

	// FILTER (WHERE expr)
	if p.match(TOKEN_FILTER) {
		p.expect(TOKEN_LPAREN)
		p.expect(TOKEN_WHERE)
		fn.Filter = p.parseExpression()
		p.expect(TOKEN_RPAREN)
	}

	// OVER (window spec)
	if p.match(TOKEN_OVER) {
		fn.Window = p.parseWindowSpec()
	}

	return fn
}

// parseWindowSpec parses an OVER clause. Frame clauses are consumed
// but only partition and order expressions are kept.
func (p *Parser) parseWindowSpec() *WindowSpec {
	spec := &WindowSpec{}
	p.expect(TOKEN_LPAREN)

	if p.match(TOKEN_PARTITION) {
		p.expect(TOKEN_BY)
		spec.PartitionBy = p.parseExpressionList()
	}

	if p.match(TOKEN_ORDER) {
		p.expect(TOKEN_BY)
		spec.OrderBy = p.parseOrderByList()
	}

	if p.check(TOKEN_ROWS) || p.check(TOKEN_RANGE) || p.check(TOKEN_GROUPS) {
		p.parseFrameClause()
	}

	p.expect(TOKEN_RPAREN)
	return spec
}

// parseFrameClause consumes a window frame clause without modeling it.
func (p *Parser) parseFrameClause() {
	p.nextToken() // ROWS / RANGE / GROUPS

	if p.match(TOKEN_BETWEEN) {
		p.parseFrameBound()
		p.expect(TOKEN_AND)
		p.parseFrameBound()
		return
	}
	p.parseFrameBound()
}

// parseFrameBound consumes a single frame bound.
func (p *Parser) parseFrameBound() {
	switch p.token.Type {
	case TOKEN_UNBOUNDED:
		p.nextToken()
		p.nextToken() // PRECEDING or FOLLOWING
	case TOKEN_CURRENT:
		p.nextToken()
		p.expect(TOKEN_ROW)
	default:
		p.parseExpressionWithPrecedence(precedenceAddition)
		if p.check(TOKEN_PRECEDING) || p.check(TOKEN_FOLLOWING) {
			p.nextToken()
		}
	}
}
