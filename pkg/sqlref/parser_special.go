package sqlref

// Special expression forms: CASE, CAST, EXISTS, and the LPAREN
// dispatch between parenthesized expressions and scalar subqueries.

// parseCaseExpr parses a CASE expression, with or without an operand.
func (p *Parser) parseCaseExpr() Expr {
	p.nextToken() // past CASE
	ce := &CaseExpr{}

	// CASE operand WHEN ... vs CASE WHEN ...
	if !p.check(TOKEN_WHEN) {
		ce.Operand = p.parseExpression()
	}

	for p.match(TOKEN_WHEN) {
		when := WhenClause{}
		when.Condition = p.parseExpression()
		p.expect(TOKEN_THEN)
		when.Result = p.parseExpression()
		ce.Whens = append(ce.Whens, when)
	}

	if p.match(TOKEN_ELSE) {
		ce.Else = p.parseExpression()
	}

	p.expect(TOKEN_END)
	return ce
}

// parseCastExpr parses CAST(expr AS type). Type names may carry
// precision arguments, which are consumed and discarded.
func (p *Parser) parseCastExpr() Expr {
	p.nextToken() // past CAST
	p.expect(TOKEN_LPAREN)

	ce := &CastExpr{}
	ce.Expr = p.parseExpression()
	p.expect(TOKEN_AS)

	// Type names can span multiple identifiers (e.g. DOUBLE PRECISION)
	var typeName string
	for p.check(TOKEN_IDENT) || p.isKeyword(p.token) {
		if typeName != "" {
			typeName += " "
		}
		typeName += p.token.Literal
		p.nextToken()
	}
	if typeName == "" {
		p.addError("expected type name in CAST")
	}
	ce.TypeName = typeName

	if p.match(TOKEN_LPAREN) {
		for !p.check(TOKEN_RPAREN) && !p.check(TOKEN_EOF) {
			p.nextToken()
		}
		p.expect(TOKEN_RPAREN)
	}

	p.expect(TOKEN_RPAREN)
	return ce
}

// parseExistsExpr parses [NOT] EXISTS (subquery). The current token is EXISTS.
func (p *Parser) parseExistsExpr(not bool) Expr {
	p.nextToken() // past EXISTS
	p.expect(TOKEN_LPAREN)

	ee := &ExistsExpr{Not: not}
	ee.Select = p.parseStatement()

	p.expect(TOKEN_RPAREN)
	return ee
}

// parseParenOrSubquery disambiguates between a parenthesized expression
// and a scalar subquery after an opening parenthesis.
func (p *Parser) parseParenOrSubquery() Expr {
	p.nextToken() // past LPAREN

	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		sub := &SubqueryExpr{Select: p.parseStatement()}
		p.expect(TOKEN_RPAREN)
		return sub
	}

	expr := p.parseExpression()
	p.expect(TOKEN_RPAREN)
	return &ParenExpr{Expr: expr}
}
