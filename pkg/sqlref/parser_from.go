package sqlref

// FROM clause parsing: table references, derived tables, JOINs.
//
// Grammar:
//
//	from_clause   → table_ref (join)*
//	table_ref     → table_name | derived_table
//	table_name    → identifier ["." identifier] [AS identifier]
//	derived_table → "(" statement ")" [AS] identifier
//	join          → [NATURAL] join_type JOIN table_ref [ON expr | USING "(" ident_list ")"]
//	              | "," table_ref
//	join_type     → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS

// parseFromClause parses the FROM clause.
func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{}
	from.Source = p.parseTableRef()

	// Parse JOINs
	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	return from
}

// parseTableRef parses a table reference.
func (p *Parser) parseTableRef() TableRef {
	// Derived table (subquery)
	if p.check(TOKEN_LPAREN) {
		return p.parseDerivedTable()
	}

	// Simple table name
	return p.parseTableName()
}

// parseTableName parses a table name with optional qualifier and alias.
// Benchmark databases are single-schema, so a qualified name keeps only its
// final part.
func (p *Parser) parseTableName() *TableName {
	table := &TableName{}

	if !p.check(TOKEN_IDENT) {
		p.addError("expected table name")
		return table
	}

	table.Name = p.token.Literal
	p.nextToken()

	for p.match(TOKEN_DOT) {
		if p.check(TOKEN_IDENT) {
			table.Name = p.token.Literal
			p.nextToken()
		}
	}

	// Optional alias
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			table.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(TOKEN_IDENT) && !p.isJoinKeyword(p.token) && !p.isClauseKeyword(p.token) {
		table.Alias = p.token.Literal
		p.nextToken()
	}

	return table
}

// parseDerivedTable parses a derived table (subquery in FROM).
func (p *Parser) parseDerivedTable() *DerivedTable {
	p.expect(TOKEN_LPAREN)
	derived := &DerivedTable{}
	derived.Select = p.parseStatement()
	p.expect(TOKEN_RPAREN)

	// Alias is conventionally required for derived tables
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			derived.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(TOKEN_IDENT) && !p.isJoinKeyword(p.token) && !p.isClauseKeyword(p.token) {
		derived.Alias = p.token.Literal
		p.nextToken()
	}

	return derived
}

// parseJoin parses a JOIN clause.
func (p *Parser) parseJoin() *Join {
	join := &Join{}

	// Comma join (implicit cross join)
	if p.match(TOKEN_COMMA) {
		join.Type = JoinComma
		join.Right = p.parseTableRef()
		return join
	}

	// NATURAL modifier precedes the join type
	if p.match(TOKEN_NATURAL) {
		join.Natural = true
	}

	// Determine join type
	switch {
	case p.match(TOKEN_CROSS):
		join.Type = JoinCross
		p.expect(TOKEN_JOIN)
		join.Right = p.parseTableRef()
		return join

	case p.match(TOKEN_LEFT):
		join.Type = JoinLeft
		p.match(TOKEN_OUTER) // optional

	case p.match(TOKEN_RIGHT):
		join.Type = JoinRight
		p.match(TOKEN_OUTER) // optional

	case p.match(TOKEN_FULL):
		join.Type = JoinFull
		p.match(TOKEN_OUTER) // optional

	case p.match(TOKEN_INNER):
		join.Type = JoinInner

	case p.check(TOKEN_JOIN):
		join.Type = JoinInner // default

	default:
		if join.Natural {
			p.addError("expected JOIN after NATURAL")
		}
		return nil // no join
	}

	if !p.expect(TOKEN_JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()

	// ON clause
	if p.match(TOKEN_ON) {
		join.Condition = p.parseExpression()
		return join
	}

	// USING clause
	if p.match(TOKEN_USING) {
		p.expect(TOKEN_LPAREN)
		for {
			if p.check(TOKEN_IDENT) {
				join.Using = append(join.Using, p.token.Literal)
				p.nextToken()
			} else {
				p.addError("expected column name in USING clause")
			}
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	return join
}
