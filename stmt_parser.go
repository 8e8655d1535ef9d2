package lacc

// Statement lowering threads the same (parent) -> (tail) convention as
// expressions: each statement parser emits into the block it is given
// and returns the block control ends up in.

// parseCompound parses `{ ... }` with declarations and statements
// freely interleaved.  The function body reuses the scope its
// parameters were declared in; every other compound pushes a fresh
// scope in the identifier and tag namespaces.
func (p *Parser) parseCompound(b *Block, pushScope bool) (*Block, error) {
	if _, err := p.expect(Token_LBrace); err != nil {
		return nil, err
	}
	if pushScope {
		p.idents.PushScope()
		p.tags.PushScope()
	}
	for p.peek().Kind != Token_RBrace && p.peek().Kind != Token_EOF {
		var err error
		if p.startsDeclaration(p.peek()) {
			b, err = p.parseDeclaration(b)
		} else {
			b, err = p.parseStatement(b)
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(Token_RBrace); err != nil {
		return nil, err
	}
	if pushScope {
		p.tags.PopScope()
		p.idents.PopScope()
	}
	return b, nil
}

func (p *Parser) parseStatement(b *Block) (*Block, error) {
	switch t := p.peek(); t.Kind {
	case Token_LBrace:
		return p.parseCompound(b, true)
	case Token_If:
		return p.parseIf(b)
	case Token_While:
		return p.parseWhile(b)
	case Token_Do:
		return p.parseDoWhile(b)
	case Token_For:
		return p.parseFor(b)
	case Token_Break:
		p.next()
		target := p.breakTarget()
		if target == nil {
			return nil, p.semanticf("break statement not within loop or switch")
		}
		b.Jump[0] = target
		if _, err := p.expect(Token_Semicolon); err != nil {
			return nil, err
		}
		return p.decl.NewBlock(), nil
	case Token_Continue:
		p.next()
		target := p.continueTarget()
		if target == nil {
			return nil, p.semanticf("continue statement not within a loop")
		}
		b.Jump[0] = target
		if _, err := p.expect(Token_Semicolon); err != nil {
			return nil, err
		}
		return p.decl.NewBlock(), nil
	case Token_Return:
		return p.parseReturn(b)
	case Token_Switch:
		return p.parseSwitch(b)
	case Token_Case:
		// Lowered as a no-op; the guarded statement still parses.
		p.next()
		if _, err := p.parseConstantExpression(); err != nil {
			return nil, err
		}
		if _, err := p.expect(Token_Colon); err != nil {
			return nil, err
		}
		return p.parseStatement(b)
	case Token_Default:
		p.next()
		if _, err := p.expect(Token_Colon); err != nil {
			return nil, err
		}
		return p.parseStatement(b)
	case Token_Goto:
		// Lowered as a no-op.
		p.next()
		if _, err := p.expect(Token_Ident); err != nil {
			return nil, err
		}
		if _, err := p.expect(Token_Semicolon); err != nil {
			return nil, err
		}
		return b, nil
	case Token_Semicolon:
		p.next()
		return b, nil
	case Token_Ident:
		// A label if followed by a colon, otherwise an expression
		// statement.
		if p.peekn(2).Kind == Token_Colon {
			p.next()
			p.next()
			if existing := p.labels.Lookup(t.Lexeme); existing != nil {
				return nil, p.semanticf("duplicate label `%s`", t.Lexeme)
			}
			if _, err := p.labels.Add(&Symbol{Name: t.Lexeme, Type: Void(), SymType: Sym_Definition}); err != nil {
				return nil, err
			}
			return p.parseStatement(b)
		}
	}
	return p.parseExpressionStatement(b)
}

func (p *Parser) parseExpressionStatement(b *Block) (*Block, error) {
	b, v, err := p.parseExpression(b)
	if err != nil {
		return nil, err
	}
	b.Expr = v
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}
	return b, nil
}

// parseCondition evaluates a parenthesized controlling expression and
// returns the block the evaluation ended in, with Expr primed for a
// two way branch.
func (p *Parser) parseCondition(b *Block) (*Block, error) {
	if _, err := p.expect(Token_LParen); err != nil {
		return nil, err
	}
	b, v, err := p.parseExpression(b)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Token_RParen); err != nil {
		return nil, err
	}
	b.Expr = p.rvalue(b, v)
	return b, nil
}

func (p *Parser) parseIf(b *Block) (*Block, error) {
	p.next() // if
	b, err := p.parseCondition(b)
	if err != nil {
		return nil, err
	}
	thenB := p.decl.NewBlock()
	merge := p.decl.NewBlock()
	b.Jump[1] = thenB

	tail, err := p.parseStatement(thenB)
	if err != nil {
		return nil, err
	}
	if !tail.Terminated() && tail.Jump[0] == nil {
		tail.Jump[0] = merge
	}

	if p.accept(Token_Else) {
		elseB := p.decl.NewBlock()
		b.Jump[0] = elseB
		etail, err := p.parseStatement(elseB)
		if err != nil {
			return nil, err
		}
		if !etail.Terminated() && etail.Jump[0] == nil {
			etail.Jump[0] = merge
		}
	} else {
		b.Jump[0] = merge
	}
	return merge, nil
}

func (p *Parser) parseWhile(b *Block) (*Block, error) {
	p.next() // while
	top := p.decl.NewBlock()
	body := p.decl.NewBlock()
	exit := p.decl.NewBlock()
	b.Jump[0] = top

	condTail, err := p.parseCondition(top)
	if err != nil {
		return nil, err
	}
	condTail.Jump[1] = body
	condTail.Jump[0] = exit

	p.pushLoop(exit, top)
	tail, err := p.parseStatement(body)
	p.popLoop()
	if err != nil {
		return nil, err
	}
	if !tail.Terminated() && tail.Jump[0] == nil {
		tail.Jump[0] = top
	}
	return exit, nil
}

func (p *Parser) parseDoWhile(b *Block) (*Block, error) {
	p.next() // do
	top := p.decl.NewBlock()
	cond := p.decl.NewBlock()
	exit := p.decl.NewBlock()
	b.Jump[0] = top

	p.pushLoop(exit, cond)
	tail, err := p.parseStatement(top)
	p.popLoop()
	if err != nil {
		return nil, err
	}
	if !tail.Terminated() && tail.Jump[0] == nil {
		tail.Jump[0] = cond
	}

	if _, err := p.expect(Token_While); err != nil {
		return nil, err
	}
	condTail, err := p.parseCondition(cond)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}
	condTail.Jump[1] = top
	condTail.Jump[0] = exit
	return exit, nil
}

// parseFor lowers `for (init; cond; incr) body`.  The init expression
// emits into the parent, the condition gets the top block, and the
// increment lives in its own block that jumps back to the top.  An
// omitted condition means an infinite loop with no branch emitted.
func (p *Parser) parseFor(b *Block) (*Block, error) {
	p.next() // for
	if _, err := p.expect(Token_LParen); err != nil {
		return nil, err
	}

	if p.peek().Kind != Token_Semicolon {
		var err error
		b, _, err = p.parseExpression(b)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}

	top := p.decl.NewBlock()
	body := p.decl.NewBlock()
	incr := p.decl.NewBlock()
	exit := p.decl.NewBlock()
	b.Jump[0] = top

	condTail := top
	if p.peek().Kind != Token_Semicolon {
		var (
			v   Var
			err error
		)
		condTail, v, err = p.parseExpression(top)
		if err != nil {
			return nil, err
		}
		condTail.Expr = p.rvalue(condTail, v)
		condTail.Jump[1] = body
		condTail.Jump[0] = exit
	} else {
		condTail.Jump[0] = body
	}
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}

	incrTail := incr
	if p.peek().Kind != Token_RParen {
		var err error
		incrTail, _, err = p.parseExpression(incr)
		if err != nil {
			return nil, err
		}
	}
	incrTail.Jump[0] = top
	if _, err := p.expect(Token_RParen); err != nil {
		return nil, err
	}

	p.pushLoop(exit, incr)
	tail, err := p.parseStatement(body)
	p.popLoop()
	if err != nil {
		return nil, err
	}
	if !tail.Terminated() && tail.Jump[0] == nil {
		tail.Jump[0] = incr
	}
	return exit, nil
}

func (p *Parser) parseReturn(b *Block) (*Block, error) {
	p.next() // return
	ret := p.funcSym.Type.Next
	if p.peek().Kind != Token_Semicolon {
		var (
			v   Var
			err error
		)
		b, v, err = p.parseExpression(b)
		if err != nil {
			return nil, err
		}
		if ret.Kind == Type_None {
			p.warnf("return with a value in function `%s` returning void", p.funcSym.Name)
			b.push(IReturn{})
		} else {
			if v, err = p.convert(b, v, ret); err != nil {
				return nil, err
			}
			b.push(IReturn{Src: v, HasValue: true})
		}
	} else {
		if ret.Kind != Type_None {
			p.warnf("return without a value in function `%s`", p.funcSym.Name)
		}
		b.push(IReturn{})
	}
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}
	// Statements after a return parse into a fresh orphan block.
	// Labels are lowered as no-ops, so it stays unreachable.
	return p.decl.NewBlock(), nil
}

// parseSwitch evaluates the controlling expression and parses the body
// with a break target; case and default lower as no-ops, so the body
// runs unconditionally.
func (p *Parser) parseSwitch(b *Block) (*Block, error) {
	p.next() // switch
	b, err := p.parseCondition(b)
	if err != nil {
		return nil, err
	}
	body := p.decl.NewBlock()
	exit := p.decl.NewBlock()
	b.Jump[0] = body

	p.pushLoop(exit, nil)
	tail, err := p.parseStatement(body)
	p.popLoop()
	if err != nil {
		return nil, err
	}
	if !tail.Terminated() && tail.Jump[0] == nil {
		tail.Jump[0] = exit
	}
	return exit, nil
}
