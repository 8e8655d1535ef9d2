package lacc

import "math"

// Expression parsing threads a (parent) -> (tail) convention: every
// rule takes the block to emit into and returns the block evaluation
// ended up in, which differs from the input only when the rule built
// control flow of its own (&&, ||, ?:).

func (p *Parser) parseExpression(b *Block) (*Block, Var, error) {
	return p.parseAssignment(b)
}

var compoundAssign = map[TokenKind]BinOp{
	Token_PlusAssign:    Op_Add,
	Token_MinusAssign:   Op_Sub,
	Token_StarAssign:    Op_Mul,
	Token_SlashAssign:   Op_Div,
	Token_PercentAssign: Op_Mod,
	Token_AmpAssign:     Op_BitAnd,
	Token_PipeAssign:    Op_BitOr,
	Token_CaretAssign:   Op_BitXor,
	Token_ShlAssign:     Op_Shl,
	Token_ShrAssign:     Op_Shr,
}

func (p *Parser) parseAssignment(b *Block) (*Block, Var, error) {
	b, lhs, err := p.parseConditional(b)
	if err != nil {
		return nil, Var{}, err
	}
	kind := p.peek().Kind
	op, compound := compoundAssign[kind]
	if kind != Token_Assign && !compound {
		return b, lhs, nil
	}
	p.next()
	var rhs Var
	b, rhs, err = p.parseAssignment(b)
	if err != nil {
		return nil, Var{}, err
	}
	if compound {
		if rhs, err = p.binop(b, op, lhs, rhs); err != nil {
			return nil, Var{}, err
		}
	}
	v, err := p.assign(b, lhs, rhs)
	if err != nil {
		return nil, Var{}, err
	}
	return b, v, nil
}

// parseConditional lowers `c ? a : b` through a temporary assigned in
// both arms, the same construction the short circuit operators use.
func (p *Parser) parseConditional(b *Block) (*Block, Var, error) {
	b, cond, err := p.parseLogicalOr(b)
	if err != nil {
		return nil, Var{}, err
	}
	if !p.accept(Token_Question) {
		return b, cond, nil
	}
	cond = p.rvalue(b, cond)
	thenB := p.decl.NewBlock()
	elseB := p.decl.NewBlock()
	merge := p.decl.NewBlock()
	b.Expr = cond
	b.Jump[0] = elseB
	b.Jump[1] = thenB

	tb, tv, err := p.parseExpression(thenB)
	if err != nil {
		return nil, Var{}, err
	}
	if _, err = p.expect(Token_Colon); err != nil {
		return nil, Var{}, err
	}
	eb, ev, err := p.parseConditional(elseB)
	if err != nil {
		return nil, Var{}, err
	}

	tv = p.rvalue(tb, tv)
	ev = p.rvalue(eb, ev)
	rt := tv.Type
	if tv.Type.IsArithmetic() && ev.Type.IsArithmetic() {
		rt = usualArith(tv.Type, ev.Type)
	}
	res := varDirect(p.temp(rt))
	if _, err = p.assign(tb, res, tv); err != nil {
		return nil, Var{}, err
	}
	if _, err = p.assign(eb, res, ev); err != nil {
		return nil, Var{}, err
	}
	tb.Jump[0] = merge
	eb.Jump[0] = merge

	out := res
	out.Lvalue = false
	merge.Expr = out
	return merge, out, nil
}

func (p *Parser) parseLogicalOr(b *Block) (*Block, Var, error) {
	b, l, err := p.parseLogicalAnd(b)
	if err != nil {
		return nil, Var{}, err
	}
	for p.peek().Kind == Token_PipePipe {
		p.next()
		b, l, err = p.shortCircuit(b, l, Op_LogicalOr, (*Parser).parseLogicalAnd)
		if err != nil {
			return nil, Var{}, err
		}
	}
	return b, l, nil
}

func (p *Parser) parseLogicalAnd(b *Block) (*Block, Var, error) {
	b, l, err := p.parseBitOr(b)
	if err != nil {
		return nil, Var{}, err
	}
	for p.peek().Kind == Token_AmpAmp {
		p.next()
		b, l, err = p.shortCircuit(b, l, Op_LogicalAnd, (*Parser).parseBitOr)
		if err != nil {
			return nil, Var{}, err
		}
	}
	return b, l, nil
}

// shortCircuit builds the control flow for one && or || rank: a
// boolean temporary primed with the short circuit outcome, a branch on
// the left operand, and a next block that evaluates the right operand
// and combines the materialized results.
func (p *Parser) shortCircuit(b *Block, l Var, op BinOp, parseRHS func(*Parser, *Block) (*Block, Var, error)) (*Block, Var, error) {
	l = p.rvalue(b, l)
	res := varDirect(p.temp(Integer(4)))

	var short int64
	if op == Op_LogicalOr {
		short = 1
	}
	if _, err := p.assign(b, res, varImmediate(Integer(4), short)); err != nil {
		return nil, Var{}, err
	}

	next := p.decl.NewBlock()
	merge := p.decl.NewBlock()
	b.Expr = l
	if op == Op_LogicalAnd {
		b.Jump[0] = merge
		b.Jump[1] = next
	} else {
		b.Jump[0] = next
		b.Jump[1] = merge
	}

	nb, r, err := parseRHS(p, next)
	if err != nil {
		return nil, Var{}, err
	}
	v, err := p.binop(nb, op, l, r)
	if err != nil {
		return nil, Var{}, err
	}
	if _, err = p.assign(nb, res, v); err != nil {
		return nil, Var{}, err
	}
	nb.Jump[0] = merge

	out := res
	out.Lvalue = false
	merge.Expr = out
	return merge, out, nil
}

func (p *Parser) parseBitOr(b *Block) (*Block, Var, error) {
	b, l, err := p.parseBitXor(b)
	if err != nil {
		return nil, Var{}, err
	}
	for p.peek().Kind == Token_Pipe {
		p.next()
		var r Var
		b, r, err = p.parseBitXor(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, Op_BitOr, l, r); err != nil {
			return nil, Var{}, err
		}
	}
	return b, l, nil
}

func (p *Parser) parseBitXor(b *Block) (*Block, Var, error) {
	b, l, err := p.parseBitAnd(b)
	if err != nil {
		return nil, Var{}, err
	}
	for p.peek().Kind == Token_Caret {
		p.next()
		var r Var
		b, r, err = p.parseBitAnd(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, Op_BitXor, l, r); err != nil {
			return nil, Var{}, err
		}
	}
	return b, l, nil
}

func (p *Parser) parseBitAnd(b *Block) (*Block, Var, error) {
	b, l, err := p.parseEquality(b)
	if err != nil {
		return nil, Var{}, err
	}
	for p.peek().Kind == Token_Amp {
		p.next()
		var r Var
		b, r, err = p.parseEquality(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, Op_BitAnd, l, r); err != nil {
			return nil, Var{}, err
		}
	}
	return b, l, nil
}

// parseEquality lowers `!=` as the complement of `==`, the only
// equality operation in the op set.
func (p *Parser) parseEquality(b *Block) (*Block, Var, error) {
	b, l, err := p.parseRelational(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		kind := p.peek().Kind
		if kind != Token_EqEq && kind != Token_NotEq {
			return b, l, nil
		}
		p.next()
		var r Var
		b, r, err = p.parseRelational(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, Op_Eq, l, r); err != nil {
			return nil, Var{}, err
		}
		if kind == Token_NotEq {
			if l, err = p.binop(b, Op_Eq, l, varImmediate(Integer(4), 0)); err != nil {
				return nil, Var{}, err
			}
		}
	}
}

// parseRelational maps < and <= onto > and >= with swapped operands.
func (p *Parser) parseRelational(b *Block) (*Block, Var, error) {
	b, l, err := p.parseShift(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		kind := p.peek().Kind
		if kind != Token_Lt && kind != Token_Gt && kind != Token_Le && kind != Token_Ge {
			return b, l, nil
		}
		p.next()
		var r Var
		b, r, err = p.parseShift(b)
		if err != nil {
			return nil, Var{}, err
		}
		switch kind {
		case Token_Gt:
			l, err = p.binop(b, Op_Gt, l, r)
		case Token_Ge:
			l, err = p.binop(b, Op_Ge, l, r)
		case Token_Lt:
			l, err = p.binop(b, Op_Gt, r, l)
		case Token_Le:
			l, err = p.binop(b, Op_Ge, r, l)
		}
		if err != nil {
			return nil, Var{}, err
		}
	}
}

func (p *Parser) parseShift(b *Block) (*Block, Var, error) {
	b, l, err := p.parseAdditive(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case Token_Shl:
			op = Op_Shl
		case Token_Shr:
			op = Op_Shr
		default:
			return b, l, nil
		}
		p.next()
		var r Var
		b, r, err = p.parseAdditive(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, op, l, r); err != nil {
			return nil, Var{}, err
		}
	}
}

func (p *Parser) parseAdditive(b *Block) (*Block, Var, error) {
	b, l, err := p.parseMultiplicative(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case Token_Plus:
			op = Op_Add
		case Token_Minus:
			op = Op_Sub
		default:
			return b, l, nil
		}
		p.next()
		var r Var
		b, r, err = p.parseMultiplicative(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, op, l, r); err != nil {
			return nil, Var{}, err
		}
	}
}

func (p *Parser) parseMultiplicative(b *Block) (*Block, Var, error) {
	b, l, err := p.parseCast(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case Token_Star:
			op = Op_Mul
		case Token_Slash:
			op = Op_Div
		case Token_Percent:
			op = Op_Mod
		default:
			return b, l, nil
		}
		p.next()
		var r Var
		b, r, err = p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		if l, err = p.binop(b, op, l, r); err != nil {
			return nil, Var{}, err
		}
	}
}

// startsTypeName reports whether t can open a type name: a type
// keyword, a qualifier, a tag specifier, or a typedef bound
// identifier.  This is the two token lookahead that separates a cast
// from a parenthesized expression.
func (p *Parser) startsTypeName(t Token) bool {
	switch t.Kind {
	case Token_Const, Token_Volatile,
		Token_Void, Token_Char, Token_Short, Token_Int, Token_Long,
		Token_Float, Token_Double, Token_Signed, Token_Unsigned,
		Token_Struct, Token_Union, Token_Enum:
		return true
	case Token_Ident:
		sym := p.idents.Lookup(t.Lexeme)
		return sym != nil && sym.SymType == Sym_Typedef
	}
	return false
}

func (p *Parser) parseCast(b *Block) (*Block, Var, error) {
	if p.peek().Kind == Token_LParen && p.startsTypeName(p.peekn(2)) {
		p.next()
		t, err := p.parseTypeName()
		if err != nil {
			return nil, Var{}, err
		}
		if _, err = p.expect(Token_RParen); err != nil {
			return nil, Var{}, err
		}
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		cv, err := p.castTo(b, v, t)
		if err != nil {
			return nil, Var{}, err
		}
		return b, cv, nil
	}
	return p.parseUnary(b)
}

func (p *Parser) parseUnary(b *Block) (*Block, Var, error) {
	switch p.peek().Kind {
	case Token_Amp:
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		av, err := p.addrOf(b, v)
		return b, av, err
	case Token_Star:
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		dv, err := p.deref(b, v)
		return b, dv, err
	case Token_Plus:
		// Unary plus only strips lvalue-ness.
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		return b, p.rvalue(b, v), nil
	case Token_Minus:
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		nv, err := p.binop(b, Op_Sub, varImmediate(Integer(4), 0), v)
		return b, nv, err
	case Token_Not:
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		nv, err := p.binop(b, Op_Eq, v, varImmediate(Integer(4), 0))
		return b, nv, err
	case Token_Tilde:
		p.next()
		b, v, err := p.parseCast(b)
		if err != nil {
			return nil, Var{}, err
		}
		nv, err := p.binop(b, Op_BitXor, v, varImmediate(Integer(4), -1))
		return b, nv, err
	case Token_Inc, Token_Dec:
		op := Op_Add
		if p.peek().Kind == Token_Dec {
			op = Op_Sub
		}
		p.next()
		b, v, err := p.parseUnary(b)
		if err != nil {
			return nil, Var{}, err
		}
		val, err := p.binop(b, op, v, varImmediate(Integer(4), 1))
		if err != nil {
			return nil, Var{}, err
		}
		av, err := p.assign(b, v, val)
		return b, av, err
	case Token_Sizeof:
		p.next()
		return p.parseSizeof(b)
	}
	return p.parsePostfix(b)
}

// parseSizeof folds to an immediate without emitting IR for its
// operand; expression operands are evaluated into an orphan scratch
// block just to learn their type.
func (p *Parser) parseSizeof(b *Block) (*Block, Var, error) {
	var (
		t   *Type
		err error
	)
	if p.peek().Kind == Token_LParen && p.startsTypeName(p.peekn(2)) {
		p.next()
		if t, err = p.parseTypeName(); err != nil {
			return nil, Var{}, err
		}
		if _, err = p.expect(Token_RParen); err != nil {
			return nil, Var{}, err
		}
	} else {
		scratch := p.decl.NewBlock()
		var v Var
		if _, v, err = p.parseUnary(scratch); err != nil {
			return nil, Var{}, err
		}
		t = v.Type
	}
	if t.Kind == Type_Function {
		return nil, Var{}, p.semanticf("invalid application of `sizeof` to a function type")
	}
	if !t.IsComplete() {
		return nil, Var{}, p.semanticf("invalid application of `sizeof` to incomplete type %s", t)
	}
	st := Integer(8)
	st.IsUnsigned = true
	return b, varImmediate(st, int64(t.Size)), nil
}

func (p *Parser) parsePostfix(b *Block) (*Block, Var, error) {
	b, v, err := p.parsePrimary(b)
	if err != nil {
		return nil, Var{}, err
	}
	for {
		switch p.peek().Kind {
		case Token_LBracket:
			p.next()
			var idx Var
			b, idx, err = p.parseExpression(b)
			if err != nil {
				return nil, Var{}, err
			}
			if _, err = p.expect(Token_RBracket); err != nil {
				return nil, Var{}, err
			}
			sum, err := p.binop(b, Op_Add, v, idx)
			if err != nil {
				return nil, Var{}, err
			}
			if v, err = p.deref(b, sum); err != nil {
				return nil, Var{}, err
			}
		case Token_LParen:
			p.next()
			var args []Var
			if p.peek().Kind != Token_RParen {
				for {
					var a Var
					b, a, err = p.parseAssignment(b)
					if err != nil {
						return nil, Var{}, err
					}
					args = append(args, a)
					if !p.accept(Token_Comma) {
						break
					}
				}
			}
			if _, err = p.expect(Token_RParen); err != nil {
				return nil, Var{}, err
			}
			if v, err = p.callFn(b, v, args); err != nil {
				return nil, Var{}, err
			}
		case Token_Dot:
			p.next()
			id, err := p.expect(Token_Ident)
			if err != nil {
				return nil, Var{}, err
			}
			if v, err = p.member(v, id.Lexeme); err != nil {
				return nil, Var{}, err
			}
		case Token_Arrow:
			p.next()
			id, err := p.expect(Token_Ident)
			if err != nil {
				return nil, Var{}, err
			}
			pv, err := p.deref(b, v)
			if err != nil {
				return nil, Var{}, err
			}
			if v, err = p.member(pv, id.Lexeme); err != nil {
				return nil, Var{}, err
			}
		case Token_Inc, Token_Dec:
			op := Op_Add
			if p.peek().Kind == Token_Dec {
				op = Op_Sub
			}
			p.next()
			old := p.copyVar(b, v)
			val, err := p.binop(b, op, v, varImmediate(Integer(4), 1))
			if err != nil {
				return nil, Var{}, err
			}
			if _, err = p.assign(b, v, val); err != nil {
				return nil, Var{}, err
			}
			v = old
		default:
			return b, v, nil
		}
	}
}

func (p *Parser) parsePrimary(b *Block) (*Block, Var, error) {
	t := p.peek()
	switch t.Kind {
	case Token_Ident:
		p.next()
		if t.Lexeme == "__func__" && p.funcSym != nil {
			return b, p.funcNameVar(), nil
		}
		sym := p.idents.Lookup(t.Lexeme)
		if sym == nil {
			return nil, Var{}, p.semanticf("`%s` undeclared", t.Lexeme)
		}
		switch sym.SymType {
		case Sym_Enum:
			return b, varImmediate(Integer(4), sym.EnumValue), nil
		case Sym_Typedef:
			return nil, Var{}, p.semanticf("unexpected type name `%s` in expression", t.Lexeme)
		}
		return b, varDirect(sym), nil
	case Token_Integer:
		p.next()
		typ := Integer(4)
		if t.Value > math.MaxInt32 || t.Value < math.MinInt32 {
			typ = Integer(8)
		}
		return b, varImmediate(typ, t.Value), nil
	case Token_String:
		p.next()
		label := p.strings.Intern(append(append([]byte(nil), t.Text...), 0))
		typ, err := Array(Integer(1), len(t.Text)+1)
		if err != nil {
			return nil, Var{}, err
		}
		v := varString(typ, label)
		v.Lvalue = true
		return b, v, nil
	case Token_LParen:
		p.next()
		b, v, err := p.parseExpression(b)
		if err != nil {
			return nil, Var{}, err
		}
		if _, err = p.expect(Token_RParen); err != nil {
			return nil, Var{}, err
		}
		return b, v, nil
	}
	return nil, Var{}, p.syntaxf("expression")
}

// funcNameVar resolves __func__ to a synthesized static byte array
// holding the enclosing function's name and a terminating NUL.
func (p *Parser) funcNameVar() Var {
	if p.funcNameSym == nil {
		name := append([]byte(p.funcSym.Name), 0)
		label := p.strings.Intern(name)
		typ, _ := Array(Integer(1), len(name))
		sym := &Symbol{Name: "__func__", Type: typ, SymType: Sym_Definition, Static: true}
		p.decl.Locals = append(p.decl.Locals, sym)
		p.decl.Head.push(IAssign{Dst: varDirect(sym), Src: varString(typ, label)})
		p.funcNameSym = sym
	}
	return varDirect(p.funcNameSym)
}
