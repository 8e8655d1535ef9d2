package lacc

// The expression evaluator.  Each operation applies the usual
// arithmetic conversions and array/function decay to its operands,
// emits IR into the given block, and returns a Var describing the
// result.
//
// Operand discipline: Var_Deref handles are materialized through an
// IDeref load before being used as a data operand; they appear raw
// only as the destination of an assignment or the source of a load.

func (p *Parser) temp(typ *Type) *Symbol {
	sym := p.idents.Temp(typ)
	p.decl.Locals = append(p.decl.Locals, sym)
	return sym
}

func (p *Parser) pointerTo(t *Type) *Type {
	return Pointer(t, p.ptrSize)
}

// rvalue converts v to a value: arrays decay to a pointer to their
// first element, memory handles are loaded into a temporary, and the
// lvalue flag is stripped.  Function designators pass through
// untouched; call and addr deal with those directly.
func (p *Parser) rvalue(b *Block, v Var) Var {
	switch {
	case v.Type.Kind == Type_Array:
		pt := p.pointerTo(v.Type.Next)
		if v.Kind == Var_Immediate && v.Label != NoLabel {
			return varString(pt, v.Label)
		}
		dst := varDirect(p.temp(pt))
		b.push(IAddr{Dst: dst, Src: v})
		dst.Lvalue = false
		return dst
	case v.Type.Kind == Type_Function:
		return v
	case v.Kind == Var_Deref:
		dst := varDirect(p.temp(v.Type))
		b.push(IDeref{Dst: dst, Src: v})
		dst.Lvalue = false
		return dst
	}
	v.Lvalue = false
	return v
}

// usualArith merges two arithmetic types per the usual arithmetic
// conversions: real wins over integer, the wider size wins, operands
// promote to at least int, and unsignedness of the widest operand
// carries over.
func usualArith(a, b *Type) *Type {
	if a.Kind == Type_Real || b.Kind == Type_Real {
		size := 4
		if a.Kind == Type_Real && a.Size > size {
			size = a.Size
		}
		if b.Kind == Type_Real && b.Size > size {
			size = b.Size
		}
		return Real(size)
	}
	size := 4
	if a.Size > size {
		size = a.Size
	}
	if b.Size > size {
		size = b.Size
	}
	t := Integer(size)
	t.IsUnsigned = (a.IsUnsigned && a.Size >= size) || (b.IsUnsigned && b.Size >= size)
	return t
}

func (p *Parser) emitCast(b *Block, v Var, t *Type) Var {
	dst := varDirect(p.temp(t))
	b.push(ICast{Dst: dst, Src: v, Type: t})
	dst.Lvalue = false
	return dst
}

func (p *Parser) emitBinOp(b *Block, op BinOp, rt *Type, l, r Var) Var {
	dst := varDirect(p.temp(rt))
	b.push(IBinOp{Op: op, Dst: dst, A: l, B: r})
	dst.Lvalue = false
	return dst
}

// convert performs the implicit conversion of v to type t.  Integer to
// pointer conversion is rejected here; only an explicit cast allows
// it, with the null pointer constant as the single exception.
func (p *Parser) convert(b *Block, v Var, t *Type) (Var, error) {
	v = p.rvalue(b, v)
	if v.Type.Equal(t) {
		return v, nil
	}
	isImmInt := v.Kind == Var_Immediate && v.Label == NoLabel
	switch {
	case isImmInt && v.Type.IsArithmetic() && t.IsInteger():
		v.Value = truncateImm(v.Value, t)
		v.Type = t
		return v, nil
	case isImmInt && v.Value == 0 && t.IsPointer():
		// null pointer constant
		v.Type = t
		return v, nil
	case v.Type.IsPointer() && t.IsPointer():
		v.Type = t
		return v, nil
	case v.Type.Kind == Type_Function && t.IsPointer() && v.Type.Equal(t.Next):
		dst := varDirect(p.temp(t))
		b.push(IAddr{Dst: dst, Src: v})
		dst.Lvalue = false
		return dst, nil
	case v.Type.IsArithmetic() && t.IsArithmetic():
		if v.Type.Kind == t.Kind && v.Type.Size == t.Size {
			v.Type = t
			return v, nil
		}
		return p.emitCast(b, v, t), nil
	case v.Type.IsPointer() != t.IsPointer():
		return Var{}, p.semanticf("cannot convert %s to %s without a cast", v.Type, t)
	}
	return Var{}, p.semanticf("incompatible types %s and %s", v.Type, t)
}

func truncateImm(value int64, t *Type) int64 {
	if !t.IsInteger() || t.Size >= 8 {
		return value
	}
	bits := uint(t.Size * 8)
	mask := int64(1)<<bits - 1
	value &= mask
	if !t.IsUnsigned && value&(int64(1)<<(bits-1)) != 0 {
		value -= int64(1) << bits
	}
	return value
}

func foldBinOp(op BinOp, a, b int64) (int64, bool) {
	switch op {
	case Op_Add:
		return a + b, true
	case Op_Sub:
		return a - b, true
	case Op_Mul:
		return a * b, true
	case Op_Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case Op_Mod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case Op_Eq:
		return boolToInt(a == b), true
	case Op_Ge:
		return boolToInt(a >= b), true
	case Op_Gt:
		return boolToInt(a > b), true
	case Op_LogicalAnd:
		return boolToInt(a != 0 && b != 0), true
	case Op_LogicalOr:
		return boolToInt(a != 0 || b != 0), true
	case Op_BitAnd:
		return a & b, true
	case Op_BitOr:
		return a | b, true
	case Op_BitXor:
		return a ^ b, true
	case Op_Shl:
		if b < 0 || b > 63 {
			return 0, false
		}
		return a << uint(b), true
	case Op_Shr:
		if b < 0 || b > 63 {
			return 0, false
		}
		return a >> uint(b), true
	}
	return 0, false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// scaleIndex multiplies an index by the pointee size, folding when the
// index is a constant.
func (p *Parser) scaleIndex(b *Block, idx Var, size int) Var {
	if idx.Kind == Var_Immediate && idx.Label == NoLabel {
		return varImmediate(Integer(8), idx.Value*int64(size))
	}
	return p.emitBinOp(b, Op_Mul, Integer(8), idx, varImmediate(Integer(8), int64(size)))
}

// binop lowers one binary operation, handling pointer arithmetic
// scaling, the usual arithmetic conversions, and constant folding.
// Comparisons yield int 0/1.
func (p *Parser) binop(b *Block, op BinOp, l, r Var) (Var, error) {
	l = p.rvalue(b, l)
	r = p.rvalue(b, r)

	if op == Op_Add || op == Op_Sub {
		switch {
		case l.Type.IsPointer() && r.Type.IsInteger():
			r = p.scaleIndex(b, r, l.Type.Next.Size)
			return p.emitBinOp(b, op, l.Type, l, r), nil
		case op == Op_Add && l.Type.IsInteger() && r.Type.IsPointer():
			l = p.scaleIndex(b, l, r.Type.Next.Size)
			return p.emitBinOp(b, op, r.Type, r, l), nil
		case op == Op_Sub && l.Type.IsPointer() && r.Type.IsPointer():
			diff := p.emitBinOp(b, Op_Sub, Integer(8), l, r)
			size := varImmediate(Integer(8), int64(l.Type.Next.Size))
			return p.emitBinOp(b, Op_Div, Integer(8), diff, size), nil
		}
	}

	comparison := op == Op_Eq || op == Op_Ge || op == Op_Gt
	logical := op == Op_LogicalAnd || op == Op_LogicalOr

	var rt *Type
	if l.Type.IsPointer() || r.Type.IsPointer() {
		if !comparison && !logical {
			return Var{}, p.semanticf("invalid operands to binary `%s`", op)
		}
		rt = Integer(4)
	} else {
		if !l.Type.IsArithmetic() || !r.Type.IsArithmetic() {
			return Var{}, p.semanticf("invalid operands to binary `%s`", op)
		}
		ct := usualArith(l.Type, r.Type)
		var err error
		if l, err = p.convert(b, l, ct); err != nil {
			return Var{}, err
		}
		if r, err = p.convert(b, r, ct); err != nil {
			return Var{}, err
		}
		if comparison || logical {
			rt = Integer(4)
		} else {
			rt = ct
		}
	}

	if p.fold &&
		l.Kind == Var_Immediate && l.Label == NoLabel && l.Type.IsInteger() &&
		r.Kind == Var_Immediate && r.Label == NoLabel && r.Type.IsInteger() {
		if value, ok := foldBinOp(op, l.Value, r.Value); ok {
			return varImmediate(rt, value), nil
		}
	}
	return p.emitBinOp(b, op, rt, l, r), nil
}

// assign stores src into dst.  The target must be an lvalue; this is
// where lvalue-ness of assignment targets is enforced.  Returns an
// rvalue equal to dst after the store.
func (p *Parser) assign(b *Block, dst, src Var) (Var, error) {
	if !dst.Lvalue || dst.Kind == Var_Immediate {
		return Var{}, p.semanticf("assignment target is not an lvalue")
	}
	src, err := p.convert(b, src, dst.Type)
	if err != nil {
		return Var{}, err
	}
	b.push(IAssign{Dst: dst, Src: src})
	res := dst
	res.Lvalue = false
	return res, nil
}

// addrOf takes the address of an lvalue, producing a pointer rvalue.
// Taking the address of a memory handle folds back to the pointer it
// was built from.
func (p *Parser) addrOf(b *Block, v Var) (Var, error) {
	if !v.Lvalue && v.Type.Kind != Type_Function {
		return Var{}, p.semanticf("lvalue required as unary `&` operand")
	}
	pt := p.pointerTo(v.Type)
	if v.Kind == Var_Deref {
		base := Var{Kind: Var_Direct, Type: pt, Sym: v.Sym}
		if v.Offset == 0 {
			return base, nil
		}
		return p.emitBinOp(b, Op_Add, pt, base, varImmediate(Integer(8), int64(v.Offset))), nil
	}
	dst := varDirect(p.temp(pt))
	b.push(IAddr{Dst: dst, Src: v})
	dst.Lvalue = false
	return dst, nil
}

// deref produces the lvalue designating what v points to.
func (p *Parser) deref(b *Block, v Var) (Var, error) {
	v = p.rvalue(b, v)
	if !v.Type.IsPointer() {
		return Var{}, p.semanticf("cannot dereference value of type %s", v.Type)
	}
	if v.Kind == Var_Direct && v.Offset == 0 {
		return Var{Kind: Var_Deref, Type: v.Type.Next, Sym: v.Sym, Lvalue: true}, nil
	}
	tmp := p.temp(v.Type)
	b.push(IAssign{Dst: varDirect(tmp), Src: v})
	return Var{Kind: Var_Deref, Type: v.Type.Next, Sym: tmp, Lvalue: true}, nil
}

// member resolves `.` access on an object valued expression,
// preserving lvalue-ness of the containing object.
func (p *Parser) member(v Var, name string) (Var, error) {
	if v.Type.Kind != Type_Object {
		return Var{}, p.semanticf("request for member `%s` in non-object type %s", name, v.Type)
	}
	m, ok := v.Type.FindMember(name)
	if !ok {
		return Var{}, p.semanticf("no member named `%s`", name)
	}
	if v.Kind == Var_Immediate {
		return Var{}, p.semanticf("member access on constant")
	}
	v.Type = m.Type
	v.Offset += m.Offset
	return v, nil
}

// copyVar materializes an rvalue snapshot of v, used by the postfix
// increment and decrement operators.
func (p *Parser) copyVar(b *Block, v Var) Var {
	src := p.rvalue(b, v)
	dst := varDirect(p.temp(src.Type))
	b.push(IAssign{Dst: dst, Src: src})
	dst.Lvalue = false
	return dst
}

// castTo performs an explicit cast.  Integer/pointer conversions are
// permitted here, aggregate and function targets are not.
func (p *Parser) castTo(b *Block, v Var, t *Type) (Var, error) {
	v = p.rvalue(b, v)
	switch t.Kind {
	case Type_Array, Type_Function, Type_Object:
		return Var{}, p.semanticf("invalid cast to type %s", t)
	case Type_None:
		v.Type = t
		v.Lvalue = false
		return v, nil
	}
	if !v.Type.IsArithmetic() && !v.Type.IsPointer() {
		return Var{}, p.semanticf("invalid cast of value with type %s", v.Type)
	}
	if v.Type.Equal(t) {
		return v, nil
	}
	if v.Kind == Var_Immediate && v.Label == NoLabel && v.Type.IsInteger() && (t.IsInteger() || t.IsPointer()) {
		v.Value = truncateImm(v.Value, t)
		v.Type = t
		return v, nil
	}
	if v.Type.IsPointer() && (t.IsPointer() || (t.IsInteger() && t.Size == v.Type.Size)) {
		v.Type = t
		return v, nil
	}
	if v.Type.Kind == t.Kind && v.Type.Size == t.Size {
		v.Type = t
		return v, nil
	}
	return p.emitCast(b, v, t), nil
}

// pushParam emits one argument for an upcoming call.
func (p *Parser) pushParam(b *Block, v Var) {
	b.push(IParam{Src: v})
}

// callFn lowers a call through fn, which must be a function or a
// pointer to one.  Arguments convert to the declared parameter types;
// a fresh temporary of the return type carries the result.
func (p *Parser) callFn(b *Block, fn Var, args []Var) (Var, error) {
	ft := fn.Type
	if ft.IsPointer() && ft.Next != nil && ft.Next.Kind == Type_Function {
		ft = ft.Next
	}
	if ft.Kind != Type_Function {
		return Var{}, p.semanticf("called object is not a function")
	}
	params := ft.Members
	if len(params) > 0 {
		if ft.IsVararg && len(args) < len(params) {
			return Var{}, p.semanticf("too few arguments to function call")
		}
		if !ft.IsVararg && len(args) != len(params) {
			return Var{}, p.semanticf("wrong number of arguments to function call")
		}
	}
	for i, a := range args {
		var err error
		if i < len(params) {
			a, err = p.convert(b, a, params[i].Type)
			if err != nil {
				return Var{}, err
			}
		} else {
			a = p.rvalue(b, a)
		}
		p.pushParam(b, a)
	}
	ret := ft.Next
	if ret.Kind == Type_None {
		b.push(ICall{Fn: fn})
		return Var{Kind: Var_Immediate, Type: ret}, nil
	}
	dst := varDirect(p.temp(ret))
	b.push(ICall{Dst: dst, Fn: fn, HasDst: true})
	dst.Lvalue = false
	return dst, nil
}
