package lacc

import (
	"github.com/pkg/errors"
)

type storageClass int

const (
	sc_None storageClass = iota
	sc_Auto
	sc_Register
	sc_Static
	sc_Extern
	sc_Typedef
)

// parseDeclarationSpecifiers consumes an unordered run of type
// qualifiers, storage classes and type keywords.  It returns a nil
// type when no specifier token was consumed at all, so a caller doing
// two token lookahead can back out.  Integer type is assumed when only
// qualifiers or a storage class are seen.
func (p *Parser) parseDeclarationSpecifiers() (*Type, storageClass, error) {
	var (
		sc         = sc_None
		isConst    bool
		isVolatile bool
		unsigned   bool
		isReal     bool
		size       = 4
		tagged     *Type
		sawType    bool
		sawAny     bool
	)

	setStorage := func(c storageClass) error {
		if sc != sc_None {
			return p.semanticf("multiple storage classes in declaration")
		}
		sc = c
		return nil
	}

loop:
	for {
		t := p.peek()
		switch t.Kind {
		case Token_Const:
			p.next()
			isConst = true
		case Token_Volatile:
			p.next()
			isVolatile = true
		case Token_Auto:
			p.next()
			if err := setStorage(sc_Auto); err != nil {
				return nil, sc, err
			}
		case Token_Register:
			p.next()
			if err := setStorage(sc_Register); err != nil {
				return nil, sc, err
			}
		case Token_Static:
			p.next()
			if err := setStorage(sc_Static); err != nil {
				return nil, sc, err
			}
		case Token_Extern:
			p.next()
			if err := setStorage(sc_Extern); err != nil {
				return nil, sc, err
			}
		case Token_Typedef:
			p.next()
			if err := setStorage(sc_Typedef); err != nil {
				return nil, sc, err
			}
		case Token_Void:
			p.next()
			sawType = true
			size = 0
		case Token_Char:
			p.next()
			sawType = true
			size = 1
		case Token_Short:
			p.next()
			sawType = true
			size = 2
		case Token_Int, Token_Signed:
			p.next()
			sawType = true
		case Token_Long:
			p.next()
			sawType = true
			size = 8
		case Token_Unsigned:
			p.next()
			sawType = true
			unsigned = true
		case Token_Float:
			p.next()
			sawType = true
			isReal = true
			size = 4
		case Token_Double:
			p.next()
			sawType = true
			isReal = true
			size = 8
		case Token_Struct, Token_Union:
			tt, err := p.parseStructSpecifier(t.Kind == Token_Union)
			if err != nil {
				return nil, sc, err
			}
			tagged = tt
			sawType = true
		case Token_Enum:
			tt, err := p.parseEnumSpecifier()
			if err != nil {
				return nil, sc, err
			}
			tagged = tt
			sawType = true
		case Token_Ident:
			// A typedef name may appear only as the first type
			// component of the declaration.
			if sawType {
				break loop
			}
			sym := p.idents.Lookup(t.Lexeme)
			if sym == nil || sym.SymType != Sym_Typedef {
				break loop
			}
			p.next()
			tagged = sym.Type
			sawType = true
		default:
			break loop
		}
		sawAny = true
	}

	if !sawAny {
		return nil, sc_None, nil
	}

	var typ *Type
	switch {
	case tagged != nil:
		typ = tagged
		if isConst || isVolatile {
			// Qualifying a named type makes a qualified copy;
			// the unqualified tag type keeps its identity.
			c := *tagged
			typ = &c
		}
	case sawType && size == 0:
		typ = Void()
	case isReal:
		typ = Real(size)
	default:
		typ = Integer(size)
		typ.IsUnsigned = unsigned
	}
	if isConst {
		typ.IsConst = true
	}
	if isVolatile {
		typ.IsVolatile = true
	}
	return typ, sc, nil
}

//  ---- struct/union and enum specifiers ----

func (p *Parser) parseStructSpecifier(isUnion bool) (*Type, error) {
	p.next() // struct or union
	var (
		name   string
		tagSym *Symbol
	)
	if p.peek().Kind == Token_Ident {
		name = p.next().Lexeme
		tagSym = p.tags.Lookup(name)
		if tagSym != nil {
			if tagSym.Type.Kind != Type_Object || tagSym.Type.IsUnion != isUnion {
				return nil, p.semanticf("`%s` defined as wrong kind of tag", name)
			}
		}
	}

	if p.peek().Kind != Token_LBrace {
		if name == "" {
			return nil, p.syntaxf("struct tag or member list")
		}
		if tagSym != nil {
			return tagSym.Type, nil
		}
		// Forward reference: an incomplete tag in the current scope.
		t := Object()
		t.IsUnion = isUnion
		if _, err := p.tags.Add(&Symbol{Name: name, Type: t, SymType: Sym_Declaration}); err != nil {
			return nil, errors.Wrapf(err, "at %s", p.peek().Loc)
		}
		return t, nil
	}

	// Body: defines the tag at the current depth.
	var t *Type
	if tagSym != nil && tagSym.Depth == p.tags.Depth() {
		if tagSym.TagDefined {
			return nil, p.semanticf("redefinition of tag `%s`", name)
		}
		t = tagSym.Type
	} else {
		t = Object()
		t.IsUnion = isUnion
		if name != "" {
			sym, err := p.tags.Add(&Symbol{Name: name, Type: t, SymType: Sym_Declaration})
			if err != nil {
				return nil, errors.Wrapf(err, "at %s", p.peek().Loc)
			}
			tagSym = sym
		}
	}

	p.next() // {
	for p.peek().Kind != Token_RBrace {
		base, sc, err := p.parseDeclarationSpecifiers()
		if err != nil {
			return nil, err
		}
		if sc != sc_None {
			return nil, p.semanticf("storage class in struct member declaration")
		}
		if base == nil {
			return nil, p.syntaxf("member declaration")
		}
		for {
			mt, mname, err := p.parseDeclarator(base)
			if err != nil {
				return nil, err
			}
			if mname == "" {
				return nil, p.semanticf("invalid struct member declarator")
			}
			if mt.Kind == Type_Function {
				return nil, p.semanticf("member `%s` has function type", mname)
			}
			if !mt.IsComplete() {
				return nil, p.semanticf("member `%s` has incomplete type", mname)
			}
			t.AddMember(mname, mt)
			if !p.accept(Token_Comma) {
				break
			}
		}
		if _, err := p.expect(Token_Semicolon); err != nil {
			return nil, err
		}
	}
	p.next() // }
	t.AlignStructMembers()
	if tagSym != nil {
		tagSym.TagDefined = true
	}
	return t, nil
}

func (p *Parser) parseEnumSpecifier() (*Type, error) {
	p.next() // enum
	var (
		name   string
		tagSym *Symbol
	)
	if p.peek().Kind == Token_Ident {
		name = p.next().Lexeme
		tagSym = p.tags.Lookup(name)
		if tagSym != nil && tagSym.Type.Kind != Type_Integer {
			return nil, p.semanticf("`%s` defined as wrong kind of tag", name)
		}
	}

	if p.peek().Kind != Token_LBrace {
		if name == "" {
			return nil, p.syntaxf("enum tag or enumerator list")
		}
		if tagSym == nil || !tagSym.TagDefined {
			return nil, p.semanticf("enum `%s` used before definition", name)
		}
		return tagSym.Type, nil
	}

	t := Integer(4)
	if name != "" {
		if tagSym != nil && tagSym.Depth == p.tags.Depth() {
			if tagSym.TagDefined {
				return nil, p.semanticf("redefinition of enum `%s`", name)
			}
			tagSym.Type = t
		} else {
			sym, err := p.tags.Add(&Symbol{Name: name, Type: t, SymType: Sym_Declaration})
			if err != nil {
				return nil, errors.Wrapf(err, "at %s", p.peek().Loc)
			}
			tagSym = sym
		}
	}

	p.next() // {
	var value int64
	for p.peek().Kind != Token_RBrace {
		id, err := p.expect(Token_Ident)
		if err != nil {
			return nil, err
		}
		if p.accept(Token_Assign) {
			scratch := p.decl.NewBlock()
			_, v, err := p.parseConditional(scratch)
			if err != nil {
				return nil, err
			}
			if v.Kind != Var_Immediate {
				return nil, p.semanticf("enumerator value for `%s` is not constant", id.Lexeme)
			}
			if v.Label != NoLabel || !v.Type.IsInteger() {
				p.warnf("enumerator value for `%s` is not an integer constant", id.Lexeme)
			} else {
				value = v.Value
			}
		}
		_, err = p.idents.Add(&Symbol{
			Name:      id.Lexeme,
			Type:      Integer(4),
			SymType:   Sym_Enum,
			EnumValue: value,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "at %s", id.Loc)
		}
		value++
		if !p.accept(Token_Comma) {
			break
		}
	}
	if _, err := p.expect(Token_RBrace); err != nil {
		return nil, err
	}
	if tagSym != nil {
		tagSym.TagDefined = true
	}
	return t, nil
}

//  ---- declarators ----

// typeWrap composes one declarator layer onto a base type.
type typeWrap func(*Type) (*Type, error)

func identityWrap(t *Type) (*Type, error) {
	return t, nil
}

// parseDeclarator parses pointers, a direct declarator and its array
// and function suffixes, and applies the whole shape to base.  C's
// inside-out composition falls out of the ordering: pointers bind
// first, then suffixes, then the nested declarator's own shape.
func (p *Parser) parseDeclarator(base *Type) (*Type, string, error) {
	wrap, name, err := p.parseDeclaratorShape()
	if err != nil {
		return nil, "", err
	}
	t, err := wrap(base)
	if err != nil {
		return nil, "", err
	}
	return t, name, nil
}

type ptrQual struct {
	isConst    bool
	isVolatile bool
}

func (p *Parser) parseDeclaratorShape() (typeWrap, string, error) {
	var ptrs []ptrQual
	for p.accept(Token_Star) {
		var q ptrQual
		for {
			if p.accept(Token_Const) {
				q.isConst = true
				continue
			}
			if p.accept(Token_Volatile) {
				q.isVolatile = true
				continue
			}
			break
		}
		ptrs = append(ptrs, q)
	}

	var (
		name      string
		innerWrap typeWrap
	)
	switch t := p.peek(); {
	case t.Kind == Token_Ident:
		name = p.next().Lexeme
	case t.Kind == Token_LParen && p.isNestedDeclarator():
		p.next()
		var err error
		innerWrap, name, err = p.parseDeclaratorShape()
		if err != nil {
			return nil, "", err
		}
		if _, err = p.expect(Token_RParen); err != nil {
			return nil, "", err
		}
	}

	sufWrap, err := p.parseSuffixShape()
	if err != nil {
		return nil, "", err
	}

	wrap := func(base *Type) (*Type, error) {
		t := base
		for _, q := range ptrs {
			t = p.pointerTo(t)
			t.IsConst = q.isConst
			t.IsVolatile = q.isVolatile
		}
		t, err := sufWrap(t)
		if err != nil {
			return nil, err
		}
		if innerWrap != nil {
			return innerWrap(t)
		}
		return t, nil
	}
	return wrap, name, nil
}

// isNestedDeclarator separates `( declarator )` from a parameter list
// at the direct declarator position: a parameter list opens with a
// type or a closing paren, a nested declarator with anything else.
func (p *Parser) isNestedDeclarator() bool {
	in := p.peekn(2)
	switch in.Kind {
	case Token_Star, Token_LParen, Token_LBracket:
		return true
	case Token_Ident:
		return !p.startsTypeName(in)
	}
	return false
}

func (p *Parser) parseSuffixShape() (typeWrap, error) {
	switch p.peek().Kind {
	case Token_LBracket:
		p.next()
		n := 0
		if p.peek().Kind != Token_RBracket {
			val, err := p.parseConstantExpression()
			if err != nil {
				return nil, err
			}
			if val <= 0 {
				return nil, p.semanticf("array dimension must be positive")
			}
			n = int(val)
		}
		if _, err := p.expect(Token_RBracket); err != nil {
			return nil, err
		}
		rest, err := p.parseSuffixShape()
		if err != nil {
			return nil, err
		}
		return func(base *Type) (*Type, error) {
			elem, err := rest(base)
			if err != nil {
				return nil, err
			}
			t, err := Array(elem, n)
			if err != nil {
				return nil, errors.Wrapf(err, "at %s", p.peek().Loc)
			}
			return t, nil
		}, nil
	case Token_LParen:
		p.next()
		params, vararg, err := p.parseParameterList()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(Token_RParen); err != nil {
			return nil, err
		}
		rest, err := p.parseSuffixShape()
		if err != nil {
			return nil, err
		}
		return func(base *Type) (*Type, error) {
			ret, err := rest(base)
			if err != nil {
				return nil, err
			}
			if ret.Kind == Type_Function {
				return nil, p.semanticf("function cannot return function type")
			}
			if ret.Kind == Type_Array {
				return nil, p.semanticf("function cannot return array type")
			}
			ft := Function(ret)
			ft.Members = params
			ft.IsVararg = vararg
			return ft, nil
		}, nil
	}
	return identityWrap, nil
}

// parseParameterList handles the three forms: empty (parameters
// unspecified), a lone `void` (no parameters), and a list of
// parameter declarations with optional names and a trailing ellipsis.
// Array and function parameter types decay to pointers.
func (p *Parser) parseParameterList() ([]Member, bool, error) {
	var (
		params []Member
		vararg bool
	)
	if p.peek().Kind == Token_RParen {
		return nil, false, nil
	}
	if p.peek().Kind == Token_Void && p.peekn(2).Kind == Token_RParen {
		p.next()
		return nil, false, nil
	}
	for {
		if p.accept(Token_Ellipsis) {
			vararg = true
			break
		}
		base, sc, err := p.parseDeclarationSpecifiers()
		if err != nil {
			return nil, false, err
		}
		if sc != sc_None && sc != sc_Register {
			return nil, false, p.semanticf("invalid storage class in parameter declaration")
		}
		if base == nil {
			return nil, false, p.syntaxf("parameter declaration")
		}
		t, name, err := p.parseDeclarator(base)
		if err != nil {
			return nil, false, err
		}
		switch t.Kind {
		case Type_Array:
			t = p.pointerTo(t.Next)
		case Type_Function:
			t = p.pointerTo(t)
		case Type_None:
			return nil, false, p.semanticf("parameter `%s` has void type", name)
		}
		params = append(params, Member{Name: name, Type: t})
		if !p.accept(Token_Comma) {
			break
		}
	}
	return params, vararg, nil
}

// parseTypeName parses the abstract declarator form used by casts and
// sizeof.
func (p *Parser) parseTypeName() (*Type, error) {
	base, sc, err := p.parseDeclarationSpecifiers()
	if err != nil {
		return nil, err
	}
	if sc != sc_None {
		return nil, p.semanticf("storage class in type name")
	}
	if base == nil {
		return nil, p.syntaxf("type name")
	}
	t, name, err := p.parseDeclarator(base)
	if err != nil {
		return nil, err
	}
	if name != "" {
		return nil, p.semanticf("unexpected identifier `%s` in type name", name)
	}
	return t, nil
}

//  ---- declarations ----

// parseDeclaration parses one full declaration: specifiers, a
// declarator list with optional initializers, and for file scope
// function declarators optionally a function body.  Initializer IR
// for block scope objects goes into b; static and file scope
// initializers go into the fragment head and must fold to constants.
func (p *Parser) parseDeclaration(b *Block) (*Block, error) {
	base, sc, err := p.parseDeclarationSpecifiers()
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, p.syntaxf("declaration")
	}
	if p.accept(Token_Semicolon) {
		// Tag declaration without declarator, like `struct S {...};`
		return b, nil
	}
	for {
		t, name, err := p.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, p.semanticf("expected identifier in declaration")
		}
		var isFuncDef bool
		b, isFuncDef, err = p.declareSymbol(b, t, name, sc)
		if err != nil {
			return nil, err
		}
		if isFuncDef {
			return b, nil
		}
		if !p.accept(Token_Comma) {
			break
		}
	}
	if _, err := p.expect(Token_Semicolon); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *Parser) declareSymbol(b *Block, t *Type, name string, sc storageClass) (*Block, bool, error) {
	loc := p.peek().Loc
	depth := p.idents.Depth()

	if sc == sc_Typedef {
		_, err := p.idents.Add(&Symbol{Name: name, Type: t, SymType: Sym_Typedef})
		if err != nil {
			err = errors.Wrapf(err, "at %s", loc)
		}
		return b, false, err
	}

	if t.Kind == Type_Function {
		link := Link_External
		if sc == sc_Static {
			link = Link_Internal
		}
		if depth == 0 && p.peek().Kind == Token_LBrace {
			sym, err := p.idents.Add(&Symbol{Name: name, Type: t, SymType: Sym_Definition, Linkage: link})
			if err != nil {
				return nil, false, errors.Wrapf(err, "at %s", loc)
			}
			if err := p.parseFunctionBody(sym); err != nil {
				return nil, false, errors.Wrapf(err, "in function `%s`", name)
			}
			return b, true, nil
		}
		if p.peek().Kind == Token_Assign {
			return nil, false, p.semanticf("function `%s` initialized like a variable", name)
		}
		_, err := p.idents.Add(&Symbol{Name: name, Type: t, SymType: Sym_Declaration, Linkage: link})
		if err != nil {
			err = errors.Wrapf(err, "at %s", loc)
		}
		return b, false, err
	}

	hasInit := p.peek().Kind == Token_Assign
	if hasInit && sc == sc_Extern {
		return nil, false, p.semanticf("`%s` declared extern with an initializer", name)
	}

	var (
		link   Linkage
		st     SymType
		static bool
	)
	if depth == 0 {
		link = Link_External
		if sc == sc_Static {
			link = Link_Internal
		}
		switch {
		case sc == sc_Extern:
			st = Sym_Declaration
		case hasInit:
			st = Sym_Definition
		default:
			st = Sym_Tentative
		}
	} else {
		switch {
		case sc == sc_Extern:
			link = Link_External
			st = Sym_Declaration
		default:
			link = Link_None
			st = Sym_Definition
			static = sc == sc_Static
		}
	}

	sym, err := p.idents.Add(&Symbol{
		Name:    name,
		Type:    t,
		SymType: st,
		Linkage: link,
		Static:  static,
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "at %s", loc)
	}
	if depth > 0 && st == Sym_Definition && !static {
		p.decl.Locals = append(p.decl.Locals, sym)
	}

	if hasInit {
		p.next() // =
		target := varDirect(sym)
		constInit := depth == 0 || static
		emit := b
		if constInit {
			emit = p.decl.Head
		}
		emit, err = p.parseInitializer(emit, target, constInit)
		if err != nil {
			return nil, false, errors.Wrapf(err, "in initializer of `%s`", name)
		}
		if !constInit {
			b = emit
		}
		return b, false, nil
	}

	if st == Sym_Definition && !sym.Type.IsComplete() {
		return nil, false, p.semanticf("storage size of `%s` is unknown", name)
	}
	return b, false, nil
}

// parseInitializer lowers one initializer for the given target.  For
// aggregate targets a braced list initializes members and elements in
// declaration order; an incomplete outermost array dimension is
// back-filled from the element count.  When constInit is set, every
// stored value must fold to an immediate.
func (p *Parser) parseInitializer(b *Block, target Var, constInit bool) (*Block, error) {
	if p.peek().Kind != Token_LBrace {
		var (
			v   Var
			err error
		)
		b, v, err = p.parseAssignment(b)
		if err != nil {
			return nil, err
		}
		// Character arrays initialize from a string literal.
		if target.Type.Kind == Type_Array && v.Kind == Var_Immediate && v.Label != NoLabel {
			if !target.Type.IsComplete() {
				target.Type.Size = v.Type.Size
			}
			b.push(IAssign{Dst: target, Src: v})
			return b, nil
		}
		if constInit && v.Kind != Var_Immediate {
			return nil, p.semanticf("initializer element is not constant")
		}
		if _, err = p.assign(b, target, v); err != nil {
			return nil, err
		}
		return b, nil
	}

	p.next() // {
	t := target.Type
	switch t.Kind {
	case Type_Array:
		elem := t.Next
		count := 0
		for p.peek().Kind != Token_RBrace {
			et := target
			et.Type = elem
			et.Offset = target.Offset + count*elem.Size
			var err error
			b, err = p.parseInitializer(b, et, constInit)
			if err != nil {
				return nil, err
			}
			count++
			if !p.accept(Token_Comma) {
				break
			}
		}
		if _, err := p.expect(Token_RBrace); err != nil {
			return nil, err
		}
		if !t.IsComplete() {
			t.Size = count * elem.Size
		} else if count*elem.Size < t.Size {
			p.warnf("under-specified array initializer is not yet supported")
		} else if count*elem.Size > t.Size {
			return nil, p.semanticf("excess elements in array initializer")
		}
	case Type_Object:
		idx := 0
		for p.peek().Kind != Token_RBrace {
			if idx >= len(t.Members) {
				return nil, p.semanticf("excess elements in struct initializer")
			}
			m := t.Members[idx]
			mt := target
			mt.Type = m.Type
			mt.Offset = target.Offset + m.Offset
			var err error
			b, err = p.parseInitializer(b, mt, constInit)
			if err != nil {
				return nil, err
			}
			idx++
			if !p.accept(Token_Comma) {
				break
			}
		}
		if _, err := p.expect(Token_RBrace); err != nil {
			return nil, err
		}
		// Trailing members default by omission.
	default:
		var err error
		b, err = p.parseInitializer(b, target, constInit)
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(Token_RBrace); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// parseFunctionBody lowers a function definition into the fragment's
// body block.  Parameters share the body's outermost scope, and every
// parameter must be named.
func (p *Parser) parseFunctionBody(sym *Symbol) error {
	p.funcSym = sym
	p.funcNameSym = nil
	p.decl.Fun = sym

	p.idents.PushScope()
	p.tags.PushScope()
	p.labels.PushScope()

	for _, m := range sym.Type.Members {
		if m.Name == "" {
			return p.semanticf("parameter name omitted in definition of `%s`", sym.Name)
		}
		ps, err := p.idents.Add(&Symbol{Name: m.Name, Type: m.Type, SymType: Sym_Definition})
		if err != nil {
			return errors.Wrapf(err, "at %s", p.peek().Loc)
		}
		p.decl.Params = append(p.decl.Params, ps)
	}

	tail, err := p.parseCompound(p.decl.Body, false)
	if err != nil {
		return err
	}
	if !tail.Terminated() {
		tail.push(IReturn{})
	}

	p.labels.PopScope()
	p.tags.PopScope()
	p.idents.PopScope()
	p.funcSym = nil
	p.funcNameSym = nil
	return nil
}
