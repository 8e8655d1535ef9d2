package lacc

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
)

// Parser is a single pass recursive descent parser over a stream of
// preprocessed tokens.  Each call to ParseNext returns the next
// translation unit fragment.
//
// The namespaces, the string table and the type side effects persist
// across fragments; a Parser covers exactly one translation unit and
// is not reused.
type Parser struct {
	ts      TokenStream
	strings *StringTable

	idents *Namespace
	labels *Namespace
	tags   *Namespace

	ptrSize  int
	fold     bool
	warnings bool
	warnFn   func(format string, args ...interface{})

	decl *Decl

	// Per function state, saved and restored around nested
	// constructs with a call stack discipline.
	funcSym     *Symbol
	funcNameSym *Symbol
	loopStack   []loopTargets

	finalized bool
}

type loopTargets struct {
	brk  *Block
	cont *Block
}

func NewParser(ts TokenStream) *Parser {
	return NewParserConfig(NewConfig(), ts)
}

func NewParserConfig(cfg *Config, ts TokenStream) *Parser {
	return &Parser{
		ts:       ts,
		strings:  NewStringTable(),
		idents:   NewNamespace("identifiers"),
		labels:   NewNamespace("labels"),
		tags:     NewNamespace("tags"),
		ptrSize:  cfg.GetInt("target.pointer_size"),
		fold:     cfg.GetBool("parser.fold_constants"),
		warnings: cfg.GetBool("parser.warnings"),
		warnFn:   log.Printf,
	}
}

// SetWarnFunc redirects warning output, which otherwise goes through
// the log package.
func (p *Parser) SetWarnFunc(fn func(format string, args ...interface{})) {
	p.warnFn = fn
}

// Strings exposes the translation unit's interned string table, which
// the back end needs to materialize string labels.
func (p *Parser) Strings() *StringTable {
	return p.strings
}

// ParseNext parses external declarations until one produces a fragment
// worth handing to the back end: a function definition, or global
// initializer code.  After the input is exhausted one final fragment
// carries zero initializers for every tentative definition left in the
// translation unit.  A nil fragment signals end of input.
func (p *Parser) ParseNext() (*Decl, error) {
	for {
		if p.ts.Peek().Kind == Token_EOF {
			if p.finalized {
				return nil, nil
			}
			p.finalized = true
			d := p.finalizeTentative()
			if d != nil {
				return d, nil
			}
			return nil, nil
		}
		p.decl = NewDecl()
		if _, err := p.parseDeclaration(p.decl.Head); err != nil {
			return nil, err
		}
		d := p.decl
		p.decl = nil
		if !d.Empty() {
			d.Finalize()
			return d, nil
		}
	}
}

// finalizeTentative synthesizes a zero initializer for every file
// scope symbol still in tentative state, upgrading it to a definition.
// Returns nil when there was nothing left to finalize.
func (p *Parser) finalizeTentative() *Decl {
	p.decl = NewDecl()
	for _, sym := range p.idents.FileScope() {
		if sym.SymType != Sym_Tentative {
			continue
		}
		if sym.Type.Kind == Type_Array && !sym.Type.IsComplete() {
			// A tentative array with no dimension completes
			// to a single element.
			sym.Type.Size = sym.Type.Next.Size
		}
		dst := varDirect(sym)
		p.decl.Head.push(IAssign{Dst: dst, Src: varImmediate(sym.Type, 0)})
		sym.SymType = Sym_Definition
	}
	d := p.decl
	p.decl = nil
	if d.Empty() {
		return nil
	}
	d.Finalize()
	return d
}

//  ---- token helpers ----

func (p *Parser) peek() Token {
	return p.ts.Peek()
}

func (p *Parser) peekn(n int) Token {
	return p.ts.PeekN(n)
}

func (p *Parser) next() Token {
	return p.ts.Next()
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.ts.Peek().Kind == kind {
		p.ts.Next()
		return true
	}
	return false
}

// expect consumes the next token, which must be of the given kind.
func (p *Parser) expect(kind TokenKind) (Token, error) {
	t := p.ts.Next()
	if t.Kind != kind {
		return t, errors.WithStack(SyntaxError{
			Loc:      t.Loc,
			Expected: fmt.Sprintf("`%s`", kind),
			Got:      t,
		})
	}
	return t, nil
}

func (p *Parser) syntaxf(expected string) error {
	t := p.ts.Peek()
	return errors.WithStack(SyntaxError{Loc: t.Loc, Expected: expected, Got: t})
}

func (p *Parser) semanticf(format string, args ...interface{}) error {
	return errors.WithStack(SemanticError{
		Loc:     p.ts.Peek().Loc,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) warnf(format string, args ...interface{}) {
	if p.warnings && p.warnFn != nil {
		p.warnFn("warning: "+format, args...)
	}
}

//  ---- loop target stack ----

func (p *Parser) pushLoop(brk, cont *Block) {
	p.loopStack = append(p.loopStack, loopTargets{brk: brk, cont: cont})
}

func (p *Parser) popLoop() {
	p.loopStack = p.loopStack[:len(p.loopStack)-1]
}

func (p *Parser) breakTarget() *Block {
	for i := len(p.loopStack) - 1; i >= 0; i-- {
		if p.loopStack[i].brk != nil {
			return p.loopStack[i].brk
		}
	}
	return nil
}

func (p *Parser) continueTarget() *Block {
	for i := len(p.loopStack) - 1; i >= 0; i-- {
		if p.loopStack[i].cont != nil {
			return p.loopStack[i].cont
		}
	}
	return nil
}

// startsDeclaration reports whether a statement beginning with t must
// be parsed as a declaration.  An identifier starts a declaration only
// when it is bound to a typedef.
func (p *Parser) startsDeclaration(t Token) bool {
	switch t.Kind {
	case Token_Auto, Token_Register, Token_Static, Token_Extern, Token_Typedef,
		Token_Const, Token_Volatile,
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

// parseConstantExpression evaluates a conditional expression that must
// fold to an integer constant.  Evaluation scratch goes into an orphan
// block that never becomes reachable.
func (p *Parser) parseConstantExpression() (int64, error) {
	scratch := p.decl.NewBlock()
	_, v, err := p.parseConditional(scratch)
	if err != nil {
		return 0, err
	}
	if v.Kind != Var_Immediate || v.Label != NoLabel {
		return 0, p.semanticf("expression is not an integer constant")
	}
	if !v.Type.IsInteger() {
		return 0, p.semanticf("constant expression has non-integer type %s", v.Type)
	}
	return v.Value, nil
}
