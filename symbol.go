package lacc

import (
	"fmt"

	"github.com/pkg/errors"
)

type SymType int

const (
	Sym_Declaration SymType = iota
	Sym_Tentative
	Sym_Definition
	Sym_Typedef
	Sym_Enum
)

func (s SymType) String() string {
	return map[SymType]string{
		Sym_Declaration: "declaration",
		Sym_Tentative:   "tentative",
		Sym_Definition:  "definition",
		Sym_Typedef:     "typedef",
		Sym_Enum:        "enum",
	}[s]
}

type Linkage int

const (
	Link_None Linkage = iota
	Link_Internal
	Link_External
)

func (l Linkage) String() string {
	return map[Linkage]string{
		Link_None:     "none",
		Link_Internal: "internal",
		Link_External: "external",
	}[l]
}

// Symbol is one named entity in a namespace.  Depth records the scope
// nesting at the point of introduction; 0 is file scope.
type Symbol struct {
	Name      string
	Type      *Type
	SymType   SymType
	Linkage   Linkage
	Depth     int
	EnumValue int64

	// TagDefined marks a struct/union/enum tag whose body has been
	// seen, so redefinitions can be rejected.
	TagDefined bool

	// Static marks block scope objects with static storage
	// duration; their initializers live in the fragment head.
	Static bool

	ns *Namespace
}

func (s *Symbol) String() string {
	return s.Name
}

type scope struct {
	syms  []*Symbol
	names map[string]*Symbol
}

// Namespace is a scoped symbol table.  Lookups see the innermost
// binding of a name; popping a scope discards every symbol introduced
// at that depth.  Three namespaces exist per translation unit:
// ordinary identifiers, labels, and struct/union/enum tags.
type Namespace struct {
	Name    string
	scopes  []*scope
	tempSeq int
}

func NewNamespace(name string) *Namespace {
	ns := &Namespace{Name: name}
	ns.PushScope()
	return ns
}

func (ns *Namespace) PushScope() {
	ns.scopes = append(ns.scopes, &scope{names: map[string]*Symbol{}})
}

func (ns *Namespace) PopScope() {
	if len(ns.scopes) == 1 {
		panic("cannot pop file scope")
	}
	ns.scopes = ns.scopes[:len(ns.scopes)-1]
}

// Depth returns the current scope nesting, 0 being file scope.
func (ns *Namespace) Depth() int {
	return len(ns.scopes) - 1
}

// Lookup returns the innermost binding of name, or nil.
func (ns *Namespace) Lookup(name string) *Symbol {
	for i := len(ns.scopes) - 1; i >= 0; i-- {
		if s, ok := ns.scopes[i].names[name]; ok {
			return s
		}
	}
	return nil
}

// FileScope returns the file scope symbols in declaration order.
func (ns *Namespace) FileScope() []*Symbol {
	return ns.scopes[0].syms
}

func (ns *Namespace) insert(sym *Symbol) *Symbol {
	top := ns.scopes[len(ns.scopes)-1]
	sym.Depth = ns.Depth()
	sym.ns = ns
	top.syms = append(top.syms, sym)
	top.names[sym.Name] = sym
	return sym
}

// symtype merge order at file scope: Definition > Tentative > Declaration.
func moreDefined(a, b SymType) SymType {
	rank := map[SymType]int{Sym_Declaration: 0, Sym_Tentative: 1, Sym_Definition: 2}
	if rank[a] >= rank[b] {
		return a
	}
	return b
}

// Add inserts proto at the current depth and returns the resulting
// symbol.  At file scope, compatible redeclarations of objects and
// functions merge into the existing symbol; everything else clashing
// at the same depth is an error.
func (ns *Namespace) Add(proto *Symbol) (*Symbol, error) {
	top := ns.scopes[len(ns.scopes)-1]
	existing, clash := top.names[proto.Name]
	if !clash {
		return ns.insert(proto), nil
	}

	if ns.Depth() > 0 {
		return nil, errors.Errorf("redeclaration of `%s`", proto.Name)
	}

	mergeable := func(st SymType) bool {
		return st == Sym_Declaration || st == Sym_Tentative || st == Sym_Definition
	}
	if !mergeable(existing.SymType) || !mergeable(proto.SymType) {
		return nil, errors.Errorf("redeclaration of `%s`", proto.Name)
	}
	if !existing.Type.Equal(proto.Type) {
		return nil, errors.Errorf("conflicting types for `%s`", proto.Name)
	}
	if existing.SymType == Sym_Definition && proto.SymType == Sym_Definition {
		return nil, errors.Errorf("redefinition of `%s`", proto.Name)
	}
	existing.SymType = moreDefined(existing.SymType, proto.SymType)
	if proto.Linkage == Link_Internal {
		existing.Linkage = Link_Internal
	}
	return existing, nil
}

// Temp allocates a fresh uniquely named symbol at the current depth,
// used for compiler generated temporaries.
func (ns *Namespace) Temp(typ *Type) *Symbol {
	name := fmt.Sprintf(".t%d", ns.tempSeq)
	ns.tempSeq++
	return ns.insert(&Symbol{
		Name:    name,
		Type:    typ,
		SymType: Sym_Definition,
	})
}
