package lacc

import "fmt"

// Block is one basic block, owned by the Decl it was allocated from.
//
// If only Jump[0] is set the block ends in an unconditional branch.
// If both are set, it ends in a conditional branch on Expr: true goes
// to Jump[1], false to Jump[0].  If neither is set the block is
// terminal: it either returns or is an orphan.
type Block struct {
	Label string
	Code  []Instruction

	// Expr is the result of the most recent expression emitted
	// into this block, used to compose operator chains and as the
	// condition of a two-way branch.
	Expr Var

	Jump [2]*Block
}

func (b *Block) push(op Instruction) {
	b.Code = append(b.Code, op)
}

// Terminated reports whether the block already ends in a return.
func (b *Block) Terminated() bool {
	if len(b.Code) == 0 {
		return false
	}
	_, ok := b.Code[len(b.Code)-1].(IReturn)
	return ok
}

// Decl is one translation unit fragment: either a function definition
// with its CFG, or a batch of global initializer assignments.  All
// blocks, locals and temporaries allocated while parsing the fragment
// are owned by it and released together once the back end is done.
type Decl struct {
	// Head holds static initializer assignments and function
	// prologue material such as the synthesized __func__ array.
	Head *Block

	// Body is the entry block of a function fragment.
	Body *Block

	Params []*Symbol
	Locals []*Symbol

	// Fun is the defined function's symbol, nil for fragments that
	// only carry global initializers.
	Fun *Symbol

	Blocks []*Block

	labelSeq  int
	finalized bool
}

// NewDecl starts a fresh fragment with its head and body blocks
// allocated.
func NewDecl() *Decl {
	d := &Decl{}
	d.Head = d.NewBlock()
	d.Body = d.NewBlock()
	return d
}

// NewBlock allocates a new empty block owned by the fragment.  Blocks
// are never freed individually: even blocks orphaned after a return or
// break are retained in Blocks.  Labels are lowered as no-ops, so no
// later statement links an orphan block back into the graph.
func (d *Decl) NewBlock() *Block {
	b := &Block{Label: fmt.Sprintf(".L%d", d.labelSeq)}
	d.labelSeq++
	d.Blocks = append(d.Blocks, b)
	return b
}

// Finalize marks the fragment ready for consumption by the back end.
func (d *Decl) Finalize() {
	d.finalized = true
}

// Empty reports whether the fragment carries nothing for the back end:
// no function definition and no initializer code.
func (d *Decl) Empty() bool {
	return d.Fun == nil && len(d.Head.Code) == 0 && len(d.Body.Code) == 0
}
