package lacc

import "fmt"

type TokenKind int

const (
	Token_EOF TokenKind = iota
	Token_Illegal
	Token_Ident
	Token_Integer
	Token_String

	// Keywords
	Token_Auto
	Token_Break
	Token_Case
	Token_Char
	Token_Const
	Token_Continue
	Token_Default
	Token_Do
	Token_Double
	Token_Else
	Token_Enum
	Token_Extern
	Token_Float
	Token_For
	Token_Goto
	Token_If
	Token_Int
	Token_Long
	Token_Register
	Token_Return
	Token_Short
	Token_Signed
	Token_Sizeof
	Token_Static
	Token_Struct
	Token_Switch
	Token_Typedef
	Token_Union
	Token_Unsigned
	Token_Void
	Token_Volatile
	Token_While

	// Punctuators
	Token_LParen
	Token_RParen
	Token_LBracket
	Token_RBracket
	Token_LBrace
	Token_RBrace
	Token_Semicolon
	Token_Comma
	Token_Colon
	Token_Dot
	Token_Arrow
	Token_Ellipsis
	Token_Question
	Token_Inc
	Token_Dec
	Token_Amp
	Token_Star
	Token_Plus
	Token_Minus
	Token_Tilde
	Token_Not
	Token_Slash
	Token_Percent
	Token_Shl
	Token_Shr
	Token_Lt
	Token_Gt
	Token_Le
	Token_Ge
	Token_EqEq
	Token_NotEq
	Token_Caret
	Token_Pipe
	Token_AmpAmp
	Token_PipePipe
	Token_Assign
	Token_PlusAssign
	Token_MinusAssign
	Token_StarAssign
	Token_SlashAssign
	Token_PercentAssign
	Token_ShlAssign
	Token_ShrAssign
	Token_AmpAssign
	Token_CaretAssign
	Token_PipeAssign
)

var tokenNames = map[TokenKind]string{
	Token_EOF:     "end of input",
	Token_Illegal: "illegal token",
	Token_Ident:   "identifier",
	Token_Integer: "integer constant",
	Token_String:  "string literal",

	Token_Auto:     "auto",
	Token_Break:    "break",
	Token_Case:     "case",
	Token_Char:     "char",
	Token_Const:    "const",
	Token_Continue: "continue",
	Token_Default:  "default",
	Token_Do:       "do",
	Token_Double:   "double",
	Token_Else:     "else",
	Token_Enum:     "enum",
	Token_Extern:   "extern",
	Token_Float:    "float",
	Token_For:      "for",
	Token_Goto:     "goto",
	Token_If:       "if",
	Token_Int:      "int",
	Token_Long:     "long",
	Token_Register: "register",
	Token_Return:   "return",
	Token_Short:    "short",
	Token_Signed:   "signed",
	Token_Sizeof:   "sizeof",
	Token_Static:   "static",
	Token_Struct:   "struct",
	Token_Switch:   "switch",
	Token_Typedef:  "typedef",
	Token_Union:    "union",
	Token_Unsigned: "unsigned",
	Token_Void:     "void",
	Token_Volatile: "volatile",
	Token_While:    "while",

	Token_LParen:        "(",
	Token_RParen:        ")",
	Token_LBracket:      "[",
	Token_RBracket:      "]",
	Token_LBrace:        "{",
	Token_RBrace:        "}",
	Token_Semicolon:     ";",
	Token_Comma:         ",",
	Token_Colon:         ":",
	Token_Dot:           ".",
	Token_Arrow:         "->",
	Token_Ellipsis:      "...",
	Token_Question:      "?",
	Token_Inc:           "++",
	Token_Dec:           "--",
	Token_Amp:           "&",
	Token_Star:          "*",
	Token_Plus:          "+",
	Token_Minus:         "-",
	Token_Tilde:         "~",
	Token_Not:           "!",
	Token_Slash:         "/",
	Token_Percent:       "%",
	Token_Shl:           "<<",
	Token_Shr:           ">>",
	Token_Lt:            "<",
	Token_Gt:            ">",
	Token_Le:            "<=",
	Token_Ge:            ">=",
	Token_EqEq:          "==",
	Token_NotEq:         "!=",
	Token_Caret:         "^",
	Token_Pipe:          "|",
	Token_AmpAmp:        "&&",
	Token_PipePipe:      "||",
	Token_Assign:        "=",
	Token_PlusAssign:    "+=",
	Token_MinusAssign:   "-=",
	Token_StarAssign:    "*=",
	Token_SlashAssign:   "/=",
	Token_PercentAssign: "%=",
	Token_ShlAssign:     "<<=",
	Token_ShrAssign:     ">>=",
	Token_AmpAssign:     "&=",
	Token_CaretAssign:   "^=",
	Token_PipeAssign:    "|=",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one preprocessed lexical unit.  The payload depends on the
// kind: Lexeme for identifiers, Value for integer constants, Text for
// string literals.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Value  int64
	Text   []byte
	Loc    Location
}

func (t Token) String() string {
	switch t.Kind {
	case Token_Ident:
		return t.Lexeme
	case Token_Integer:
		return fmt.Sprintf("%d", t.Value)
	case Token_String:
		return fmt.Sprintf("%q", string(t.Text))
	default:
		return t.Kind.String()
	}
}

// TokenStream is the interface the parser consumes tokens through.
// PeekN(1) is equivalent to Peek.  Streams never run out: once the
// input is exhausted every call returns a Token_EOF token.
type TokenStream interface {
	Peek() Token
	PeekN(n int) Token
	Next() Token
}
