package lacc

import (
	"github.com/pkg/errors"
)

var keywords = map[string]TokenKind{
	"auto":     Token_Auto,
	"break":    Token_Break,
	"case":     Token_Case,
	"char":     Token_Char,
	"const":    Token_Const,
	"continue": Token_Continue,
	"default":  Token_Default,
	"do":       Token_Do,
	"double":   Token_Double,
	"else":     Token_Else,
	"enum":     Token_Enum,
	"extern":   Token_Extern,
	"float":    Token_Float,
	"for":      Token_For,
	"goto":     Token_Goto,
	"if":       Token_If,
	"int":      Token_Int,
	"long":     Token_Long,
	"register": Token_Register,
	"return":   Token_Return,
	"short":    Token_Short,
	"signed":   Token_Signed,
	"sizeof":   Token_Sizeof,
	"static":   Token_Static,
	"struct":   Token_Struct,
	"switch":   Token_Switch,
	"typedef":  Token_Typedef,
	"union":    Token_Union,
	"unsigned": Token_Unsigned,
	"void":     Token_Void,
	"volatile": Token_Volatile,
	"while":    Token_While,
}

// Scanner tokenizes preprocessed C source.  It keeps the state
// necessary to serve the parser's one- and two-token lookahead through
// a small queue of already-scanned tokens.
//
// Wide character constants and floating constants are not recognized;
// the front end does not consume them.
type Scanner struct {
	input  []byte
	cursor int
	line   int
	column int

	queue   []Token
	lastErr error
}

func NewScanner(input []byte) *Scanner {
	return &Scanner{input: input, line: 1, column: 1}
}

// Err returns the first lexical error encountered, if any.  The token
// that triggered it is reported as Token_Illegal.
func (s *Scanner) Err() error {
	return s.lastErr
}

func (s *Scanner) Peek() Token {
	return s.PeekN(1)
}

func (s *Scanner) PeekN(n int) Token {
	for len(s.queue) < n {
		s.queue = append(s.queue, s.scan())
	}
	return s.queue[n-1]
}

func (s *Scanner) Next() Token {
	if len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		return t
	}
	return s.scan()
}

func (s *Scanner) location() Location {
	return Location{Line: s.line, Column: s.column, Cursor: s.cursor}
}

func (s *Scanner) peekByte() byte {
	if s.cursor >= len(s.input) {
		return 0
	}
	return s.input[s.cursor]
}

func (s *Scanner) peekByteAt(off int) byte {
	if s.cursor+off >= len(s.input) {
		return 0
	}
	return s.input[s.cursor+off]
}

func (s *Scanner) advance() byte {
	c := s.input[s.cursor]
	s.cursor++
	s.column++
	if c == '\n' {
		s.line++
		s.column = 1
	}
	return c
}

func (s *Scanner) skipSpaceAndComments() {
	for s.cursor < len(s.input) {
		c := s.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			s.advance()
		case c == '/' && s.peekByteAt(1) == '/':
			for s.cursor < len(s.input) && s.peekByte() != '\n' {
				s.advance()
			}
		case c == '/' && s.peekByteAt(1) == '*':
			s.advance()
			s.advance()
			for s.cursor < len(s.input) {
				if s.peekByte() == '*' && s.peekByteAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) scan() Token {
	s.skipSpaceAndComments()
	loc := s.location()
	if s.cursor >= len(s.input) {
		return Token{Kind: Token_EOF, Loc: loc}
	}

	c := s.peekByte()
	switch {
	case isIdentStart(c):
		return s.scanIdent(loc)
	case c >= '0' && c <= '9':
		return s.scanNumber(loc)
	case c == '\'':
		return s.scanCharConstant(loc)
	case c == '"':
		return s.scanString(loc)
	}
	return s.scanPunctuator(loc)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (s *Scanner) scanIdent(loc Location) Token {
	start := s.cursor
	for s.cursor < len(s.input) && isIdentPart(s.peekByte()) {
		s.advance()
	}
	lexeme := string(s.input[start:s.cursor])
	if kind, ok := keywords[lexeme]; ok {
		return Token{Kind: kind, Lexeme: lexeme, Loc: loc}
	}
	return Token{Kind: Token_Ident, Lexeme: lexeme, Loc: loc}
}

func (s *Scanner) scanNumber(loc Location) Token {
	var (
		value int64
		base  = int64(10)
	)
	if s.peekByte() == '0' {
		s.advance()
		if s.peekByte() == 'x' || s.peekByte() == 'X' {
			s.advance()
			base = 16
		} else {
			base = 8
		}
	}
	for s.cursor < len(s.input) {
		d, ok := digitValue(s.peekByte(), base)
		if !ok {
			break
		}
		value = value*base + d
		s.advance()
	}
	// Suffixes only affect the type of the constant, which the
	// front end derives from the value alone.
	for {
		c := s.peekByte()
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			s.advance()
			continue
		}
		break
	}
	return Token{Kind: Token_Integer, Value: value, Loc: loc}
}

func digitValue(c byte, base int64) (int64, bool) {
	var d int64
	switch {
	case c >= '0' && c <= '9':
		d = int64(c - '0')
	case c >= 'a' && c <= 'f':
		d = int64(c-'a') + 10
	case c >= 'A' && c <= 'F':
		d = int64(c-'A') + 10
	default:
		return 0, false
	}
	if d >= base {
		return 0, false
	}
	return d, true
}

func (s *Scanner) scanEscape(loc Location) (byte, bool) {
	s.advance() // backslash
	if s.cursor >= len(s.input) {
		s.fail(loc, "unterminated escape sequence")
		return 0, false
	}
	c := s.advance()
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return 7, true
	case 'b':
		return 8, true
	case 'f':
		return 12, true
	case 'v':
		return 11, true
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int64(c - '0')
		for i := 0; i < 2 && s.cursor < len(s.input); i++ {
			d := s.peekByte()
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int64(d-'0')
			s.advance()
		}
		return byte(v), true
	case 'x':
		var v int64
		for s.cursor < len(s.input) {
			d, ok := digitValue(s.peekByte(), 16)
			if !ok {
				break
			}
			v = v*16 + d
			s.advance()
		}
		return byte(v), true
	case '\\', '\'', '"', '?':
		return c, true
	}
	s.fail(loc, "unknown escape sequence `\\%c`", c)
	return 0, false
}

// scanCharConstant lowers a character constant directly to an integer
// token, the only form the parser sees it in.
func (s *Scanner) scanCharConstant(loc Location) Token {
	s.advance() // opening quote
	if s.cursor >= len(s.input) {
		return s.illegal(loc, "unterminated character constant")
	}
	var value byte
	if s.peekByte() == '\\' {
		v, ok := s.scanEscape(loc)
		if !ok {
			return Token{Kind: Token_Illegal, Loc: loc}
		}
		value = v
	} else {
		value = s.advance()
	}
	if s.cursor >= len(s.input) || s.peekByte() != '\'' {
		return s.illegal(loc, "unterminated character constant")
	}
	s.advance()
	return Token{Kind: Token_Integer, Value: int64(value), Loc: loc}
}

func (s *Scanner) scanString(loc Location) Token {
	s.advance() // opening quote
	var text []byte
	for {
		if s.cursor >= len(s.input) {
			return s.illegal(loc, "unterminated string literal")
		}
		c := s.peekByte()
		if c == '"' {
			s.advance()
			return Token{Kind: Token_String, Text: text, Loc: loc}
		}
		if c == '\\' {
			v, ok := s.scanEscape(loc)
			if !ok {
				return Token{Kind: Token_Illegal, Loc: loc}
			}
			text = append(text, v)
			continue
		}
		text = append(text, s.advance())
	}
}

// punctuators, longest match first within each leading byte
var punctuators = []struct {
	text string
	kind TokenKind
}{
	{"...", Token_Ellipsis},
	{"<<=", Token_ShlAssign},
	{">>=", Token_ShrAssign},
	{"->", Token_Arrow},
	{"++", Token_Inc},
	{"--", Token_Dec},
	{"<<", Token_Shl},
	{">>", Token_Shr},
	{"<=", Token_Le},
	{">=", Token_Ge},
	{"==", Token_EqEq},
	{"!=", Token_NotEq},
	{"&&", Token_AmpAmp},
	{"||", Token_PipePipe},
	{"+=", Token_PlusAssign},
	{"-=", Token_MinusAssign},
	{"*=", Token_StarAssign},
	{"/=", Token_SlashAssign},
	{"%=", Token_PercentAssign},
	{"&=", Token_AmpAssign},
	{"^=", Token_CaretAssign},
	{"|=", Token_PipeAssign},
	{"(", Token_LParen},
	{")", Token_RParen},
	{"[", Token_LBracket},
	{"]", Token_RBracket},
	{"{", Token_LBrace},
	{"}", Token_RBrace},
	{";", Token_Semicolon},
	{",", Token_Comma},
	{":", Token_Colon},
	{".", Token_Dot},
	{"?", Token_Question},
	{"&", Token_Amp},
	{"*", Token_Star},
	{"+", Token_Plus},
	{"-", Token_Minus},
	{"~", Token_Tilde},
	{"!", Token_Not},
	{"/", Token_Slash},
	{"%", Token_Percent},
	{"<", Token_Lt},
	{">", Token_Gt},
	{"^", Token_Caret},
	{"|", Token_Pipe},
	{"=", Token_Assign},
}

func (s *Scanner) scanPunctuator(loc Location) Token {
	rest := s.input[s.cursor:]
	for _, p := range punctuators {
		if len(rest) >= len(p.text) && string(rest[:len(p.text)]) == p.text {
			for range p.text {
				s.advance()
			}
			return Token{Kind: p.kind, Lexeme: p.text, Loc: loc}
		}
	}
	c := s.advance()
	return s.illegal(loc, "stray `%c` in input", c)
}

func (s *Scanner) fail(loc Location, format string, args ...interface{}) {
	if s.lastErr == nil {
		s.lastErr = errors.Wrapf(errors.Errorf(format, args...), "at %s", loc)
	}
}

func (s *Scanner) illegal(loc Location, format string, args ...interface{}) Token {
	s.fail(loc, format, args...)
	return Token{Kind: Token_Illegal, Loc: loc}
}
