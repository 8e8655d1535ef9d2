package lacc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, input string) []Token {
	t.Helper()
	s := NewScanner([]byte(input))
	var tokens []Token
	for {
		tok := s.Next()
		if tok.Kind == Token_EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func TestScanner_Kinds(t *testing.T) {
	tokens := scanAll(t, "int x = 42;")
	require.Len(t, tokens, 5)
	assert.Equal(t, Token_Int, tokens[0].Kind)
	assert.Equal(t, Token_Ident, tokens[1].Kind)
	assert.Equal(t, "x", tokens[1].Lexeme)
	assert.Equal(t, Token_Assign, tokens[2].Kind)
	assert.Equal(t, Token_Integer, tokens[3].Kind)
	assert.Equal(t, int64(42), tokens[3].Value)
	assert.Equal(t, Token_Semicolon, tokens[4].Kind)
}

func TestScanner_IntegerConstants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value int64
	}{
		{name: "decimal", input: "10", value: 10},
		{name: "hex", input: "0x10", value: 16},
		{name: "hex upper", input: "0XFF", value: 255},
		{name: "octal", input: "010", value: 8},
		{name: "zero", input: "0", value: 0},
		{name: "long suffix", input: "10L", value: 10},
		{name: "unsigned suffix", input: "7u", value: 7},
		{name: "combined suffix", input: "7UL", value: 7},
		{name: "char constant", input: "'a'", value: 97},
		{name: "escaped newline", input: "'\\n'", value: 10},
		{name: "escaped octal", input: "'\\101'", value: 65},
		{name: "escaped hex", input: "'\\x41'", value: 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := scanAll(t, tt.input)
			require.Len(t, tokens, 1)
			assert.Equal(t, Token_Integer, tokens[0].Kind)
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestScanner_StringLiteral(t *testing.T) {
	tokens := scanAll(t, `"hi\n"`)
	require.Len(t, tokens, 1)
	assert.Equal(t, Token_String, tokens[0].Kind)
	assert.Equal(t, []byte("hi\n"), tokens[0].Text)
}

func TestScanner_Punctuators(t *testing.T) {
	tokens := scanAll(t, "-> ++ << >>= <= == != && ... , ? :")
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{
		Token_Arrow, Token_Inc, Token_Shl, Token_ShrAssign, Token_Le,
		Token_EqEq, Token_NotEq, Token_AmpAmp, Token_Ellipsis,
		Token_Comma, Token_Question, Token_Colon,
	}, kinds)
}

func TestScanner_CommentsAndWhitespace(t *testing.T) {
	tokens := scanAll(t, "a /* comment */ b // line\n c")
	require.Len(t, tokens, 3)
	assert.Equal(t, "a", tokens[0].Lexeme)
	assert.Equal(t, "b", tokens[1].Lexeme)
	assert.Equal(t, "c", tokens[2].Lexeme)
}

func TestScanner_Lookahead(t *testing.T) {
	s := NewScanner([]byte("a b c"))
	assert.Equal(t, "a", s.Peek().Lexeme)
	assert.Equal(t, "a", s.PeekN(1).Lexeme)
	assert.Equal(t, "b", s.PeekN(2).Lexeme)
	assert.Equal(t, "c", s.PeekN(3).Lexeme)
	assert.Equal(t, "a", s.Next().Lexeme)
	assert.Equal(t, "b", s.Peek().Lexeme)
	assert.Equal(t, "b", s.Next().Lexeme)
	assert.Equal(t, "c", s.Next().Lexeme)
	assert.Equal(t, Token_EOF, s.Next().Kind)
	assert.Equal(t, Token_EOF, s.Peek().Kind)
}

func TestScanner_Locations(t *testing.T) {
	tokens := scanAll(t, "a\n  b")
	require.Len(t, tokens, 2)
	assert.Equal(t, 1, tokens[0].Loc.Line)
	assert.Equal(t, 1, tokens[0].Loc.Column)
	assert.Equal(t, 2, tokens[1].Loc.Line)
	assert.Equal(t, 3, tokens[1].Loc.Column)
}

func TestScanner_Illegal(t *testing.T) {
	s := NewScanner([]byte("a @ b"))
	assert.Equal(t, Token_Ident, s.Next().Kind)
	assert.Equal(t, Token_Illegal, s.Next().Kind)
	assert.Error(t, s.Err())
}
