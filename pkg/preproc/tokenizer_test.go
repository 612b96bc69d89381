package preproc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/pkg/source"
)

func lex(input string) []source.Token {
	return Tokenize(source.NewFile("test.cpp", "", 0, []byte(input)))
}

func kinds(tokens []source.Token) []source.TokenKind {
	out := make([]source.TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func texts(tokens []source.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text())
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []source.TokenKind
	}{
		{
			name:  "identifier and punctuation",
			input: "x=1;",
			want: []source.TokenKind{
				source.TokIdent, source.TokPunct, source.TokNumber,
				source.TokPunct, source.TokEOF,
			},
		},
		{
			name:  "hash and concat",
			input: "#x ## y",
			want: []source.TokenKind{
				source.TokHash, source.TokIdent, source.TokWhitespace,
				source.TokConcat, source.TokWhitespace, source.TokIdent,
				source.TokEOF,
			},
		},
		{
			name:  "escaped newline",
			input: "a \\\nb",
			want: []source.TokenKind{
				source.TokIdent, source.TokWhitespace,
				source.TokEscapedNewline, source.TokIdent, source.TokEOF,
			},
		},
		{
			name:  "line comment runs to newline",
			input: "a // c\nb",
			want: []source.TokenKind{
				source.TokIdent, source.TokWhitespace, source.TokLineComment,
				source.TokNewline, source.TokIdent, source.TokEOF,
			},
		},
		{
			name:  "block comment spans lines",
			input: "a /* c\nd */ b",
			want: []source.TokenKind{
				source.TokIdent, source.TokWhitespace, source.TokBlockComment,
				source.TokWhitespace, source.TokIdent, source.TokEOF,
			},
		},
		{
			name:  "crlf newline is one token",
			input: "a\r\nb",
			want: []source.TokenKind{
				source.TokIdent, source.TokNewline, source.TokIdent,
				source.TokEOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, kinds(lex(tt.input)))
		})
	}
}

func TestTokenizeStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "double quoted", input: `"hello"`, want: `"hello"`},
		{name: "single quoted", input: `'hi'`, want: `'hi'`},
		{name: "doubled quote escape", input: `"say ""hi"""`, want: `"say ""hi"""`},
		{name: "unterminated stops at newline", input: "\"open\nnext", want: `"open`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens := lex(tt.input)
			require.Equal(t, source.TokString, tokens[0].Kind)
			require.Equal(t, tt.want, tokens[0].Text())
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "integer", input: "42", want: []string{"42"}},
		{name: "fraction", input: "2.5", want: []string{"2.5"}},
		{name: "hex", input: "0xFF", want: []string{"0xFF"}},
		{name: "leading sign", input: "-1", want: []string{"-1"}},
		{name: "sign after value is an operator", input: "x-1", want: []string{"x", "-", "1"}},
		{name: "sign after close paren is an operator", input: "(x)-1", want: []string{"(", "x", ")", "-", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, texts(significant(lex(tt.input))))
		})
	}
}

func TestTokenOffsetsCoverInput(t *testing.T) {
	t.Parallel()

	input := "#define X(a) a##1 // tail\n"
	tokens := lex(input)

	offset := 0
	for _, tok := range tokens {
		if tok.Kind == source.TokEOF {
			break
		}
		require.Equal(t, offset, tok.StartOffset)
		offset = tok.EndOffset
	}
	require.Equal(t, len(input), offset)
}

func TestSyntheticTokenText(t *testing.T) {
	t.Parallel()

	tok := source.Synthesize(source.TokIdent, "merged", source.Location{}, nil)
	require.True(t, tok.Synthetic())
	require.Equal(t, "merged", tok.Text())
}
