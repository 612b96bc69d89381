// Package source defines the lexical token model shared by the tokenizer,
// the expansion engine, and downstream parsers: tokens, source locations,
// line indexes, and macro-expansion location chains.
package source

//go:generate stringer -type=TokenKind -trimprefix=Tok

// TokenKind classifies the type of a lexical token.
type TokenKind uint8

// Token kinds cover every byte of a tokenized file.
const (
	TokIdent TokenKind = iota
	TokNumber
	TokString
	TokPunct
	TokHash           // '#' introducing a directive or the stringize operator
	TokConcat         // '##'
	TokWhitespace     // spaces and tabs
	TokNewline        // LF or CRLF
	TokEscapedNewline // '\' immediately followed by a newline (line continuation)
	TokLineComment
	TokBlockComment
	TokEOF
)

// Token represents one lexical unit. Tokens lexed from a file reference the
// file's content by byte span; tokens synthesized by stringize or
// concatenation carry their own text and a synthetic origin.
type Token struct {
	// Kind classifies what this token represents.
	Kind TokenKind

	// File is the file this token was lexed from. Nil for synthesized tokens.
	File *File

	// StartOffset is the byte index where this token begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where this token ends (exclusive).
	EndOffset int

	// Chain records the macro invocations that produced this token,
	// innermost expansion last. Nil for tokens outside any expansion.
	Chain *Expansion

	text   string
	origin *Location
}

// Synthesize creates a token that has no backing file span, such as the
// result of the stringize or concatenation operators.
func Synthesize(kind TokenKind, text string, origin Location, chain *Expansion) Token {
	return Token{
		Kind:   kind,
		Chain:  chain,
		text:   text,
		origin: &origin,
	}
}

// Text returns the literal text of this token.
func (t Token) Text() string {
	if t.origin != nil || t.File == nil {
		return t.text
	}
	if t.StartOffset < 0 || t.EndOffset > len(t.File.Content) || t.StartOffset > t.EndOffset {
		return ""
	}
	return string(t.File.Content[t.StartOffset:t.EndOffset])
}

// Origin returns the literal source location of this token. For synthesized
// tokens this is the location of the operator use that produced them.
func (t Token) Origin() Location {
	if t.origin != nil {
		return *t.origin
	}
	return Location{File: t.File, Offset: t.StartOffset}
}

// Synthetic reports whether this token was produced by an operator rather
// than lexed from a file.
func (t Token) Synthetic() bool {
	return t.origin != nil
}

// Len returns the length of this token in bytes.
func (t Token) Len() int {
	if t.origin != nil {
		return len(t.text)
	}
	return t.EndOffset - t.StartOffset
}

// Is reports whether the token is a punctuation or hash token with the
// given literal text.
func (t Token) Is(text string) bool {
	switch t.Kind {
	case TokPunct, TokHash, TokConcat:
		return t.Text() == text
	default:
		return false
	}
}

// IsSpacing reports whether the token is whitespace, a newline, a line
// continuation, or a comment. Spacing tokens separate macro tokens but never
// participate in expansion.
func (t Token) IsSpacing() bool {
	switch t.Kind {
	case TokWhitespace, TokNewline, TokEscapedNewline, TokLineComment, TokBlockComment:
		return true
	default:
		return false
	}
}
