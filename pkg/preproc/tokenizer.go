// Package preproc implements the macro preprocessor: a single-pass
// tokenizer, the macro table, the conditional-compilation state machine, and
// the rescanning expansion engine. It consumes files resolved by the
// workspace and emits a macro-free, directive-free token stream with full
// location chains and diagnostics.
package preproc

import (
	"github.com/armakit/armakit/pkg/source"
)

// tokenizer performs a single-pass tokenization of one file version.
// It produces a contiguous token stream covering [0, len(content)) plus a
// trailing EOF token.
type tokenizer struct {
	file    *source.File
	content []byte
	tokens  []source.Token
	pos     int
	// last significant token, used to decide whether a sign introduces a
	// numeric literal.
	prev     source.TokenKind
	prevText string
}

// Tokenize lexes a file snapshot. One pass per file version; tokens
// reference the file content by span and must not outlive the file.
func Tokenize(file *source.File) []source.Token {
	const initialCapacityDivisor = 3 // short tokens dominate this dialect
	tok := &tokenizer{
		file:    file,
		content: file.Content,
		tokens:  make([]source.Token, 0, len(file.Content)/initialCapacityDivisor+1),
		prev:    source.TokEOF,
	}

	tok.tokenize()
	tok.emit(source.TokEOF, tok.pos, tok.pos)

	return tok.tokens
}

// tokenize performs the main tokenization loop.
func (t *tokenizer) tokenize() {
	for t.pos < len(t.content) {
		ch := t.content[t.pos]

		switch {
		case ch == '\n' || ch == '\r':
			t.consumeNewline()
		case ch == ' ' || ch == '\t':
			t.consumeWhitespace()
		case ch == '\\' && t.atEscapedNewline():
			t.consumeEscapedNewline()
		case ch == '/' && t.peek(1) == '/':
			t.consumeLineComment()
		case ch == '/' && t.peek(1) == '*':
			t.consumeBlockComment()
		case ch == '#':
			t.consumeHash()
		case ch == '"' || ch == '\'':
			t.consumeString(ch)
		case isIdentStart(ch):
			t.consumeIdent()
		case isDigit(ch):
			t.consumeNumber()
		case (ch == '-' || ch == '+') && isDigit(t.peek(1)) && t.signStartsNumber():
			t.consumeNumber()
		default:
			t.emitSingle(source.TokPunct)
		}
	}
}

// consumeNewline consumes a newline (LF or CRLF).
func (t *tokenizer) consumeNewline() {
	start := t.pos
	if t.content[t.pos] == '\r' {
		t.pos++
		if t.pos < len(t.content) && t.content[t.pos] == '\n' {
			t.pos++
		}
	} else {
		t.pos++
	}
	t.emit(source.TokNewline, start, t.pos)
}

// consumeWhitespace consumes a run of spaces and tabs.
func (t *tokenizer) consumeWhitespace() {
	start := t.pos
	for t.pos < len(t.content) && (t.content[t.pos] == ' ' || t.content[t.pos] == '\t') {
		t.pos++
	}
	t.emit(source.TokWhitespace, start, t.pos)
}

// atEscapedNewline reports whether the current backslash begins a line
// continuation.
func (t *tokenizer) atEscapedNewline() bool {
	next := t.peek(1)
	return next == '\n' || next == '\r'
}

// consumeEscapedNewline consumes a backslash-newline continuation.
func (t *tokenizer) consumeEscapedNewline() {
	start := t.pos
	t.pos++ // consume '\'
	if t.pos < len(t.content) && t.content[t.pos] == '\r' {
		t.pos++
	}
	if t.pos < len(t.content) && t.content[t.pos] == '\n' {
		t.pos++
	}
	t.emit(source.TokEscapedNewline, start, t.pos)
}

// consumeLineComment consumes a // comment up to the newline.
func (t *tokenizer) consumeLineComment() {
	start := t.pos
	for t.pos < len(t.content) && t.content[t.pos] != '\n' && t.content[t.pos] != '\r' {
		t.pos++
	}
	t.emit(source.TokLineComment, start, t.pos)
}

// consumeBlockComment consumes a /* */ comment, which may span lines.
// An unterminated comment runs to end of file.
func (t *tokenizer) consumeBlockComment() {
	start := t.pos
	t.pos += 2 // consume '/*'
	for t.pos < len(t.content) {
		if t.content[t.pos] == '*' && t.peek(1) == '/' {
			t.pos += 2
			break
		}
		t.pos++
	}
	t.emit(source.TokBlockComment, start, t.pos)
}

// consumeHash emits the directive/stringize hash or the concatenation
// operator.
func (t *tokenizer) consumeHash() {
	start := t.pos
	t.pos++
	if t.pos < len(t.content) && t.content[t.pos] == '#' {
		t.pos++
		t.emit(source.TokConcat, start, t.pos)
		return
	}
	t.emit(source.TokHash, start, t.pos)
}

// consumeString consumes a quoted string. A doubled quote of the same kind
// is an escaped literal quote, not a terminator. An unterminated string
// runs to the end of the line.
func (t *tokenizer) consumeString(quote byte) {
	start := t.pos
	t.pos++ // opening quote

	for t.pos < len(t.content) {
		ch := t.content[t.pos]
		if ch == '\n' || ch == '\r' {
			break
		}
		if ch == quote {
			if t.peek(1) == quote {
				t.pos += 2 // escaped quote
				continue
			}
			t.pos++ // closing quote
			break
		}
		t.pos++
	}

	t.emit(source.TokString, start, t.pos)
}

// consumeIdent consumes an identifier (letter or underscore start).
func (t *tokenizer) consumeIdent() {
	start := t.pos
	for t.pos < len(t.content) && isIdentPart(t.content[t.pos]) {
		t.pos++
	}
	t.emit(source.TokIdent, start, t.pos)
}

// consumeNumber consumes a numeric literal: decimal with optional sign and
// fraction, or 0x hex. No semantic range checking.
func (t *tokenizer) consumeNumber() {
	start := t.pos

	if t.content[t.pos] == '-' || t.content[t.pos] == '+' {
		t.pos++
	}

	if t.content[t.pos] == '0' && (t.peek(1) == 'x' || t.peek(1) == 'X') {
		t.pos += 2
		for t.pos < len(t.content) && isHexDigit(t.content[t.pos]) {
			t.pos++
		}
		t.emit(source.TokNumber, start, t.pos)
		return
	}

	for t.pos < len(t.content) && isDigit(t.content[t.pos]) {
		t.pos++
	}
	if t.pos < len(t.content) && t.content[t.pos] == '.' && isDigit(t.peek(1)) {
		t.pos++
		for t.pos < len(t.content) && isDigit(t.content[t.pos]) {
			t.pos++
		}
	}
	t.emit(source.TokNumber, start, t.pos)
}

// signStartsNumber reports whether a sign character at the current position
// starts a literal rather than acting as an operator, judged by the
// preceding significant token.
func (t *tokenizer) signStartsNumber() bool {
	switch t.prev {
	case source.TokIdent, source.TokNumber, source.TokString:
		return false
	case source.TokPunct:
		// After a closing bracket the sign is an operator.
		return t.prevText != ")" && t.prevText != "]" && t.prevText != "}"
	default:
		return true
	}
}

// emit adds a token to the token list.
func (t *tokenizer) emit(kind source.TokenKind, start, end int) {
	t.tokens = append(t.tokens, source.Token{
		Kind:        kind,
		File:        t.file,
		StartOffset: start,
		EndOffset:   end,
	})

	switch kind {
	case source.TokWhitespace, source.TokNewline, source.TokEscapedNewline,
		source.TokLineComment, source.TokBlockComment:
	default:
		t.prev = kind
		t.prevText = string(t.content[start:end])
	}
}

// emitSingle emits a single-character token and advances position.
func (t *tokenizer) emitSingle(kind source.TokenKind) {
	t.emit(kind, t.pos, t.pos+1)
	t.pos++
}

// peek returns the byte at the given lookahead distance, or 0 past the end.
func (t *tokenizer) peek(ahead int) byte {
	if t.pos+ahead >= len(t.content) {
		return 0
	}
	return t.content[t.pos+ahead]
}

// lexText tokenizes detached text, used for predefine bodies and for
// re-lexing the result of the concatenation operator.
func lexText(name, text string) []source.Token {
	return Tokenize(source.NewFile(name, "", 0, []byte(text)))
}

// isIdentStart returns true for an identifier start byte.
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isIdentPart returns true for an identifier continuation byte.
func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// isDigit returns true if the byte is an ASCII digit.
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isHexDigit returns true for a hexadecimal digit.
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
