package preproc

import (
	"fmt"
	"strconv"

	"github.com/armakit/armakit/pkg/source"
)

// evalCondition evaluates a #if condition to a boolean. The grammar covers
// integer literals, defined(NAME), logical negation, the six comparison
// operators, && binding tighter than ||, and parentheses. Identifiers that
// name object-like macros with a single numeric body resolve to that
// number; any other identifier evaluates to zero.
func evalCondition(tokens []source.Token, table *Table) (bool, error) {
	p := &condParser{tokens: significant(tokens), table: table}
	v, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if !p.atEnd() {
		return false, fmt.Errorf("unexpected %q", p.peek().Text())
	}
	return v != 0, nil
}

type condParser struct {
	tokens []source.Token
	pos    int
	table  *Table
}

func (p *condParser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *condParser) peek() source.Token {
	return p.tokens[p.pos]
}

func (p *condParser) accept(text string) bool {
	if !p.atEnd() && p.peek().Is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *condParser) parseOr() (int64, error) {
	left, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for p.acceptDouble("|") {
		right, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		left = boolVal(left != 0 || right != 0)
	}
	return left, nil
}

func (p *condParser) parseAnd() (int64, error) {
	left, err := p.parseCmp()
	if err != nil {
		return 0, err
	}
	for p.acceptDouble("&") {
		right, err := p.parseCmp()
		if err != nil {
			return 0, err
		}
		left = boolVal(left != 0 && right != 0)
	}
	return left, nil
}

// acceptDouble consumes a doubled punctuation operator such as && or ||,
// which the tokenizer emits as two adjacent single-character tokens.
func (p *condParser) acceptDouble(ch string) bool {
	if p.pos+1 < len(p.tokens) && p.tokens[p.pos].Is(ch) && p.tokens[p.pos+1].Is(ch) {
		p.pos += 2
		return true
	}
	return false
}

func (p *condParser) parseCmp() (int64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.compareOp()
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "==":
			left = boolVal(left == right)
		case "!=":
			left = boolVal(left != right)
		case "<":
			left = boolVal(left < right)
		case "<=":
			left = boolVal(left <= right)
		case ">":
			left = boolVal(left > right)
		case ">=":
			left = boolVal(left >= right)
		}
	}
}

// compareOp consumes a comparison operator, pairing the '=' suffix emitted
// as a separate token.
func (p *condParser) compareOp() (string, bool) {
	if p.atEnd() {
		return "", false
	}
	eqFollows := p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Is("=")
	switch {
	case p.peek().Is("=") && eqFollows:
		p.pos += 2
		return "==", true
	case p.peek().Is("!") && eqFollows:
		p.pos += 2
		return "!=", true
	case p.peek().Is("<"):
		p.pos++
		if p.accept("=") {
			return "<=", true
		}
		return "<", true
	case p.peek().Is(">"):
		p.pos++
		if p.accept("=") {
			return ">=", true
		}
		return ">", true
	}
	return "", false
}

func (p *condParser) parseUnary() (int64, error) {
	if p.accept("!") {
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return boolVal(v == 0), nil
	}
	return p.parseTerm()
}

func (p *condParser) parseTerm() (int64, error) {
	if p.atEnd() {
		return 0, fmt.Errorf("condition ends unexpectedly")
	}
	tok := p.peek()

	switch {
	case tok.Is("("):
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return 0, err
		}
		if !p.accept(")") {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil

	case tok.Kind == source.TokNumber:
		p.pos++
		return parseNumber(tok.Text())

	case tok.Kind == source.TokIdent && tok.Text() == "defined":
		p.pos++
		return p.parseDefined()

	case tok.Kind == source.TokIdent:
		p.pos++
		return p.resolveIdent(tok.Text()), nil
	}

	return 0, fmt.Errorf("unexpected %q", tok.Text())
}

// parseDefined handles both defined(NAME) and defined NAME.
func (p *condParser) parseDefined() (int64, error) {
	paren := p.accept("(")
	if p.atEnd() || p.peek().Kind != source.TokIdent {
		return 0, fmt.Errorf("defined requires a macro name")
	}
	name := p.peek().Text()
	p.pos++
	if paren && !p.accept(")") {
		return 0, fmt.Errorf("missing closing parenthesis after defined(%s", name)
	}
	return boolVal(p.table.IsDefined(name)), nil
}

// resolveIdent maps an identifier to a value: object-like macros whose body
// is a single numeric token resolve to that number, everything else is 0.
func (p *condParser) resolveIdent(name string) int64 {
	def, ok := p.table.Lookup(name)
	if !ok || def.Function || def.builtin {
		return 0
	}
	body := significant(def.Body)
	if len(body) != 1 || body[0].Kind != source.TokNumber {
		return 0
	}
	v, err := parseNumber(body[0].Text())
	if err != nil {
		return 0
	}
	return v
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func parseNumber(text string) (int64, error) {
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		// Fractional literals truncate toward zero.
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid number %q", text)
		}
		return int64(f), nil
	}
	return v, nil
}
