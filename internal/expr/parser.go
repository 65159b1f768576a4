package expr

import "fmt"

// Parse parses a formula. Malformed input yields a *ParseError.
func Parse(input string) (Expr, error) {
	tokens, err := lex(input)
	if err != nil {
		return Expr{}, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr(0)
	if err != nil {
		return Expr{}, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return Expr{}, &ParseError{
			Code:    ErrCodeTrailingInput,
			Pos:     tok.pos,
			Message: fmt.Sprintf("unexpected %s after complete expression", describe(tok)),
		}
	}
	return Expr{root: root}, nil
}

// MustParse is like Parse but panics on error.
// Use only for formulas known to be valid, such as literals in code.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(fmt.Sprintf("expr.MustParse(%q): %v", input, err))
	}
	return e
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// parseExpr is a Pratt loop: it keeps folding infix operators whose left
// binding power is at least minBP.
func (p *parser) parseExpr(minBP int) (node, error) {
	lhs, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := infixOp(p.peek().kind)
		if !ok {
			return lhs, nil
		}
		lbp, rbp := op.bindingPower()
		if lbp < minBP {
			return lhs, nil
		}
		p.next()
		rhs, err := p.parseExpr(rbp)
		if err != nil {
			return nil, err
		}
		lhs = binaryNode{op: op, left: lhs, right: rhs}
	}
}

func (p *parser) parsePrefix() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNum:
		return numNode{v: tok.num}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		return varNode{name: tok.text}, nil
	case tokMinus:
		inner, err := p.parseExpr(negBP)
		if err != nil {
			return nil, err
		}
		return negNode{inner: inner}, nil
	case tokLParen:
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokEOF:
		return nil, &ParseError{Code: ErrCodeUnexpectedEOF, Pos: tok.pos, Message: "expected an expression"}
	default:
		return nil, &ParseError{
			Code:    ErrCodeUnexpectedToken,
			Pos:     tok.pos,
			Message: fmt.Sprintf("expected an expression, found %s", describe(tok)),
		}
	}
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := LookupFunc(name.text)
	if !ok {
		return nil, &ParseError{
			Code:    ErrCodeUnknownFunction,
			Pos:     name.pos,
			Message: fmt.Sprintf("unknown function %q", name.text),
		}
	}
	p.next() // (
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return callNode{fn: fn, args: args}, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return callNode{fn: fn, args: args}, nil
		case tokEOF:
			return nil, &ParseError{Code: ErrCodeUnexpectedEOF, Pos: tok.pos, Message: "unclosed argument list"}
		default:
			return nil, &ParseError{
				Code:    ErrCodeUnexpectedToken,
				Pos:     tok.pos,
				Message: fmt.Sprintf("expected ',' or ')', found %s", describe(tok)),
			}
		}
	}
}

func (p *parser) expect(kind tokenKind) error {
	tok := p.next()
	if tok.kind == kind {
		return nil
	}
	if tok.kind == tokEOF {
		return &ParseError{Code: ErrCodeUnexpectedEOF, Pos: tok.pos, Message: fmt.Sprintf("expected %s", kind)}
	}
	return &ParseError{
		Code:    ErrCodeUnexpectedToken,
		Pos:     tok.pos,
		Message: fmt.Sprintf("expected %s, found %s", kind, describe(tok)),
	}
}

func infixOp(kind tokenKind) (BinaryOp, bool) {
	switch kind {
	case tokPlus:
		return OpAdd, true
	case tokMinus:
		return OpSub, true
	case tokStar:
		return OpMul, true
	case tokSlash:
		return OpDiv, true
	case tokCaret:
		return OpPow, true
	}
	return 0, false
}

func describe(tok token) string {
	if tok.kind == tokNum || tok.kind == tokIdent {
		return fmt.Sprintf("%s %q", tok.kind, tok.text)
	}
	return tok.kind.String()
}
