package lang

import (
	"strconv"
	"strings"

	"github.com/ordo-run/ordo/internal/value"
)

// Parser turns a token stream into an Expr, using one-token lookahead the
// way a hand-written recursive-descent parser typically does: advance/peek over a Lexer.
type Parser struct {
	lexer   *Lexer
	current Token
	peeked  *Token
	err     *Diagnostic
}

// Parse parses a single expression from text. On success it returns the
// root Expr with a nil Diagnostic; on failure it returns nil and the first
// Diagnostic encountered.
func Parse(input string) (Expr, *Diagnostic) {
	p := &Parser{lexer: NewLexer(input)}
	p.advance()
	if p.err != nil {
		return nil, p.err
	}
	e := p.parseOr()
	if p.err != nil {
		return nil, p.err
	}
	if p.current.Type != TokenEOF {
		return nil, &Diagnostic{
			Line: p.current.Line, Column: p.current.Column,
			Kind: KindUnexpectedToken, Message: "unexpected trailing token " + p.current.String(),
		}
	}
	return e, nil
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	if p.peeked != nil {
		p.current = *p.peeked
		p.peeked = nil
		return
	}
	tok, diag := p.lexer.NextToken()
	if diag != nil {
		p.err = diag
		return
	}
	p.current = tok
}

func (p *Parser) peek() Token {
	if p.peeked != nil {
		return *p.peeked
	}
	tok, diag := p.lexer.NextToken()
	if diag != nil {
		p.err = diag
		return Token{Type: TokenEOF}
	}
	p.peeked = &tok
	return tok
}

func (p *Parser) fail(kind, msg string) {
	if p.err == nil {
		p.err = &Diagnostic{Line: p.current.Line, Column: p.current.Column, Kind: kind, Message: msg}
	}
}

func (p *Parser) isIdent(text string) bool {
	return p.current.Type == TokenIdent && p.current.Value == text
}

// parseOr handles the lowest-precedence level: `or` / `||`.
func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.err == nil {
		if p.current.Type == TokenOrOr || p.isIdent("or") {
			p.advance()
			right := p.parseAnd()
			left = BinaryOp{Op: OpOr, LHS: left, RHS: right}
			continue
		}
		break
	}
	return left
}

// parseAnd handles `and` / `&&`.
func (p *Parser) parseAnd() Expr {
	left := p.parseEquality()
	for p.err == nil {
		if p.current.Type == TokenAndAnd || p.isIdent("and") {
			p.advance()
			right := p.parseEquality()
			left = BinaryOp{Op: OpAnd, LHS: left, RHS: right}
			continue
		}
		break
	}
	return left
}

// parseEquality handles `==` / `!=`.
func (p *Parser) parseEquality() Expr {
	left := p.parseComparison()
	for p.err == nil {
		switch p.current.Type {
		case TokenEq:
			p.advance()
			left = BinaryOp{Op: OpEq, LHS: left, RHS: p.parseComparison()}
		case TokenNeq:
			p.advance()
			left = BinaryOp{Op: OpNeq, LHS: left, RHS: p.parseComparison()}
		default:
			return left
		}
	}
	return left
}

// parseComparison handles `<,<=,>,>=` and the keyword infix operators
// `in`, `contains`, `startsWith`, `endsWith`.
func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	for p.err == nil {
		switch {
		case p.current.Type == TokenLt:
			p.advance()
			left = BinaryOp{Op: OpLt, LHS: left, RHS: p.parseAdditive()}
		case p.current.Type == TokenLte:
			p.advance()
			left = BinaryOp{Op: OpLte, LHS: left, RHS: p.parseAdditive()}
		case p.current.Type == TokenGt:
			p.advance()
			left = BinaryOp{Op: OpGt, LHS: left, RHS: p.parseAdditive()}
		case p.current.Type == TokenGte:
			p.advance()
			left = BinaryOp{Op: OpGte, LHS: left, RHS: p.parseAdditive()}
		case p.isIdent("in"):
			p.advance()
			left = BinaryOp{Op: OpIn, LHS: left, RHS: p.parseAdditive()}
		case p.isIdent("contains"):
			p.advance()
			left = BinaryOp{Op: OpContains, LHS: left, RHS: p.parseAdditive()}
		case p.isIdent("startsWith"):
			p.advance()
			left = BinaryOp{Op: OpStartsWith, LHS: left, RHS: p.parseAdditive()}
		case p.isIdent("endsWith"):
			p.advance()
			left = BinaryOp{Op: OpEndsWith, LHS: left, RHS: p.parseAdditive()}
		default:
			return left
		}
	}
	return left
}

// parseAdditive handles `+` / `-`.
func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.err == nil {
		switch p.current.Type {
		case TokenPlus:
			p.advance()
			left = BinaryOp{Op: OpAdd, LHS: left, RHS: p.parseMultiplicative()}
		case TokenMinus:
			p.advance()
			left = BinaryOp{Op: OpSub, LHS: left, RHS: p.parseMultiplicative()}
		default:
			return left
		}
	}
	return left
}

// parseMultiplicative handles `*,/,%`.
func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.err == nil {
		switch p.current.Type {
		case TokenStar:
			p.advance()
			left = BinaryOp{Op: OpMul, LHS: left, RHS: p.parseUnary()}
		case TokenSlash:
			p.advance()
			left = BinaryOp{Op: OpDiv, LHS: left, RHS: p.parseUnary()}
		case TokenPercent:
			p.advance()
			left = BinaryOp{Op: OpMod, LHS: left, RHS: p.parseUnary()}
		default:
			return left
		}
	}
	return left
}

// parseUnary handles prefix `!` / `not` / `-`.
func (p *Parser) parseUnary() Expr {
	if p.current.Type == TokenBang || p.isIdent("not") {
		p.advance()
		return UnaryOp{Op: OpNot, Child: p.parseUnary()}
	}
	if p.current.Type == TokenMinus {
		p.advance()
		return UnaryOp{Op: OpNeg, Child: p.parseUnary()}
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, variable paths, calls, parenthesised
// expressions, and `if … then … else …`.
func (p *Parser) parsePrimary() Expr {
	if p.err != nil {
		return nil
	}

	switch p.current.Type {
	case TokenNumber:
		text := p.current.Value
		p.advance()
		if strings.Contains(text, ".") {
			f, _ := strconv.ParseFloat(text, 64)
			return Literal{Value: value.Float(f)}
		}
		i, _ := strconv.ParseInt(text, 10, 64)
		return Literal{Value: value.Int(i)}

	case TokenString:
		s := p.current.Value
		p.advance()
		return Literal{Value: value.String(s)}

	case TokenLParen:
		p.advance()
		inner := p.parseOr()
		if p.err != nil {
			return nil
		}
		if p.current.Type != TokenRParen {
			p.fail(KindUnbalancedParen, "expected ')'")
			return nil
		}
		p.advance()
		return inner

	case TokenRoot:
		return p.parseVariable()

	case TokenIdent:
		return p.parseIdentExpr()
	}

	p.fail(KindUnexpectedToken, "unexpected token "+p.current.String())
	return nil
}

func (p *Parser) parseVariable() Expr {
	p.advance() // consume '$'
	var segments []PathSegment
	for p.err == nil {
		switch p.current.Type {
		case TokenDot:
			p.advance()
			if p.current.Type != TokenIdent {
				p.fail(KindInvalidVariable, "expected field name after '.'")
				return nil
			}
			segments = append(segments, PathSegment{Field: p.current.Value})
			p.advance()
		case TokenLBracket:
			p.advance()
			idx := p.parseOr()
			if p.err != nil {
				return nil
			}
			if p.current.Type != TokenRBracket {
				p.fail(KindUnbalancedBracket, "expected ']'")
				return nil
			}
			p.advance()
			segments = append(segments, PathSegment{Index: idx, IsIndex: true})
		default:
			if len(segments) == 0 {
				p.fail(KindInvalidVariable, "variable path must have at least one segment")
				return nil
			}
			return Variable{Segments: segments}
		}
	}
	return nil
}

func (p *Parser) parseIdentExpr() Expr {
	name := p.current.Value

	switch name {
	case "true":
		p.advance()
		return Literal{Value: value.Bool(true)}
	case "false":
		p.advance()
		return Literal{Value: value.Bool(false)}
	case "null":
		p.advance()
		return Literal{Value: value.Null()}
	case "if":
		return p.parseIf()
	case "then", "else", "and", "or", "not", "in", "contains", "startsWith", "endsWith":
		p.fail(KindUnexpectedToken, "unexpected keyword "+name)
		return nil
	}

	p.advance()
	if p.current.Type == TokenLParen {
		return p.parseCall(name)
	}
	// A bare identifier outside of a call or a $-prefixed path is not part
	// of the grammar.
	p.fail(KindUnexpectedToken, "unexpected identifier "+name)
	return nil
}

func (p *Parser) parseIf() Expr {
	p.advance() // consume 'if'
	cond := p.parseOr()
	if p.err != nil {
		return nil
	}
	if !p.isIdent("then") {
		p.fail(KindUnexpectedToken, "expected 'then'")
		return nil
	}
	p.advance()
	thenExpr := p.parseOr()
	if p.err != nil {
		return nil
	}
	if !p.isIdent("else") {
		p.fail(KindUnexpectedToken, "expected 'else'")
		return nil
	}
	p.advance()
	elseExpr := p.parseOr()
	if p.err != nil {
		return nil
	}
	return If{Cond: cond, Then: thenExpr, Else: elseExpr}
}

func (p *Parser) parseCall(name string) Expr {
	p.advance() // consume '('
	var args []Expr
	if p.current.Type != TokenRParen {
		for {
			arg := p.parseOr()
			if p.err != nil {
				return nil
			}
			args = append(args, arg)
			if p.current.Type == TokenComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.current.Type != TokenRParen {
		p.fail(KindUnbalancedParen, "expected ')' after call arguments")
		return nil
	}
	p.advance()

	if name == "coalesce" {
		return Coalesce{Args: args}
	}
	return Call{Name: name, Args: args}
}
