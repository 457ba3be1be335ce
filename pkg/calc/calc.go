// Package calc is a small arithmetic expression evaluator used by the
// register UI: + - * / with the usual precedence and parentheses.
package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrUnexpectedEnd   = errors.New("unexpected end of expression")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrEmptyExpression = errors.New("empty expression")
)

type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenOp               // + - * /
	TokenLParen
	TokenRParen
)

type Token struct {
	Kind   TokenKind
	Number float64 // set when Kind == TokenNumber
	Op     byte    // set when Kind == TokenOp
}

// Tokenize splits an expression into a flat token slice. Whitespace is
// ignored; anything else that is not a digit, dot, operator or parenthesis is
// an error.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen})
			i++
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, Token{Kind: TokenOp, Op: c})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(input) && (input[j] >= '0' && input[j] <= '9' || input[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(input[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", input[i:j])
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Number: n})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return tokens, nil
}

// Node is one vertex of the binary expression tree.
type Node struct {
	Op          byte // 0 for leaves
	Value       float64
	Left, Right *Node
}

// Eval reduces the tree bottom-up.
func (n *Node) Eval() (float64, error) {
	if n.Op == 0 {
		return n.Value, nil
	}
	l, err := n.Left.Eval()
	if err != nil {
		return 0, err
	}
	r, err := n.Right.Eval()
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %q", n.Op)
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (*Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOp || (tok.Op != '+' && tok.Op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Node{Op: tok.Op, Left: left, Right: right}
	}
}

// term := factor (('*'|'/') factor)*
func (p *parser) parseTerm() (*Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOp || (tok.Op != '*' && tok.Op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Node{Op: tok.Op, Left: left, Right: right}
	}
}

// factor := number | '(' expr ')'
func (p *parser) parseFactor() (*Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, ErrUnexpectedEnd
	}
	switch tok.Kind {
	case TokenNumber:
		p.pos++
		return &Node{Value: tok.Number}, nil
	case TokenLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.Kind != TokenRParen {
			return nil, errors.New("unbalanced parentheses")
		}
		p.pos++
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected token at position %d", p.pos)
	}
}

// Parse builds the expression tree from a pre-tokenized slice.
func Parse(tokens []Token) (*Node, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(tokens) {
		return nil, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	return root, nil
}

// Eval tokenizes, parses and evaluates in one call.
func Eval(input string) (float64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, ErrEmptyExpression
	}
	tokens, err := Tokenize(input)
	if err != nil {
		return 0, err
	}
	root, err := Parse(tokens)
	if err != nil {
		return 0, err
	}
	return root.Eval()
}
