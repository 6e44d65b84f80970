package tool

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CalculatorTool evaluates arithmetic expressions with a restricted
// shunting-yard parser. Only numbers, + - * / % ^ and parentheses are
// accepted; anything else is rejected before evaluation.
type CalculatorTool struct{}

func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

func (t *CalculatorTool) Name() string { return "basic_calculator" }
func (t *CalculatorTool) Description() string {
	return "Evaluate an arithmetic expression: numbers, + - * / % ^ and parentheses."
}
func (t *CalculatorTool) Example() string {
	return `["basic_calculator", ["2 * (3 + 4)"]]`
}

func (t *CalculatorTool) Execute(ctx context.Context, args []any) (string, error) {
	expr, err := FirstString(args)
	if err != nil {
		return "", fmt.Errorf("basic_calculator: %w", err)
	}

	result, err := evaluate(expr)
	if err != nil {
		return "", fmt.Errorf("basic_calculator: %w", err)
	}

	return fmt.Sprintf("%s = %s", expr, strconv.FormatFloat(result, 'f', -1, 64)), nil
}

type calcToken struct {
	num   float64
	op    byte // 0 for numbers
	isNum bool
}

// opNeg marks unary minus, which binds like ^ and takes one operand.
const opNeg byte = 'n'

func evaluate(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	rpn, err := toRPN(tokens)
	if err != nil {
		return 0, err
	}
	return evalRPN(rpn)
}

func tokenize(expr string) ([]calcToken, error) {
	var tokens []calcToken
	i := 0
	for i < len(expr) {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			j := i
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(expr[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", expr[i:j])
			}
			tokens = append(tokens, calcToken{num: n, isNum: true})
			i = j
		case strings.IndexByte("+-*/%^()", ch) >= 0:
			op := ch
			// Minus with no left operand negates the value that follows.
			if ch == '-' && (len(tokens) == 0 || (!tokens[len(tokens)-1].isNum && tokens[len(tokens)-1].op != ')')) {
				op = opNeg
			}
			tokens = append(tokens, calcToken{op: op})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q in expression", string(ch))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/', '%':
		return 2
	case '^', opNeg:
		return 3
	}
	return 0
}

func rightAssoc(op byte) bool {
	return op == '^' || op == opNeg
}

func toRPN(tokens []calcToken) ([]calcToken, error) {
	var output, stack []calcToken
	for _, tok := range tokens {
		switch {
		case tok.isNum:
			output = append(output, tok)
		case tok.op == '(':
			stack = append(stack, tok)
		case tok.op == ')':
			for len(stack) > 0 && stack[len(stack)-1].op != '(' {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("mismatched parentheses")
			}
			stack = stack[:len(stack)-1]
		default:
			for len(stack) > 0 && stack[len(stack)-1].op != '(' &&
				(precedence(stack[len(stack)-1].op) > precedence(tok.op) ||
					precedence(stack[len(stack)-1].op) == precedence(tok.op) && !rightAssoc(tok.op)) {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}
	for len(stack) > 0 {
		if stack[len(stack)-1].op == '(' {
			return nil, fmt.Errorf("mismatched parentheses")
		}
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return output, nil
}

func evalRPN(rpn []calcToken) (float64, error) {
	var stack []float64
	for _, tok := range rpn {
		if tok.isNum {
			stack = append(stack, tok.num)
			continue
		}
		if tok.op == opNeg {
			if len(stack) == 0 {
				return 0, fmt.Errorf("malformed expression")
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
			continue
		}
		if len(stack) < 2 {
			return 0, fmt.Errorf("malformed expression")
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		var v float64
		switch tok.op {
		case '+':
			v = a + b
		case '-':
			v = a - b
		case '*':
			v = a * b
		case '/':
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v = a / b
		case '%':
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v = math.Mod(a, b)
		case '^':
			v = math.Pow(a, b)
		default:
			return 0, fmt.Errorf("unknown operator %q", string(tok.op))
		}
		stack = append(stack, v)
	}
	if len(stack) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}
	return stack[0], nil
}
