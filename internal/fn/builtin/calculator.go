// Package builtin provides the demo functions wired into the CLI.
// They exercise the full parameter surface: enum constraints, numeric
// and boolean types, and plain described strings.
package builtin

import (
	"context"
	"fmt"
	"strconv"

	"parley/internal/fn"
)

// Calculator performs basic arithmetic on two numbers.
func Calculator() *fn.Function {
	return fn.New("calculate", "Perform a basic arithmetic operation on two numbers").
		AddEnumParam("op", fn.TypeString, []any{"add", "sub", "mul", "div"}, true).
		AddParam("a", fn.TypeNumber, "Left operand", true).
		AddParam("b", fn.TypeNumber, "Right operand", true).
		Bind(func(ctx context.Context, args fn.Args) (string, error) {
			a := args.Float("a")
			b := args.Float("b")

			var result float64
			switch op := args.String("op"); op {
			case "add":
				result = a + b
			case "sub":
				result = a - b
			case "mul":
				result = a * b
			case "div":
				if b == 0 {
					return "", fmt.Errorf("division by zero")
				}
				result = a / b
			default:
				return "", fmt.Errorf("unknown operation %q", op)
			}

			return strconv.FormatFloat(result, 'f', -1, 64), nil
		})
}
