package ember

import (
	"math"
	"testing"
)

func TestParsePathBasics(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want float64
	}{
		{"x", 5, 5},
		{"42", 0, 42},
		{"3.5", 1, 3.5},
		{"x + 1", 2, 3},
		{"x - 10", 4, -6},
		{"2 * x", 6, 12},
		{"x / 4", 10, 2.5},
		{"x % 3", 7, 1},
		{"x ^ 2", 3, 9},
		{"-x", 5, -5},
		{"(x + 1) * 2", 2, 6},
		{"pi", 0, math.Pi},
		{"e", 0, math.E},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			fn, err := ParsePath(tc.expr)
			if err != nil {
				t.Fatal(err)
			}
			assertNear(t, tc.expr, fn(tc.x), tc.want)
		})
	}
}

func TestParsePathPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want float64
	}{
		{"1 + 2 * 3", 0, 7},
		{"2 * 3 + 1", 0, 7},
		{"2 ^ 3 * 2", 0, 16},
		{"-2 ^ 2", 0, -4},       // unary binds looser than ^
		{"2 ^ -1", 0, 0.5},      // unary allowed in the exponent
		{"2 ^ 3 ^ 2", 0, 512},   // right associative
		{"10 - 4 - 3", 0, 3},    // left associative
		{"100 / 10 / 2", 0, 5},  // left associative
		{"1 + x * x - 2", 3, 8}, // mixed
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			fn, err := ParsePath(tc.expr)
			if err != nil {
				t.Fatal(err)
			}
			assertNear(t, tc.expr, fn(tc.x), tc.want)
		})
	}
}

func TestParsePathFunctions(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want float64
	}{
		{"sin(x)", math.Pi / 2, 1},
		{"cos(x)", 0, 1},
		{"sqrt(x)", 16, 4},
		{"abs(x)", -3, 3},
		{"floor(x)", 2.9, 2},
		{"ceil(x)", 2.1, 3},
		{"round(x)", 2.5, 3},
		{"sign(x)", -7, -1},
		{"sign(x)", 0, 0},
		{"exp(x)", 0, 1},
		{"log(x)", math.E, 1},
		{"pow(x, 3)", 2, 8},
		{"min(x, 5)", 9, 5},
		{"max(x, 5)", 9, 9},
		{"atan2(x, x)", 1, math.Pi / 4},
		{"mod(x, 4)", 10, 2},
		{"sin(x / 20) * 10", 10 * math.Pi, 10},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			fn, err := ParsePath(tc.expr)
			if err != nil {
				t.Fatal(err)
			}
			assertNear(t, tc.expr, fn(tc.x), tc.want)
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	exprs := []string{
		"",
		"x +",
		"(x",
		"x)",
		"sin()",
		"sin(x, 1)",
		"pow(x)",
		"unknownfunc(x)",
		"y",
		"1..2",
		"x $ 2",
		"x 2",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			if _, err := ParsePath(expr); err == nil {
				t.Errorf("ParsePath(%q) succeeded, want error", expr)
			}
		})
	}
}

func TestParsePathWhitespace(t *testing.T) {
	fn, err := ParsePath("  sin( x )\t* 2 ")
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "whitespace", fn(math.Pi/2), 2)
}
