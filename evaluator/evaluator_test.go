package evaluator

import (
	"testing"

	"github.com/sri-lang/sri/lexer"
	"github.com/sri-lang/sri/object"
	"github.com/sri-lang/sri/parser"
)

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	env := object.NewEnvironment()
	env.SetSelf(object.ObjectClass)
	return Eval(program, env)
}

func TestRationalArithmetic(t *testing.T) {
	tests := []struct {
		input       string
		expectedNum int64
		expectedDen int64
	}{
		{"1r + 1r", 2, 1},
		{"3.5r - 1r", 5, 2},
		{"(1r/3) + (1r/6)", 1, 2},
	}

	for _, tt := range tests {
		result := testEval(t, tt.input)
		rat, ok := result.(*object.Rational)
		if !ok {
			t.Fatalf("%q: expected *object.Rational, got %T (%v)", tt.input, result, result)
		}
		if rat.Num != tt.expectedNum || rat.Den != tt.expectedDen {
			t.Errorf("%q: expected %d/%d, got %d/%d", tt.input, tt.expectedNum, tt.expectedDen, rat.Num, rat.Den)
		}
	}
}

func TestRationalEqualityReducesFirst(t *testing.T) {
	result := testEval(t, "(2r/4) == (1r/2)")
	b, ok := result.(*object.Boolean)
	if !ok {
		t.Fatalf("expected *object.Boolean, got %T", result)
	}
	if !b.Value {
		t.Errorf("expected 2/4 == 1/2 to be true after reduction")
	}
}

func TestComplexArithmetic(t *testing.T) {
	result := testEval(t, "2i + 3i")
	c, ok := result.(*object.Complex)
	if !ok {
		t.Fatalf("expected *object.Complex, got %T", result)
	}
	if c.Im != 5.0 {
		t.Errorf("expected imaginary part 5.0, got %f", c.Im)
	}
}

func TestIntegerClassMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"Integer.max(3, 7)", 7},
		{"Integer.max(7, 3)", 7},
		{"Integer.sqrt(16)", 4},
		{"Integer.sqrt(15)", 3},
	}

	for _, tt := range tests {
		result := testEval(t, tt.input)
		i, ok := result.(*object.Integer)
		if !ok {
			t.Fatalf("%q: expected *object.Integer, got %T (%v)", tt.input, result, result)
		}
		if i.Value != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, i.Value)
		}
	}
}

func TestShouldEqMatcherPasses(t *testing.T) {
	result := testEval(t, "(1 + 1).should(eq(2))")
	if err, ok := result.(*object.Error); ok {
		t.Fatalf("expected matcher to pass, got error: %s", err.Message)
	}
}

func TestShouldEqMatcherFails(t *testing.T) {
	result := testEval(t, "(1 + 1).should(eq(3))")
	err, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected failed matcher to produce an error, got %T (%v)", result, result)
	}
	if err.Class() != object.StandardErrorClass {
		t.Errorf("expected a StandardError-class failure, got %s", err.Class().Name)
	}
}

func TestKernelEvalIsolatedScope(t *testing.T) {
	result := testEval(t, `x = 10
eval("x = 20")
x`)
	i, ok := result.(*object.Integer)
	if !ok {
		t.Fatalf("expected *object.Integer, got %T", result)
	}
	if i.Value != 10 {
		t.Errorf("expected eval's assignment to stay isolated, outer x changed to %d", i.Value)
	}
}

func TestPutsFormatting(t *testing.T) {
	// puts on nil, arrays, and ranges unwraps recursively; this exercises
	// putsValue without asserting on captured stdout since puts writes
	// directly to os.Stdout.
	result := testEval(t, "puts [1, 2, [3, 4]]")
	if _, ok := result.(*object.Error); ok {
		t.Fatalf("expected puts on a nested array to succeed, got %v", result)
	}
}

func TestInspectFormatting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`[1, :a, "b"].inspect`, `[1 :a "b"]`},
		{`{a: 1, b: 2}.inspect`, `{:a=>1, :b=>2}`},
	}

	for _, tt := range tests {
		result := testEval(t, tt.input)
		s, ok := result.(*object.String)
		if !ok {
			t.Fatalf("%q: expected *object.String, got %T", tt.input, result)
		}
		if s.Value != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, s.Value)
		}
	}
}
