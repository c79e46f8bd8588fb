// Package repl implements a Read-Eval-Print Loop for Ruby.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sri-lang/sri/evaluator"
	"github.com/sri-lang/sri/lexer"
	"github.com/sri-lang/sri/object"
	"github.com/sri-lang/sri/parser"
)

const PROMPT = "irb> "

// Start starts the REPL.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	env := object.NewEnvironment()
	env.SetSelf(object.ObjectClass)

	fmt.Fprintln(out, "sri - a tree-walking Ruby subset interpreter")
	fmt.Fprintln(out, "Type 'exit' to quit")
	fmt.Fprintln(out)

	var multilineBuffer strings.Builder
	inMultiline := false

	for {
		if inMultiline {
			fmt.Fprint(out, "...  ")
		} else {
			fmt.Fprint(out, PROMPT)
		}

		scanned := scanner.Scan()
		if !scanned {
			return
		}

		line := scanner.Text()

		// Handle exit
		if strings.TrimSpace(line) == "exit" || strings.TrimSpace(line) == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		// Check for multiline input
		if inMultiline {
			multilineBuffer.WriteString("\n")
			multilineBuffer.WriteString(line)

			// Check if we should end multiline mode
			if isCompleteInput(multilineBuffer.String()) {
				line = multilineBuffer.String()
				multilineBuffer.Reset()
				inMultiline = false
			} else {
				continue
			}
		} else {
			if !isCompleteInput(line) {
				multilineBuffer.WriteString(line)
				inMultiline = true
				continue
			}
		}

		l := lexer.New(line)
		p := parser.New(l)

		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			printParserErrors(out, p.Errors())
			continue
		}

		evaluated := evaluator.Eval(program, env)
		if evaluated != nil {
			if evaluated.Type() != object.NIL_OBJ {
				fmt.Fprintln(out, "=> "+evaluated.Inspect())
			} else {
				fmt.Fprintln(out, "=> nil")
			}
		}
	}
}

func printParserErrors(out io.Writer, errors []string) {
	for _, msg := range errors {
		fmt.Fprintln(out, "SyntaxError: "+msg)
	}
}

// isCompleteInput checks if the input is a complete Ruby expression.
func isCompleteInput(input string) bool {
	// Count block delimiters
	openBlocks := 0
	openParens := 0
	openBrackets := 0
	openBraces := 0
	inString := false
	stringDelim := byte(0)

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			if ch == stringDelim && (i == 0 || input[i-1] != '\\') {
				inString = false
			}
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			stringDelim = ch
		case '(':
			openParens++
		case ')':
			openParens--
		case '[':
			openBrackets++
		case ']':
			openBrackets--
		case '{':
			openBraces++
		case '}':
			openBraces--
		}
	}

	// Check for block keywords
	words := strings.Fields(input)
	for _, word := range words {
		switch word {
		case "def", "class", "module", "if", "unless", "case", "while", "until", "for", "begin", "do":
			openBlocks++
		case "end":
			openBlocks--
		}
	}

	// Complete if all delimiters are balanced
	return openParens == 0 && openBrackets == 0 && openBraces == 0 && openBlocks <= 0 && !inString
}

// EvalString evaluates a Ruby program string and returns the result.
func EvalString(input string) (object.Object, error) {
	return EvalStringWithOptions(input, EvalOptions{})
}

// EvalOptions configures the isolated top-level scope used by
// EvalStringWithOptions and the Kernel#eval builtin.
type EvalOptions struct {
	// Namespaces seeds predefined bindings into the initial scope. A plain
	// name becomes a local variable; a name prefixed "class:" or "method:"
	// is reserved for seeding class/method lookups with the usual semantics.
	Namespaces map[string]object.Object

	// AllowMethods and DenyMethods are reserved for future use; the
	// interpreter does not yet enforce a callable allow/deny list.
	AllowMethods []string
	DenyMethods  []string
}

// EvalStringWithOptions evaluates source in a fresh top-level scope seeded
// from opts.Namespaces, returning the final expression's value.
func EvalStringWithOptions(input string, opts EvalOptions) (object.Object, error) {
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		return nil, fmt.Errorf("parse errors: %v", p.Errors())
	}

	env := object.NewEnvironment()
	env.SetSelf(object.ObjectClass)
	for name, val := range opts.Namespaces {
		env.Set(name, val)
	}

	result := evaluator.Eval(program, env)
	if err, ok := result.(*object.Error); ok {
		return nil, fmt.Errorf("%s", err.Message)
	}

	return result, nil
}

// Evaluate runs source and returns a process exit code: 0 on success, 1 on
// evaluation failure after writing a diagnostic to stderr. It never panics
// or propagates a Go error to the caller.
func Evaluate(source string, stderr io.Writer) int {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		for _, msg := range p.Errors() {
			fmt.Fprintf(stderr, "SyntaxError: %s\n", msg)
		}
		return 1
	}

	env := object.NewEnvironment()
	env.SetSelf(object.ObjectClass)

	result := evaluator.Eval(program, env)
	if err, ok := result.(*object.Error); ok {
		fmt.Fprintf(stderr, "Error: %s\n", err.Message)
		return 1
	}

	return 0
}
