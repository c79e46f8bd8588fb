// Command sri runs the Ruby-subset interpreter: with no arguments it starts
// the REPL, with one argument it evaluates that file and exits with the
// program's success or failure.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sri-lang/sri/evaluator"
	"github.com/sri-lang/sri/lexer"
	"github.com/sri-lang/sri/object"
	"github.com/sri-lang/sri/parser"
	"github.com/sri-lang/sri/repl"
)

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	if err := runFile(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	cfg := loadConfig()
	verbose := os.Getenv("RUBY_VERBOSE") == "true" || cfg.Verbose

	l := lexer.New(string(content))
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		for _, msg := range p.Errors() {
			fmt.Fprintf(os.Stderr, "SyntaxError: %s\n", msg)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "trace: parsed %d top-level statement(s) from %s\n", len(program.Statements), filename)
	}

	env := object.NewEnvironment()
	env.SetSelf(object.ObjectClass)
	for name, val := range cfg.namespaceEnv() {
		env.Set(name, val)
	}

	result := evaluator.Eval(program, env)
	if err, ok := result.(*object.Error); ok {
		if verbose {
			fmt.Fprintf(os.Stderr, "trace: evaluation aborted: %s\n", err.Message)
		}
		return fmt.Errorf("%s", err.Message)
	}

	return nil
}
