// Package compiler turns a lowered ir.Program or ir.Function into the
// executable artifacts hosts compile against: Script and Function (§4.2
// stage 4). This engine always interprets — there is no native-code
// backend (see DESIGN.md) — so "compiling" here means validating the
// lowered tree, assigning it a stable debug id, and wrapping it in the
// artifact type the interp package knows how to run.
package compiler

import (
	"strings"

	"github.com/google/uuid"
	"github.com/robertkrimen/otto/ast"

	"github.com/scriptkit/ecma/astparse"
	"github.com/scriptkit/ecma/ir"
	"github.com/scriptkit/ecma/jserr"
)

// Script is a compiled toplevel compilation unit, ready to be executed
// against a scope by the interp package.
type Script struct {
	id         uuid.UUID
	SourceName string
	Program    *ir.Program
}

// ID is a stable per-compile debug identifier, independent of source
// text equality (two identical scripts compiled twice get different ids).
func (s *Script) ID() uuid.UUID { return s.id }

// Decompile reproduces the script's source, or a native-code stub when
// no raw source was retained.
func (s *Script) Decompile(indent int) string {
	return ir.Decompile(s.Program.RawSource, "", indent)
}

// Function is a compiled function artifact: the callable unit produced
// either by compiling a standalone function body ("return function" mode)
// or by lowering a FunctionStatement/FunctionLiteral found while
// compiling a Script.
type Function struct {
	id      uuid.UUID
	IR      *ir.Function
	Script  *Script // nil for functions compiled standalone
}

func (f *Function) ID() uuid.UUID { return f.id }

func (f *Function) Name() string { return f.IR.Name }

func (f *Function) Decompile(indent int) string {
	return ir.Decompile(f.IR.RawSource, f.IR.Name, indent)
}

// CompileOptions controls how CompileString lowers and validates source.
type CompileOptions struct {
	// ReturnFunction requires the source to consist of a single function
	// definition (otherwise a ReturnValue can't wrap it) and compiles it
	// standalone rather than as a Script body.
	ReturnFunction bool
	GenerateSource bool
}

// CompileString parses, checks, and lowers source, producing either a
// Script or a standalone Function depending on opts.ReturnFunction.
func CompileString(sourceName, src string, opts CompileOptions) (*Script, *Function, error) {
	parsed, err := astparse.ParseString(sourceName, src)
	if err != nil {
		return nil, nil, err
	}

	if opts.ReturnFunction {
		lit, err := ir.RequireSingleFunction(parsed.Program)
		if err != nil {
			return nil, nil, err
		}
		fnIR := ir.LowerFunction(lit, parsed.File, false, opts.GenerateSource, src)
		return nil, &Function{id: uuid.New(), IR: fnIR}, nil
	}

	progIR := ir.LowerProgram(parsed.Program, parsed.File, sourceName, opts.GenerateSource, src)
	return &Script{id: uuid.New(), SourceName: sourceName, Program: progIR}, nil, nil
}

// CompileFunctionSource builds a Function artifact from an explicit
// parameter-name list and a body source fragment, the shape the global
// Function constructor needs (`new Function("a", "b", "return a+b")`).
func CompileFunctionSource(sourceName string, paramNames []string, bodySrc string, generateSource bool) (*Function, error) {
	src := "(function anonymous(" + strings.Join(paramNames, ", ") + ") {\n" + bodySrc + "\n})"
	parsed, err := astparse.ParseString(sourceName, src)
	if err != nil {
		return nil, err
	}
	if len(parsed.Program.Body) != 1 {
		return nil, jserr.NewSyntaxError("invalid function body")
	}
	es, ok := parsed.Program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, jserr.NewSyntaxError("invalid function body")
	}
	lit, ok := es.Expression.(*ast.FunctionLiteral)
	if !ok {
		return nil, jserr.NewSyntaxError("invalid function body")
	}
	fnIR := ir.LowerFunction(lit, parsed.File, false, generateSource, src)
	return &Function{id: uuid.New(), IR: fnIR}, nil
}

// StringIsCompilableUnit reports whether src parses as a complete program
// on its own (§4.2): used by REPLs to decide whether to keep buffering
// lines or to evaluate what has been typed so far. A genuine syntax error
// (as opposed to input simply ending early) counts as compilable — the
// host will surface the real error on evaluation.
func StringIsCompilableUnit(src string) bool {
	_, err := astparse.ParseString("<compilable-unit-check>", src)
	if err == nil {
		return true
	}
	return !astparse.EndedPrematurely(err)
}

// Decompile is the free-function form used when only raw source (not a
// compiled artifact) is on hand, e.g. decompiling a native builtin stub.
func Decompile(src, fnName string, indent int) string {
	return ir.Decompile(src, fnName, indent)
}
