// Package ir lowers a parsed otto AST into the intermediate script tree
// the compiler and interpreter operate on (§4.2 stage 3): propagating
// strict-mode from "use strict" directives down through nested functions,
// and retaining raw source text when the context's generate-source flag
// is set.
//
// The IR intentionally does not re-express every AST node in a parallel
// type: otto's ast.Statement/ast.Expression trees already carry the shape
// the interpreter walks. What IR adds is the annotation otto's parser
// does not compute itself — effective strictness per function, and the
// raw source slice a Script/Function artifact needs for Decompile.
package ir

import (
	"fmt"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"

	"github.com/scriptkit/ecma/jserr"
)

// Program is the lowered form of a toplevel compilation unit.
type Program struct {
	AST        *ast.Program
	File       *parserFile.File
	SourceName string
	Strict     bool
	RawSource  string // empty unless generateSource was requested
}

// Function is the lowered form of a single function literal, either
// toplevel (the "return function" compile mode) or nested inside a
// Program's body.
type Function struct {
	AST       *ast.FunctionLiteral
	File      *parserFile.File
	Name      string
	Params    []string
	Strict    bool
	RawSource string
}

// LowerProgram builds a Program from a parsed otto AST. rawSource is the
// original text and is retained only when generateSource is true.
func LowerProgram(program *ast.Program, file *parserFile.File, sourceName string, generateSource bool, rawSource string) *Program {
	p := &Program{
		AST:        program,
		File:       file,
		SourceName: sourceName,
		Strict:     hasUseStrict(program.Body),
	}
	if generateSource {
		p.RawSource = rawSource
	}
	return p
}

// LowerFunction builds a Function from a function literal, inheriting
// strictness from the enclosing scope unless the function's own body
// declares "use strict".
func LowerFunction(lit *ast.FunctionLiteral, file *parserFile.File, enclosingStrict bool, generateSource bool, rawSource string) *Function {
	name := ""
	if lit.Name != nil {
		name = lit.Name.Name
	}
	params := make([]string, len(lit.ParameterList.List))
	for i, ident := range lit.ParameterList.List {
		params[i] = ident.Name
	}

	strict := enclosingStrict
	if block, ok := lit.Body.(*ast.BlockStatement); ok && hasUseStrict(block.List) {
		strict = true
	}

	f := &Function{AST: lit, File: file, Name: name, Params: params, Strict: strict}
	if generateSource {
		f.RawSource = rawSource
	}
	return f
}

// hasUseStrict reports whether the first statement of body is the literal
// directive "use strict".
func hasUseStrict(body []ast.Statement) bool {
	if len(body) == 0 {
		return false
	}
	es, ok := body[0].(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	lit, ok := es.Expression.(*ast.StringLiteral)
	if !ok {
		return false
	}
	return lit.Value == "use strict"
}

// RequireSingleFunction implements the "return function" compile flag
// (§4.2 inputs): the program must consist of a single function
// definition, with additional stray semicolons (empty statements)
// tolerated before or after it.
func RequireSingleFunction(program *ast.Program) (*ast.FunctionLiteral, error) {
	var found *ast.FunctionLiteral
	for _, stmt := range program.Body {
		switch s := stmt.(type) {
		case *ast.EmptyStatement:
			continue
		case *ast.FunctionStatement:
			if found != nil {
				return nil, jserr.NewSyntaxError("expected a single function definition")
			}
			found = s.Function
		default:
			return nil, jserr.NewSyntaxError("expected a function definition, found %T", stmt)
		}
	}
	if found == nil {
		return nil, jserr.NewSyntaxError("expected a function definition")
	}
	return found, nil
}

// Decompile renders src reformatted at the given indentation, or the
// sentinel "[native code]" with fnName when src is empty (no raw source
// retained, or a native builtin) — §4.2's decompile contract.
func Decompile(src string, fnName string, indent int) string {
	if strings.TrimSpace(src) == "" {
		if fnName == "" {
			fnName = "anonymous"
		}
		return fmt.Sprintf("function %s() {\n    [native code]\n}", fnName)
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
