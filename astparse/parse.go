// Package astparse lexes and parses ECMAScript source text to an otto
// AST, and runs the early-error checker (strict-mode reserved words,
// function declarations in statement position, `with` under strict mode)
// that the parser library itself does not enforce (§4.2 stage 2).
package astparse

import (
	"fmt"
	"io"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"
	"github.com/robertkrimen/otto/parser"

	"github.com/scriptkit/ecma/jserr"
)

// Result is a parsed program plus the file table the parser built, needed
// by later stages to resolve source positions.
type Result struct {
	Program *ast.Program
	File    *parserFile.File
}

// ParseReader lexes and parses source text read from r, attributing
// positions to sourceName, then runs the early-error checker.
func ParseReader(sourceName string, r io.Reader) (*Result, error) {
	program, err := parser.ParseFile(nil, sourceName, r, 0)
	if err != nil {
		return nil, translateParseError(sourceName, err)
	}

	if err := checkEarlyErrors(program.File, program); err != nil {
		return nil, err
	}

	return &Result{Program: program, File: program.File}, nil
}

// ParseString is a convenience wrapper for in-memory source (the common
// case for eval/Function and host-submitted script fragments).
func ParseString(sourceName, src string) (*Result, error) {
	return ParseReader(sourceName, strings.NewReader(src))
}

func translateParseError(sourceName string, err error) error {
	msg := err.Error()
	if rest, found := strings.CutPrefix(msg, sourceName); found {
		rest, _ = strings.CutPrefix(rest, ": ")
		_, rest, _ = strings.Cut(rest, " ")
		_, rest, _ = strings.Cut(rest, " ")
		msg = rest
	}
	return jserr.NewSyntaxError("%s", msg).WithPosition(jserr.Position{SourceName: sourceName})
}

// EndedPrematurely reports whether err is a parse failure caused by the
// input ending before a construct was closed — the signal
// StringIsCompilableUnit uses to tell a REPL "append more input and
// retry" apart from a genuine syntax error (§4.2).
func EndedPrematurely(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unexpected end of input") ||
		strings.Contains(msg, "Unexpected token EOF") ||
		strings.Contains(msg, "Unexpected EOF")
}

// checkEarlyErrors mirrors the teacher's fixAndCheck/checker walk,
// generalized to accumulate every violation rather than stopping at the
// first one. Strictness is tracked only from "use strict" string literals
// met during the walk.
func checkEarlyErrors(file *parserFile.File, node ast.Node) error {
	c := &checker{file: file}
	ast.Walk(c, node)
	if len(c.errs) == 0 {
		return nil
	}
	return multiSyntaxError(c.errs)
}

type checker struct {
	file *parserFile.File
	errs []error
	ctx  []checkerFrame
}

type checkerFrame struct {
	node      ast.Node
	setStrict bool
}

type multiSyntaxError []error

func (m multiSyntaxError) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	lines := make([]string, 1+len(m))
	lines[0] = fmt.Sprintf("%d syntax errors:", len(m))
	for i, err := range m {
		lines[i+1] = fmt.Sprintf("%3d. %s", i+1, err.Error())
	}
	return strings.Join(lines, "\n")
}

func (c *checker) setStrict() {
	for i := len(c.ctx) - 1; i >= 0; i-- {
		frame := &c.ctx[i]
		_, isFuncLit := frame.node.(*ast.FunctionLiteral)
		_, isProgram := frame.node.(*ast.Program)
		if isFuncLit || isProgram {
			frame.setStrict = true
			return
		}
	}
}

func (c *checker) isStrictHere() bool {
	for i := len(c.ctx) - 1; i >= 0; i-- {
		if c.ctx[i].setStrict {
			return true
		}
	}
	return false
}

func (c *checker) emitErr(node ast.Node, msg string) {
	var err error
	if c.file == nil {
		err = fmt.Errorf("?:?: %s", msg)
	} else if pos := c.file.Position(node.Idx0()); pos != nil {
		err = fmt.Errorf("%s: %s", pos, msg)
	} else {
		err = fmt.Errorf("%s", msg)
	}
	c.errs = append(c.errs, err)
}

func (c *checker) Enter(node ast.Node) ast.Visitor {
	c.ctx = append(c.ctx, checkerFrame{node: node})

	switch n := node.(type) {
	case *ast.Program:
		if len(n.Body) == 0 {
			n.Body = []ast.Statement{&ast.EmptyStatement{}}
		}
	case *ast.StringLiteral:
		if n.Value == "use strict" {
			c.setStrict()
		}
	case *ast.VariableExpression:
		if c.isStrictHere() && isStrictReservedWord(n.Name) {
			c.emitErr(node, fmt.Sprintf("variable can't be named %s in strict mode (it's a reserved keyword)", n.Name))
		}
	case *ast.WithStatement:
		if c.isStrictHere() {
			c.emitErr(node, "with statement can't appear in strict mode")
		}
	case *ast.ForStatement:
		c.forbidFuncDecl(n.Body)
	case *ast.ForInStatement:
		c.forbidFuncDecl(n.Body)
	case *ast.WhileStatement:
		c.forbidFuncDecl(n.Body)
	case *ast.DoWhileStatement:
		c.forbidFuncDecl(n.Body)
	}

	return c
}

func (c *checker) forbidFuncDecl(node ast.Node) {
	_, isFnLit := node.(*ast.FunctionLiteral)
	_, isFnStmt := node.(*ast.FunctionStatement)
	if isFnLit || isFnStmt {
		c.emitErr(node, "function declaration cannot appear in statement position")
	}
}

func (c *checker) Exit(node ast.Node) {
	c.ctx = c.ctx[:len(c.ctx)-1]
}

var strictReservedWords = []string{
	"implements", "let", "private", "public", "interface",
	"package", "protected", "static", "yield",
}

func isStrictReservedWord(s string) bool {
	for _, kw := range strictReservedWords {
		if kw == s {
			return true
		}
	}
	return false
}
