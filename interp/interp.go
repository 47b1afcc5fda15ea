// Package interp tree-walks the lowered ir.Program/ir.Function bodies
// produced by the compiler package, evaluating statements and
// expressions directly against otto's AST nodes (§4.2 stage 5, §4.3). It
// is the only package that evaluates ast.Statement/ast.Expression nodes;
// the object and scope packages stay otto-agnostic.
package interp

import (
	"fmt"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"

	"github.com/scriptkit/ecma/compiler"
	"github.com/scriptkit/ecma/ecmacontext"
	"github.com/scriptkit/ecma/ir"
	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
	"github.com/scriptkit/ecma/scope"
)

// Machine is the per-Context evaluator. One Machine is created per
// ecmacontext.Context and reused across every Script/Function it runs,
// so that global scope and the builtin prototypes persist between calls.
type Machine struct {
	Ctx    *ecmacontext.Context
	Global *object.Object

	ObjectProto   *object.Object
	FunctionProto *object.Object
	ArrayProto    *object.Object

	globalScope *scope.Scope
	file        *parserFile.File

	// topLevelDone/pendingCapture back the currently in-flight top-level
	// run (see runTopLevel in continuation.go); nil until the first
	// RunScript call.
	topLevelDone   chan topLevelOutcome
	pendingCapture chan *ecmacontext.Continuation

	// ErrorFactory builds a script-visible Error object for a kind/message
	// pair, set by global.InitStandardObjects once the Error prototypes
	// exist. Internally-raised errors (a bad coercion's TypeError, say)
	// go through it so a catch clause sees a real Error instance instead
	// of a bare string.
	ErrorFactory func(kind jserr.Kind, message string) object.Value
}

// SetPrototypes wires the builtin prototypes global.InitStandardObjects
// built, so closures created by the interpreter (function literals,
// object/array literals) link into the right chain.
func (m *Machine) SetPrototypes(objectProto, functionProto, arrayProto *object.Object) {
	m.ObjectProto = objectProto
	m.FunctionProto = functionProto
	m.ArrayProto = arrayProto
}

// New builds a Machine whose global scope is backed by globalObj (the
// object InitStandardObjects populated).
func New(ctx *ecmacontext.Context, globalObj *object.Object) *Machine {
	m := &Machine{Ctx: ctx, Global: globalObj}
	m.globalScope = scope.New(scope.ObjectEnv{Object: globalObj}, nil)
	m.globalScope.Strict = false
	return m
}

// RunScript executes a compiled Script against the Machine's global
// scope and returns the value of its last expression statement, per
// Context.evaluateString semantics (§4.1, §4.2).
func (m *Machine) RunScript(s *compiler.Script) (object.Value, error) {
	m.file = s.Program.File
	sc := scope.New(make(scope.DirectEnv), m.globalScope)
	sc.Strict = s.Program.Strict
	m.Ctx.SetTopCallIsScript(true)
	return m.runTopLevel(func() (object.Value, error) {
		return m.runStmts(sc, s.Program.AST.Body)
	})
}

// signal is the sentinel error type used to unwind control-flow
// statements (return/break/continue) up to the construct that handles
// them, mirroring the teacher's BreakSignal/ContinueSignal/ReturnValue.
type signal struct {
	kind  signalKind
	label string
	value object.Value
}

type signalKind int

const (
	sigReturn signalKind = iota
	sigBreak
	sigContinue
)

func (s *signal) Error() string { return fmt.Sprintf("interp: unhandled %v signal", s.kind) }

func (m *Machine) runStmts(sc *scope.Scope, body []ast.Statement) (object.Value, error) {
	m.hoistFunctions(sc, body)

	var last object.Value = object.Undefined{}
	for _, stmt := range body {
		v, err := m.runStmt(sc, stmt)
		if err != nil {
			return nil, err
		}
		if _, ok := stmt.(*ast.ExpressionStatement); ok {
			last = v
		}
	}
	return last, nil
}

// hoistFunctions implements function-declaration hoisting: every
// FunctionStatement in body is bound in sc before any statement runs.
func (m *Machine) hoistFunctions(sc *scope.Scope, body []ast.Statement) {
	for _, stmt := range body {
		if fs, ok := stmt.(*ast.FunctionStatement); ok && fs.Function.Name != nil {
			fn := m.makeFunction(sc, fs.Function)
			sc.Env.Define(sc, scope.DeclVar, object.StringName(fs.Function.Name.Name), fn)
		}
	}
}

func (m *Machine) runStmt(sc *scope.Scope, stmt ast.Statement) (object.Value, error) {
	switch s := stmt.(type) {
	case *ast.EmptyStatement:
		return object.Undefined{}, nil

	case *ast.BlockStatement:
		block := scope.New(make(scope.DirectEnv), sc)
		block.Strict = sc.Strict
		return m.runStmts(block, s.List)

	case *ast.ExpressionStatement:
		return m.evalExpr(sc, s.Expression)

	case *ast.VariableStatement:
		for _, e := range s.List {
			ve := e.(*ast.VariableExpression)
			var v object.Value = object.Undefined{}
			var err error
			if ve.Initializer != nil {
				v, err = m.evalExpr(sc, ve.Initializer)
				if err != nil {
					return nil, err
				}
			}
			if err := sc.Env.Define(sc, scope.DeclVar, object.StringName(ve.Name), v); err != nil {
				return nil, err
			}
		}
		return object.Undefined{}, nil

	case *ast.FunctionStatement:
		// already hoisted; nothing to do when encountered in statement order
		return object.Undefined{}, nil

	case *ast.IfStatement:
		test, err := m.evalExpr(sc, s.Test)
		if err != nil {
			return nil, err
		}
		if object.ToBoolean(test) {
			return m.runStmt(sc, s.Consequent)
		}
		if s.Alternate != nil {
			return m.runStmt(sc, s.Alternate)
		}
		return object.Undefined{}, nil

	case *ast.ReturnStatement:
		var v object.Value = object.Undefined{}
		if s.Argument != nil {
			var err error
			v, err = m.evalExpr(sc, s.Argument)
			if err != nil {
				return nil, err
			}
		}
		return nil, &signal{kind: sigReturn, value: v}

	case *ast.ThrowStatement:
		v, err := m.evalExpr(sc, s.Argument)
		if err != nil {
			return nil, err
		}
		return nil, m.throwValue(v)

	case *ast.TryStatement:
		return m.runTry(sc, s)

	case *ast.WhileStatement:
		return m.runWhile(sc, s)

	case *ast.DoWhileStatement:
		return m.runDoWhile(sc, s)

	case *ast.ForStatement:
		return m.runFor(sc, s)

	case *ast.ForInStatement:
		return m.runForIn(sc, s)

	case *ast.BranchStatement:
		return m.runBranch(s)

	case *ast.LabelledStatement:
		return m.runLabelled(sc, s)

	case *ast.SwitchStatement:
		return m.runSwitch(sc, s)

	case *ast.WithStatement:
		return m.runWith(sc, s)

	case *ast.DebuggerStatement:
		return object.Undefined{}, nil

	default:
		return nil, jserr.NewEvaluatorError("unsupported statement %T", stmt)
	}
}

func (m *Machine) runWith(sc *scope.Scope, s *ast.WithStatement) (object.Value, error) {
	v, err := m.evalExpr(sc, s.Object)
	if err != nil {
		return nil, err
	}
	obj, err := m.coerceToObject(v)
	if err != nil {
		return nil, err
	}
	withScope := scope.New(scope.ObjectEnv{Object: obj}, sc)
	withScope.Strict = sc.Strict
	return m.runStmt(withScope, s.Body)
}

func (m *Machine) runBranch(s *ast.BranchStatement) (object.Value, error) {
	label := ""
	if s.Label != nil {
		label = s.Label.Name
	}
	kind := sigBreak
	if s.Token.String() == "continue" {
		kind = sigContinue
	}
	return nil, &signal{kind: kind, label: label}
}

func (m *Machine) runLabelled(sc *scope.Scope, s *ast.LabelledStatement) (object.Value, error) {
	v, err := m.runStmt(sc, s.Statement)
	if sig, ok := err.(*signal); ok && sig.label == s.Label.Name {
		if sig.kind == sigBreak {
			return object.Undefined{}, nil
		}
	}
	return v, err
}

func (m *Machine) runTry(sc *scope.Scope, s *ast.TryStatement) (object.Value, error) {
	v, err := m.runStmt(sc, s.Body)

	if err != nil {
		if _, isSignal := err.(*signal); !isSignal && s.Catch != nil {
			var thrown object.Value = object.Undefined{}
			if se, ok := err.(*jserr.ScriptError); ok {
				if se.Payload != nil {
					thrown = se.Payload.(object.Value)
				} else if m.ErrorFactory != nil {
					thrown = m.ErrorFactory(se.Kind, se.Message)
				} else {
					thrown = object.String(se.Error())
				}
			} else {
				thrown = object.String(err.Error())
			}
			catchScope := scope.New(make(scope.DirectEnv), sc)
			catchScope.Strict = sc.Strict
			if s.Catch.Parameter != nil {
				catchScope.Env.Define(catchScope, scope.DeclLet, object.StringName(s.Catch.Parameter.Name), thrown)
			}
			v, err = m.runStmt(catchScope, s.Catch.Body)
		}
	}

	if s.Finally != nil {
		fv, ferr := m.runStmt(sc, s.Finally)
		if ferr != nil {
			return fv, ferr
		}
	}
	return v, err
}

func (m *Machine) runWhile(sc *scope.Scope, s *ast.WhileStatement) (object.Value, error) {
	for {
		test, err := m.evalExpr(sc, s.Test)
		if err != nil {
			return nil, err
		}
		if !object.ToBoolean(test) {
			return object.Undefined{}, nil
		}
		_, err = m.runStmt(sc, s.Body)
		if stop, v, rerr := handleLoopSignal(err); stop {
			return v, rerr
		}
	}
}

func (m *Machine) runDoWhile(sc *scope.Scope, s *ast.DoWhileStatement) (object.Value, error) {
	for {
		_, err := m.runStmt(sc, s.Body)
		if stop, v, rerr := handleLoopSignal(err); stop {
			return v, rerr
		}
		test, err := m.evalExpr(sc, s.Test)
		if err != nil {
			return nil, err
		}
		if !object.ToBoolean(test) {
			return object.Undefined{}, nil
		}
	}
}

func (m *Machine) runFor(sc *scope.Scope, s *ast.ForStatement) (object.Value, error) {
	loopScope := scope.New(make(scope.DirectEnv), sc)
	loopScope.Strict = sc.Strict
	if s.Initializer != nil {
		if _, err := m.evalExpr(loopScope, s.Initializer); err != nil {
			return nil, err
		}
	}
	for {
		if s.Test != nil {
			test, err := m.evalExpr(loopScope, s.Test)
			if err != nil {
				return nil, err
			}
			if !object.ToBoolean(test) {
				return object.Undefined{}, nil
			}
		}
		_, err := m.runStmt(loopScope, s.Body)
		if stop, v, rerr := handleLoopSignal(err); stop {
			return v, rerr
		}
		if s.Update != nil {
			if _, err := m.evalExpr(loopScope, s.Update); err != nil {
				return nil, err
			}
		}
	}
}

func (m *Machine) runForIn(sc *scope.Scope, s *ast.ForInStatement) (object.Value, error) {
	src, err := m.evalExpr(sc, s.Source)
	if err != nil {
		return nil, err
	}
	obj, err := m.coerceToObject(src)
	if err != nil {
		return nil, err
	}
	keys := obj.OwnKeys()
	for _, k := range keys {
		iterScope := scope.New(make(scope.DirectEnv), sc)
		iterScope.Strict = sc.Strict
		if err := m.doAssignment(iterScope, s.Into, object.String(k.String())); err != nil {
			return nil, err
		}
		_, err := m.runStmt(iterScope, s.Body)
		if stop, v, rerr := handleLoopSignal(err); stop {
			return v, rerr
		}
	}
	return object.Undefined{}, nil
}

func (m *Machine) runSwitch(sc *scope.Scope, s *ast.SwitchStatement) (object.Value, error) {
	disc, err := m.evalExpr(sc, s.Discriminant)
	if err != nil {
		return nil, err
	}
	swScope := scope.New(make(scope.DirectEnv), sc)
	swScope.Strict = sc.Strict

	matched := -1
	for i, c := range s.Body {
		if i == s.Default {
			continue
		}
		cv, err := m.evalExpr(swScope, c.Test)
		if err != nil {
			return nil, err
		}
		if strictEqual(disc, cv) {
			matched = i
			break
		}
	}
	if matched == -1 {
		matched = s.Default
	}
	if matched < 0 || matched >= len(s.Body) {
		return object.Undefined{}, nil
	}
	for i := matched; i < len(s.Body); i++ {
		for _, st := range s.Body[i].Consequent {
			_, err := m.runStmt(swScope, st)
			if sig, ok := err.(*signal); ok && sig.kind == sigBreak && sig.label == "" {
				return object.Undefined{}, nil
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return object.Undefined{}, nil
}

// handleLoopSignal inspects an error from running a loop body: an
// unlabelled break/continue stops or continues the loop, anything else
// (return, labelled break targeting an outer construct, a thrown error)
// propagates.
func handleLoopSignal(err error) (stop bool, v object.Value, rerr error) {
	if err == nil {
		return false, nil, nil
	}
	sig, ok := err.(*signal)
	if !ok {
		return true, nil, err
	}
	if sig.label != "" {
		return true, nil, err
	}
	switch sig.kind {
	case sigBreak:
		return true, object.Undefined{}, nil
	case sigContinue:
		return false, nil, nil
	default: // sigReturn
		return true, nil, err
	}
}

func (m *Machine) makeFunction(sc *scope.Scope, lit *ast.FunctionLiteral) *object.Object {
	fnIR := ir.LowerFunction(lit, m.file, sc.Strict, m.Ctx != nil && m.Ctx.GenerateSource(), "")
	return m.newClosure(fnIR, lit, sc)
}
