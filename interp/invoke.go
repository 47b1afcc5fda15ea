package interp

import (
	"github.com/robertkrimen/otto/ast"

	"github.com/scriptkit/ecma/ir"
	"github.com/scriptkit/ecma/object"
	"github.com/scriptkit/ecma/scope"
)

// closureData is the interpreted-function payload stashed behind an
// *object.Object's Call field via a closure over this struct, playing
// the role of the teacher's FunctionPart.
type closureData struct {
	fn      *ir.Function
	lit     *ast.FunctionLiteral
	defScope *scope.Scope
}

// GlobalScope exposes the Machine's toplevel scope, the binding
// environment functions built by the Function constructor close over
// (ECMAScript gives `new Function(...)` the global scope regardless of
// where it was called from).
func (m *Machine) GlobalScope() *scope.Scope { return m.globalScope }

// NewClosureFromIR builds a callable object for an already-lowered
// function, closing over defScope. Used by the Function constructor
// (global package), which compiles source fragments through the
// compiler package and then needs a live closure bound to global scope.
func (m *Machine) NewClosureFromIR(fn *ir.Function, defScope *scope.Scope) *object.Object {
	return m.newClosure(fn, fn.AST, defScope)
}

// newClosure builds the callable object for a function literal captured
// in defScope.
func (m *Machine) newClosure(fn *ir.Function, lit *ast.FunctionLiteral, defScope *scope.Scope) *object.Object {
	data := &closureData{fn: fn, lit: lit, defScope: defScope}
	obj := object.New(m.FunctionProto, "Function")
	obj.Call = func(vm object.Invoker, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return m.invokeClosure(data, this, args, isNew, obj)
	}
	obj.DefineOwn(object.StringName("length"), object.Descriptor{
		Value: object.Number(float64(len(lit.ParameterList.List))),
		Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	name := fn.Name
	obj.DefineOwn(object.StringName("name"), object.Descriptor{
		Value: object.String(name),
		Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	if m.ObjectProto != nil {
		proto := object.New(m.ObjectProto, "Object")
		proto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: obj, Attrs: object.DontEnum})
		obj.DefineOwn(object.StringName("prototype"), object.Descriptor{Value: proto, Attrs: object.DontEnum | object.Permanent})
	}
	return obj
}

func (m *Machine) invokeClosure(data *closureData, this object.Value, args []object.Value, isNew bool, self *object.Object) (object.Value, error) {
	call := &scope.Call{This: this}
	fnScope := scope.New(make(scope.DirectEnv), data.defScope)
	fnScope.Strict = data.fn.Strict
	fnScope.Call = call

	for i, p := range data.fn.Params {
		var v object.Value = object.Undefined{}
		if i < len(args) {
			v = args[i]
		}
		fnScope.Env.Define(fnScope, scope.DeclVar, object.StringName(p), v)
	}
	fnScope.Env.Define(fnScope, scope.DeclVar, object.StringName("arguments"), m.makeArguments(args))
	if data.fn.Name != "" {
		fnScope.Env.Define(fnScope, scope.DeclVar, object.StringName(data.fn.Name), self)
	}

	block, ok := data.lit.Body.(*ast.BlockStatement)
	if !ok {
		return nil, m.ThrowTypeError("malformed function body")
	}
	_, err := m.runStmts(fnScope, block.List)
	if err != nil {
		if sig, ok := err.(*signal); ok && sig.kind == sigReturn {
			return sig.value, nil
		}
		return nil, err
	}
	return object.Undefined{}, nil
}

func (m *Machine) makeArguments(args []object.Value) *object.Object {
	obj := object.New(m.ObjectProto, "Arguments")
	for i, a := range args {
		obj.DefineOwn(object.StringName(indexName(i)), object.Descriptor{Value: a})
	}
	obj.DefineOwn(object.StringName("length"), object.Descriptor{Value: object.Number(float64(len(args))), Attrs: object.DontEnum})
	return obj
}

// Call invokes fn (any callable object, native or interpreted) with the
// given this and arguments, the single entry point call/bind/apply and
// CallExpression evaluation share.
func (m *Machine) Call(fn *object.Object, this object.Value, args []object.Value) (object.Value, error) {
	if fn == nil || fn.Call == nil {
		return nil, m.ThrowTypeError("not a function")
	}
	return fn.Call(m, this, args, false)
}

// New implements the `new` operator: allocate an object linked to fn's
// prototype property, invoke fn with isNew=true and that object as this,
// and use the callable's return value only if it is itself an object.
func (m *Machine) New(fn *object.Object, args []object.Value) (object.Value, error) {
	if fn == nil || fn.Call == nil {
		return nil, m.ThrowTypeError("not a constructor")
	}
	protoV, _ := fn.GetProperty(object.StringName("prototype"), m)
	proto, _ := protoV.(*object.Object)
	if proto == nil {
		proto = m.ObjectProto
	}
	inst := object.New(proto, "Object")
	ret, err := fn.Call(m, inst, args, true)
	if err != nil {
		return nil, err
	}
	if retObj, ok := ret.(*object.Object); ok {
		return retObj, nil
	}
	return inst, nil
}
