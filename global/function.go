package global

import (
	"github.com/scriptkit/ecma/compiler"
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

// initFunctionProto installs Function.prototype's methods: call/apply/bind
// (ported from the teacher's prototype registration) plus toString, which
// always returns the compiler package's native-code stub for an anonymous
// function; it does not read the receiver's name or any retained source.
func initFunctionProto(m *interp.Machine, functionProto *object.Object) {
	method(m, functionProto, functionProto, "call", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		fn, ok := this.(*object.Object)
		if !ok || fn.Call == nil {
			return nil, m.ThrowTypeError("Function.prototype.call called on non-function")
		}
		var callThis object.Value = object.Undefined{}
		var rest []object.Value
		if len(args) > 0 {
			callThis = args[0]
			rest = args[1:]
		}
		return m.Call(fn, callThis, rest)
	})

	method(m, functionProto, functionProto, "apply", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		fn, ok := this.(*object.Object)
		if !ok || fn.Call == nil {
			return nil, m.ThrowTypeError("Function.prototype.apply called on non-function")
		}
		var callThis object.Value = object.Undefined{}
		if len(args) > 0 {
			callThis = args[0]
		}
		var rest []object.Value
		if len(args) > 1 {
			rest = arrayLikeToSlice(m, arg(args, 1))
		}
		return m.Call(fn, callThis, rest)
	})

	method(m, functionProto, functionProto, "bind", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		fn, ok := this.(*object.Object)
		if !ok || fn.Call == nil {
			return nil, m.ThrowTypeError("Function.prototype.bind called on non-function")
		}
		var boundThis object.Value = object.Undefined{}
		var bound []object.Value
		if len(args) > 0 {
			boundThis = args[0]
			bound = append(bound, args[1:]...)
		}
		wrapper := object.New(functionProto, "Function")
		wrapper.Call = func(vm object.Invoker, callThis object.Value, callArgs []object.Value, isNewCall bool) (object.Value, error) {
			full := append(append([]object.Value{}, bound...), callArgs...)
			if isNewCall {
				return m.New(fn, full)
			}
			return m.Call(fn, boundThis, full)
		}
		return wrapper, nil
	})

	method(m, functionProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return object.String(compiler.Decompile("", "", 4)), nil
	})
}

// initFunctionConstructor builds the `Function` global: calling or
// new-ing it compiles a function from (paramNames..., body) source
// fragments, per the Function constructor's contract.
func initFunctionConstructor(m *interp.Machine, functionProto, objectProto *object.Object) *object.Object {
	ctor := newNative(m, functionProto, "Function", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		var params []string
		body := ""
		if len(args) > 0 {
			body, _ = m.CoerceToString(args[len(args)-1])
			for _, a := range args[:len(args)-1] {
				s, err := m.CoerceToString(a)
				if err != nil {
					return nil, err
				}
				params = append(params, s)
			}
		}
		fn, err := compiler.CompileFunctionSource("<Function constructor>", params, body, m.Ctx != nil && m.Ctx.GenerateSource())
		if err != nil {
			return nil, err
		}
		return m.NewClosureFromIR(fn.IR, m.GlobalScope()), nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: functionProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	functionProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})
	return ctor
}

// arrayLikeToSlice reads an array-like object's "length" and numeric
// indices into a plain Go slice, the shape apply/spread/Array.from need.
func arrayLikeToSlice(m *interp.Machine, v object.Value) []object.Value {
	obj, ok := v.(*object.Object)
	if !ok {
		return nil
	}
	lengthV, err := obj.GetProperty(object.StringName("length"), m)
	if err != nil {
		return nil
	}
	n, err := m.CoerceToNumber(lengthV)
	if err != nil {
		return nil
	}
	out := make([]object.Value, 0, int(n))
	for i := 0; i < int(n); i++ {
		v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
		out = append(out, v)
	}
	return out
}
