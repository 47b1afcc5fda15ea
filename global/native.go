// Package global builds the standard object/prototype graph a fresh
// execution context starts with (§4.3): Object/Function/Array/String/
// Number/Boolean/Error/Math/RegExp, wired against the interp package's
// Machine so native methods can call back into script values.
package global

import (
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

// NativeFunc is the signature a global builtin method implements: this and
// args are already resolved, isNew reports whether invoked via `new`.
type NativeFunc func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error)

// newNative wraps fn as a callable object.Object with the given display
// name and declared arg count (the function's .length).
func newNative(m *interp.Machine, proto *object.Object, name string, length int, fn NativeFunc) *object.Object {
	obj := object.New(proto, "Function")
	obj.Call = func(vm object.Invoker, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return fn(m, this, args, isNew)
	}
	obj.DefineOwn(object.StringName("name"), object.Descriptor{
		Value: object.String(name), Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	obj.DefineOwn(object.StringName("length"), object.Descriptor{
		Value: object.Number(float64(length)), Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	return obj
}

func arg(args []object.Value, i int) object.Value {
	if i < len(args) {
		return args[i]
	}
	return object.Undefined{}
}

func method(m *interp.Machine, target *object.Object, proto *object.Object, name string, length int, fn NativeFunc) {
	target.DefineMethod(object.StringName(name), newNative(m, proto, name, length, fn))
}
