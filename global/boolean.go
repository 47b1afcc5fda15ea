package global

import (
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

func thisBoolean(this object.Value) bool {
	if b, ok := this.(object.Boolean); ok {
		return bool(b)
	}
	if obj, ok := this.(*object.Object); ok {
		if v, ok := obj.GetOwnPropertyDescriptor(object.StringName("__primitive__")); ok {
			if b, ok := v.Value.(object.Boolean); ok {
				return bool(b)
			}
		}
	}
	return false
}

// initBooleanProto installs Boolean.prototype's methods and builds the
// Boolean global, mirroring the way initNumberProto/initStringProto wrap a
// primitive in the scalar wrapper's __primitive__ slot when new-constructed.
func initBooleanProto(m *interp.Machine, booleanProto, functionProto, objectProto *object.Object) *object.Object {
	method(m, booleanProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		if thisBoolean(this) {
			return object.String("true"), nil
		}
		return object.String("false"), nil
	})
	method(m, booleanProto, functionProto, "valueOf", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return object.Boolean(thisBoolean(this)), nil
	})

	ctor := newNative(m, functionProto, "Boolean", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		b := object.ToBoolean(arg(args, 0))
		if !isNew {
			return object.Boolean(b), nil
		}
		obj := object.New(booleanProto, "Boolean")
		obj.DefineOwn(object.StringName("__primitive__"), object.Descriptor{Value: object.Boolean(b), Attrs: object.DontEnum})
		return obj, nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: booleanProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	booleanProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})
	return ctor
}
