package global

import (
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

// initObjectProto installs Object.prototype's methods (ported from the
// teacher's init() registration of toString/hasOwnProperty).
func initObjectProto(m *interp.Machine, objectProto, functionProto *object.Object) {
	method(m, objectProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return object.String("[object " + classOf(this) + "]"), nil
	})
	method(m, objectProto, functionProto, "valueOf", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return this, nil
	})
	method(m, objectProto, functionProto, "hasOwnProperty", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		name, err := m.CoerceToString(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return object.Boolean(obj.HasOwnProperty(object.StringName(name))), nil
	})
	method(m, objectProto, functionProto, "isPrototypeOf", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		self, ok := this.(*object.Object)
		if !ok {
			return object.Boolean(false), nil
		}
		other, ok := arg(args, 0).(*object.Object)
		if !ok {
			return object.Boolean(false), nil
		}
		for cur := other.Prototype; cur != nil; cur = cur.Prototype {
			if cur == self {
				return object.Boolean(true), nil
			}
		}
		return object.Boolean(false), nil
	})
}

func classOf(v object.Value) string {
	obj, ok := v.(*object.Object)
	if !ok {
		return "Object"
	}
	return obj.Class()
}

// initObjectConstructor builds the `Object` global (callable as a
// coercion, new-able as a plain allocator) plus its static methods.
func initObjectConstructor(m *interp.Machine, functionProto, objectProto *object.Object) *object.Object {
	ctor := newNative(m, functionProto, "Object", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		v := arg(args, 0)
		if _, ok := v.(object.Undefined); ok {
			return object.New(objectProto, "Object"), nil
		}
		if _, ok := v.(object.Null); ok {
			return object.New(objectProto, "Object"), nil
		}
		return m.CoerceToObject(v)
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: objectProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	objectProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})

	method(m, ctor, functionProto, "keys", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(arg(args, 0))
		if err != nil {
			return nil, err
		}
		keys := obj.OwnKeys()
		arr := object.New(m.ArrayProto, "Array")
		for i, k := range keys {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: object.String(k.String())})
		}
		arr.DefineOwn(object.StringName("length"), object.Descriptor{Value: object.Number(float64(len(keys))), Attrs: object.DontEnum})
		return arr, nil
	})

	method(m, ctor, functionProto, "getPrototypeOf", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(arg(args, 0))
		if err != nil {
			return nil, err
		}
		if obj.Prototype == nil {
			return object.Null{}, nil
		}
		return obj.Prototype, nil
	})

	method(m, ctor, functionProto, "seal", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		if obj, ok := arg(args, 0).(*object.Object); ok {
			obj.Seal()
		}
		return arg(args, 0), nil
	})

	method(m, ctor, functionProto, "isSealed", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := arg(args, 0).(*object.Object)
		if !ok {
			return object.Boolean(true), nil
		}
		return object.Boolean(obj.IsSealed()), nil
	})

	return ctor
}
