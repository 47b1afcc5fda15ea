package global

import (
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

func arrayLength(m *interp.Machine, obj *object.Object) int {
	v, _ := obj.GetProperty(object.StringName("length"), m)
	n, _ := m.CoerceToNumber(v)
	return int(n)
}

func setArrayLength(obj *object.Object, n int) {
	obj.DefineOwn(object.StringName("length"), object.Descriptor{Value: object.Number(float64(n)), Attrs: object.DontEnum})
}

func initArrayProto(m *interp.Machine, arrayProto, functionProto, objectProto *object.Object) *object.Object {
	method(m, arrayProto, functionProto, "push", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		n := arrayLength(m, obj)
		for _, a := range args {
			obj.DefineOwn(object.StringName(interp.IndexName(n)), object.Descriptor{Value: a})
			n++
		}
		setArrayLength(obj, n)
		return object.Number(float64(n)), nil
	})

	method(m, arrayProto, functionProto, "pop", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		n := arrayLength(m, obj)
		if n == 0 {
			return object.Undefined{}, nil
		}
		last := n - 1
		v, _ := obj.GetProperty(object.StringName(interp.IndexName(last)), m)
		obj.DeleteProperty(object.StringName(interp.IndexName(last)))
		setArrayLength(obj, last)
		return v, nil
	})

	method(m, arrayProto, functionProto, "join", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		sep := ","
		if len(args) > 0 {
			sep, err = m.CoerceToString(args[0])
			if err != nil {
				return nil, err
			}
		}
		n := arrayLength(m, obj)
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
			if _, ok := v.(object.Undefined); ok {
				parts[i] = ""
				continue
			}
			if _, ok := v.(object.Null); ok {
				parts[i] = ""
				continue
			}
			s, err := m.CoerceToString(v)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return object.String(joinStrings(parts, sep)), nil
	})

	method(m, arrayProto, functionProto, "slice", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		n := arrayLength(m, obj)
		start, end := sliceBounds(m, args, n)
		out := object.New(m.ArrayProto, "Array")
		j := 0
		for i := start; i < end; i++ {
			v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
			out.DefineOwn(object.StringName(interp.IndexName(j)), object.Descriptor{Value: v})
			j++
		}
		setArrayLength(out, j)
		return out, nil
	})

	method(m, arrayProto, functionProto, "indexOf", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		target := arg(args, 0)
		n := arrayLength(m, obj)
		for i := 0; i < n; i++ {
			v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
			if sameValueZero(v, target) {
				return object.Number(float64(i)), nil
			}
		}
		return object.Number(-1), nil
	})

	method(m, arrayProto, functionProto, "forEach", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		fn, ok := arg(args, 0).(*object.Object)
		if !ok || fn.Call == nil {
			return nil, m.ThrowTypeError("forEach callback is not a function")
		}
		n := arrayLength(m, obj)
		for i := 0; i < n; i++ {
			v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
			if _, err := m.Call(fn, object.Undefined{}, []object.Value{v, object.Number(float64(i)), obj}); err != nil {
				return nil, err
			}
		}
		return object.Undefined{}, nil
	})

	method(m, arrayProto, functionProto, "map", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		fn, ok := arg(args, 0).(*object.Object)
		if !ok || fn.Call == nil {
			return nil, m.ThrowTypeError("map callback is not a function")
		}
		n := arrayLength(m, obj)
		out := object.New(m.ArrayProto, "Array")
		for i := 0; i < n; i++ {
			v, _ := obj.GetProperty(object.StringName(interp.IndexName(i)), m)
			rv, err := m.Call(fn, object.Undefined{}, []object.Value{v, object.Number(float64(i)), obj})
			if err != nil {
				return nil, err
			}
			out.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: rv})
		}
		setArrayLength(out, n)
		return out, nil
	})

	method(m, arrayProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		joinFn, err := arrayProto.GetProperty(object.StringName("join"), m)
		if err != nil {
			return nil, err
		}
		fn, ok := joinFn.(*object.Object)
		if !ok {
			return object.String(""), nil
		}
		return m.Call(fn, this, nil)
	})

	ctor := newNative(m, functionProto, "Array", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		arr := object.New(arrayProto, "Array")
		if len(args) == 1 {
			if n, ok := args[0].(object.Number); ok {
				setArrayLength(arr, int(n))
				return arr, nil
			}
		}
		for i, a := range args {
			arr.DefineOwn(object.StringName(interp.IndexName(i)), object.Descriptor{Value: a})
		}
		setArrayLength(arr, len(args))
		return arr, nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: arrayProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	arrayProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})

	method(m, ctor, functionProto, "isArray", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, ok := arg(args, 0).(*object.Object)
		return object.Boolean(ok && obj.Class() == "Array"), nil
	})

	return ctor
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func sliceBounds(m *interp.Machine, args []object.Value, n int) (int, int) {
	start, end := 0, n
	if len(args) > 0 {
		f, _ := m.CoerceToNumber(args[0])
		start = normalizeIndex(int(f), n)
	}
	if len(args) > 1 {
		if _, ok := args[1].(object.Undefined); !ok {
			f, _ := m.CoerceToNumber(args[1])
			end = normalizeIndex(int(f), n)
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func sameValueZero(a, b object.Value) bool {
	return strictEqualValues(a, b)
}

func strictEqualValues(a, b object.Value) bool {
	switch x := a.(type) {
	case object.Number:
		y, ok := b.(object.Number)
		return ok && (x == y || (isNaN(float64(x)) && isNaN(float64(y))))
	default:
		return equalForSameValueZero(a, b)
	}
}

func equalForSameValueZero(a, b object.Value) bool {
	switch x := a.(type) {
	case object.Undefined:
		_, ok := b.(object.Undefined)
		return ok
	case object.Null:
		_, ok := b.(object.Null)
		return ok
	case object.Boolean:
		y, ok := b.(object.Boolean)
		return ok && x == y
	case object.String:
		y, ok := b.(object.String)
		return ok && x == y
	case *object.Object:
		y, ok := b.(*object.Object)
		return ok && x == y
	default:
		return false
	}
}

func isNaN(f float64) bool { return f != f }
