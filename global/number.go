package global

import (
	"math"
	"strconv"

	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

func thisNumber(m *interp.Machine, this object.Value) (float64, error) {
	if n, ok := this.(object.Number); ok {
		return float64(n), nil
	}
	if obj, ok := this.(*object.Object); ok {
		if d, ok := obj.GetOwnPropertyDescriptor(object.StringName("__primitive__")); ok {
			if n, ok := d.Value.(object.Number); ok {
				return float64(n), nil
			}
		}
	}
	return m.CoerceToNumber(this)
}

// initNumberProto installs Number.prototype's methods and builds the
// Number global, with the static helpers the global scope expects
// (isInteger/isNaN/isFinite), ported in spirit from the
// teacher's toString/valueOf registration on its scalar wrapper prototypes.
func initNumberProto(m *interp.Machine, numberProto, functionProto, objectProto *object.Object) *object.Object {
	method(m, numberProto, functionProto, "toString", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n, err := thisNumber(m, this)
		if err != nil {
			return nil, err
		}
		radix := 10
		if len(args) > 0 {
			if _, ok := args[0].(object.Undefined); !ok {
				r, err := m.CoerceToNumber(args[0])
				if err != nil {
					return nil, err
				}
				radix = int(r)
			}
		}
		if radix == 10 {
			s, _ := object.ToStringPrim(object.Number(n))
			return object.String(s), nil
		}
		if n != math.Trunc(n) {
			return nil, m.ThrowRangeError("radix conversion of non-integer numbers is not supported")
		}
		return object.String(strconv.FormatInt(int64(n), radix)), nil
	})
	method(m, numberProto, functionProto, "valueOf", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n, err := thisNumber(m, this)
		return object.Number(n), err
	})

	ctor := newNative(m, functionProto, "Number", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n := 0.0
		if len(args) > 0 {
			var err error
			n, err = m.CoerceToNumber(args[0])
			if err != nil {
				return nil, err
			}
		}
		if !isNew {
			return object.Number(n), nil
		}
		obj := object.New(numberProto, "Number")
		obj.DefineOwn(object.StringName("__primitive__"), object.Descriptor{Value: object.Number(n), Attrs: object.DontEnum})
		return obj, nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: numberProto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	numberProto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})

	define := func(name string, v object.Value) {
		ctor.DefineOwn(object.StringName(name), object.Descriptor{Value: v, Attrs: object.Readonly | object.DontEnum | object.Permanent})
	}
	define("MAX_VALUE", object.Number(math.MaxFloat64))
	define("MIN_VALUE", object.Number(5e-324))
	define("NaN", object.Number(nan()))
	define("POSITIVE_INFINITY", object.Number(inf()))
	define("NEGATIVE_INFINITY", object.Number(-inf()))

	method(m, ctor, functionProto, "isInteger", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n, ok := arg(args, 0).(object.Number)
		if !ok {
			return object.Boolean(false), nil
		}
		f := float64(n)
		return object.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	})
	method(m, ctor, functionProto, "isNaN", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n, ok := arg(args, 0).(object.Number)
		return object.Boolean(ok && math.IsNaN(float64(n))), nil
	})
	method(m, ctor, functionProto, "isFinite", 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		n, ok := arg(args, 0).(object.Number)
		return object.Boolean(ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})

	return ctor
}
