package global

import (
	"math"
	"math/rand"

	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

// newMathObject builds the Math global: a plain object (not callable,
// not new-able) carrying the standard constants and one-or-two-argument
// numeric methods.
func newMathObject(m *interp.Machine, objectProto, functionProto *object.Object) *object.Object {
	obj := object.New(objectProto, "Math")

	define := func(name string, v float64) {
		obj.DefineOwn(object.StringName(name), object.Descriptor{Value: object.Number(v), Attrs: object.Readonly | object.DontEnum | object.Permanent})
	}
	define("E", math.E)
	define("PI", math.Pi)
	define("LN2", math.Ln2)
	define("LN10", math.Log(10))
	define("LOG2E", 1/math.Ln2)
	define("LOG10E", 1/math.Log(10))
	define("SQRT2", math.Sqrt2)
	define("SQRT1_2", math.Sqrt(0.5))

	unary := func(name string, fn func(float64) float64) {
		method(m, obj, functionProto, name, 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
			n, err := m.CoerceToNumber(arg(args, 0))
			if err != nil {
				return nil, err
			}
			return object.Number(fn(n)), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("atan", math.Atan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("log", math.Log)
	unary("exp", math.Exp)
	unary("cbrt", math.Cbrt)

	method(m, obj, functionProto, "pow", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		base, err := m.CoerceToNumber(arg(args, 0))
		if err != nil {
			return nil, err
		}
		exp, err := m.CoerceToNumber(arg(args, 1))
		if err != nil {
			return nil, err
		}
		return object.Number(math.Pow(base, exp)), nil
	})

	method(m, obj, functionProto, "atan2", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		y, err := m.CoerceToNumber(arg(args, 0))
		if err != nil {
			return nil, err
		}
		x, err := m.CoerceToNumber(arg(args, 1))
		if err != nil {
			return nil, err
		}
		return object.Number(math.Atan2(y, x)), nil
	})

	method(m, obj, functionProto, "max", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		best := math.Inf(-1)
		for _, a := range args {
			n, err := m.CoerceToNumber(a)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(n) {
				return object.Number(math.NaN()), nil
			}
			if n > best {
				best = n
			}
		}
		return object.Number(best), nil
	})

	method(m, obj, functionProto, "min", 2, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		best := math.Inf(1)
		for _, a := range args {
			n, err := m.CoerceToNumber(a)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(n) {
				return object.Number(math.NaN()), nil
			}
			if n < best {
				best = n
			}
		}
		return object.Number(best), nil
	})

	method(m, obj, functionProto, "random", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		return object.Number(rand.Float64()), nil
	})

	return obj
}
