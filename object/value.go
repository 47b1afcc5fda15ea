package object

import (
	"fmt"
	"math"
	"strconv"
)

// Value is any ECMAScript value. Primitives are distinct Go types;
// *Object covers both plain objects and callables (Object.Call != nil).
type Value interface {
	ecmaValue()
}

type Undefined struct{}
type Null struct{}
type Boolean bool
type Number float64
type String string
type BigInt int64

func (Undefined) ecmaValue() {}
func (Null) ecmaValue()      {}
func (Boolean) ecmaValue()   {}
func (Number) ecmaValue()    {}
func (String) ecmaValue()    {}
func (BigInt) ecmaValue()    {}
func (*Object) ecmaValue()   {}

// Opaque wraps an arbitrary native payload so packages outside object can
// satisfy the Value interface for hidden-slot bookkeeping (continuations,
// compiled regexp state, legacy-match accumulators, ...) without this
// package needing to know about their concrete types: ecmaValue is
// unexported, so only a type declared in this package can implement Value.
type Opaque struct{ V any }

func (Opaque) ecmaValue() {}

// TypeOf implements the `typeof` operator (symbols excluded: this core
// represents symbols only as property Names, not first-class values, since
// no spec operation needs a standalone Symbol value beyond property keys).
func TypeOf(v Value) string {
	switch v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String:
		return "string"
	case *Object:
		o := v.(*Object)
		if o.Call != nil {
			return "function"
		}
		return "object"
	default:
		panic(fmt.Sprintf("object: unhandled Value type %#v", v))
	}
}

func ToBoolean(v Value) bool {
	switch spec := v.(type) {
	case Undefined, Null:
		return false
	case Boolean:
		return bool(spec)
	case Number:
		return spec != 0 && !math.IsNaN(float64(spec))
	case BigInt:
		return spec != 0
	case String:
		return spec != ""
	case *Object:
		return true
	default:
		panic(fmt.Sprintf("object: unhandled Value type %#v", v))
	}
}

// ToStringPrim renders a primitive value per ECMAScript ToString, for
// values that cannot require further object coercion (callers needing the
// full ToPrimitive-then-ToString algorithm for objects live in interp,
// which has access to the VM needed to invoke toString/valueOf).
func ToStringPrim(v Value) (string, bool) {
	switch spec := v.(type) {
	case Undefined:
		return "undefined", true
	case Null:
		return "null", true
	case Boolean:
		if spec {
			return "true", true
		}
		return "false", true
	case Number:
		return formatNumber(float64(spec)), true
	case BigInt:
		return strconv.FormatInt(int64(spec), 10), true
	case String:
		return string(spec), true
	default:
		return "", false
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
