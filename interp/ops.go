package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

func indexName(i int) string { return strconv.Itoa(i) }

// IndexName is the exported form other packages (global's Array methods)
// use to build numeric property names.
func IndexName(i int) string { return indexName(i) }

// CoerceToObject, CoerceToString, CoerceToNumber and CoerceToPrimitive
// are the exported forms of the ToObject/ToString/ToNumber/ToPrimitive
// abstract operations, for builtin implementations living outside this
// package (global's constructors and prototype methods).
func (m *Machine) CoerceToObject(v object.Value) (*object.Object, error) { return m.coerceToObject(v) }
func (m *Machine) CoerceToString(v object.Value) (string, error)         { return m.coerceToString(v) }
func (m *Machine) CoerceToNumber(v object.Value) (float64, error)        { return m.coerceToNumber(v) }
func (m *Machine) CoerceToPrimitive(v object.Value, hint string) (object.Value, error) {
	return m.coerceToPrimitive(v, hint)
}

// coerceToObject implements ToObject: wraps primitives, passes objects
// through, rejects undefined/null. Strings, numbers and booleans are
// wrapped in an object linked to the prototype of the global String,
// Number or Boolean constructor when one is defined.
func (m *Machine) coerceToObject(v object.Value) (*object.Object, error) {
	switch spec := v.(type) {
	case *object.Object:
		return spec, nil
	case object.Undefined, object.Null:
		return nil, m.ThrowTypeError("cannot convert undefined or null to object")
	default:
		proto, class := m.ObjectProto, "Object"
		wrapper := ""
		switch v.(type) {
		case object.String:
			wrapper = "String"
		case object.Number:
			wrapper = "Number"
		case object.Boolean:
			wrapper = "Boolean"
		}
		ctorV, _ := m.Global.GetProperty(object.StringName(wrapper), m)
		if ctor, ok := ctorV.(*object.Object); ok && wrapper != "" {
			protoV, _ := ctor.GetProperty(object.StringName("prototype"), m)
			if p, ok := protoV.(*object.Object); ok {
				proto, class = p, wrapper
			}
		}
		obj := object.New(proto, class)
		obj.DefineOwn(object.StringName("__primitive__"), object.Descriptor{Value: v, Attrs: object.DontEnum})
		return obj, nil
	}
}

// coerceToPrimitive implements ToPrimitive: for objects it tries
// valueOf then toString (hint "default"/"number") or the reverse order
// for hint "string", per §7.1.1 of the language this core targets.
func (m *Machine) coerceToPrimitive(v object.Value, hint string) (object.Value, error) {
	obj, ok := v.(*object.Object)
	if !ok {
		return v, nil
	}
	order := []string{"valueOf", "toString"}
	if hint == "string" {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		methodV, err := obj.GetProperty(object.StringName(name), m)
		if err != nil {
			return nil, err
		}
		method, ok := methodV.(*object.Object)
		if !ok || method.Call == nil {
			continue
		}
		res, err := m.Call(method, obj, nil)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(*object.Object); !isObj {
			return res, nil
		}
	}
	return nil, m.ThrowTypeError("cannot convert object to primitive value")
}

func (m *Machine) coerceToNumber(v object.Value) (float64, error) {
	switch spec := v.(type) {
	case object.Number:
		return float64(spec), nil
	case object.Boolean:
		if spec {
			return 1, nil
		}
		return 0, nil
	case object.Undefined:
		return math.NaN(), nil
	case object.Null:
		return 0, nil
	case object.String:
		s := strings.TrimSpace(string(spec))
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	case object.BigInt:
		return float64(spec), nil
	case *object.Object:
		prim, err := m.coerceToPrimitive(spec, "number")
		if err != nil {
			return 0, err
		}
		return m.coerceToNumber(prim)
	default:
		return math.NaN(), nil
	}
}

func (m *Machine) coerceToString(v object.Value) (string, error) {
	if s, ok := object.ToStringPrim(v); ok {
		return s, nil
	}
	prim, err := m.coerceToPrimitive(v, "string")
	if err != nil {
		return "", err
	}
	if s, ok := object.ToStringPrim(prim); ok {
		return s, nil
	}
	return "", m.ThrowTypeError("cannot convert to string")
}

// strictEqual implements ===, no coercion.
func strictEqual(a, b object.Value) bool {
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
	case object.Number:
		y, ok := b.(object.Number)
		return ok && x == y
	case object.BigInt:
		y, ok := b.(object.BigInt)
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

// looseEqual implements ==, including the ECMA abstract equality
// coercions (number<->string, boolean<->anything, object<->primitive),
// capped to avoid infinite ToPrimitive loops through pathological
// valueOf/toString pairs.
func (m *Machine) looseEqual(a, b object.Value, depth int) (bool, error) {
	if depth > 4 {
		return false, nil
	}
	if strictEqual(a, b) {
		return true, nil
	}
	_, aNull := a.(object.Null)
	_, aUndef := a.(object.Undefined)
	_, bNull := b.(object.Null)
	_, bUndef := b.(object.Undefined)
	if (aNull || aUndef) && (bNull || bUndef) {
		return true, nil
	}
	if aNull || aUndef || bNull || bUndef {
		return false, nil
	}

	an, aIsNum := a.(object.Number)
	bs, bIsStr := b.(object.String)
	if aIsNum && bIsStr {
		bn, err := m.coerceToNumber(bs)
		if err != nil {
			return false, err
		}
		return float64(an) == bn, nil
	}
	as, aIsStr := a.(object.String)
	bn, bIsNum := b.(object.Number)
	if aIsStr && bIsNum {
		an, err := m.coerceToNumber(as)
		if err != nil {
			return false, err
		}
		return an == float64(bn), nil
	}

	if ab, ok := a.(object.Boolean); ok {
		an, _ := m.coerceToNumber(ab)
		return m.looseEqual(object.Number(an), b, depth+1)
	}
	if bb, ok := b.(object.Boolean); ok {
		bn, _ := m.coerceToNumber(bb)
		return m.looseEqual(a, object.Number(bn), depth+1)
	}

	_, aIsObj := a.(*object.Object)
	_, bIsObj := b.(*object.Object)
	if aIsObj && !bIsObj {
		prim, err := m.coerceToPrimitive(a, "default")
		if err != nil {
			return false, err
		}
		return m.looseEqual(prim, b, depth+1)
	}
	if bIsObj && !aIsObj {
		prim, err := m.coerceToPrimitive(b, "default")
		if err != nil {
			return false, err
		}
		return m.looseEqual(a, prim, depth+1)
	}

	return false, nil
}

// addition implements the `+` operator's ToPrimitive-then-dispatch rule:
// string concatenation if either operand's primitive is a string,
// numeric addition otherwise.
func (m *Machine) addition(a, b object.Value) (object.Value, error) {
	pa, err := m.coerceToPrimitive(a, "default")
	if err != nil {
		return nil, err
	}
	pb, err := m.coerceToPrimitive(b, "default")
	if err != nil {
		return nil, err
	}
	_, aStr := pa.(object.String)
	_, bStr := pb.(object.String)
	if aStr || bStr {
		sa, err := m.coerceToString(pa)
		if err != nil {
			return nil, err
		}
		sb, err := m.coerceToString(pb)
		if err != nil {
			return nil, err
		}
		return object.String(sa + sb), nil
	}
	na, err := m.coerceToNumber(pa)
	if err != nil {
		return nil, err
	}
	nb, err := m.coerceToNumber(pb)
	if err != nil {
		return nil, err
	}
	return object.Number(na + nb), nil
}

// arithmeticOp implements the other binary arithmetic operators.
func (m *Machine) arithmeticOp(op string, a, b object.Value) (object.Value, error) {
	na, err := m.coerceToNumber(a)
	if err != nil {
		return nil, err
	}
	nb, err := m.coerceToNumber(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		return object.Number(na - nb), nil
	case "*":
		return object.Number(na * nb), nil
	case "/":
		return object.Number(na / nb), nil
	case "%":
		return object.Number(floatRemainder(na, nb)), nil
	case "&":
		return object.Number(float64(toInt32(na) & toInt32(nb))), nil
	case "|":
		return object.Number(float64(toInt32(na) | toInt32(nb))), nil
	case "^":
		return object.Number(float64(toInt32(na) ^ toInt32(nb))), nil
	case "<<":
		return object.Number(float64(toInt32(na) << (toUint32(nb) & 31))), nil
	case ">>":
		return object.Number(float64(toInt32(na) >> (toUint32(nb) & 31))), nil
	case ">>>":
		return object.Number(float64(toUint32(na) >> (toUint32(nb) & 31))), nil
	default:
		return nil, m.ThrowEvaluatorError("unsupported operator %s", op)
	}
}

// floatRemainder implements the ECMA `%` semantics, which differ from
// Go's math.Mod only at the infinities/NaN edges math.Mod already
// handles correctly; kept as a named step to mirror the language spec's
// own explicit remainder algorithm.
func floatRemainder(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || b == 0 {
		return math.NaN()
	}
	if math.IsInf(b, 0) {
		return a
	}
	if a == 0 {
		return a
	}
	return math.Mod(a, b)
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(f)))
}

func toUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(f))
}

// compareLessThan implements the abstract relational comparison used by
// <, <=, >, >=: numeric comparison, unless both operands' ToPrimitive
// results are strings, in which case Go's native (byte-lexicographic)
// string ordering is used directly.
func (m *Machine) compareLessThan(a, b object.Value) (bool, bool, error) {
	pa, err := m.coerceToPrimitive(a, "number")
	if err != nil {
		return false, false, err
	}
	pb, err := m.coerceToPrimitive(b, "number")
	if err != nil {
		return false, false, err
	}
	sa, aIsStr := pa.(object.String)
	sb, bIsStr := pb.(object.String)
	if aIsStr && bIsStr {
		return sa < sb, true, nil
	}
	na, err := m.coerceToNumber(pa)
	if err != nil {
		return false, false, err
	}
	nb, err := m.coerceToNumber(pb)
	if err != nil {
		return false, false, err
	}
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false, false, nil
	}
	return na < nb, true, nil
}

func (m *Machine) ThrowEvaluatorError(format string, args ...interface{}) error {
	return jserr.NewEvaluatorError(format, args...)
}
