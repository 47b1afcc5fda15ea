package global

import (
	"github.com/scriptkit/ecma/ecmacontext"
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

// Standard is the bootstrap result: the prototypes a Machine links new
// closures/literals against, plus the global object itself.
type Standard struct {
	Global        *object.Object
	ObjectProto   *object.Object
	FunctionProto *object.Object
	ArrayProto    *object.Object
	StringProto   *object.Object
	NumberProto   *object.Object
	BooleanProto  *object.Object
	ErrorProto    *object.Object
	RegExpProto   *object.Object
}

// InitStandardObjects builds the global object graph for ctx and returns
// a Machine ready to run scripts against it. When sealed is true, the
// global object and the builtin prototypes are sealed afterward (§4.3's
// "init with sealed standard objects" mode): they accept no new
// properties and no deletions. Their existing properties stay writable,
// and the constructors, Math and the error subtype prototypes are not
// sealed.
func InitStandardObjects(ctx *ecmacontext.Context, sealed bool) (*interp.Machine, *Standard) {
	objectProto := object.New(nil, "Object")
	functionProto := object.New(objectProto, "Function")
	arrayProto := object.New(objectProto, "Array")
	stringProto := object.New(objectProto, "String")
	numberProto := object.New(objectProto, "Number")
	booleanProto := object.New(objectProto, "Boolean")
	errorProto := object.New(objectProto, "Error")
	regexpProto := object.New(objectProto, "RegExp")

	global := object.New(objectProto, "global")

	m := interp.New(ctx, global)
	m.SetPrototypes(objectProto, functionProto, arrayProto)

	std := &Standard{
		Global: global, ObjectProto: objectProto, FunctionProto: functionProto,
		ArrayProto: arrayProto, StringProto: stringProto, NumberProto: numberProto,
		BooleanProto: booleanProto, ErrorProto: errorProto, RegExpProto: regexpProto,
	}

	initObjectProto(m, objectProto, functionProto)
	initFunctionProto(m, functionProto)
	functionCtor := initFunctionConstructor(m, functionProto, objectProto)
	objectCtor := initObjectConstructor(m, functionProto, objectProto)
	arrayCtor := initArrayProto(m, arrayProto, functionProto, objectProto)
	stringCtor := initStringProto(m, stringProto, functionProto, objectProto)
	numberCtor := initNumberProto(m, numberProto, functionProto, objectProto)
	booleanCtor := initBooleanProto(m, booleanProto, functionProto, objectProto)
	errCtors := initErrorProtos(m, errorProto, functionProto, objectProto)
	regexpCtor := initRegExpProto(m, regexpProto, functionProto, objectProto)
	mathObj := newMathObject(m, objectProto, functionProto)

	m.ErrorFactory = func(kind jserr.Kind, message string) object.Value {
		ctor, ok := errCtors[kind.String()]
		if !ok {
			ctor = errCtors["Error"]
		}
		protoV, _ := ctor.GetProperty(object.StringName("prototype"), m)
		proto, _ := protoV.(*object.Object)
		if proto == nil {
			proto = errorProto
		}
		obj := object.New(proto, "Error")
		obj.DefineOwn(object.StringName("message"), object.Descriptor{Value: object.String(message), Attrs: object.DontEnum})
		return obj
	}

	define := func(name string, v object.Value) {
		global.DefineOwn(object.StringName(name), object.Descriptor{Value: v, Attrs: object.DontEnum})
	}
	define("Object", objectCtor)
	define("Function", functionCtor)
	define("Array", arrayCtor)
	define("String", stringCtor)
	define("Number", numberCtor)
	define("Boolean", booleanCtor)
	define("RegExp", regexpCtor)
	define("Math", mathObj)
	for name, ctor := range errCtors {
		define(name, ctor)
	}
	define("undefined", object.Undefined{})
	define("NaN", object.Number(nan()))
	define("Infinity", object.Number(inf()))

	method(m, global, functionProto, "print", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		// host convenience hook, mirrors the teacher's $print builtin.
		return object.Undefined{}, nil
	})

	if sealed {
		for _, o := range []*object.Object{
			global, objectProto, functionProto, arrayProto, stringProto,
			numberProto, booleanProto, errorProto, regexpProto,
		} {
			o.Seal()
		}
	}

	return m, std
}

func nan() float64 { var z float64; return z / z }
func inf() float64 { var z float64; return 1 / z }
