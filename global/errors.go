package global

import (
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

// initErrorProtos builds Error.prototype plus one constructor/prototype
// pair per error kind in jserr.Kind except KindWrapped, keyed by the global name the host
// scope should bind it under. Each subtype's prototype chains to the
// base errorProto, so `e instanceof Error` holds for every kind.
func initErrorProtos(m *interp.Machine, errorProto, functionProto, objectProto *object.Object) map[string]*object.Object {
	method(m, errorProto, functionProto, "toString", 0, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		obj, err := m.CoerceToObject(this)
		if err != nil {
			return nil, err
		}
		nameV, _ := obj.GetProperty(object.StringName("name"), m)
		name, _ := m.CoerceToString(nameV)
		if name == "" {
			name = "Error"
		}
		msgV, _ := obj.GetProperty(object.StringName("message"), m)
		msg, _ := m.CoerceToString(msgV)
		if msg == "" {
			return object.String(name), nil
		}
		return object.String(name + ": " + msg), nil
	})
	errorProto.DefineOwn(object.StringName("name"), object.Descriptor{Value: object.String("Error"), Attrs: object.DontEnum})
	errorProto.DefineOwn(object.StringName("message"), object.Descriptor{Value: object.String(""), Attrs: object.DontEnum})

	errorCtor := makeErrorCtor(m, functionProto, errorProto, "Error")

	kinds := []jserr.Kind{
		jserr.KindType, jserr.KindRange, jserr.KindSyntax, jserr.KindReference, jserr.KindEvaluator,
	}
	ctors := map[string]*object.Object{"Error": errorCtor}
	for _, k := range kinds {
		name := k.String()
		proto := object.New(errorProto, "Error")
		proto.DefineOwn(object.StringName("name"), object.Descriptor{Value: object.String(name), Attrs: object.DontEnum})
		ctors[name] = makeErrorCtor(m, functionProto, proto, name)
	}
	return ctors
}

func makeErrorCtor(m *interp.Machine, functionProto, proto *object.Object, name string) *object.Object {
	ctor := newNative(m, functionProto, name, 1, func(m *interp.Machine, this object.Value, args []object.Value, isNew bool) (object.Value, error) {
		var obj *object.Object
		if isNew {
			obj, _ = this.(*object.Object)
		}
		if obj == nil {
			obj = object.New(proto, "Error")
		}
		if len(args) > 0 {
			if _, ok := args[0].(object.Undefined); !ok {
				msg, err := m.CoerceToString(args[0])
				if err != nil {
					return nil, err
				}
				obj.DefineOwn(object.StringName("message"), object.Descriptor{Value: object.String(msg), Attrs: object.DontEnum})
			}
		}
		return obj, nil
	})
	ctor.DefineOwn(object.StringName("prototype"), object.Descriptor{
		Value: proto, Attrs: object.Readonly | object.DontEnum | object.Permanent,
	})
	proto.DefineOwn(object.StringName("constructor"), object.Descriptor{Value: ctor, Attrs: object.DontEnum})
	return ctor
}
