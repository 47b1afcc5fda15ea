package interp

import (
	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

// ThrowTypeError implements object.Invoker, letting the object package
// raise a TypeError (e.g. "getter is not callable") without importing
// interp.
func (m *Machine) ThrowTypeError(format string, args ...interface{}) error {
	return jserr.NewTypeError(format, args...)
}

func (m *Machine) ThrowReferenceError(format string, args ...interface{}) error {
	return jserr.NewReferenceError(format, args...)
}

func (m *Machine) ThrowSyntaxError(format string, args ...interface{}) error {
	return jserr.NewSyntaxError(format, args...)
}

func (m *Machine) ThrowRangeError(format string, args ...interface{}) error {
	return jserr.NewRangeError(format, args...)
}

// throwValue wraps a script-level `throw` of an arbitrary value into the
// *jserr.ScriptError carrier, so try/catch can later unwrap Payload back
// to the original object.Value.
func (m *Machine) throwValue(v object.Value) error {
	se := jserr.NewEvaluatorError("%s", describeThrown(v))
	se.Payload = v
	return se
}

func describeThrown(v object.Value) string {
	if s, ok := object.ToStringPrim(v); ok {
		return s
	}
	return "[object]"
}
