package interp

import (
	"github.com/scriptkit/ecma/ecmacontext"
	"github.com/scriptkit/ecma/object"
)

// topLevelOutcome is the finished value/error pair of a Machine's
// top-level run. A continuation captured partway through does not arrive
// here; it is delivered on the separate pendingCapture channel.
type topLevelOutcome struct {
	value object.Value
	err   error
}

// runTopLevel runs fn (a full script or a resumed suspension) on its own
// goroutine so that a captureContinuation call inside fn can park that
// goroutine on a channel instead of unwinding the Go call stack (§4.1,
// the continuation-capture invariant): every Go frame between here and
// the capture point stays alive, parked, until ResumeContinuation wakes
// it back up.
func (m *Machine) runTopLevel(fn func() (object.Value, error)) (object.Value, error) {
	done := make(chan topLevelOutcome, 1)
	pending := make(chan *ecmacontext.Continuation, 1)
	m.topLevelDone = done
	m.pendingCapture = pending

	go func() {
		v, err := fn()
		done <- topLevelOutcome{value: v, err: err}
	}()

	return m.awaitTopLevel(done, pending)
}

func (m *Machine) awaitTopLevel(done chan topLevelOutcome, pending chan *ecmacontext.Continuation) (object.Value, error) {
	select {
	case out := <-done:
		return out.value, out.err
	case cont := <-pending:
		return m.continuationValue(cont), nil
	}
}

// continuationObjSlot stashes the *ecmacontext.Continuation a capture
// produced behind a script-opaque property, the same boxing convention
// global/regexp.go uses for its compiled-pattern payload.
const continuationObjSlot = "__continuation__"

func (m *Machine) continuationValue(cont *ecmacontext.Continuation) object.Value {
	obj := object.New(m.ObjectProto, "Continuation")
	obj.DefineOwn(object.StringName(continuationObjSlot), object.Descriptor{
		Value: object.Opaque{V: cont}, Attrs: object.DontEnum | object.Permanent,
	})
	return obj
}

// ContinuationFromValue recovers the native continuation boxed by
// continuationValue, for ResumeContinuation's caller.
func ContinuationFromValue(v object.Value) (*ecmacontext.Continuation, bool) {
	obj, ok := v.(*object.Object)
	if !ok {
		return nil, false
	}
	d, ok := obj.GetOwnPropertyDescriptor(object.StringName(continuationObjSlot))
	if !ok {
		return nil, false
	}
	box, ok := d.Value.(object.Opaque)
	if !ok {
		return nil, false
	}
	cont, ok := box.V.(*ecmacontext.Continuation)
	if !ok {
		return nil, false
	}
	return cont, true
}

// CaptureContinuation suspends the calling goroutine mid-evaluation and
// hands a Continuation value back to whichever RunScript/ResumeContinuation
// call is waiting in awaitTopLevel. It returns once ResumeContinuation
// delivers a value, which becomes this call's own return value — exactly
// the "resume delivers the supplied value as the result of the suspending
// call" contract (testable property #14).
func (m *Machine) CaptureContinuation() (object.Value, error) {
	cont, err := m.Ctx.CaptureContinuation(m.Ctx.InterpretedMode())
	if err != nil {
		return nil, err
	}
	m.pendingCapture <- cont
	v := cont.Await()
	if val, ok := v.(object.Value); ok {
		return val, nil
	}
	return object.Undefined{}, nil
}

// ResumeContinuation restarts the call suspended at contValue (the value
// CaptureContinuation returned) with result as its return value, then
// blocks until the script either finishes, throws, or captures another
// continuation — mirroring RunScript's synchronous contract.
func (m *Machine) ResumeContinuation(contValue object.Value, result object.Value) (object.Value, error) {
	cont, ok := ContinuationFromValue(contValue)
	if !ok {
		return nil, m.ThrowTypeError("resumeContinuation called with a value that is not a captured continuation")
	}
	return m.ResumeContinuationWith(cont, result)
}

// ResumeContinuationWith resumes cont with an explicit result value,
// useful to hosts that hold the *ecmacontext.Continuation directly
// instead of its boxed script value.
func (m *Machine) ResumeContinuationWith(cont *ecmacontext.Continuation, value object.Value) (object.Value, error) {
	if err := m.Ctx.ResumeContinuation(cont, value); err != nil {
		return nil, err
	}
	return m.awaitTopLevel(m.topLevelDone, m.pendingCapture)
}
