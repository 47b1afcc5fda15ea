// Package jserr implements the error-reporting and exception-adaptation
// design of §4.5/§7: a pluggable ErrorReporter sink, rich evaluator
// exceptions carrying source position, and the wrapping of non-engine
// throwables at a language boundary.
package jserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds enumerated in §7.
type Kind int

const (
	KindSyntax Kind = iota
	KindReference
	KindType
	KindRange
	KindEvaluator
	KindWrapped
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SyntaxError"
	case KindReference:
		return "ReferenceError"
	case KindType:
		return "TypeError"
	case KindRange:
		return "RangeError"
	case KindEvaluator:
		return "EvaluatorError"
	case KindWrapped:
		return "WrappedError"
	default:
		return "Error"
	}
}

// Position is the source location attached to a runtime error (§4.5).
type Position struct {
	SourceName string
	LineNumber int
	LineSource string
	LineOffset int
}

func (p Position) String() string {
	if p.SourceName == "" && p.LineNumber == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", p.SourceName, p.LineNumber)
}

// ScriptError is the engine-level exception type every raised error
// eventually becomes: it carries a kind, a message, source position, and
// (for script-thrown values) the underlying thrown value via Payload.
type ScriptError struct {
	Kind     Kind
	Message  string
	Pos      Position
	Payload  interface{} // the thrown script value, when Kind came from a `throw`
	Stack    []StackFrame
	wrapped  error
}

type StackFrame struct {
	SourceName string
	Line       int
	Column     int
	Node       string
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if pos := e.Pos.String(); pos != "" {
		msg = fmt.Sprintf("%s (%s)", msg, pos)
	}
	for _, f := range e.Stack {
		msg += fmt.Sprintf("\n\tat %s:%d:%d %s", f.SourceName, f.Line, f.Column, f.Node)
	}
	return msg
}

func (e *ScriptError) Unwrap() error { return e.wrapped }

func New(kind Kind, format string, args ...interface{}) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewSyntaxError(format string, args ...interface{}) *ScriptError {
	return New(KindSyntax, format, args...)
}
func NewReferenceError(format string, args ...interface{}) *ScriptError {
	return New(KindReference, format, args...)
}
func NewTypeError(format string, args ...interface{}) *ScriptError {
	return New(KindType, format, args...)
}
func NewRangeError(format string, args ...interface{}) *ScriptError {
	return New(KindRange, format, args...)
}
func NewEvaluatorError(format string, args ...interface{}) *ScriptError {
	return New(KindEvaluator, format, args...)
}

// Wrap adapts a non-engine error caught at a language boundary (§4.5):
// an existing *ScriptError is re-raised as-is, everything else becomes a
// KindWrapped ScriptError that keeps the original reachable via
// errors.Unwrap/errors.As. Its message carries the github.com/pkg/errors
// "wrapped host exception" prefix unless enhancedJavaAccess is set, in
// which case it is the original error's text.
func Wrap(err error, enhancedJavaAccess bool) *ScriptError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ScriptError); ok {
		return se
	}
	wrapped := errors.Wrap(err, "wrapped host exception")
	se := New(KindWrapped, "%s", wrapped.Error())
	se.wrapped = err
	if enhancedJavaAccess {
		se.Message = err.Error()
	}
	return se
}

// WithPosition attaches source position information, as done when the
// interpreter (or the host-stack walker, for errors raised outside any
// script frame) can determine one.
func (e *ScriptError) WithPosition(p Position) *ScriptError {
	e.Pos = p
	return e
}

func (e *ScriptError) PushFrame(f StackFrame) *ScriptError {
	e.Stack = append(e.Stack, f)
	return e
}

// ErrorReporter is the host SPI of §6: a pluggable sink for warnings,
// recoverable errors, and fatal runtime errors.
type ErrorReporter interface {
	Warning(message, sourceName string, lineNumber int, lineSource string, lineOffset int)
	Error(message, sourceName string, lineNumber int, lineSource string, lineOffset int)
	RuntimeError(message, sourceName string, lineNumber int, lineSource string, lineOffset int) *ScriptError
}

// DefaultReporter writes through a supplied sink function; WarningAsError
// upgrades warnings to errors, per the WARNING_AS_ERROR feature flag.
type DefaultReporter struct {
	Sink           func(level, message string)
	WarningAsError bool
}

func (r *DefaultReporter) Warning(message, sourceName string, lineNumber int, lineSource string, lineOffset int) {
	if r.WarningAsError {
		r.Error(message, sourceName, lineNumber, lineSource, lineOffset)
		return
	}
	r.emit("warning", message, sourceName, lineNumber)
}

func (r *DefaultReporter) Error(message, sourceName string, lineNumber int, lineSource string, lineOffset int) {
	r.emit("error", message, sourceName, lineNumber)
}

func (r *DefaultReporter) RuntimeError(message, sourceName string, lineNumber int, lineSource string, lineOffset int) *ScriptError {
	r.emit("runtimeError", message, sourceName, lineNumber)
	return NewEvaluatorError("%s", message).WithPosition(Position{
		SourceName: sourceName, LineNumber: lineNumber, LineSource: lineSource, LineOffset: lineOffset,
	})
}

func (r *DefaultReporter) emit(level, message, sourceName string, lineNumber int) {
	if r.Sink != nil {
		r.Sink(level, fmt.Sprintf("%s:%d: %s", sourceName, lineNumber, message))
	}
}
