// Package scope implements the lexical scope chain used for variable
// resolution, `var`/`let`/`const` declaration semantics, and `this` binding
// across nested function calls (§4.3, §9 "Scope" in the glossary).
package scope

import (
	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

// DeclKind distinguishes var/let/const for hoisting and redeclaration
// rules.
type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

// Env is the storage strategy for a Scope: either a direct name->value map
// (function/block scopes) or an object-backed environment (the global
// scope, `with` blocks).
type Env interface {
	Define(s *Scope, kind DeclKind, name object.Name, value object.Value) error
	Set(s *Scope, name object.Name, value object.Value, vm object.Invoker) error
	Lookup(s *Scope, name object.Name) (object.Value, bool)
	Delete(s *Scope, name object.Name) bool
}

// Call is non-nil only for a function call's outermost scope (the
// "wrapper" scope, per the teacher's ScopeCall) and carries `this`.
type Call struct {
	This object.Value
}

// Scope is one link in the lexical chain.
type Scope struct {
	Parent      *Scope
	Strict      bool
	Env         Env
	DoNotDelete map[object.Name]struct{}
	Call        *Call
}

func New(env Env, parent *Scope) *Scope {
	return &Scope{Env: env, Parent: parent, DoNotDelete: make(map[object.Name]struct{})}
}

// NewVarScope creates a scope backed by a plain map — the common case for
// function bodies and blocks.
func NewVarScope(parent *Scope) *Scope {
	return New(make(DirectEnv), parent)
}

// IsStrict reports whether this scope or any enclosing scope entered strict
// mode (propagated by the `ir` package from "use strict" detection).
func IsStrict(s *Scope) bool {
	for ; s != nil; s = s.Parent {
		if s.Strict {
			return true
		}
	}
	return false
}

// CurrentCall finds the nearest enclosing function-call scope, used to
// resolve `this` (§4.3). Returns nil at top level (script scope).
func CurrentCall(s *Scope) *Scope {
	for ; s != nil; s = s.Parent {
		if s.Call != nil {
			return s
		}
	}
	return nil
}

// DirectEnv is a flat name->value map. `var` declarations hoist to the
// nearest enclosing function/script scope (skipping block scopes) unless
// this scope itself is a call-wrapper scope.
type DirectEnv map[object.Name]object.Value

func (env DirectEnv) Define(s *Scope, kind DeclKind, name object.Name, value object.Value) error {
	if kind == DeclVar && s.Call == nil && s.Parent != nil {
		return s.Parent.Env.Define(s.Parent, kind, name, value)
	}
	if _, exists := env[name]; exists && kind == DeclVar {
		return nil // re-declaration of var is a no-op, keeps prior value intent to caller
	}
	env[name] = value
	return nil
}

func (env DirectEnv) Set(s *Scope, name object.Name, value object.Value, vm object.Invoker) error {
	if _, ok := env[name]; ok {
		env[name] = value
		return nil
	}
	if s.Parent != nil {
		return s.Parent.Env.Set(s.Parent, name, value, vm)
	}
	return jserr.NewReferenceError("%s is not defined", name.String())
}

func (env DirectEnv) Lookup(s *Scope, name object.Name) (object.Value, bool) {
	if v, ok := env[name]; ok {
		return v, true
	}
	if s.Parent != nil {
		return s.Parent.Env.Lookup(s.Parent, name)
	}
	return object.Undefined{}, false
}

func (env DirectEnv) Delete(s *Scope, name object.Name) bool {
	if _, dnd := s.DoNotDelete[name]; dnd {
		return false
	}
	if _, ok := env[name]; !ok {
		return false
	}
	delete(env, name)
	return true
}

// ObjectEnv is an environment backed by a script object — used for the
// global scope, so that `var x` at top level becomes a property of the
// global object, and for DYNAMIC_SCOPE / `with` blocks.
type ObjectEnv struct{ *object.Object }

func (env ObjectEnv) Define(s *Scope, kind DeclKind, name object.Name, value object.Value) error {
	return env.SetProperty(name, value, nil)
}

func (env ObjectEnv) Set(s *Scope, name object.Name, value object.Value, vm object.Invoker) error {
	if s.Strict && !env.HasOwnProperty(name) {
		return jserr.NewReferenceError("assignment to undeclared variable %s", name.String())
	}
	return env.SetProperty(name, value, vm)
}

func (env ObjectEnv) Lookup(s *Scope, name object.Name) (object.Value, bool) {
	// A property found on the prototype chain is still a valid free-variable
	// binding (mirrors PARENT_PROTO_PROPERTIES-style resolution through the
	// global object's prototype); a name found nowhere on it is not.
	for cur := env.Object; cur != nil; cur = cur.Prototype {
		if cur.HasOwnProperty(name) {
			v, err := env.GetProperty(name, nil)
			if err != nil {
				return object.Undefined{}, false
			}
			return v, true
		}
	}
	if s.Parent != nil {
		return s.Parent.Env.Lookup(s.Parent, name)
	}
	return object.Undefined{}, false
}

func (env ObjectEnv) Delete(s *Scope, name object.Name) bool {
	if _, dnd := s.DoNotDelete[name]; dnd {
		return false
	}
	return env.DeleteProperty(name)
}
