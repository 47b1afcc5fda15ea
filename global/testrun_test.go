package global

import (
	"testing"

	"github.com/scriptkit/ecma/compiler"
	"github.com/scriptkit/ecma/ecmacontext"
	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

// newTestMachine builds a Machine with standard objects installed, for
// tests that want to evaluate script source end to end.
func newTestMachine(t *testing.T) *interp.Machine {
	t.Helper()
	factory := ecmacontext.NewFactory(ecmacontext.Config{})
	ctx := factory.MakeContext()
	m, _ := InitStandardObjects(ctx, false)
	return m
}

// run compiles and executes src against a fresh Machine, failing the test
// on any compile or runtime error.
func run(t *testing.T, src string) object.Value {
	t.Helper()
	m := newTestMachine(t)
	script, _, err := compiler.CompileString(t.Name(), src, compiler.CompileOptions{})
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	v, err := m.RunScript(script)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return v
}

// runErr compiles and executes src, returning the runtime error (or the
// compile error, wrapped) instead of failing the test.
func runErr(t *testing.T, src string) (object.Value, error) {
	t.Helper()
	m := newTestMachine(t)
	script, _, err := compiler.CompileString(t.Name(), src, compiler.CompileOptions{})
	if err != nil {
		return nil, err
	}
	return m.RunScript(script)
}
