package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileStringProducesScript(t *testing.T) {
	script, fn, err := CompileString("test.js", `1 + 1;`, CompileOptions{})
	require.NoError(t, err)
	assert.Nil(t, fn)
	assert.NotNil(t, script)
	assert.NotEqual(t, script.ID().String(), "")
}

func TestCompileStringTwiceYieldsDistinctIDs(t *testing.T) {
	a, _, err := CompileString("test.js", `1;`, CompileOptions{})
	require.NoError(t, err)
	b, _, err := CompileString("test.js", `1;`, CompileOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestCompileStringReturnFunctionRequiresSingleFunction(t *testing.T) {
	_, fn, err := CompileString("test.js", `function f(a, b) { return a + b; }`, CompileOptions{ReturnFunction: true})
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, "f", fn.Name())
}

func TestCompileStringReturnFunctionRejectsMultipleStatements(t *testing.T) {
	_, _, err := CompileString("test.js", `var x = 1; function f() {}`, CompileOptions{ReturnFunction: true})
	require.Error(t, err)
}

func TestCompileFunctionSourceBuildsCallableShape(t *testing.T) {
	fn, err := CompileFunctionSource("test.js", []string{"a", "b"}, "return a + b;", false)
	require.NoError(t, err)
	assert.NotNil(t, fn.IR)
}

func TestStringIsCompilableUnitTrueForCompleteProgram(t *testing.T) {
	assert.True(t, StringIsCompilableUnit(`var x = 1;`))
}

func TestStringIsCompilableUnitFalseForIncompleteBlock(t *testing.T) {
	assert.False(t, StringIsCompilableUnit(`if (true) {`))
}

func TestStringIsCompilableUnitTrueForGenuineSyntaxError(t *testing.T) {
	assert.True(t, StringIsCompilableUnit(`var 1x = 2;`))
}
