package astparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringValidProgram(t *testing.T) {
	res, err := ParseString("test.js", `var x = 1 + 2;`)
	require.NoError(t, err)
	assert.NotNil(t, res.Program)
	assert.NotNil(t, res.File)
}

func TestParseStringSyntaxError(t *testing.T) {
	_, err := ParseString("test.js", `var x = ;`)
	require.Error(t, err)
}

func TestCheckEarlyErrorRejectsWithInStrictMode(t *testing.T) {
	_, err := ParseString("test.js", `"use strict"; with ({}) {}`)
	require.Error(t, err)
}

func TestCheckEarlyErrorRejectsFunctionDeclInStatementPosition(t *testing.T) {
	_, err := ParseString("test.js", `while (true) function f() {}`)
	require.Error(t, err)
}

func TestCheckEarlyErrorRejectsStrictReservedWordAsVarName(t *testing.T) {
	_, err := ParseString("test.js", `"use strict"; var let = 1;`)
	require.Error(t, err)
}

func TestEndedPrematurelyDetectsIncompleteInput(t *testing.T) {
	_, err := ParseString("test.js", `if (true) {`)
	require.Error(t, err)
	assert.True(t, EndedPrematurely(err))
}

func TestEndedPrematurelyFalseForGenuineSyntaxError(t *testing.T) {
	_, err := ParseString("test.js", `var 1x = 2;`)
	require.Error(t, err)
	assert.False(t, EndedPrematurely(err))
}

func TestDumpProducesIndentedTree(t *testing.T) {
	res, err := ParseString("test.js", `var x = 1;`)
	require.NoError(t, err)
	out := Dump(res)
	assert.Contains(t, out, "Program")
}
