package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/object"
)

func TestArithmeticAndStringConcat(t *testing.T) {
	v := run(t, `1 + 2 * 3;`)
	assert.Equal(t, object.Number(7), v)

	v = run(t, `"a" + "b" + 1;`)
	assert.Equal(t, object.String("ab1"), v)
}

func TestStringPrototypeMethods(t *testing.T) {
	v := run(t, `"Hello".toUpperCase();`)
	assert.Equal(t, object.String("HELLO"), v)

	v = run(t, `"  padded  ".trim();`)
	assert.Equal(t, object.String("padded"), v)

	v = run(t, `"abcabc".indexOf("c");`)
	assert.Equal(t, object.Number(2), v)

	v = run(t, `new String("hi").valueOf();`)
	assert.Equal(t, object.String("hi"), v)
}

func TestNumberPrototypeMethods(t *testing.T) {
	v := run(t, `(255).toString(16);`)
	assert.Equal(t, object.String("ff"), v)

	v = run(t, `new Number(42).valueOf();`)
	assert.Equal(t, object.Number(42), v)
}

func TestBooleanWrapperUnboxes(t *testing.T) {
	v := run(t, `new Boolean(true).valueOf();`)
	assert.Equal(t, object.Boolean(true), v)

	v = run(t, `new Boolean(false).toString();`)
	assert.Equal(t, object.String("false"), v)
}

func TestMathObject(t *testing.T) {
	v := run(t, `Math.floor(3.7);`)
	assert.Equal(t, object.Number(3), v)

	v = run(t, `Math.max(1, 9, 4);`)
	assert.Equal(t, object.Number(9), v)

	v = run(t, `Math.pow(2, 10);`)
	assert.Equal(t, object.Number(1024), v)
}

func TestThrownErrorIsCaughtAsErrorInstance(t *testing.T) {
	v := run(t, `
		var caught;
		try {
			null.foo;
		} catch (e) {
			caught = e;
		}
		caught instanceof TypeError;
	`)
	assert.Equal(t, object.Boolean(true), v)
}

func TestThrownErrorNameSurvivesCatch(t *testing.T) {
	v := run(t, `
		var msg;
		try {
			undefinedVariable;
		} catch (e) {
			msg = e.name;
		}
		msg;
	`)
	assert.Equal(t, object.String("ReferenceError"), v)
}

func TestExplicitThrowOfErrorObject(t *testing.T) {
	v := run(t, `
		var got;
		try {
			throw new RangeError("too big");
		} catch (e) {
			got = e.message;
		}
		got;
	`)
	assert.Equal(t, object.String("too big"), v)
}

func TestUncaughtThrowPropagatesAsScriptError(t *testing.T) {
	_, err := runErr(t, `throw new Error("boom");`)
	require.Error(t, err)
	se, ok := err.(*jserr.ScriptError)
	require.True(t, ok)
	assert.NotNil(t, se.Payload)
}

func TestRegExpExecAndTest(t *testing.T) {
	v := run(t, `/o(b)a/.test("foobar");`)
	assert.Equal(t, object.Boolean(true), v)

	v = run(t, `/o(b)a/.exec("foobar")[1];`)
	assert.Equal(t, object.String("b"), v)
}

func TestRegExpGlobalLastIndexAdvances(t *testing.T) {
	v := run(t, `
		var re = /a/g;
		var first = re.exec("banana").index;
		var second = re.exec("banana").index;
		first + "," + second;
	`)
	assert.Equal(t, object.String("1,3"), v)
}

func TestRegExpToStringRoundTrip(t *testing.T) {
	v := run(t, `/abc/gi.toString();`)
	assert.Equal(t, object.String("/abc/gi"), v)
}

func TestStringMatchDelegatesToRegExp(t *testing.T) {
	v := run(t, `"2024-01-02".match(/(\d+)-(\d+)-(\d+)/)[2];`)
	assert.Equal(t, object.String("01"), v)
}
