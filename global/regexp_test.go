package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptkit/ecma/interp"
	"github.com/scriptkit/ecma/object"
)

func TestRegExpDotAllProperty(t *testing.T) {
	v := run(t, `/a.b/s.dotAll;`)
	assert.Equal(t, object.Boolean(true), v)

	v = run(t, `/a.b/.dotAll;`)
	assert.Equal(t, object.Boolean(false), v)

	v = run(t, `/a.b/.unicode;`)
	assert.Equal(t, object.Undefined{}, v)
}

func TestRegExpCompileRecompilesInPlace(t *testing.T) {
	v := run(t, `
		var re = /foo/;
		re.compile("bar", "gi");
		re.source + "," + re.flags + "," + re.global;
	`)
	assert.Equal(t, object.String("bar,gi,true"), v)
}

func TestRegExpToSourceMatchesToString(t *testing.T) {
	v := run(t, `/abc/gi.toSource() === /abc/gi.toString();`)
	assert.Equal(t, object.Boolean(true), v)
}

// This engine has no script-visible Symbol primitive or computed-member
// access that produces one (interp.getMember always coerces its key to a
// string), so the Symbol.match/matchAll/search protocol points are only
// reachable from Go, exactly how a host embedding this engine would drive
// them directly against a RegExp instance's own properties.

func regexpInstance(t *testing.T, m *interp.Machine, src string) *object.Object {
	t.Helper()
	v := run(t, src)
	obj, ok := v.(*object.Object)
	if !ok {
		t.Fatalf("expected a RegExp instance, got %T", v)
	}
	return obj
}

func TestRegExpSymbolMatchNonGlobalDelegatesToExec(t *testing.T) {
	m := newTestMachine(t)
	re := regexpInstance(t, m, `/o(b)a/;`)
	fnV, err := re.GetProperty(object.SymbolMatch, m)
	require.NoError(t, err)
	fn := fnV.(*object.Object)

	res, err := m.Call(fn, re, []object.Value{object.String("foobar")})
	require.NoError(t, err)
	arr := res.(*object.Object)
	v, err := arr.GetProperty(object.StringName("1"), m)
	require.NoError(t, err)
	assert.Equal(t, object.String("b"), v)
}

func TestRegExpSymbolMatchGlobalCollectsAllSubstrings(t *testing.T) {
	m := newTestMachine(t)
	re := regexpInstance(t, m, `/a/g;`)
	fnV, err := re.GetProperty(object.SymbolMatch, m)
	require.NoError(t, err)
	fn := fnV.(*object.Object)

	res, err := m.Call(fn, re, []object.Value{object.String("banana")})
	require.NoError(t, err)
	arr := res.(*object.Object)
	length, err := arr.GetProperty(object.StringName("length"), m)
	require.NoError(t, err)
	assert.Equal(t, object.Number(3), length)
	first, err := arr.GetProperty(object.StringName("0"), m)
	require.NoError(t, err)
	assert.Equal(t, object.String("a"), first)
}

func TestRegExpSymbolSearchDoesNotAdvanceLastIndex(t *testing.T) {
	m := newTestMachine(t)
	re := regexpInstance(t, m, `/a/g;`)
	re.SetProperty(object.StringName("lastIndex"), object.Number(3), m)
	fnV, err := re.GetProperty(object.SymbolSearch, m)
	require.NoError(t, err)
	fn := fnV.(*object.Object)

	idx, err := m.Call(fn, re, []object.Value{object.String("banana")})
	require.NoError(t, err)
	assert.Equal(t, object.Number(1), idx)

	lastIndex, err := re.GetProperty(object.StringName("lastIndex"), m)
	require.NoError(t, err)
	assert.Equal(t, object.Number(3), lastIndex)
}

func TestRegExpSymbolMatchAllDrainsManualIterator(t *testing.T) {
	m := newTestMachine(t)
	re := regexpInstance(t, m, `/a/g;`)
	fnV, err := re.GetProperty(object.SymbolMatchAll, m)
	require.NoError(t, err)
	fn := fnV.(*object.Object)

	iterV, err := m.Call(fn, re, []object.Value{object.String("banana")})
	require.NoError(t, err)
	iter := iterV.(*object.Object)
	nextV, err := iter.GetProperty(object.StringName("next"), m)
	require.NoError(t, err)
	next := nextV.(*object.Object)

	var out string
	for {
		stepV, err := m.Call(next, iter, nil)
		require.NoError(t, err)
		step := stepV.(*object.Object)
		done, _ := step.GetProperty(object.StringName("done"), m)
		if done == object.Boolean(true) {
			break
		}
		value, _ := step.GetProperty(object.StringName("value"), m)
		match := value.(*object.Object)
		whole, _ := match.GetProperty(object.StringName("0"), m)
		out += string(whole.(object.String))
	}
	assert.Equal(t, "aaa", out)
}

func TestRegExpLegacyStaticsUpdateAfterExec(t *testing.T) {
	v := run(t, `
		/(\w+)-(\w+)/.exec("foo-bar");
		RegExp.lastMatch + "|" + RegExp.$1 + "|" + RegExp.$2;
	`)
	assert.Equal(t, object.String("foo-bar|foo|bar"), v)
}

func TestRegExpLegacyStaticsUpdateAfterStringMatch(t *testing.T) {
	v := run(t, `
		"2024-01".match(/(\d+)-(\d+)/);
		RegExp.$1 + "/" + RegExp.$2;
	`)
	assert.Equal(t, object.String("2024/01"), v)
}

func TestRegExpLegacyStaticsUpdateAfterTest(t *testing.T) {
	v := run(t, `
		/x(yz)/.test("wxyz");
		RegExp.$1;
	`)
	assert.Equal(t, object.String("yz"), v)
}
