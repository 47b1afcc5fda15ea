package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptkit/ecma/ecmacontext"
	"github.com/scriptkit/ecma/object"
)

func newTestMachine() *Machine {
	ctx := ecmacontext.NewFactory(ecmacontext.Config{}).MakeContext()
	ctx.SetInterpretedMode(true)
	global := object.New(nil, "global")
	return New(ctx, global)
}

func TestRunTopLevelReturnsValueWithoutCapture(t *testing.T) {
	m := newTestMachine()
	v, err := m.runTopLevel(func() (object.Value, error) {
		return object.String("done"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, object.String("done"), v)
}

func TestCaptureContinuationSuspendsAndResumeDeliversResult(t *testing.T) {
	m := newTestMachine()
	var captured object.Value

	v, err := m.runTopLevel(func() (object.Value, error) {
		m.Ctx.SetTopCallIsScript(true)
		res, err := m.CaptureContinuation()
		if err != nil {
			return nil, err
		}
		captured = res
		return res, nil
	})
	require.NoError(t, err)

	cont, ok := ContinuationFromValue(v)
	require.True(t, ok)
	assert.NotNil(t, cont)

	final, err := m.ResumeContinuation(v, object.String("handed back in"))
	require.NoError(t, err)
	assert.Equal(t, object.String("handed back in"), captured)
	assert.Equal(t, object.String("handed back in"), final)
}

func TestResumeContinuationRejectsNonContinuationValue(t *testing.T) {
	m := newTestMachine()
	_, err := m.ResumeContinuation(object.String("not a continuation"), object.Undefined{})
	require.Error(t, err)
}
