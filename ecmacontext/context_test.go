package ecmacontext

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeContextAssignsID(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	assert.NotEqual(t, uuid.Nil, ctx.ID())
}

func TestEnterFailsWhenAlreadyBound(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	tok, err := ctx.Enter(nil)
	require.NoError(t, err)
	defer ctx.Exit(tok)

	_, err = ctx.Enter(nil)
	require.Error(t, err)
}

func TestEnterNestsWithMatchingToken(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	tok, err := ctx.Enter(nil)
	require.NoError(t, err)

	inner, err := ctx.Enter(tok)
	require.NoError(t, err)
	assert.Equal(t, tok, inner)

	require.NoError(t, ctx.Exit(inner))
	assert.True(t, ctx.IsBound())
	require.NoError(t, ctx.Exit(tok))
	assert.False(t, ctx.IsBound())
}

func TestEnterRejectsForeignToken(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	tok, err := ctx.Enter(nil)
	require.NoError(t, err)
	defer ctx.Exit(tok)

	other := NewFactory(Config{}).MakeContext()
	otherTok, err := other.Enter(nil)
	require.NoError(t, err)
	defer other.Exit(otherTok)

	_, err = ctx.Enter(otherTok)
	require.Error(t, err)
}

func TestCallNestedReentersWithoutFailing(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	var ran bool
	err := ctx.Call(func(c *Context) error {
		tok := c.CurrentToken()
		return c.CallNested(tok, func(c *Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, ctx.IsBound())
}

func TestCallFailsWhileAlreadyBoundElsewhere(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	var wg sync.WaitGroup
	entered := make(chan struct{})
	release := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.Call(func(c *Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	err := ctx.Call(func(c *Context) error { return nil })
	require.Error(t, err)
	close(release)
	wg.Wait()
}

func TestObserveInstructionCountReceivesTotalBeforeReset(t *testing.T) {
	ctx := NewFactory(Config{InstructionObserverThreshold: 5}).MakeContext()
	var seen int64
	err := ctx.ObserveInstructionCount(7, func(total int64) error {
		seen = total
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), seen)

	err = ctx.ObserveInstructionCount(1, func(total int64) error {
		t.Fatalf("observer should not run below threshold")
		return nil
	})
	require.NoError(t, err)
}

func TestResumeContinuationDeliversValueToAwait(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	ctx.SetInterpretedMode(true)
	ctx.SetTopCallIsScript(true)

	cont, err := ctx.CaptureContinuation(ctx.InterpretedMode())
	require.NoError(t, err)

	done := make(chan interface{}, 1)
	go func() { done <- cont.Await() }()

	require.NoError(t, ctx.ResumeContinuation(cont, "resumed"))
	assert.Equal(t, "resumed", <-done)

	assert.Error(t, ctx.ResumeContinuation(cont, "again"))
}

func TestCaptureContinuationRequiresInterpretedMode(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	ctx.SetTopCallIsScript(true)
	_, err := ctx.CaptureContinuation(false)
	require.Error(t, err)
}

func TestCaptureContinuationRequiresScriptTopCall(t *testing.T) {
	ctx := NewFactory(Config{}).MakeContext()
	ctx.SetInterpretedMode(true)
	_, err := ctx.CaptureContinuation(ctx.InterpretedMode())
	require.Error(t, err)
}
