// Package ecmacontext implements the per-thread execution context
// lifecycle of §4.1: binding to a calling goroutine, nesting, sealing,
// feature flags, thread-local storage, the microtask queue, and
// continuation capture/resume bookkeeping.
//
// The type is named Context rather than shadowing the standard library's
// context.Context; this package never imports it and the two are
// unrelated.
package ecmacontext

import (
	"os"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scriptkit/ecma/jserr"
	"github.com/scriptkit/ecma/version"
)

const numFeatures = 22

// enterToken is the owner-token minted on each Enter; Go exposes no public
// goroutine-id API, so binding is tracked by requiring the same token back
// at Exit rather than by recording a real thread identity. This still
// detects the double-enter misuse case synchronously, which is the
// observable invariant §4.1/§8-1 actually test against. The byte field
// makes every minted token a distinct allocation: pointers to zero-size
// values may compare equal.
type enterToken struct{ _ byte }

// Config is the host-supplied construction-time configuration (AMBIENT:
// logging/config per SPEC_FULL §2).
type Config struct {
	Version                Version
	DefaultFeatures        map[version.Feature]bool
	MaxStackDepth          int
	InstructionObserverThreshold int64
	Logger                 *zerolog.Logger
}

type Version = version.Version

// Factory mints Contexts and is notified when one fully detaches.
type Factory struct {
	cfg Config
}

func NewFactory(cfg Config) *Factory { return &Factory{cfg: cfg} }

func (f *Factory) MakeContext() *Context {
	lv := f.cfg.Version
	if lv == version.UNKNOWN {
		lv = version.DEFAULT
	}
	flags := bitset.New(numFeatures)
	defaults := f.cfg.DefaultFeatures
	if defaults == nil {
		defaults = version.Defaults(lv)
	}
	for feat, on := range defaults {
		if on {
			flags.Set(uint(feat))
		}
	}
	logger := f.cfg.Logger
	if logger == nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger = &l
	}
	maxDepth := f.cfg.MaxStackDepth // 0 means unbounded, per §5
	return &Context{
		id:            uuid.New(),
		factory:       f,
		langVersion:   lv,
		features:      flags,
		threadLocal:   make(map[interface{}]interface{}),
		maxStackDepth: maxDepth,
		interpretedMode: true,
		instrThreshold: f.cfg.InstructionObserverThreshold,
		log:           logger,
		errorReporter: &jserr.DefaultReporter{Sink: defaultSink(logger)},
	}
}

func (f *Factory) onContextReleased(c *Context) {
	c.log.Debug().Str("context", c.id.String()).Msg("context detached from goroutine")
}

func defaultSink(l *zerolog.Logger) func(level, message string) {
	return func(level, message string) {
		switch level {
		case "warning":
			l.Warn().Msg(message)
		case "runtimeError":
			l.Error().Msg(message)
		default:
			l.Error().Msg(message)
		}
	}
}

// Microtask is a deferred callable enqueued by script or host code.
type Microtask func() error

// ErrorReporter re-exports jserr's SPI so callers don't need to import
// jserr directly just to configure a Context.
type ErrorReporter = jserr.ErrorReporter

// Debugger is the minimal compilation-done hook (§6); step/breakpoint
// hooks are out of scope here.
type Debugger interface {
	HandleCompilationDone(c *Context, debuggable interface{}, source string)
}

// WrapFactory wraps host values as script objects when they cross into
// the global scope.
type WrapFactory interface {
	Wrap(host interface{}) (interface{}, error)
}

// SecurityController and ClassShutter are write-once-per-context SPIs.
type SecurityController interface{ CheckAccess(target interface{}) error }
type ClassShutter interface{ VisibleToScripts(className string) bool }

// Context is the per-thread ambient state (§3).
type Context struct {
	mu sync.Mutex

	id      uuid.UUID
	factory *Factory

	boundToken *enterToken
	nesting    int

	langVersion version.Version
	features    *bitset.BitSet

	errorReporter      ErrorReporter
	locale             string
	timeZone           string
	wrapFactory        WrapFactory
	debugger           Debugger
	debuggerData       interface{}
	securityController SecurityController
	secSet             bool
	classShutter       ClassShutter
	classShutterSet    bool
	appClassLoader     interface{}

	threadLocal map[interface{}]interface{}

	sealed   bool
	sealKey  interface{}

	microtasks []Microtask

	unhandledRejections []interface{}

	generateSource     bool
	generateDebugInfo  bool
	interpretedMode    bool
	maxStackDepth      int
	instrThreshold     int64
	instrCount         int64

	currentActivation interface{}
	topCallScope      interface{}
	continuationsTop  bool

	log *zerolog.Logger
}

func (c *Context) ID() uuid.UUID { return c.id }

func (c *Context) Version() version.Version { return c.langVersion }

func (c *Context) HasFeature(f version.Feature) bool {
	if f == version.StrictMode {
		return c.features.Test(uint(version.StrictMode))
	}
	if (f == version.StrictVars || f == version.StrictEval) && c.features.Test(uint(version.StrictMode)) {
		return true
	}
	return c.features.Test(uint(f))
}

func (c *Context) SetFeature(f version.Feature, on bool) error {
	if c.sealed {
		return jserr.NewTypeError("context is sealed")
	}
	if on {
		c.features.Set(uint(f))
	} else {
		c.features.Clear(uint(f))
	}
	return nil
}

func (c *Context) Logger() *zerolog.Logger { return c.log }

func (c *Context) ErrorReporter() ErrorReporter { return c.errorReporter }

func (c *Context) SetErrorReporter(r ErrorReporter) error {
	if c.sealed {
		return jserr.NewTypeError("context is sealed")
	}
	c.errorReporter = r
	return nil
}

// Token identifies an outstanding Enter/Exit pair. It is an opaque handle:
// a caller that holds one may pass it back to Enter to nest a further call
// onto the same binding; a caller with no Token is asking for a fresh bind
// and fails if the context is already bound to someone else's Token.
type Token = *enterToken

// Enter binds this context to the calling logical flow. Called with a nil
// Token it performs a fresh bind and fails if the context is already
// bound (§4.1/§8-1's "entering a context already bound to another thread
// fails"). Called with the Token an earlier Enter returned, it nests: the
// context must still be bound to that same Token, and the nesting counter
// increments instead of rebinding.
func (c *Context) Enter(tok Token) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != nil {
		if c.boundToken != tok {
			return nil, jserr.NewTypeError("enter: token does not match this context's current binding")
		}
		c.nesting++
		return tok, nil
	}
	if c.boundToken != nil {
		return nil, jserr.NewTypeError("enter: context already bound to another call")
	}
	newTok := &enterToken{}
	c.boundToken = newTok
	c.nesting = 1
	return newTok, nil
}

// CurrentToken returns the Token of the binding currently in effect, or
// nil if the context isn't bound. A nested call already running inside
// Call's action uses this to obtain the Token to pass to a further Enter.
func (c *Context) CurrentToken() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundToken
}

// Exit releases one nesting level acquired by Enter; the supplied token
// must be the one returned by the matching Enter call. Reaching zero
// detaches the context and notifies the factory.
func (c *Context) Exit(tok *enterToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.boundToken == nil || c.boundToken != tok {
		return jserr.NewEvaluatorError("exit called without a matching enter")
	}
	c.nesting--
	if c.nesting <= 0 {
		c.boundToken = nil
		c.nesting = 0
		if c.factory != nil {
			c.factory.onContextReleased(c)
		}
	}
	return nil
}

// Close is Exit with no token check, for callers that only ever hold one
// context per flow and don't want to thread the token around.
func (c *Context) Close() error {
	c.mu.Lock()
	tok := c.boundToken
	c.mu.Unlock()
	if tok == nil {
		return jserr.NewEvaluatorError("close called without a matching enter")
	}
	return c.Exit(tok)
}

// Call runs action with the context freshly entered, guaranteeing Exit on
// every return path including panics. Fails if the context is already
// bound elsewhere; action calls c.CurrentToken() and CallNested to make a
// further reentrant call on the same binding.
func (c *Context) Call(action func(*Context) error) (err error) {
	return c.callWithToken(nil, action)
}

// CallNested is Call for an action that is itself running inside a Call
// on this context and wants to re-enter rather than fail. tok must be the
// value c.CurrentToken() returned while that outer Call's action is live.
func (c *Context) CallNested(tok Token, action func(*Context) error) (err error) {
	return c.callWithToken(tok, action)
}

func (c *Context) callWithToken(tok Token, action func(*Context) error) (err error) {
	tok, err = c.Enter(tok)
	if err != nil {
		return err
	}
	defer c.Exit(tok)
	return action(c)
}

func (c *Context) IsBound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundToken != nil
}

// Seal freezes every setter on the context; it is one-way unless the
// caller retained the non-nil key supplied here.
func (c *Context) Seal(key interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	c.sealKey = key
}

// Unseal restores mutability iff key is non-nil and identity-equal to the
// key supplied at Seal.
func (c *Context) Unseal(key interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sealed {
		return nil
	}
	if key == nil || c.sealKey == nil || key != c.sealKey {
		return jserr.NewTypeError("invalid unseal key")
	}
	c.sealed = false
	c.sealKey = nil
	return nil
}

func (c *Context) IsSealed() bool { return c.sealed }

func (c *Context) PutThreadLocal(key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threadLocal[key] = value
}

func (c *Context) GetThreadLocal(key interface{}) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.threadLocal[key]
	return v, ok
}

func (c *Context) RemoveThreadLocal(key interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.threadLocal, key)
}

// EnqueueMicrotask appends a callable to the FIFO microtask queue.
func (c *Context) EnqueueMicrotask(task Microtask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.microtasks = append(c.microtasks, task)
}

// ProcessMicrotasks drains the queue by popping the head and running it
// until empty; tasks enqueued while draining are processed within the
// same call. Must be called on the goroutine this context is bound to.
func (c *Context) ProcessMicrotasks() error {
	for {
		c.mu.Lock()
		if len(c.microtasks) == 0 {
			c.mu.Unlock()
			return nil
		}
		task := c.microtasks[0]
		c.microtasks = c.microtasks[1:]
		c.mu.Unlock()

		if err := task(); err != nil {
			c.recordUnhandledRejection(err)
		}
	}
}

func (c *Context) recordUnhandledRejection(reason interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unhandledRejections = append(c.unhandledRejections, reason)
	c.log.Warn().Interface("reason", reason).Msg("unhandled microtask rejection")
}

func (c *Context) UnhandledRejections() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]interface{}, len(c.unhandledRejections))
	copy(out, c.unhandledRejections)
	return out
}

// Continuation is the suspend point of a capturing call. It parks the
// interpreter goroutine that captured it on resumeCh rather than snapshot
// host activation records into a data structure: the goroutine's own Go
// stack already holds every frame between the top call and the capture
// point, so resuming is a channel send, not a frame replay. One-shot:
// resuming delivers the value as the capturing call's result exactly
// once.
type Continuation struct {
	ID       uuid.UUID
	resumeCh chan interface{}

	mu      sync.Mutex
	resumed bool
}

// ContinuationPending is an error type carrying a captured Continuation.
// Nothing in interp raises it: a capture parks the capturing goroutine
// instead (see Continuation).
type ContinuationPending struct {
	Continuation *Continuation
}

func (ContinuationPending) Error() string { return "continuation pending" }

// CaptureContinuation is permitted only when the context's top call is
// flagged as pure-script (no host frame between the top call and the
// capturing frame, §4.1) and the script was compiled in interpreted mode.
// The returned Continuation's Await blocks the calling goroutine until
// ResumeContinuation delivers a value.
func (c *Context) CaptureContinuation(interpretedMode bool) (*Continuation, error) {
	if !interpretedMode {
		return nil, jserr.New(jserr.KindType, "captureContinuation requires an interpreted script")
	}
	if !c.continuationsTop {
		return nil, jserr.NewEvaluatorError("continuation capture requires an unbroken script call chain to the top call")
	}
	return &Continuation{ID: uuid.New(), resumeCh: make(chan interface{}, 1)}, nil
}

// Await blocks until ResumeContinuation supplies a value, then returns it.
// Called on the goroutine that captured the continuation.
func (cont *Continuation) Await() interface{} {
	return <-cont.resumeCh
}

// ResumeContinuation restarts execution suspended at cont, delivering
// value as the result of the call that captured it. A Continuation may be
// resumed only once.
func (c *Context) ResumeContinuation(cont *Continuation, value interface{}) error {
	if cont == nil {
		return jserr.New(jserr.KindType, "resumeContinuation: nil continuation")
	}
	cont.mu.Lock()
	defer cont.mu.Unlock()
	if cont.resumed {
		return jserr.NewEvaluatorError("resumeContinuation: continuation already resumed")
	}
	cont.resumed = true
	cont.resumeCh <- value
	close(cont.resumeCh)
	return nil
}

// SetTopCallIsScript flags whether the context's current top-level call
// entered through pure script frames, gating CaptureContinuation.
func (c *Context) SetTopCallIsScript(v bool) { c.continuationsTop = v }

func (c *Context) InterpretedMode() bool   { return c.interpretedMode }
func (c *Context) SetInterpretedMode(v bool) { c.interpretedMode = v }

func (c *Context) GenerateSource() bool      { return c.generateSource }
func (c *Context) SetGenerateSource(v bool)  { c.generateSource = v }
func (c *Context) GenerateDebugInfo() bool   { return c.generateDebugInfo }
func (c *Context) MaxStackDepth() int        { return c.maxStackDepth }

// ObserveInstructionCount is called by the interpreter after executing n
// more instructions; when the running total exceeds the configured
// threshold the host-supplied observer (if any) is invoked.
func (c *Context) ObserveInstructionCount(n int64, observer func(total int64) error) error {
	if c.instrThreshold <= 0 {
		return nil
	}
	c.instrCount += n
	if c.instrCount <= c.instrThreshold {
		return nil
	}
	total := c.instrCount
	c.instrCount = 0
	if observer == nil {
		return nil
	}
	return observer(total)
}
