package jnibind

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

const (
	stateCreated int32 = iota
	stateReady
	stateShutdown
)

type IEngine interface {
	// Init makes the engine ready to bind threads. It is idempotent, and an
	// engine that was shut down can be initialized again.
	Init()

	// Shutdown releases every global reference the engine created for its
	// class cache, forgets the class resolver and retires all thread
	// bindings. It must be called with a context attached to this engine;
	// without one it returns ErrNotAttached and does nothing.
	Shutdown(ctx context.Context) error

	// Attach binds env to the calling thread by returning a context that
	// carries it. Attaching a context that is already bound to this engine
	// returns it unchanged. Before Init, or with a nil env, the returned
	// context stays unattached.
	Attach(ctx context.Context, env Env) context.Context

	// Detach unbinds the thread carried by ctx. Operations using ctx or any
	// context derived from it behave as unattached afterwards.
	Detach(ctx context.Context)

	SetClassResolver(resolver ClassResolver)
	Initialized() bool

	// PendingReleases is the number of global references the engine will
	// release on Shutdown.
	PendingReleases() int

	// CacheSize is the number of class and member declarations the engine
	// holds resolution state for.
	CacheSize() (classes int, members int)
	Config() IEngineConfig
}

type engine struct {
	config     IEngineConfig
	log        commonlog.Logger
	lifecycle  sync.Mutex
	state      atomic.Int32
	generation atomic.Uint64
	cache      atomic.Pointer[descriptorCache]

	releaseLock sync.Mutex
	release     []Ref

	resolverLock sync.RWMutex
	resolver     ClassResolver
}

// CreateEngine returns a new, uninitialized engine.
func CreateEngine(config IEngineConfig) IEngine {
	if config == nil {
		config = NewConfig()
	}

	logger := config.GetLogger()
	if logger == nil {
		logger = log
	}

	e := &engine{
		config:   config,
		log:      logger,
		resolver: config.GetClassResolver(),
	}
	e.cache.Store(newDescriptorCache())
	return e
}

func (e *engine) Init() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.state.Load() == stateReady {
		return
	}

	e.state.Store(stateReady)
	e.log.Debugf("engine initialized (generation %d, resolve policy %s)", e.generation.Load(), e.config.GetResolvePolicy())
}

func (e *engine) Initialized() bool {
	return e.state.Load() == stateReady
}

func (e *engine) Config() IEngineConfig {
	return e.config
}

func (e *engine) Shutdown(ctx context.Context) error {
	t := currentThread(ctx)
	if t == nil || t.engine != e {
		return fmt.Errorf("could not shut down engine: %w", ErrNotAttached)
	}

	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.state.Load() != stateReady {
		return nil
	}

	e.releaseLock.Lock()
	refs := e.release
	e.release = nil
	e.releaseLock.Unlock()

	for i := range refs {
		t.env.DeleteGlobalRef(refs[i])
	}

	e.SetClassResolver(nil)
	e.cache.Store(newDescriptorCache())
	e.generation.Add(1)
	e.state.Store(stateShutdown)

	e.log.Debugf("engine shut down, released %d global reference(s)", len(refs))
	return nil
}

func (e *engine) Attach(ctx context.Context, env Env) context.Context {
	if env == nil || e.state.Load() != stateReady {
		return ctx
	}

	if t := currentThread(ctx); t != nil && t.engine == e {
		return ctx
	}

	return context.WithValue(ctx, ThreadKey{}, &Thread{
		engine:     e,
		env:        env,
		generation: e.generation.Load(),
	})
}

func (e *engine) Detach(ctx context.Context) {
	raw, _ := ctx.Value(ThreadKey{}).(*Thread)
	if raw != nil && raw.engine == e {
		raw.detached.Store(true)
	}
}

func (e *engine) SetClassResolver(resolver ClassResolver) {
	e.resolverLock.Lock()
	defer e.resolverLock.Unlock()
	e.resolver = resolver
}

func (e *engine) classResolver() ClassResolver {
	e.resolverLock.RLock()
	defer e.resolverLock.RUnlock()
	return e.resolver
}

func (e *engine) PendingReleases() int {
	e.releaseLock.Lock()
	defer e.releaseLock.Unlock()
	return len(e.release)
}

// retain records a global reference for release on Shutdown.
func (e *engine) retain(ref Ref) {
	e.releaseLock.Lock()
	defer e.releaseLock.Unlock()
	e.release = append(e.release, ref)
}

// unresolved applies the resolve policy to a failed lookup.
func (e *engine) unresolved(err *ResolutionError) error {
	if e.config.GetResolvePolicy() == ResolvePanic {
		e.log.Criticalf("%s", err.Error())
		panic(err)
	}
	return err
}

// resolveClass returns the promoted reference of class, looking it up on the
// first call. Concurrent first calls perform a single lookup.
func (e *engine) resolveClass(ctx context.Context, t *Thread, class *Class) (Ref, error) {
	entry := e.cache.Load().class(class.id)

	entry.mu.RLock()
	if entry.resolved {
		ref := entry.ref
		entry.mu.RUnlock()
		if ref == 0 {
			return 0, e.unresolved(class.resolutionError())
		}
		return ref, nil
	}
	entry.mu.RUnlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.resolved {
		entry.ref = e.lookupClass(ctx, t, class.path)
		entry.resolved = true
		if entry.ref != 0 {
			e.retain(entry.ref)
			e.log.Debugf("resolved class %s", class.path)
		} else {
			e.log.Warningf("%s", class.resolutionError().Error())
		}
	}

	if entry.ref == 0 {
		return 0, e.unresolved(class.resolutionError())
	}
	return entry.ref, nil
}

func (e *engine) lookupClass(ctx context.Context, t *Thread, path string) Ref {
	env := t.env

	var global Ref
	local := env.FindClass(path)
	if env.ExceptionCheck() {
		env.ExceptionClear()
	}
	if local != 0 {
		global = env.NewGlobalRef(local)
		env.DeleteLocalRef(local)
	}
	if global != 0 {
		return global
	}

	resolver := e.classResolver()
	if resolver == nil {
		return 0
	}

	custom := resolver(ctx, path)
	if env.ExceptionCheck() {
		env.ExceptionClear()
	}
	if custom == 0 {
		return 0
	}

	e.log.Debugf("class %s found by the class resolver", path)
	return env.NewGlobalRef(custom)
}

// resolveMember returns the owning class reference and the identifier of m.
// The identifier is looked up once and never invalidated.
func (e *engine) resolveMember(ctx context.Context, t *Thread, m *member) (Ref, uintptr, error) {
	entry := e.cache.Load().member(m.id)

	entry.mu.RLock()
	if entry.resolved {
		class, id := entry.class, entry.id
		entry.mu.RUnlock()
		if id == 0 {
			return 0, 0, e.unresolvedMember(m, class)
		}
		return class, id, nil
	}
	entry.mu.RUnlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.resolved {
		class, err := e.resolveClass(ctx, t, m.owner)
		if err != nil {
			// A member of a missing class stays unresolved with a zero
			// class reference.
			entry.resolved = true
			return 0, 0, err
		}

		entry.class = class
		entry.id = e.lookupMember(t, class, m)
		entry.resolved = true
		if entry.id == 0 {
			e.log.Warningf("%s", m.resolutionError().Error())
		}
	}

	if entry.id == 0 {
		return 0, 0, e.unresolvedMember(m, entry.class)
	}
	return entry.class, entry.id, nil
}

// unresolvedMember reports a cached failure of m. A zero class reference
// means the owning class itself was not found.
func (e *engine) unresolvedMember(m *member, class Ref) error {
	if class == 0 {
		return e.unresolved(m.owner.resolutionError())
	}
	return e.unresolved(m.resolutionError())
}

func (e *engine) lookupMember(t *Thread, class Ref, m *member) uintptr {
	env := t.env

	var id uintptr
	switch {
	case m.kind == MemberField && m.static:
		id = uintptr(env.GetStaticFieldID(class, m.name, m.sig))
	case m.kind == MemberField:
		id = uintptr(env.GetFieldID(class, m.name, m.sig))
	case m.static:
		id = uintptr(env.GetStaticMethodID(class, m.name, m.sig))
	default:
		id = uintptr(env.GetMethodID(class, m.name, m.sig))
	}

	if env.ExceptionCheck() {
		env.ExceptionClear()
	}
	return id
}

func (e *engine) CacheSize() (classes int, members int) {
	return e.cache.Load().len()
}
