package jnibind

import (
	"context"
	"fmt"
	"sync/atomic"
)

// ThreadKey is the context key under which Attach stores the thread binding.
type ThreadKey struct{}

// Thread is the binding of one OS thread to an engine and the execution
// context the runtime handed out for that thread.
type Thread struct {
	engine     *engine
	env        Env
	generation uint64
	detached   atomic.Bool
}

func (t *Thread) Env() Env {
	return t.env
}

func (t *Thread) Engine() IEngine {
	return t.engine
}

func (t *Thread) live() bool {
	return !t.detached.Load() &&
		t.engine.state.Load() == stateReady &&
		t.engine.generation.Load() == t.generation
}

func currentThread(ctx context.Context) *Thread {
	if ctx == nil {
		return nil
	}

	t, ok := ctx.Value(ThreadKey{}).(*Thread)
	if !ok || t == nil || !t.live() {
		return nil
	}
	return t
}

// GetThreadFromContext returns the live thread binding carried by ctx.
func GetThreadFromContext(ctx context.Context) (*Thread, error) {
	t := currentThread(ctx)
	if t == nil {
		return nil, ErrNotAttached
	}
	return t, nil
}

func MustGetThreadFromContext(ctx context.Context) *Thread {
	t, err := GetThreadFromContext(ctx)
	if err != nil {
		panic(fmt.Errorf("could not get thread from context: %w, make sure to initialize the engine with engine.Init() and to attach the thread with \"ctx = engine.Attach(ctx, env)\"", err))
	}
	return t
}

// CurrentEnv returns the execution context bound to ctx, or nil when ctx is
// not attached, was detached, or its engine was shut down.
func CurrentEnv(ctx context.Context) Env {
	t := currentThread(ctx)
	if t == nil {
		return nil
	}
	return t.env
}

// PendingException reports whether the runtime has an exception pending on
// the attached thread. Calls made through bindings leave exceptions pending.
func PendingException(ctx context.Context) bool {
	t := currentThread(ctx)
	if t == nil {
		return false
	}
	return t.env.ExceptionCheck()
}

// ClearException clears a pending exception on the attached thread.
func ClearException(ctx context.Context) {
	if t := currentThread(ctx); t != nil {
		t.env.ExceptionClear()
	}
}
