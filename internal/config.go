package jnibind

import (
	"context"

	"github.com/tliron/commonlog"
)

// ResolvePolicy decides what happens when a class or member cannot be found.
type ResolvePolicy uint8

const (
	// ResolveInert caches the failure and turns every access through the
	// binding into a no-op returning ErrUnresolved.
	ResolveInert ResolvePolicy = iota

	// ResolvePanic logs the failure and panics with the *ResolutionError.
	ResolvePanic
)

func (p ResolvePolicy) String() string {
	if p == ResolvePanic {
		return "panic"
	}
	return "inert"
}

// ClassResolver is consulted when the default class lookup of the runtime
// fails, typically to load a class through the class loader of the host
// application. It returns a reference that is promoted by the caller, or 0.
type ClassResolver func(ctx context.Context, path string) Ref

// DefaultFrameCapacity is the capacity of a local frame pushed without an
// explicit capacity.
const DefaultFrameCapacity int32 = 16

type IEngineConfig interface {
	GetResolvePolicy() ResolvePolicy
	SetResolvePolicy(policy ResolvePolicy) IEngineConfig
	GetClassResolver() ClassResolver
	SetClassResolver(resolver ClassResolver) IEngineConfig
	GetFrameCapacity() int32
	SetFrameCapacity(capacity int32) IEngineConfig
	GetLogger() commonlog.Logger
	SetLogger(logger commonlog.Logger) IEngineConfig
}

type engineConfig struct {
	resolvePolicy ResolvePolicy
	classResolver ClassResolver
	frameCapacity int32
	logger        commonlog.Logger
}

func (c *engineConfig) GetResolvePolicy() ResolvePolicy {
	return c.resolvePolicy
}

func (c *engineConfig) SetResolvePolicy(policy ResolvePolicy) IEngineConfig {
	c.resolvePolicy = policy
	return c
}

func (c *engineConfig) GetClassResolver() ClassResolver {
	return c.classResolver
}

func (c *engineConfig) SetClassResolver(resolver ClassResolver) IEngineConfig {
	c.classResolver = resolver
	return c
}

func (c *engineConfig) GetFrameCapacity() int32 {
	return c.frameCapacity
}

func (c *engineConfig) SetFrameCapacity(capacity int32) IEngineConfig {
	if capacity <= 0 {
		capacity = DefaultFrameCapacity
	}
	c.frameCapacity = capacity
	return c
}

func (c *engineConfig) GetLogger() commonlog.Logger {
	return c.logger
}

func (c *engineConfig) SetLogger(logger commonlog.Logger) IEngineConfig {
	if logger == nil {
		logger = log
	}
	c.logger = logger
	return c
}

// NewConfig returns a config with the default resolve policy of the build
// (ResolvePanic with the jnidebug build tag, ResolveInert otherwise).
func NewConfig() IEngineConfig {
	return &engineConfig{
		resolvePolicy: defaultResolvePolicy,
		frameCapacity: DefaultFrameCapacity,
		logger:        log,
	}
}
