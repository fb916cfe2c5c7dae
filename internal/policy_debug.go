//go:build jnidebug

package jnibind

const defaultResolvePolicy = ResolvePanic
