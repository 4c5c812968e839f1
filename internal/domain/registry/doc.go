/*
Package registry implements the generic resource registry at the heart of
the framework: creation-on-demand through explicit factories, a private
history pool, a shared singleton-per-kind pool, and a pending cache that
satisfies requests before any construction happens.

# Overview

A Registry tracks instances of one component family (models, views,
controllers, data assets). Instances are identified by a stable string ID
and classified by Kind, the comparable type tag used as every lookup key.
Factories are registered per Kind with Define, so construction is explicit
and compile-time checked instead of reflective.

Resolution order for Acquire is fixed: pending cache first, then the shared
pool when a shared instance is requested, then fresh construction. Every
path that yields an instance records it in the history pool exactly once.

# Catalog

The Catalog is the registry-of-registries: a process-wide table of every
store created through Ensure. Reset flushes and drops the non-persistent
stores; persistent ones (the data store) survive. Running reports whether
any non-persistent store still tracks at least one instance.

# Usage

	reg := registry.New[*widget]("widgets")
	reg.Define("widget.button", newButton)

	b, err := reg.Acquire("widget.button", true)  // shared singleton
	if err != nil {
		// no factory, or the factory failed; never fatal
	}

All operations are safe for concurrent use. Factories and initializer
hooks run outside the registry lock, so they may re-enter the registry.
*/
package registry
