package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
)

// Kind is the stable type identity instances are keyed by. Equality is
// string equality; the zero Kind never matches anything.
type Kind string

// Resource is the minimal contract stored instances satisfy. Membership,
// deduplication and source exclusion always compare ID strings, never
// interface identity.
type Resource interface {
	ID() string
	Kind() Kind
}

// Factory constructs an instance of one Kind from a caller-supplied
// argument list. Factories are registered with Define.
type Factory[T Resource] func(args ...any) (T, error)

// Registry tracks instances of one component family across three pools:
// history (private, insertion-ordered, unique per Kind bucket), shared
// (singleton-per-kind when sharing is used consistently) and a pending
// cache consumed ahead of any construction.
type Registry[T Resource] struct {
	name        string
	persistent  bool
	log         *logging.Logger
	metrics     *monitoring.Metrics
	initializer func(T)

	mu        sync.RWMutex
	factories map[Kind]Factory[T]
	history   map[Kind][]T
	shared    []T
	cache     map[Kind][]T

	group singleflight.Group
}

// Stats is a point-in-time snapshot of one registry's pools.
type Stats struct {
	Name       string             `json:"name"`
	Persistent bool               `json:"persistent"`
	Resources  int                `json:"resources"`
	Shared     int                `json:"shared"`
	Cached     int                `json:"cached"`
	Kinds      map[Kind]KindStats `json:"kinds,omitempty"`
}

// KindStats breaks pool sizes down per Kind.
type KindStats struct {
	History int `json:"history"`
	Cached  int `json:"cached"`
	Shared  int `json:"shared"`
}

// New creates an empty registry identified by name.
func New[T Resource](name string) *Registry[T] {
	return &Registry[T]{
		name:      name,
		log:       logging.NewNop(),
		factories: make(map[Kind]Factory[T]),
		history:   make(map[Kind][]T),
		cache:     make(map[Kind][]T),
	}
}

// WithLogger attaches a logger used for construction failures and cache
// activity.
func (r *Registry[T]) WithLogger(log *logging.Logger) *Registry[T] {
	if log != nil {
		r.log = log
	}
	return r
}

// WithMetrics adds metrics tracking to the registry.
func (r *Registry[T]) WithMetrics(metrics *monitoring.Metrics) *Registry[T] {
	r.metrics = metrics
	return r
}

// WithPersistent marks the registry as surviving a catalog-wide reset.
func (r *Registry[T]) WithPersistent() *Registry[T] {
	r.persistent = true
	return r
}

// WithInitializer installs a hook that runs exactly once per instance, at
// the moment it first enters the history pool (fresh construction, first
// cache pop or direct Add; never on shared reuse).
func (r *Registry[T]) WithInitializer(fn func(T)) *Registry[T] {
	r.initializer = fn
	return r
}

// Name returns the registry's catalog name.
func (r *Registry[T]) Name() string {
	return r.name
}

// Persistent reports whether the registry survives a catalog reset.
func (r *Registry[T]) Persistent() bool {
	return r.persistent
}

// Define installs or overwrites the factory for a Kind.
func (r *Registry[T]) Define(kind Kind, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Shared returns the shared instance of kind, without constructing
// anything. Lookup order follows insertion order of the shared pool.
func (r *Registry[T]) Shared(kind Kind) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.shared {
		if res.Kind() == kind {
			return res, true
		}
	}
	var zero T
	return zero, false
}

// Exists reports whether a shared instance of kind is registered.
func (r *Registry[T]) Exists(kind Kind) bool {
	_, ok := r.Shared(kind)
	return ok
}

// Acquire resolves an instance of kind. The pending cache takes absolute
// precedence; a shared request then reuses an existing shared instance;
// otherwise the Kind's factory constructs a fresh one from args. Errors
// (no factory, factory failure) are logged and returned; callers treat
// them as "resource unavailable".
func (r *Registry[T]) Acquire(kind Kind, shared bool, args ...any) (T, error) {
	if res, ok := r.popCached(kind); ok {
		return r.Add(res, shared), nil
	}

	if shared {
		if res, ok := r.Shared(kind); ok {
			return res, nil
		}
	}

	return r.construct(kind, shared, args...)
}

// List returns a snapshot copy of the history bucket for kind. Callers
// may mutate the slice freely; they never observe later registry changes.
func (r *Registry[T]) List(kind Kind) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.history[kind]
	out := make([]T, len(bucket))
	copy(out, bucket)
	return out
}

// Add records an instance in the history pool (idempotent per Kind
// bucket) and, when shared is set, in the shared pool. It returns the
// instance for chaining.
func (r *Registry[T]) Add(resource T, shared bool) T {
	kind := resource.Kind()

	r.mu.Lock()
	tracked := false
	if indexByID(r.history[kind], resource.ID()) < 0 {
		r.history[kind] = append(r.history[kind], resource)
		tracked = true
	}
	if shared && indexByID(r.shared, resource.ID()) < 0 {
		r.shared = append(r.shared, resource)
	}
	total := r.countLocked()
	init := r.initializer
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetRegistryResources(r.name, total)
	}
	if tracked && init != nil {
		init(resource)
	}
	return resource
}

// Queue appends pre-built instances to the pending cache for kind. They
// satisfy future Acquire calls before any new construction occurs.
func (r *Registry[T]) Queue(kind Kind, resources ...T) {
	if len(resources) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[kind] = append(r.cache[kind], resources...)
}

// Remove deletes the instance from the history and shared pools. Removing
// an absent instance is a no-op.
func (r *Registry[T]) Remove(resource T) {
	kind := resource.Kind()

	r.mu.Lock()
	if bucket, ok := r.history[kind]; ok {
		if i := indexByID(bucket, resource.ID()); i >= 0 {
			r.history[kind] = append(bucket[:i], bucket[i+1:]...)
		}
		if len(r.history[kind]) == 0 {
			delete(r.history, kind)
		}
	}
	if i := indexByID(r.shared, resource.ID()); i >= 0 {
		r.shared = append(r.shared[:i], r.shared[i+1:]...)
	}
	total := r.countLocked()
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetRegistryResources(r.name, total)
	}
}

// Count returns the sum of all history bucket sizes. Callers may diff the
// count around an Acquire to detect whether something new was tracked.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked()
}

// CachedCount returns how many pending instances of kind are queued.
func (r *Registry[T]) CachedCount(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache[kind])
}

// Kinds returns the sorted set of Kinds with at least one history entry.
func (r *Registry[T]) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.history))
	for kind := range r.history {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Flush clears the history, shared and cache pools unconditionally.
func (r *Registry[T]) Flush() {
	r.mu.Lock()
	r.history = make(map[Kind][]T)
	r.cache = make(map[Kind][]T)
	r.shared = nil
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetRegistryResources(r.name, 0)
	}
}

// Stats returns a snapshot of pool sizes, broken down per Kind.
func (r *Registry[T]) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Name:       r.name,
		Persistent: r.persistent,
		Kinds:      make(map[Kind]KindStats),
	}
	for kind, bucket := range r.history {
		ks := stats.Kinds[kind]
		ks.History = len(bucket)
		stats.Kinds[kind] = ks
		stats.Resources += len(bucket)
	}
	for kind, queue := range r.cache {
		ks := stats.Kinds[kind]
		ks.Cached = len(queue)
		stats.Kinds[kind] = ks
		stats.Cached += len(queue)
	}
	for _, res := range r.shared {
		ks := stats.Kinds[res.Kind()]
		ks.Shared++
		stats.Kinds[res.Kind()] = ks
		stats.Shared++
	}
	return stats
}

// popCached removes and returns the front of the pending queue for kind.
// The cache key is deleted when its queue drains, never left empty.
func (r *Registry[T]) popCached(kind Kind) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	queue, ok := r.cache[kind]
	if !ok || len(queue) == 0 {
		return zero, false
	}

	res := queue[0]
	if len(queue) == 1 {
		delete(r.cache, kind)
		r.log.Debug("cache drained for kind",
			zap.String("registry", r.name),
			zap.String("kind", string(kind)),
		)
	} else {
		r.cache[kind] = queue[1:]
		r.log.Debug("cached instance used",
			zap.String("registry", r.name),
			zap.String("kind", string(kind)),
			zap.Int("remaining", len(queue)-1),
		)
	}
	return res, true
}

// construct runs the Kind's factory outside the lock. Concurrent shared
// constructions of one kind are deduplicated so exactly one factory call
// wins and every caller receives its result.
func (r *Registry[T]) construct(kind Kind, shared bool, args ...any) (T, error) {
	var zero T

	if shared {
		v, err, _ := r.group.Do(string(kind), func() (any, error) {
			if res, ok := r.Shared(kind); ok {
				return res, nil
			}
			return r.build(kind, true, args...)
		})
		if err != nil {
			return zero, err
		}
		return v.(T), nil
	}

	return r.build(kind, false, args...)
}

func (r *Registry[T]) build(kind Kind, shared bool, args ...any) (T, error) {
	var zero T

	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		err := UnknownKindError{Kind: kind}
		r.log.Warn("resource unavailable",
			zap.String("registry", r.name),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return zero, err
	}

	res, err := factory(args...)
	if err != nil {
		cerr := ConstructError{Kind: kind, Err: err}
		r.log.Warn("resource construction failed",
			zap.String("registry", r.name),
			zap.String("kind", string(kind)),
			zap.Error(cerr),
		)
		return zero, cerr
	}

	return r.Add(res, shared), nil
}

// countLocked must be called with at least the read lock held.
func (r *Registry[T]) countLocked() int {
	count := 0
	for _, bucket := range r.history {
		count += len(bucket)
	}
	return count
}

func indexByID[T Resource](list []T, id string) int {
	for i, res := range list {
		if res.ID() == id {
			return i
		}
	}
	return -1
}
