package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
)

// Store is the non-generic face every Registry[T] presents to the catalog.
type Store interface {
	Name() string
	Count() int
	Persistent() bool
	Flush()
	Stats() Stats
}

// Catalog is the process-wide table of every registry created through it.
// It is built once at startup and threaded through components explicitly;
// there is no package-level instance.
type Catalog struct {
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu     sync.RWMutex
	stores map[string]Store
	order  []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		log:    logging.NewNop(),
		stores: make(map[string]Store),
	}
}

// WithLogger attaches a logger used for reset reporting.
func (c *Catalog) WithLogger(log *logging.Logger) *Catalog {
	if log != nil {
		c.log = log
	}
	return c
}

// WithMetrics adds metrics tracking to the catalog.
func (c *Catalog) WithMetrics(metrics *monitoring.Metrics) *Catalog {
	c.metrics = metrics
	return c
}

// Register adds a store under its name. Registering a taken name fails
// with DuplicateStoreError; use Ensure for lazy get-or-create semantics.
func (c *Catalog) Register(store Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := store.Name()
	if _, ok := c.stores[name]; ok {
		return DuplicateStoreError{Name: name}
	}
	c.stores[name] = store
	c.order = append(c.order, name)
	return nil
}

// Ensure returns the store registered under name, building and registering
// it on first request. Later calls return the existing store, so every
// registry kind is a lazy singleton within one catalog.
func Ensure[S Store](c *Catalog, name string, build func() S) S {
	c.mu.RLock()
	existing, ok := c.stores[name]
	c.mu.RUnlock()
	if ok {
		return existing.(S)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.stores[name]; ok {
		return existing.(S)
	}
	store := build()
	c.stores[name] = store
	c.order = append(c.order, name)
	return store
}

// Get returns the store registered under name.
func (c *Catalog) Get(name string) (Store, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	store, ok := c.stores[name]
	return store, ok
}

// Stores returns every registered store in registration order.
func (c *Catalog) Stores() []Store {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Store, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.stores[name])
	}
	return out
}

// Len returns the number of registered stores.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores)
}

// Reset flushes every non-persistent store and drops it from the catalog.
// Persistent stores are left untouched. It returns the names of the
// dropped stores.
func (c *Catalog) Reset() []string {
	c.mu.Lock()

	var dropped []string
	kept := c.order[:0]
	for _, name := range c.order {
		store := c.stores[name]
		if store.Persistent() {
			kept = append(kept, name)
			continue
		}
		store.Flush()
		delete(c.stores, name)
		dropped = append(dropped, name)
	}
	c.order = kept
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordReset(len(dropped))
	}
	c.log.Info("catalog reset",
		zap.Int("dropped", len(dropped)),
		zap.Int("kept", len(kept)),
	)
	return dropped
}

// Running reports whether any non-persistent store currently tracks at
// least one instance. Persistent stores never count: they exist for the
// lifetime of the process regardless of session activity.
func (c *Catalog) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, store := range c.stores {
		if !store.Persistent() && store.Count() > 0 {
			return true
		}
	}
	return false
}
