package data

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

// StoreName is the catalog name of the persistent data registry.
const StoreName = "data"

// Store is the layered lookup over the persistent asset registry. Layer
// keys are normalized to lowercase; name lookups are case-insensitive.
// Because its registry is persistent, store contents survive a catalog
// reset.
type Store struct {
	log *logging.Logger
	reg *registry.Registry[*Asset]

	mu     sync.RWMutex
	layers map[string][]*Asset
}

// NewStore creates a data store whose registry is registered in the
// catalog under StoreName, marked persistent.
func NewStore(catalog *registry.Catalog, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	reg := registry.Ensure(catalog, StoreName, func() *registry.Registry[*Asset] {
		return registry.New[*Asset](StoreName).WithLogger(log).WithPersistent()
	})
	return &Store{
		log:    log,
		reg:    reg,
		layers: make(map[string][]*Asset),
	}
}

// Add records assets, grouping them by lowercase layer. Assets with an
// empty id are stamped with a fresh one.
func (s *Store) Add(assets ...*Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, asset := range assets {
		if asset == nil {
			continue
		}
		if asset.AssetID == "" {
			asset.AssetID = id.NewAssetID()
		}
		layer := strings.ToLower(asset.Layer)
		asset.Layer = layer
		s.layers[layer] = append(s.layers[layer], asset)
		s.reg.Add(asset, false)
	}
}

// ByName returns the first asset in layer whose name matches,
// case-insensitively.
func (s *Store) ByName(layer, name string) (*Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, asset := range s.layers[strings.ToLower(layer)] {
		if strings.EqualFold(asset.Name, name) {
			return asset, true
		}
	}
	return nil, false
}

// ByLayer returns a defensive copy of the layer's assets, empty when
// the layer is unknown.
func (s *Store) ByLayer(layer string) []*Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.layers[strings.ToLower(layer)]
	out := make([]*Asset, len(bucket))
	copy(out, bucket)
	return out
}

// Layers returns the sorted set of known layer names.
func (s *Store) Layers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layers := make([]string, 0, len(s.layers))
	for layer := range s.layers {
		layers = append(layers, layer)
	}
	sort.Strings(layers)
	return layers
}

// Len returns the total number of assets across layers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, bucket := range s.layers {
		total += len(bucket)
	}
	return total
}

// Clear drops every asset from the layer index and the registry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = make(map[string][]*Asset)
	s.reg.Flush()
	s.log.Debug("data store cleared", zap.String("store", StoreName))
}

// Registry exposes the underlying persistent registry.
func (s *Store) Registry() *registry.Registry[*Asset] {
	return s.reg
}
