package data

import (
	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

// KindAsset is the registry kind of every loaded data asset.
const KindAsset registry.Kind = "data.asset"

// Asset is one named data resource, grouped into a layer. Assets are
// loaded from manifests or added programmatically and live in the
// persistent data registry, so they survive a catalog reset.
type Asset struct {
	AssetID id.AssetID        `json:"id" yaml:"-" toml:"-"`
	Name    string            `json:"name" yaml:"name" toml:"name"`
	Layer   string            `json:"layer" yaml:"-" toml:"-"`
	Source  string            `json:"source" yaml:"source" toml:"source"`
	Meta    map[string]string `json:"meta,omitempty" yaml:"meta" toml:"meta"`
}

// NewAsset creates an asset with a fresh res_-prefixed id.
func NewAsset(layer, name, source string) *Asset {
	return &Asset{
		AssetID: id.NewAssetID(),
		Name:    name,
		Layer:   layer,
		Source:  source,
	}
}

// ID returns the asset's identity.
func (a *Asset) ID() string {
	return a.AssetID.String()
}

// Kind returns the asset registry kind.
func (a *Asset) Kind() registry.Kind {
	return KindAsset
}
