package data

import (
	"testing"

	"github.com/danielricci/mead-framework/internal/domain/registry"
)

func TestAddGroupsByLowercaseLayer(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)

	store.Add(
		NewAsset("Sprites", "player", "sprites/player.png"),
		NewAsset("sprites", "enemy", "sprites/enemy.png"),
	)

	if got := len(store.ByLayer("SPRITES")); got != 2 {
		t.Errorf("Layer keys should be case-insensitive, got %d assets", got)
	}
	layers := store.Layers()
	if len(layers) != 1 || layers[0] != "sprites" {
		t.Errorf("Expected one lowercase layer, got %v", layers)
	}
}

func TestByNameIsCaseInsensitive(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)
	store.Add(NewAsset("audio", "Theme-Song", "audio/theme.ogg"))

	asset, ok := store.ByName("AUDIO", "theme-song")
	if !ok {
		t.Fatal("Expected a case-insensitive match")
	}
	if asset.Source != "audio/theme.ogg" {
		t.Errorf("Wrong asset returned: %s", asset.Source)
	}

	if _, ok := store.ByName("audio", "absent"); ok {
		t.Error("Expected a miss for an unknown name")
	}
}

func TestByLayerReturnsDefensiveCopy(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)
	store.Add(NewAsset("maps", "level-1", "maps/1.dat"))

	bucket := store.ByLayer("maps")
	bucket[0] = nil

	if store.ByLayer("maps")[0] == nil {
		t.Error("Mutating the returned slice must not affect the store")
	}
}

func TestUnknownLayerIsEmpty(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)
	if got := store.ByLayer("nothing"); len(got) != 0 {
		t.Errorf("Expected an empty slice, got %d", len(got))
	}
}

func TestStoreSurvivesCatalogReset(t *testing.T) {
	catalog := registry.NewCatalog()
	store := NewStore(catalog, nil)
	store.Add(NewAsset("fonts", "mono", "fonts/mono.ttf"))

	// A throwaway non-persistent registry shares the catalog.
	scratch := registry.Ensure(catalog, "scratch", func() *registry.Registry[*Asset] {
		return registry.New[*Asset]("scratch")
	})
	scratch.Add(NewAsset("tmp", "gone", ""), false)

	catalog.Reset()

	if store.Len() != 1 {
		t.Error("The persistent data store must survive a reset")
	}
	if _, ok := catalog.Get(StoreName); !ok {
		t.Error("The data store should still be registered after a reset")
	}
	if _, ok := catalog.Get("scratch"); ok {
		t.Error("Non-persistent stores should be dropped by a reset")
	}
}

func TestEnsureReturnsSameStoreRegistry(t *testing.T) {
	catalog := registry.NewCatalog()
	first := NewStore(catalog, nil)
	second := NewStore(catalog, nil)

	first.Add(NewAsset("shared", "x", ""))
	if second.Registry().Count() != 1 {
		t.Error("Stores built on one catalog should share the registry")
	}
}

func TestClearEmptiesStoreAndRegistry(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)
	store.Add(NewAsset("maps", "level-1", ""))

	store.Clear()

	if store.Len() != 0 {
		t.Error("Clear should empty the layer index")
	}
	if store.Registry().Count() != 0 {
		t.Error("Clear should flush the registry")
	}
}

func TestAddStampsMissingIDs(t *testing.T) {
	store := NewStore(registry.NewCatalog(), nil)
	asset := &Asset{Name: "bare", Layer: "misc"}

	store.Add(asset)

	if asset.AssetID == "" {
		t.Error("Add should stamp assets that arrive without an id")
	}
}
