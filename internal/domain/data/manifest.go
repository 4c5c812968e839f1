package data

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Manifest is the on-disk schema: one layer and its entries. Manifests
// are YAML, TOML or JSON files, optionally gzip-compressed.
type Manifest struct {
	Layer   string          `json:"layer" yaml:"layer" toml:"layer"`
	Entries []ManifestEntry `json:"entries" yaml:"entries" toml:"entries"`
}

// ManifestEntry describes one asset of the manifest's layer.
type ManifestEntry struct {
	Name   string            `json:"name" yaml:"name" toml:"name"`
	Source string            `json:"source" yaml:"source" toml:"source"`
	Meta   map[string]string `json:"meta,omitempty" yaml:"meta" toml:"meta"`
}

// Load walks dir and loads every manifest it finds. An empty dir is the
// "no data configured" case: it logs and returns (0, nil). Per-file
// decode failures are logged and skipped, never fatal; the returned
// count is the number of assets added.
func (s *Store) Load(dir string) (int, error) {
	if dir == "" {
		s.log.Info("no data path configured, no data loaded")
		return 0, nil
	}

	var files []string
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if manifestFormat(path) != "" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk data path %q: %w", dir, err)
	}

	return s.loadFiles(files), nil
}

// LoadGlob loads every manifest matching the doublestar pattern, e.g.
// "data/**/*.yaml".
func (s *Store) LoadGlob(pattern string) (int, error) {
	if pattern == "" {
		s.log.Info("no data glob configured, no data loaded")
		return 0, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, fmt.Errorf("bad data glob %q: %w", pattern, err)
	}

	var files []string
	for _, match := range matches {
		if manifestFormat(match) != "" {
			files = append(files, match)
		}
	}
	return s.loadFiles(files), nil
}

func (s *Store) loadFiles(files []string) int {
	loaded := 0
	for _, path := range files {
		n, err := s.loadFile(path)
		if err != nil {
			s.log.Warn("skipping manifest",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		loaded += n
	}
	if loaded > 0 {
		s.log.Info("data manifests loaded",
			zap.Int("assets", loaded),
			zap.Int("files", len(files)),
		)
	}
	return loaded
}

func (s *Store) loadFile(path string) (int, error) {
	raw, err := readManifest(path)
	if err != nil {
		return 0, err
	}

	var manifest Manifest
	switch manifestFormat(path) {
	case "yaml":
		err = yaml.Unmarshal(raw, &manifest)
	case "toml":
		err = toml.Unmarshal(raw, &manifest)
	case "json":
		err = sonic.Unmarshal(raw, &manifest)
	}
	if err != nil {
		return 0, fmt.Errorf("decode %q: %w", path, err)
	}
	if manifest.Layer == "" {
		return 0, fmt.Errorf("manifest %q has no layer", path)
	}

	assets := make([]*Asset, 0, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		asset := NewAsset(manifest.Layer, entry.Name, entry.Source)
		asset.Meta = entry.Meta
		assets = append(assets, asset)
	}
	s.Add(assets...)
	return len(assets), nil
}

// readManifest reads the file, transparently decompressing a .gz suffix.
func readManifest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gunzip %q: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

// manifestFormat maps a file path to its decode format, ignoring a
// trailing .gz. Unknown extensions return "".
func manifestFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
