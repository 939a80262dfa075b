// Package resources is the named model cache. It preloads items from a YAML
// manifest, publishing progress and ready events on the event bus.
package resources

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/toycar/internal/events"
	"github.com/udisondev/toycar/internal/prize"
)

// ItemSpec is one manifest entry.
type ItemSpec struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"` // optional, relative to the manifest
	Kind string `yaml:"kind"` // gltf, texture, ...
}

// Manifest lists the models to preload.
type Manifest struct {
	Items []ItemSpec `yaml:"items"`

	dir string
}

// LoadManifest reads a manifest file. Item paths resolve relative to it.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Item is a cached model handle. Implements prize.Model.
type Item struct {
	Key  string
	Path string
	Kind string
}

// Name implements prize.Model.
func (i *Item) Name() string { return i.Key }

// Cache holds preloaded items. Thread-safe for concurrent access.
type Cache struct {
	bus *events.Bus

	mu    sync.RWMutex
	items map[string]*Item
	ready bool
}

// New creates an empty cache publishing on bus.
func New(bus *events.Bus) *Cache {
	return &Cache{
		bus:   bus,
		items: make(map[string]*Item, 32),
	}
}

// Preload registers every manifest item, publishing ResourceProgress after
// each one and ResourcesReady at the end. Items whose file is missing are
// skipped with a warning.
func (c *Cache) Preload(ctx context.Context, m Manifest) error {
	total := len(m.Items)
	for i, spec := range m.Items {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("preloading resources: %w", err)
		}

		if err := c.load(m.dir, spec); err != nil {
			slog.Warn("skipping resource", "key", spec.Key, "err", err)
		}
		c.bus.Publish(events.ResourceProgress{Percent: (i + 1) * 100 / total})
	}

	if total == 0 {
		c.bus.Publish(events.ResourceProgress{Percent: 100})
	}

	c.mu.Lock()
	c.ready = true
	n := len(c.items)
	c.mu.Unlock()

	slog.Info("resources ready", "items", n)
	c.bus.Publish(events.ResourcesReady{})
	return nil
}

func (c *Cache) load(dir string, spec ItemSpec) error {
	if spec.Key == "" {
		return fmt.Errorf("item without key")
	}

	path := spec.Path
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	c.Add(&Item{Key: spec.Key, Path: path, Kind: spec.Kind})
	return nil
}

// Add registers an item directly.
func (c *Cache) Add(it *Item) {
	c.mu.Lock()
	c.items[it.Key] = it
	c.mu.Unlock()
}

// Lookup implements prize.Catalog.
func (c *Cache) Lookup(key string) (prize.Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return it, true
}

// Keys implements prize.KeyLister.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Ready reports whether Preload has completed.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}
