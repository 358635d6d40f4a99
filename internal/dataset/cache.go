package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Loader produces a fresh Dataset.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*Dataset, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (*Dataset, error) {
	return f(ctx)
}

// NamedLoader loads one of the bundled samples by name.
func NamedLoader(name string) Loader {
	return LoaderFunc(func(ctx context.Context) (*Dataset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Open(name)
	})
}

// Cache holds a single loaded Dataset for the lifetime of the process.
// The first Get after construction or Clear runs the loader; every later
// Get returns the same instance.
type Cache struct {
	loader Loader
	logger *slog.Logger

	mu    sync.Mutex
	ds    *Dataset
	loads int
}

// NewCache creates an empty cache around loader.
func NewCache(loader Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{loader: loader, logger: logger}
}

// Clear drops the cached dataset so the next Get reloads it.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ds = nil
}

// Init clears the cache and loads the dataset eagerly.
func (c *Cache) Init(ctx context.Context) (*Dataset, error) {
	c.Clear()
	return c.Get(ctx)
}

// Get returns the cached dataset, loading it on first access.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ds != nil {
		return c.ds, nil
	}

	ds, err := c.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	c.loads++
	c.ds = ds

	rows, cols := ds.Shape()
	c.logger.Debug("dataset loaded", "name", ds.Name(), "rows", rows, "columns", cols, "loads", c.loads)
	return ds, nil
}

// Loads returns how many times the loader has produced a dataset.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
