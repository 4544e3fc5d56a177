// Package assets handles geometry source loading and caching.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// Loader fetches geometry sources over HTTP or from disk, caching the raw
// bytes so repeated imports of the same source do not refetch.
type Loader struct {
	client *http.Client
	cache  *Cache
}

// NewLoader creates a loader with a default HTTP client.
func NewLoader() *Loader {
	return NewLoaderWithClient(&http.Client{Timeout: 60 * time.Second})
}

// NewLoaderWithClient creates a loader using the given HTTP client.
func NewLoaderWithClient(client *http.Client) *Loader {
	return &Loader{
		client: client,
		cache:  NewCache(),
	}
}

// Fetch retrieves a URL, serving repeated requests from cache.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := l.cache.Get(url); ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	l.cache.Set(url, data)
	return data, nil
}

// ReadFile reads a local file, serving repeated reads from cache.
func (l *Loader) ReadFile(path string) ([]byte, error) {
	if data, ok := l.cache.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	l.cache.Set(path, data)
	return data, nil
}

// Clear drops all cached sources.
func (l *Loader) Clear() {
	l.cache.Clear()
}

// Stats returns cache hit and miss counts.
func (l *Loader) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Cache is a simple in-memory cache for loaded sources.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
