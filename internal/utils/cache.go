package utils

import (
	"sync"
	"time"

	"github.com/spf13/afero"
)

// CacheItem represents a cached value with the file metadata it was built from
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// FileCache caches values derived from files. An entry is dropped as soon as
// the file's modification time or size no longer matches.
type FileCache[V any] struct {
	fs     afero.Fs
	items  map[string]*CacheItem[V]
	mutex  sync.RWMutex
	hits   int
	misses int
}

// NewFileCache creates a cache validating entries against fs
func NewFileCache[V any](fs afero.Fs) *FileCache[V] {
	return &FileCache[V]{
		fs:    fs,
		items: make(map[string]*CacheItem[V]),
	}
}

// Get returns the cached value for path if the file is unchanged
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[path]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		c.record(false)
		return zero, false
	}

	if stat, err := c.fs.Stat(path); err == nil {
		if stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
			c.record(true)
			return item.Value, true
		}
	}

	// file changed or vanished
	c.mutex.Lock()
	delete(c.items, path)
	c.misses++
	c.mutex.Unlock()

	return zero, false
}

// Set stores value for path together with the file's current metadata
func (c *FileCache[V]) Set(path string, value V) error {
	stat, err := c.fs.Stat(path)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[path] = &CacheItem[V]{
		Value:   value,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}
	return nil
}

// GetOrLoad returns the cached value for path or builds it with load
func (c *FileCache[V]) GetOrLoad(path string, load func(afero.Fs, string) (V, error)) (V, error) {
	if value, ok := c.Get(path); ok {
		return value, nil
	}

	value, err := load(c.fs, path)
	if err != nil {
		return value, err
	}

	// a failed stat only means the value is not cached
	_ = c.Set(path, value)
	return value, nil
}

// GetStats returns cache statistics
func (c *FileCache[V]) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{
		Size:   len(c.items),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

func (c *FileCache[V]) record(hit bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
