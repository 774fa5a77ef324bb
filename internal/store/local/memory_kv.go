package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/coocood/freecache"
)

const (
	// freecache clamps smaller caches up to this size
	freecacheMinSize = 512 * 1024
	// freecache per entry header
	freecacheEntryHeader = 24
)

var ErrValueEvicted = errors.New("value partially evicted from memory kv")

var _ KV = (*MemoryKV)(nil)

// MemoryKV is a non-durable KV, used when no storage dir is configured.
//
// freecache refuses entries larger than 1/1024 of its size, so values are
// split into chunks stored under "<key>#<n>"; the key itself holds the
// chunk count. Chunks are a quarter of the entry limit, so one value is
// spread over many freecache segments. Values close to the cache size
// still get evicted.
type MemoryKV struct {
	cache     *freecache.Cache
	chunkSize int
	mu        sync.RWMutex
}

func NewMemoryKV(sizeBytes int) *MemoryKV {
	if sizeBytes < freecacheMinSize {
		sizeBytes = freecacheMinSize
	}
	return &MemoryKV{
		cache:     freecache.NewCache(sizeBytes),
		chunkSize: (sizeBytes/1024 - freecacheEntryHeader) / 4,
	}
}

func chunkKey(key string, n int) []byte {
	return []byte(key + "#" + strconv.Itoa(n))
}

func (m *MemoryKV) chunkCount(key string) (int, error) {
	raw, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return 0, ErrKeyNotFound
		}
		return 0, err
	}
	count, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("chunk count of [%s]: %w", key, err)
	}
	return count, nil
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count, err := m.chunkCount(key)
	if err != nil {
		return nil, err
	}

	value := make([]byte, 0, count*m.chunkSize)
	for i := 0; i < count; i++ {
		chunk, err := m.cache.Get(chunkKey(key, i))
		if err != nil {
			if errors.Is(err, freecache.ErrNotFound) {
				return nil, fmt.Errorf("[%s] chunk %d: %w", key, i, ErrValueEvicted)
			}
			return nil, err
		}
		value = append(value, chunk...)
	}
	return value, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevCount, err := m.chunkCount(key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}

	count := 0
	for offset := 0; offset < len(value) || count == 0; count++ {
		ck := chunkKey(key, count)
		size := m.chunkSize - len(ck)
		if size <= 0 {
			return fmt.Errorf("key [%s]: %w", key, freecache.ErrLargeKey)
		}
		end := min(offset+size, len(value))
		// no expiry
		if err := m.cache.Set(ck, value[offset:end], 0); err != nil {
			return fmt.Errorf("set [%s] chunk %d: %w", key, count, err)
		}
		offset = end
	}

	if err := m.cache.Set([]byte(key), []byte(strconv.Itoa(count)), 0); err != nil {
		return err
	}
	for i := count; i < prevCount; i++ {
		m.cache.Del(chunkKey(key, i))
	}
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	count, err := m.chunkCount(key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	m.cache.Del([]byte(key))
	for i := 0; i < count; i++ {
		m.cache.Del(chunkKey(key, i))
	}
	return nil
}
