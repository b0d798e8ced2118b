package memtable

import (
	"github.com/coocood/freecache"
)

// MemTable ...
type MemTable struct {
	cache *freecache.Cache
}

// New creates freecache with size
func New(size int) *MemTable {
	return &MemTable{
		cache: freecache.NewCache(size),
	}
}

// Get ...
func (m *MemTable) Get(key string) (data []byte, ok bool) {
	data, err := m.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set ...
func (m *MemTable) Set(key string, data []byte) {
	_ = m.cache.Set([]byte(key), data, 0)
}

// Delete ...
func (m *MemTable) Delete(key string) {
	m.cache.Del([]byte(key))
}

// Clear ...
func (m *MemTable) Clear() {
	m.cache.Clear()
}
