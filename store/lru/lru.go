package lru

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// New create a new LRU cache
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}

	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: arc}, nil
}

// Get looks up a key's value from the cache.
func (cache *Cache) Get(key string) (value interface{}, ok bool) {
	return cache.lru.Get(key)
}

// Set adds a value to the cache.
func (cache *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	cache.lru.Add(key, value)
	return nil
}

// Len returns the number of cached entries
func (cache *Cache) Len() int {
	return cache.lru.Len()
}
