package lru

import lru "github.com/hashicorp/golang-lru"

// Cache lru cache (adaptive replacement), ttl arguments are ignored
type Cache struct {
	lru *lru.ARCCache
}
