package store

import "time"

// Store The interface of a key-value cache
type Store interface {
	Get(key string) (value interface{}, ok bool)
	Set(key string, value interface{}, ttl time.Duration) error
	Len() int
}
