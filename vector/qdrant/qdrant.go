package qdrant

import (
	"sync"
	"time"

	"github.com/pennsieve/cypherqa/types"
	"github.com/qdrant/go-client/qdrant"
)

const (
	// DefaultPort the Qdrant gRPC port
	DefaultPort = 6334

	// DefaultTimeout per-operation timeout used when the config sets none
	DefaultTimeout = 30 * time.Second

	// maxMessageSize raised gRPC receive limit, search results carry full payloads
	maxMessageSize = 32 << 20

	payloadPath        = "cypher_path"
	payloadDescription = "description"
)

// Store implements the VectorStore interface for Qdrant
type Store struct {
	config    types.VectorStoreConfig
	client    *qdrant.Client
	connected bool
	mu        sync.RWMutex
}

// NewStore creates a new Qdrant vector store instance
func NewStore() *Store {
	return &Store{}
}

// GetClient returns the underlying Qdrant client
func (s *Store) GetClient() *qdrant.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// GetConfig returns the current configuration
func (s *Store) GetConfig() types.VectorStoreConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *Store) timeout() time.Duration {
	if s.config.Timeout > 0 {
		return time.Duration(s.config.Timeout) * time.Second
	}
	return DefaultTimeout
}
