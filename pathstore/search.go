package pathstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// Search returns the topK records whose descriptions are most similar to
// query, best first. A missing collection or a failed embedding is an
// ErrRetrieval error.
func (s *Store) Search(ctx context.Context, name string, query string, topK int) ([]types.ExampleRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query text is empty", types.ErrRetrieval)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.vector.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRetrieval, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %w: %s", types.ErrRetrieval, types.ErrCollectionNotFound, name)
	}

	vector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %w", types.ErrRetrieval, err)
	}

	if err := s.ensureIndex(ctx, name); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRetrieval, err)
	}

	if err := s.vector.LoadCollection(ctx, name); err != nil {
		return nil, fmt.Errorf("%w: failed to load collection %s: %w", types.ErrRetrieval, name, err)
	}
	defer func() {
		if err := s.vector.ReleaseCollection(ctx, name); err != nil {
			log.Warn("[Retrieval] failed to release collection %s: %s", name, err.Error())
		}
	}()

	records, err := s.vector.Search(ctx, name, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRetrieval, err)
	}

	log.With(log.F{"collection": name, "hits": len(records)}).Debug("[Retrieval] %s", query)
	return records, nil
}

// ensureIndex builds the similarity index once per collection
func (s *Store) ensureIndex(ctx context.Context, name string) error {
	if _, ok := s.indexed.Load(name); ok {
		return nil
	}
	if err := s.vector.EnsureIndex(ctx, name); err != nil {
		return fmt.Errorf("failed to build index on %s: %w", name, err)
	}
	s.indexed.Store(name, struct{}{})
	return nil
}
