package qdrant

import (
	"context"
	"fmt"

	"github.com/pennsieve/cypherqa/types"
	"github.com/qdrant/go-client/qdrant"
)

// connectedClient returns the client or ErrNotConnected
func (s *Store) connectedClient() (*qdrant.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected || s.client == nil {
		return nil, types.ErrNotConnected
	}
	return s.client, nil
}

// CreateCollection creates a collection scored by inner product
func (s *Store) CreateCollection(ctx context.Context, name string, dimension int) error {
	client, err := s.connectedClient()
	if err != nil {
		return err
	}

	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// DropCollection deletes a collection
func (s *Store) DropCollection(ctx context.Context, name string) error {
	client, err := s.connectedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	if err := client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, err)
	}
	return nil
}

// CollectionExists checks if a collection exists
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	client, err := s.connectedClient()
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	exists, err := client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check if collection exists: %w", err)
	}
	return exists, nil
}

// Count returns the exact number of points in the collection
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	client, err := s.connectedClient()
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	count, err := client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count collection %s: %w", name, err)
	}
	return int(count), nil
}

// EnsureIndex checks the collection is servable. A collection whose
// optimizers are idle (grey) gets them triggered so the HNSW index is built.
func (s *Store) EnsureIndex(ctx context.Context, name string) error {
	client, err := s.connectedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	info, err := client.GetCollectionInfo(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to describe collection %s: %w", name, err)
	}

	switch info.GetStatus() {
	case qdrant.CollectionStatus_Red:
		return fmt.Errorf("collection %s is in a failed state", name)
	case qdrant.CollectionStatus_Grey:
		err = client.UpdateCollection(ctx, &qdrant.UpdateCollection{
			CollectionName:   name,
			OptimizersConfig: &qdrant.OptimizersConfigDiff{},
		})
		if err != nil {
			return fmt.Errorf("failed to trigger indexing of %s: %w", name, err)
		}
	}
	return nil
}

// LoadCollection is a no-op, Qdrant collections are always loaded
func (s *Store) LoadCollection(ctx context.Context, name string) error {
	return nil
}

// ReleaseCollection is a no-op, Qdrant collections cannot be unloaded
func (s *Store) ReleaseCollection(ctx context.Context, name string) error {
	return nil
}
