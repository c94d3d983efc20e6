// Package pathstore keeps described instance paths in a vector collection and
// retrieves the ones closest to a question.
package pathstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// DefaultCollection the collection used when none is configured
const DefaultCollection = "cypher_paths"

// DefaultRestoreBatch descriptions embedded per request when restoring a backup
const DefaultRestoreBatch = 16

// recordNamespace namespace of the content-hash record ids
var recordNamespace = uuid.MustParse("6f1d3c2e-8a4b-5c7d-9e0f-1a2b3c4d5e6f")

// Options tunes population
type Options struct {
	ThrottleEvery int           // pause after this many items, 0 disables pacing
	ThrottleDelay time.Duration // length of the pause
	BackupFile    string        // append-only path/description log, empty disables it
}

// Store the example store
type Store struct {
	vector    types.VectorStore
	graph     types.GraphStore
	embedding types.Embedding
	describer *Describer
	options   Options

	indexed sync.Map // collection name => struct{}, index ensured
	mu      sync.RWMutex
}

// New creates an example store. graph and describer are only needed by Populate.
func New(vector types.VectorStore, graph types.GraphStore, embedding types.Embedding, describer *Describer, options Options) *Store {
	return &Store{
		vector:    vector,
		graph:     graph,
		embedding: embedding,
		describer: describer,
		options:   options,
	}
}

// RecordID the id of the record holding path. Re-adding an identical path
// replaces the existing record.
func RecordID(path string) string {
	return uuid.NewSHA1(recordNamespace, []byte(path)).String()
}

// CollectionExists checks if the collection exists
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.vector.CollectionExists(ctx, name)
}

// CreateCollection creates the collection sized for the embedding model, no-op if it exists
func (s *Store) CreateCollection(ctx context.Context, name string) error {
	exists, err := s.vector.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		log.Trace("[Populate] collection %s already exists", name)
		return nil
	}

	if err := s.vector.CreateCollection(ctx, name, s.embedding.GetDimension()); err != nil {
		return err
	}
	log.Info("[Populate] collection %s created (dimension %d)", name, s.embedding.GetDimension())
	return nil
}

// RemoveCollection drops the collection, no-op if it is missing
func (s *Store) RemoveCollection(ctx context.Context, name string) error {
	exists, err := s.vector.CollectionExists(ctx, name)
	if err != nil {
		return err
	}

	s.indexed.Delete(name)
	if !exists {
		return nil
	}

	if err := s.vector.DropCollection(ctx, name); err != nil {
		return err
	}
	log.Info("[Populate] collection %s removed", name)
	return nil
}

// Size returns the number of records in the collection
func (s *Store) Size(ctx context.Context, name string) (int, error) {
	exists, err := s.vector.CollectionExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", types.ErrCollectionNotFound, name)
	}
	return s.vector.Count(ctx, name)
}
