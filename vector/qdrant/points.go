package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pennsieve/cypherqa/types"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatchSize points sent per request
const upsertBatchSize = 100

// PointID returns the point id for a record. Valid UUIDs are kept, anything
// else is hashed so the same key always maps to the same point.
func PointID(key string) string {
	if id, err := uuid.Parse(key); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// Upsert writes records, replacing points with the same id
func (s *Store) Upsert(ctx context.Context, name string, records []types.ExampleRecord) error {
	client, err := s.connectedClient()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	for i := 0; i < len(records); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		points := make([]*qdrant.PointStruct, 0, end-i)
		for _, record := range records[i:end] {
			point, err := toPoint(record)
			if err != nil {
				return err
			}
			points = append(points, point)
		}

		reqCtx, cancel := context.WithTimeout(ctx, s.timeout())
		_, err := client.Upsert(reqCtx, &qdrant.UpsertPoints{
			CollectionName: name,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to upsert batch %d into %s: %w", i/upsertBatchSize, name, err)
		}
	}
	return nil
}

func toPoint(record types.ExampleRecord) (*qdrant.PointStruct, error) {
	if len(record.Vector) == 0 {
		return nil, fmt.Errorf("record %q has no vector", record.Path)
	}

	key := record.ID
	if key == "" {
		key = record.Path
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(key)),
		Vectors: qdrant.NewVectors(record.Vector...),
		Payload: map[string]*qdrant.Value{
			payloadPath:        qdrant.NewValueString(record.Path),
			payloadDescription: qdrant.NewValueString(record.Description),
		},
	}, nil
}
