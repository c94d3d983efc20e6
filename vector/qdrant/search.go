package qdrant

import (
	"context"
	"fmt"

	"github.com/pennsieve/cypherqa/types"
	"github.com/qdrant/go-client/qdrant"
)

// Search returns the k records with the highest inner product to vector
func (s *Store) Search(ctx context.Context, name string, vector []float32, k int) ([]types.ExampleRecord, error) {
	client, err := s.connectedClient()
	if err != nil {
		return nil, err
	}

	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}

	if k <= 0 {
		return []types.ExampleRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	points, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", name, err)
	}

	records := make([]types.ExampleRecord, 0, len(points))
	for _, point := range points {
		records = append(records, convertScoredPoint(point))
	}
	return records, nil
}

func convertScoredPoint(point *qdrant.ScoredPoint) types.ExampleRecord {
	record := types.ExampleRecord{Score: float64(point.GetScore())}

	if point.GetId() != nil {
		if id := point.GetId().GetUuid(); id != "" {
			record.ID = id
		} else {
			record.ID = fmt.Sprintf("%d", point.GetId().GetNum())
		}
	}

	payload := point.GetPayload()
	if v := payload[payloadPath]; v != nil {
		record.Path = v.GetStringValue()
	}
	if v := payload[payloadDescription]; v != nil {
		record.Description = v.GetStringValue()
	}
	return record
}
