package pathstore

import (
	"context"
	"fmt"

	"github.com/pennsieve/cypherqa/types"
)

const (
	sampleNodesQuery = `MATCH (n)
WHERE NOT n:DataGuide AND NOT n:Pennsieve
RETURN elementId(n) AS id
ORDER BY rand()
LIMIT $count`

	instancePathQuery = `MATCH path = (p:Pennsieve)-[*]->(n)
WHERE elementId(n) = $id
RETURN path
LIMIT 1`
)

// sampleNodes picks up to count random non-DataGuide nodes reachable from the root
func (s *Store) sampleNodes(ctx context.Context, count int) ([]string, error) {
	rows, err := s.graph.Run(ctx, sampleNodesQuery, map[string]interface{}{"count": count})
	if err != nil {
		return nil, fmt.Errorf("failed to sample nodes: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// instancePath fetches one root-to-node path and renders it
func (s *Store) instancePath(ctx context.Context, id string) (string, error) {
	rows, err := s.graph.Run(ctx, instancePathQuery, map[string]interface{}{"id": id})
	if err != nil {
		return "", fmt.Errorf("failed to fetch path to %s: %w", id, err)
	}

	if len(rows) == 0 {
		return "", fmt.Errorf("node %s is not reachable from the root", id)
	}

	path, ok := rows[0]["path"].(types.GraphPath)
	if !ok {
		return "", fmt.Errorf("unexpected path value %T", rows[0]["path"])
	}
	return Render(path), nil
}
