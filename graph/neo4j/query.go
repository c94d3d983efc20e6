package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// Run executes a read-only Cypher query and returns every record
func (s *Store) Run(ctx context.Context, query string, params map[string]interface{}) ([]types.Row, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("cypher query cannot be empty")
	}

	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	session, timeout, err := s.readSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return parseQueryResult(ctx, result)
	}, neo4j.WithTxTimeout(timeout))
	if err != nil {
		log.With(log.F{"query": query}).Debug("[Neo4j] query failed: %s", err.Error())
		return nil, fmt.Errorf("failed to execute read query: %w", err)
	}

	return result.([]types.Row), nil
}

// parseQueryResult consumes the result inside the transaction
func parseQueryResult(ctx context.Context, result neo4j.ResultWithContext) ([]types.Row, error) {
	rows := []types.Row{}
	for result.Next(ctx) {
		rows = append(rows, convertRecord(result.Record()))
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query execution error: %w", err)
	}
	return rows, nil
}

func convertRecord(record *neo4j.Record) types.Row {
	row := types.Row{}
	for i, key := range record.Keys {
		row[key] = convertValue(record.Values[i])
	}
	return row
}

// convertValue converts driver values to the package-neutral types
func convertValue(value interface{}) interface{} {
	switch v := value.(type) {
	case neo4j.Path:
		return convertPath(v)
	case neo4j.Node:
		return convertNode(v)
	case neo4j.Relationship:
		return types.Relationship{ElementID: v.ElementId, Type: v.Type, Properties: convertProps(v.Props)}
	case neo4j.Date:
		return v.String()
	case neo4j.LocalDateTime:
		return v.String()
	case neo4j.Duration:
		return v.String()
	case []interface{}:
		list := make([]interface{}, len(v))
		for i, item := range v {
			list[i] = convertValue(item)
		}
		return list
	case map[string]interface{}:
		return convertProps(v)
	}
	return value
}

func convertProps(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	res := make(map[string]interface{}, len(props))
	for k, v := range props {
		res[k] = convertValue(v)
	}
	return res
}

func convertNode(node neo4j.Node) types.Node {
	return types.Node{
		ElementID:  node.ElementId,
		Labels:     node.Labels,
		Properties: convertProps(node.Props),
	}
}

// convertPath converts a driver path, relationships are taken in traversal order
func convertPath(path neo4j.Path) types.GraphPath {
	graphPath := types.GraphPath{Segments: make([]types.PathSegment, len(path.Relationships))}
	if len(path.Nodes) > 0 {
		graphPath.Root = convertNode(path.Nodes[0])
	}

	for i, rel := range path.Relationships {
		seg := types.PathSegment{Relationship: rel.Type}
		if i+1 < len(path.Nodes) {
			seg.Node = convertNode(path.Nodes[i+1])
		}
		graphPath.Segments[i] = seg
	}
	return graphPath
}
