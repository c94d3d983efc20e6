// Package dataguide reads the DataGuide catalog of distinct structural shapes
// from the graph and renders its root-to-leaf paths as schema hints.
package dataguide

import (
	"context"
	"fmt"
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

// RootToken the node every rendered path starts from
const RootToken = "(:Pennsieve)"

// Query returns every maximal DataGuide path from the root shape to a leaf shape
const Query = `MATCH path = (root:DataGuide:Root)-[*]->(leaf:DataGuide)
WHERE NOT (leaf)-->()
RETURN path`

// Extract reads the guide paths. An empty catalog yields an empty slice.
func Extract(ctx context.Context, graph types.GraphStore) ([]types.GraphPath, error) {
	rows, err := graph.Run(ctx, Query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract dataguide paths: %w", err)
	}

	paths := make([]types.GraphPath, 0, len(rows))
	for _, row := range rows {
		path, ok := row["path"].(types.GraphPath)
		if !ok {
			return nil, fmt.Errorf("unexpected dataguide row value %T", row["path"])
		}
		paths = append(paths, schemaPath(path))
	}
	return paths, nil
}

// schemaPath keeps the relationship labels only
func schemaPath(path types.GraphPath) types.GraphPath {
	res := types.GraphPath{Segments: make([]types.PathSegment, len(path.Segments))}
	for i, seg := range path.Segments {
		res.Segments[i] = types.PathSegment{Relationship: seg.Relationship}
	}
	return res
}

// Format renders each path as the root token followed by one segment per relationship
func Format(paths []types.GraphPath) []string {
	formatted := make([]string, 0, len(paths))
	for _, path := range paths {
		var b strings.Builder
		b.WriteString(RootToken)
		for _, label := range path.Labels() {
			b.WriteString("-[:")
			b.WriteString(RelationshipLabel(label))
			b.WriteString("]->()")
		}
		formatted = append(formatted, b.String())
	}
	return formatted
}

// Text joins the formatted paths with newlines
func Text(paths []types.GraphPath) string {
	return strings.Join(Format(paths), "\n")
}

// RelationshipLabel quotes array-index labels with backticks, others are returned as is
func RelationshipLabel(label string) string {
	if IsIndex(label) {
		return "`" + label + "`"
	}
	return label
}

// IsIndex reports whether the label is an array index (digits only)
func IsIndex(label string) bool {
	if label == "" {
		return false
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
