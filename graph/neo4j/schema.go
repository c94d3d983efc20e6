package neo4j

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	nodePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
WHERE NOT 'DataGuide' IN nodeLabels
RETURN nodeLabels, propertyName, propertyTypes`

	relPropertiesQuery = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	relTripletQuery = `MATCH (a)-[r]->(b)
WHERE NOT a:DataGuide AND NOT b:DataGuide AND NOT type(r) =~ '[0-9]+'
RETURN DISTINCT labels(a)[0] AS start, type(r) AS type, labels(b)[0] AS end
ORDER BY start, type, end`
)

// schemaProperty one property name with its reported types
type schemaProperty struct {
	Name  string
	Types []string
}

// schemaTriplet one (start)-[type]->(end) relationship pattern
type schemaTriplet struct {
	Start string
	Type  string
	End   string
}

// Schema returns the node labels, relationship types and relationship
// patterns of the graph, DataGuide nodes and numeric array-index
// relationships excluded
func (s *Store) Schema(ctx context.Context) (string, error) {
	nodeRows, err := s.Run(ctx, nodePropertiesQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read node properties: %w", err)
	}

	relRows, err := s.Run(ctx, relPropertiesQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read relationship properties: %w", err)
	}

	tripletRows, err := s.Run(ctx, relTripletQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read relationship patterns: %w", err)
	}

	nodes := map[string][]schemaProperty{}
	for _, row := range nodeRows {
		labels := toStrings(row["nodeLabels"])
		if len(labels) == 0 {
			continue
		}
		label := strings.Join(labels, ":")
		if _, has := nodes[label]; !has {
			nodes[label] = []schemaProperty{}
		}
		if name, ok := row["propertyName"].(string); ok && name != "" {
			nodes[label] = append(nodes[label], schemaProperty{Name: name, Types: toStrings(row["propertyTypes"])})
		}
	}

	rels := map[string][]schemaProperty{}
	for _, row := range relRows {
		relType := strings.Trim(fmt.Sprint(row["relType"]), ":`")
		if relType == "" || isNumeric(relType) {
			continue
		}
		if _, has := rels[relType]; !has {
			rels[relType] = []schemaProperty{}
		}
		if name, ok := row["propertyName"].(string); ok && name != "" {
			rels[relType] = append(rels[relType], schemaProperty{Name: name, Types: toStrings(row["propertyTypes"])})
		}
	}

	triplets := make([]schemaTriplet, 0, len(tripletRows))
	for _, row := range tripletRows {
		triplets = append(triplets, schemaTriplet{
			Start: fmt.Sprint(row["start"]),
			Type:  fmt.Sprint(row["type"]),
			End:   fmt.Sprint(row["end"]),
		})
	}

	return formatSchema(nodes, rels, triplets), nil
}

// formatSchema renders the schema in the layout the generation prompt expects
func formatSchema(nodes map[string][]schemaProperty, rels map[string][]schemaProperty, triplets []schemaTriplet) string {
	var b strings.Builder

	b.WriteString("Node properties:\n")
	for _, label := range sortedKeys(nodes) {
		b.WriteString(label)
		b.WriteString(" {")
		b.WriteString(formatProperties(nodes[label]))
		b.WriteString("}\n")
	}

	b.WriteString("Relationship properties:\n")
	for _, relType := range sortedKeys(rels) {
		if len(rels[relType]) == 0 {
			continue
		}
		b.WriteString(relType)
		b.WriteString(" {")
		b.WriteString(formatProperties(rels[relType]))
		b.WriteString("}\n")
	}

	b.WriteString("The relationships:\n")
	for _, t := range triplets {
		fmt.Fprintf(&b, "(:%s)-[:%s]->(:%s)\n", t.Start, t.Type, t.End)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatProperties(props []schemaProperty) string {
	sorted := make([]schemaProperty, len(props))
	copy(sorted, props)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		typ := "ANY"
		if len(p.Types) > 0 {
			typ = strings.ToUpper(strings.Join(p.Types, "|"))
		}
		parts[i] = fmt.Sprintf("%s: %s", p.Name, typ)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string][]schemaProperty) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toStrings(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		res := make([]string, 0, len(v))
		for _, item := range v {
			res = append(res, fmt.Sprint(item))
		}
		return res
	case string:
		return []string{v}
	}
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
