package pathstore

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pennsieve/cypherqa/dataguide"
	"github.com/pennsieve/cypherqa/types"
)

// internal identifier, never rendered
const idProperty = "id"

// Render writes an instance path with its concrete property values, e.g.
// (:Pennsieve)-[:DATASET]->(:Dataset {name: 'Test Dataset CNT'})-[:FILES]->(:File {name: 'test.edf'})
func Render(path types.GraphPath) string {
	var b strings.Builder
	b.WriteString(dataguide.RootToken)
	for _, seg := range path.Segments {
		b.WriteString("-[:")
		b.WriteString(dataguide.RelationshipLabel(seg.Relationship))
		b.WriteString("]->")
		b.WriteString(renderNode(seg.Node))
	}
	return b.String()
}

func renderNode(node types.Node) string {
	label := ""
	for _, l := range node.Labels {
		if l != "DataGuide" {
			label = l
			break
		}
	}

	keys := make([]string, 0, len(node.Properties))
	for k := range node.Properties {
		if k == idProperty {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("(")
	if label != "" {
		b.WriteString(":")
		b.WriteString(label)
	}
	if len(keys) > 0 {
		if label != "" {
			b.WriteString(" ")
		}
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(renderValue(node.Properties[k]))
		}
		b.WriteString("}")
	}
	b.WriteString(")")
	return b.String()
}

// renderValue quotes strings, leaves numbers bare and keeps a trailing .0 on whole floats
func renderValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return renderFloat(v)
	case float32:
		return renderFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []interface{}:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = renderValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprint(value)
}

func renderFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
