// Package prompt assembles the Cypher generation prompt.
package prompt

import (
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

const rules = `You are an expert in generating Cypher statements for querying a Neo4j graph database.
Use the provided schema information and DataGuide paths to generate accurate and efficient Cypher queries.

Remember: the user query may not contain the entire name of the dataset, use the schema below to find the exact name of the dataset.

Important guidelines for paths while creating your query:
1. ` + "`:Pennsieve`" + ` (root) connects to ` + "`:Dataset`" + ` nodes via the ` + "`:DATASET`" + ` relationship
2. ` + "`:Dataset`" + ` nodes connect to ` + "`:Directory`" + ` or ` + "`:File`" + ` nodes via the ` + "`:FILES`" + ` relationship
3. ` + "`:Dataset`" + `, ` + "`:Directory`" + ` and ` + "`:File`" + ` nodes have a 'name' property for filtering and identification.
4. ` + "`:File`" + ` nodes connect to ` + "`:Data`" + ` nodes through the ` + "`:DATA`" + ` relationship
5. ` + "`:Dataset`" + ` nodes have an "id" property holding their Pennsieve dataset id, the user may pass that id in the query.
6. All nodes connected by relationships other than :DATASET and :FILES are labeled :Data.
7. Only the leaf :Data nodes (last nodes in a path) have a 'value' property which can be filtered or conditioned in queries.
8. The :INDEX relationship has an 'index' property holding the position it represents, which can be filtered.
9. ` + "`:Data`" + ` node properties depend on their type:
  - ` + "`children`" + `: number of child relationships (elements of an array or key-value pairs of an object). Present on :Data nodes that are direct descendants of :File nodes or nested arrays/objects.
  - ` + "`type`" + `: usually 'Array' or 'Object'
  - ` + "`value`" + `: only present on leaf nodes

How the graph encodes data:
1. Key-value data is represented with the key as the edge and the value as the node. The value may be an array itself.
2. Arrays are represented with the index as the edge and the value at that index as the node, using :INDEX relationships.
When a DataGuide path includes an array it contains extra [:INDEX] and () nodes. Make sure you add them to your path.
For example this path represents a nested array structure:
"(:Pennsieve)-[:DATASET]->()-[:FILES]->()-[:DATA]->()-[:models]->()-[:INDEX]->()-[:properties]->()-[:INDEX]->()-[:displayName]->()"
so the "[:INDEX]" relationships followed by "->()" nodes are part of the path.

Tips on using the DataGuide and the Neo4j schema:
1. Rely on the DataGuide paths for the relationship sequences to use. They let you write queries that go deep into the graph structure.
2. The Neo4j schema shows relationship triplets and node properties. It is your vocabulary, do not make up anything outside it.`

const schemaHeader = "Neo4j Schema:"

const pathsRules = `When using the DataGuide paths:
- Do not make up nodes or relationships that are not present in the schema or the DataGuide paths. Numeric relationships such as -[:` + "`10`" + `] are the exception: they are not listed in the schema but are valid.
- Nodes in the DataGuide paths are written as "()". Use the schema and the guidelines above to determine their labels and properties.
- Numeric relationships are enclosed in backticks, e.g. -[:` + "`5`" + `]`

const pathsHeader = "DataGuide Paths:"

const examplesIntro = `Use the following examples only to learn the exact names and values of properties. They are not exhaustive. If a path relevant to the user query is not clear in the DataGuide, look for similar paths in the examples and use them to construct the query.
Note: when the question asks for specific counts (e.g. "give me top 20 values"), do not hardcode exact indices:
   - use LIMIT, filtering or optional matching
   - keep the query safe and error-resistant, some exact indices may not exist in the graph

few shot examples:`

const requirements = `Requirements:
1. The RETURN statement must explicitly include the property values used in the query's filtering conditions, alongside the main information requested.
2. Provide only the Cypher query without any explanations, apologies, or additional text.
3. Do not respond to any questions that ask for anything other than constructing a Cypher statement.
4. Ensure the query follows the structure and guidelines provided above.`

const questionHeader = "User Query to answer:"

// Template the generation prompt with the session slots (schema and guide
// paths) filled. It is immutable and safe for concurrent use.
type Template struct {
	head string
}

// NewTemplate fixes the schema and guide path slots. Either may be empty.
func NewTemplate(schema, guidePaths string) *Template {
	var b strings.Builder
	b.WriteString(rules)
	b.WriteString("\n\n")
	b.WriteString(schemaHeader)
	b.WriteString("\n")
	b.WriteString(schema)
	b.WriteString("\n\n")
	b.WriteString(pathsRules)
	b.WriteString("\n\n")
	b.WriteString(pathsHeader)
	b.WriteString("\n")
	b.WriteString(guidePaths)
	b.WriteString("\n\n")
	b.WriteString("Generate only Cypher queries without any additional explanations or content. Ensure your queries are efficient and accurately reflect the structure described in the DataGuide paths.\n")
	b.WriteString(examplesIntro)
	b.WriteString("\n")
	return &Template{head: b.String()}
}

// Build fills the example and question slots. Examples keep their order.
func (t *Template) Build(examples []types.Example, question string) string {
	var b strings.Builder
	b.WriteString(t.head)
	b.WriteString(RenderExamples(examples))
	b.WriteString("\n\n")
	b.WriteString(requirements)
	b.WriteString("\n\n")
	b.WriteString(questionHeader)
	b.WriteString("\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// RenderExamples renders path examples as path/description pairs and query
// examples as question/query pairs, blank-line separated
func RenderExamples(examples []types.Example) string {
	blocks := make([]string, 0, len(examples))
	for _, ex := range examples {
		switch ex.Kind {
		case types.ExampleQuery:
			blocks = append(blocks, "question: "+ex.Question+"\nquery: "+ex.Query)
		default:
			blocks = append(blocks, "path: "+ex.Path+"\ndescription: "+ex.Description)
		}
	}
	return strings.Join(blocks, "\n\n")
}
