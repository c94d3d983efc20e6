package prompt

import (
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

var curated = []struct {
	question string
	query    string
}{
	{
		"What are the first names and last names of contributors in our database?",
		`MATCH (p:Pennsieve)-[:DATASET]->()-[:FILES]->()-[:DATA]->()-[:contributors]->()-[:first_name]->(fn:Data),
      (p)-[:DATASET]->()-[:FILES]->()-[:DATA]->()-[:contributors]->()-[:last_name]->(ln:Data)
      RETURN DISTINCT fn.value AS first_name, ln.value AS last_name`,
	},
	{
		"List the names of all datasets in the Pennsieve database.",
		`MATCH (p:Pennsieve)-[:DATASET]->(d:Dataset)
      RETURN DISTINCT d.name AS dataset_name`,
	},
	{
		"Does dataset named: Test Dataset CNT has banner.jpg file?",
		`MATCH (p:Pennsieve)-[:DATASET]->(d:Dataset {name: "Test Dataset CNT"})-[:FILES]->(f:File {name: "banner.jpg"})
      RETURN d.name, f.name`,
	},
	{
		"Get the number of files in each dataset",
		`MATCH (p:Pennsieve)-[:DATASET]->(d:Dataset)-[:FILES]->(f:File)
      RETURN d.name AS dataset_name, COUNT(f) AS file_count`,
	},
	{
		"What is the description of dataset with id 379",
		`MATCH (p:Pennsieve)-[:DATASET]->(d:Dataset {id: 379})-[:FILES]->()-[:DATA]->()-[:description]->(desc:Data)
      RETURN desc.value AS description`,
	},
}

// CuratedExamples returns the built-in question/query pairs, each query line trimmed
func CuratedExamples() []types.Example {
	examples := make([]types.Example, 0, len(curated))
	for _, c := range curated {
		examples = append(examples, types.Example{
			Kind:     types.ExampleQuery,
			Question: c.question,
			Query:    trimLines(c.query),
		})
	}
	return examples
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
