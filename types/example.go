package types

import "time"

// ExampleKind the retrieval mode that supplied a few-shot example
type ExampleKind string

const (
	// ExamplePath a described instance path retrieved from the example store
	ExamplePath ExampleKind = "path"

	// ExampleQuery a curated question and query pair
	ExampleQuery ExampleKind = "query"
)

// ExampleRecord a (path, description, embedding) triple stored in the example store
type ExampleRecord struct {
	ID          string    `json:"id,omitempty"`
	Path        string    `json:"path"`
	Description string    `json:"description"`
	Vector      []float32 `json:"vector,omitempty"`
	Score       float64   `json:"score,omitempty"`
}

// Example returns the record as a path-kind few-shot example
func (r ExampleRecord) Example() Example {
	return Example{Kind: ExamplePath, Path: r.Path, Description: r.Description}
}

// Example one few-shot example placed into the prompt
type Example struct {
	Kind        ExampleKind `json:"kind"`
	Path        string      `json:"path,omitempty"`
	Description string      `json:"description,omitempty"`
	Question    string      `json:"question,omitempty"`
	Query       string      `json:"query,omitempty"`
}

// Outcome the result of executing one generated query
type Outcome string

const (
	// OutcomeSuccess the query returned at least one row
	OutcomeSuccess Outcome = "success"

	// OutcomeEmpty the query executed but returned no rows
	OutcomeEmpty Outcome = "empty"

	// OutcomeError the graph engine rejected the query
	OutcomeError Outcome = "error"
)

// QueryAttempt one generate-execute cycle of a repair session
type QueryAttempt struct {
	Ordinal  int       `json:"ordinal"`
	Question string    `json:"question"`
	Query    string    `json:"query"`
	Outcome  Outcome   `json:"outcome"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}
