package types

import "context"

// ===== External collaborator interfaces =====

// GraphStore executes read-only pattern-matching queries against the graph engine
type GraphStore interface {
	// Run executes a query and returns every record. Paths, nodes and
	// relationships inside the records are converted to GraphPath, Node
	// and Relationship values.
	Run(ctx context.Context, query string, params map[string]interface{}) ([]Row, error)

	// Schema returns a textual summary of node labels, relationship types
	// and property key/type triples.
	Schema(ctx context.Context) (string, error)

	Close() error
}

// VectorStore stores example records and answers inner-product nearest-neighbor queries
type VectorStore interface {
	CreateCollection(ctx context.Context, name string, dimension int) error
	DropCollection(ctx context.Context, name string) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context, name string) (int, error)

	// Upsert inserts records; a record whose ID already exists is replaced
	Upsert(ctx context.Context, name string, records []ExampleRecord) error

	// Search returns the top k records ordered by descending similarity
	Search(ctx context.Context, name string, vector []float32, k int) ([]ExampleRecord, error)

	// LoadCollection and ReleaseCollection bracket a search for stores that
	// keep collections out of memory until requested
	LoadCollection(ctx context.Context, name string) error
	ReleaseCollection(ctx context.Context, name string) error

	// EnsureIndex builds the similarity index if it is missing
	EnsureIndex(ctx context.Context, name string) error

	Close() error
}

// Embedding converts text to a fixed-dimensionality vector
type Embedding interface {
	// EmbedQuery embeds a question, implementations may cache the result
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds stored texts in input order, uncached
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	GetDimension() int
	GetModel() string
}

// Message a role-tagged chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel a chat-style language model endpoint
type ChatModel interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
