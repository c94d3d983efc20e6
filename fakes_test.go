package cypherqa

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/pennsieve/cypherqa/dataguide"
	"github.com/pennsieve/cypherqa/types"
)

const testSchema = "Node properties:\nDataset {name: STRING}\nThe relationships:\n(:Pennsieve)-[:DATASET]->(:Dataset)"

// fakeGraph answers the guide query and a table of generated queries
type fakeGraph struct {
	mu     sync.Mutex
	rows   map[string][]types.Row
	errs   map[string]error
	ran    []string
	closed bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{rows: map[string][]types.Row{}, errs: map[string]error{}}
}

func (g *fakeGraph) Run(ctx context.Context, query string, params map[string]interface{}) ([]types.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if query == dataguide.Query {
		return []types.Row{{"path": types.GraphPath{
			Root: types.Node{Labels: []string{"DataGuide", "Root"}},
			Segments: []types.PathSegment{
				{Relationship: "DATASET", Node: types.Node{Labels: []string{"DataGuide"}}},
				{Relationship: "MODEL", Node: types.Node{Labels: []string{"DataGuide"}}},
			},
		}}}, nil
	}
	g.ran = append(g.ran, query)
	if err, ok := g.errs[query]; ok {
		return nil, err
	}
	return g.rows[query], nil
}

func (g *fakeGraph) Schema(ctx context.Context) (string, error) { return testSchema, nil }

func (g *fakeGraph) Close() error {
	g.closed = true
	return nil
}

// fakeVector keeps records per collection and scores by inner product
type fakeVector struct {
	mu          sync.Mutex
	collections map[string][]types.ExampleRecord
	searchErr   error
	closed      bool
}

func newFakeVector() *fakeVector {
	return &fakeVector{collections: map[string][]types.ExampleRecord{}}
}

func (v *fakeVector) CreateCollection(ctx context.Context, name string, dimension int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.collections[name] = []types.ExampleRecord{}
	return nil
}

func (v *fakeVector) DropCollection(ctx context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.collections, name)
	return nil
}

func (v *fakeVector) CollectionExists(ctx context.Context, name string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, has := v.collections[name]
	return has, nil
}

func (v *fakeVector) Count(ctx context.Context, name string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.collections[name]), nil
}

func (v *fakeVector) Upsert(ctx context.Context, name string, records []types.ExampleRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.collections[name] = append(v.collections[name], records...)
	return nil
}

func (v *fakeVector) Search(ctx context.Context, name string, vector []float32, k int) ([]types.ExampleRecord, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.searchErr != nil {
		return nil, v.searchErr
	}
	res := []types.ExampleRecord{}
	for _, r := range v.collections[name] {
		r.Score = 0
		for i := range vector {
			if i < len(r.Vector) {
				r.Score += float64(vector[i] * r.Vector[i])
			}
		}
		res = append(res, r)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
	if len(res) > k {
		res = res[:k]
	}
	return res, nil
}

func (v *fakeVector) LoadCollection(ctx context.Context, name string) error    { return nil }
func (v *fakeVector) ReleaseCollection(ctx context.Context, name string) error { return nil }
func (v *fakeVector) EnsureIndex(ctx context.Context, name string) error       { return nil }

func (v *fakeVector) Close() error {
	v.closed = true
	return nil
}

// wordEmbedding counts keyword hits
type wordEmbedding struct{ words []string }

func (e *wordEmbedding) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(e.words))
	lower := strings.ToLower(text)
	for i, w := range e.words {
		vec[i] = float32(strings.Count(lower, w))
	}
	return vec, nil
}

func (e *wordEmbedding) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i], _ = e.EmbedQuery(ctx, text)
	}
	return vectors, nil
}

func (e *wordEmbedding) GetDimension() int { return len(e.words) }
func (e *wordEmbedding) GetModel() string  { return "words" }

// routedChat replies to generation prompts from a queue and to summary
// prompts with a fixed answer
type routedChat struct {
	mu         sync.Mutex
	queries    []string
	answer     string
	summaryErr error
	prompts    []string
	summaries  int
}

func (c *routedChat) Chat(ctx context.Context, messages []types.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content := messages[len(messages)-1].Content
	if strings.Contains(content, "Helpful Answer:") {
		c.summaries++
		if c.summaryErr != nil {
			return "", c.summaryErr
		}
		return c.answer, nil
	}
	c.prompts = append(c.prompts, content)
	if len(c.queries) == 0 {
		return "", errors.New("no scripted query left")
	}
	query := c.queries[0]
	c.queries = c.queries[1:]
	return query, nil
}
