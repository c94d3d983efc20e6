package pathstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pennsieve/cypherqa/types"
)

// memVector an in-memory VectorStore scoring by inner product
type memVector struct {
	mu          sync.Mutex
	collections map[string]map[string]types.ExampleRecord
	ensured     int
	loaded      int
	released    int
	upsertErr   error
}

func newMemVector() *memVector {
	return &memVector{collections: map[string]map[string]types.ExampleRecord{}}
}

func (v *memVector) CreateCollection(ctx context.Context, name string, dimension int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, has := v.collections[name]; has {
		return fmt.Errorf("collection %s already exists", name)
	}
	v.collections[name] = map[string]types.ExampleRecord{}
	return nil
}

func (v *memVector) DropCollection(ctx context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.collections, name)
	return nil
}

func (v *memVector) CollectionExists(ctx context.Context, name string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, has := v.collections[name]
	return has, nil
}

func (v *memVector) Count(ctx context.Context, name string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.collections[name]), nil
}

func (v *memVector) Upsert(ctx context.Context, name string, records []types.ExampleRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.upsertErr != nil {
		return v.upsertErr
	}
	col, has := v.collections[name]
	if !has {
		return errors.New("collection does not exist")
	}
	for _, r := range records {
		col[r.ID] = r
	}
	return nil
}

func (v *memVector) Search(ctx context.Context, name string, vector []float32, k int) ([]types.ExampleRecord, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	res := []types.ExampleRecord{}
	for _, r := range v.collections[name] {
		score := 0.0
		for i := range vector {
			if i < len(r.Vector) {
				score += float64(vector[i] * r.Vector[i])
			}
		}
		r.Score = score
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Score > res[j].Score })
	if len(res) > k {
		res = res[:k]
	}
	return res, nil
}

func (v *memVector) LoadCollection(ctx context.Context, name string) error {
	v.loaded++
	return nil
}

func (v *memVector) ReleaseCollection(ctx context.Context, name string) error {
	v.released++
	return nil
}

func (v *memVector) EnsureIndex(ctx context.Context, name string) error {
	v.ensured++
	return nil
}

func (v *memVector) Close() error { return nil }

// keywordEmbedding embeds text as keyword hit counts
type keywordEmbedding struct {
	keywords []string
	failOn   string
	queries  int
	batches  int
}

func (e *keywordEmbedding) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.queries++
	return e.vector(text)
}

// EmbedDocuments fails the whole batch when any text matches failOn
func (e *keywordEmbedding) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches++
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.vector(text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (e *keywordEmbedding) vector(text string) ([]float32, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding service unavailable")
	}
	vec := make([]float32, len(e.keywords))
	lower := strings.ToLower(text)
	for i, k := range e.keywords {
		vec[i] = float32(strings.Count(lower, k))
	}
	return vec, nil
}

func (e *keywordEmbedding) GetDimension() int { return len(e.keywords) }
func (e *keywordEmbedding) GetModel() string  { return "keyword" }

// sampleGraph answers the sampling and instance path queries
type sampleGraph struct {
	paths map[string]types.GraphPath
	order []string
}

func newSampleGraph(n int) *sampleGraph {
	g := &sampleGraph{paths: map[string]types.GraphPath{}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("4:abc:%d", i)
		g.order = append(g.order, id)
		g.paths[id] = types.GraphPath{
			Root: types.Node{Labels: []string{"Pennsieve"}},
			Segments: []types.PathSegment{
				{Relationship: "DATASET", Node: types.Node{Labels: []string{"Dataset"}, Properties: map[string]interface{}{"name": fmt.Sprintf("Dataset %d", i), "id": int64(i)}}},
				{Relationship: "FILES", Node: types.Node{Labels: []string{"File"}, Properties: map[string]interface{}{"name": fmt.Sprintf("file%d.edf", i)}}},
			},
		}
	}
	return g
}

func (g *sampleGraph) Run(ctx context.Context, query string, params map[string]interface{}) ([]types.Row, error) {
	switch query {
	case sampleNodesQuery:
		count := params["count"].(int)
		rows := []types.Row{}
		for i, id := range g.order {
			if i >= count {
				break
			}
			rows = append(rows, types.Row{"id": id})
		}
		return rows, nil
	case instancePathQuery:
		path, ok := g.paths[params["id"].(string)]
		if !ok {
			return []types.Row{}, nil
		}
		return []types.Row{{"path": path}}, nil
	}
	return nil, fmt.Errorf("unexpected query %q", query)
}

func (g *sampleGraph) Schema(ctx context.Context) (string, error) { return "", nil }
func (g *sampleGraph) Close() error                                { return nil }

// scriptedChat describes paths, failing for paths containing failOn
type scriptedChat struct {
	failOn string
	calls  int
}

func (c *scriptedChat) Chat(ctx context.Context, messages []types.Message) (string, error) {
	c.calls++
	content := messages[len(messages)-1].Content
	idx := strings.LastIndex(content, "\n\nPath:")
	path := content[idx+len("\n\nPath:"):]
	if c.failOn != "" && strings.Contains(path, c.failOn) {
		return "", errors.New("model overloaded")
	}
	return "Retrieves the file of " + path, nil
}
