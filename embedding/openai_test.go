package embedding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pennsieve/cypherqa/connector"
	"github.com/pennsieve/cypherqa/store/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddingServer returns a vector of `dimension` values derived from the input length
func embeddingServer(t *testing.T, dimension int) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/embeddings", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		payload := map[string]interface{}{}
		jsoniter.Unmarshal(body, &payload)
		input, _ := payload["input"].(string)
		if input == "fail" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"bad input"}}`)
			return
		}

		vector := make([]float64, dimension)
		for i := range vector {
			vector[i] = float64(len(input)) / float64(i+1)
		}
		w.Header().Set("Content-Type", "application/json")
		jsoniter.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{map[string]interface{}{"embedding": vector, "index": 0}},
		})
	}))
	return srv, &calls
}

func prepareConnector(t *testing.T, id, host string) {
	dsl := fmt.Sprintf(`{"type":"openai","options":{"host":%q,"model":"text-embedding-3-small","key":"sk-test"}}`, host)
	_, err := connector.New("openai", id, []byte(dsl))
	require.NoError(t, err)
	t.Cleanup(func() { connector.Remove(id) })
}

func TestEmbedQuery(t *testing.T) {
	srv, calls := embeddingServer(t, 8)
	defer srv.Close()
	prepareConnector(t, "test.embed", srv.URL)

	cache, err := lru.New(16)
	require.NoError(t, err)

	e, err := NewOpenai(OpenaiOptions{ConnectorName: "test.embed", Dimension: 8, Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", e.GetModel())
	assert.Equal(t, 8, e.GetDimension())

	vector, err := e.EmbedQuery(context.Background(), "dataset names")
	require.NoError(t, err)
	assert.Len(t, vector, 8)
	assert.Equal(t, float32(13), vector[0])

	_, err = e.EmbedQuery(context.Background(), "dataset names")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "second call should be served from the cache")
	assert.Equal(t, 1, cache.Len())
}

func TestEmbedQueryErrors(t *testing.T) {
	srv, _ := embeddingServer(t, 4)
	defer srv.Close()
	prepareConnector(t, "test.embed.errors", srv.URL)

	e, err := NewOpenai(OpenaiOptions{ConnectorName: "test.embed.errors", Dimension: 8})
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "")
	assert.Error(t, err)

	_, err = e.EmbedQuery(context.Background(), "dimension mismatch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match expected dimension")

	e.Dimension = 4
	_, err = e.EmbedQuery(context.Background(), "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")
}

func TestEmbedDocuments(t *testing.T) {
	srv, calls := embeddingServer(t, 4)
	defer srv.Close()
	prepareConnector(t, "test.embed.docs", srv.URL)

	e, err := NewOpenai(OpenaiOptions{ConnectorName: "test.embed.docs", Dimension: 4, Concurrent: 2})
	require.NoError(t, err)

	vectors, err := e.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
	assert.Equal(t, float32(3), vectors[2][0])
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))

	_, err = e.EmbedDocuments(context.Background(), []string{"ok", "fail"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")

	_, err = e.EmbedDocuments(context.Background(), []string{"ok", ""})
	assert.Error(t, err)
}

func TestEmbedDocumentsSkipsQueryCache(t *testing.T) {
	srv, calls := embeddingServer(t, 4)
	defer srv.Close()
	prepareConnector(t, "test.embed.nocache", srv.URL)

	cache, err := lru.New(8)
	require.NoError(t, err)
	e, err := NewOpenai(OpenaiOptions{ConnectorName: "test.embed.nocache", Dimension: 4, Cache: cache})
	require.NoError(t, err)

	_, err = e.EmbedDocuments(context.Background(), []string{"Retrieves the dataset names", "Retrieves the files"})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	_, err = e.EmbedQuery(context.Background(), "Retrieves the files")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

// TestEmbedQueryOpenAI runs against the real API when OPENAI_TEST_KEY is set
func TestEmbedQueryOpenAI(t *testing.T) {
	key := os.Getenv("OPENAI_TEST_KEY")
	if key == "" {
		t.Skip("OPENAI_TEST_KEY environment variable not set")
	}

	dsl := fmt.Sprintf(`{"type":"openai","options":{"model":"text-embedding-3-small","key":%q}}`, key)
	_, err := connector.New("openai", "test.embed.live", []byte(dsl))
	require.NoError(t, err)
	defer connector.Remove("test.embed.live")

	e, err := NewOpenai(OpenaiOptions{ConnectorName: "test.embed.live", Dimension: 512})
	require.NoError(t, err)

	vector, err := e.EmbedQuery(context.Background(), "List the names of all datasets")
	require.NoError(t, err)
	assert.Len(t, vector, 512)
}
