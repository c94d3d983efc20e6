package mcp

import (
	"context"
	"errors"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/pennsieve/cypherqa"
	"github.com/pennsieve/cypherqa/qa"
	"github.com/pennsieve/cypherqa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	res *cypherqa.Response
	err error
}

func (b *fakeBackend) ProcessQuery(ctx context.Context, question string) (*cypherqa.Response, error) {
	return b.res, b.err
}
func (b *fakeBackend) GuidePaths() []string { return []string{"(:Pennsieve)-[:DATASET]->()", "(:Pennsieve)-[:ORGANIZATION]->()"} }
func (b *fakeBackend) Schema() string       { return "Node properties:" }

func TestQueryGraph(t *testing.T) {
	backend := &fakeBackend{res: &cypherqa.Response{
		GeneratedQuery: "MATCH (d:Dataset) RETURN d.name AS name",
		Rows:           []types.Row{{"name": "Sparc Heart"}},
		Answer:         "The dataset is Sparc Heart.",
	}}

	result, err := queryGraph(backend)(context.Background(), request(map[string]any{"question": "Which datasets?"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textOf(t, result)
	assert.Contains(t, text, "The dataset is Sparc Heart.")
	assert.Contains(t, text, "MATCH (d:Dataset) RETURN d.name AS name")
	assert.Contains(t, text, `"Sparc Heart"`)
}

func TestQueryGraphErrors(t *testing.T) {
	result, err := queryGraph(&fakeBackend{})(context.Background(), request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	backend := &fakeBackend{err: &qa.TerminalFailure{Question: "q"}}
	result, err = queryGraph(backend)(context.Background(), request(map[string]any{"question": "q"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	backend = &fakeBackend{
		res: &cypherqa.Response{GeneratedQuery: "MATCH (n) RETURN n", Rows: []types.Row{{"n": 1}}},
		err: &qa.SummarizationError{Err: errors.New("rate limited")},
	}
	result, err = queryGraph(backend)(context.Background(), request(map[string]any{"question": "q"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "MATCH (n) RETURN n")
}

func TestGuidePathsAndSchema(t *testing.T) {
	result, err := guidePaths(&fakeBackend{})(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "(:Pennsieve)-[:DATASET]->()\n(:Pennsieve)-[:ORGANIZATION]->()", textOf(t, result))

	result, err = graphSchema(&fakeBackend{})(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "Node properties:", textOf(t, result))

	assert.NotNil(t, New(&fakeBackend{}))
}

func request(arguments map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Request: mcpgo.Request{Method: "tools/call"},
		Params:  mcpgo.CallToolParams{Name: "query_graph", Arguments: arguments},
	}
}

func textOf(t *testing.T, result *mcpgo.CallToolResult) string {
	require.Len(t, result.Content, 1)
	text, ok := mcpgo.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}
