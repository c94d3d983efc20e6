package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/pennsieve/cypherqa/connector"
	"github.com/pennsieve/cypherqa/llm"
	"github.com/pennsieve/cypherqa/store"
	"github.com/yaoapp/kun/log"
)

// OpenaiOptions defines the options for OpenAI embedding
type OpenaiOptions struct {
	ConnectorName string      // Connector name
	Concurrent    int         // Maximum concurrent requests
	Dimension     int         // Embedding dimension, sent as the "dimensions" request field
	Model         string      // Model name (optional, can be overridden by connector)
	Cache         store.Store // Optional cache for query embeddings
}

// Openai embedding function
type Openai struct {
	Connector  connector.Connector
	Concurrent int
	Dimension  int
	Model      string
	cache      store.Store
}

// NewOpenai create a new Openai embedding function with options
func NewOpenai(options OpenaiOptions) (*Openai, error) {
	c, err := connector.Select(options.ConnectorName)
	if err != nil {
		return nil, err
	}

	if !c.Is(connector.OPENAI) {
		return nil, fmt.Errorf("The connector %s is not a OpenAI connector", options.ConnectorName)
	}

	if options.Concurrent <= 0 {
		options.Concurrent = 4
	}

	if options.Dimension <= 0 {
		options.Dimension = 512
	}

	model := options.Model
	if model == "" {
		setting := c.Setting()
		if connectorModel, ok := setting["model"].(string); ok && connectorModel != "" {
			model = connectorModel
		} else {
			model = "text-embedding-3-small"
		}
	}

	return &Openai{
		Connector:  c,
		Concurrent: options.Concurrent,
		Dimension:  options.Dimension,
		Model:      model,
		cache:      options.Cache,
	}, nil
}

// EmbedQuery embed a single text, served from the cache when possible
func (e *Openai) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	if e.cache == nil {
		return e.embed(ctx, text)
	}

	key := e.cacheKey(text)
	if value, ok := e.cache.Get(key); ok {
		return value.([]float32), nil
	}

	vector, err := e.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(key, vector, 0); err != nil {
		log.Warn("[Embedding] failed to cache query embedding: %s", err.Error())
	}
	log.Trace("[Embedding] cached query embedding, %d entries", e.cache.Len())
	return vector, nil
}

// EmbedDocuments embed texts concurrently, the result keeps the input order.
// Documents bypass the query cache.
func (e *Openai) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text at index %d is empty", i)
		}
	}

	embeddings := make([][]float32, len(texts))
	errors := make([]error, len(texts))

	maxConcurrent := e.Concurrent
	if len(texts) < maxConcurrent {
		maxConcurrent = len(texts)
	}
	semaphore := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(index int, inputText string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			embeddings[index], errors[index] = e.embed(ctx, inputText)
		}(i, text)
	}
	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("error embedding text at index %d: %w", i, err)
		}
	}
	return embeddings, nil
}

func (e *Openai) embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"input":      text,
		"model":      e.Model,
		"dimensions": e.Dimension,
	}

	result, err := llm.PostLLM(ctx, e.Connector, "embeddings", payload)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	respMap, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response format")
	}

	data, ok := respMap["data"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("no data field in response")
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	firstItem, ok := data[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected first item format")
	}

	embedding, ok := firstItem["embedding"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("no embedding field in response")
	}

	vector := make([]float32, len(embedding))
	for i, val := range embedding {
		floatVal, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("invalid embedding value at position %d", i)
		}
		vector[i] = float32(floatVal)
	}

	// The collection schema is fixed at creation time
	if len(vector) != e.Dimension {
		return nil, fmt.Errorf("received embedding dimension %d does not match expected dimension %d", len(vector), e.Dimension)
	}

	return vector, nil
}

func (e *Openai) cacheKey(text string) string {
	return fmt.Sprintf("%s:%d:%s", e.Model, e.Dimension, text)
}

// GetModel returns the current model being used
func (e *Openai) GetModel() string {
	return e.Model
}

// GetDimension returns the embedding dimension
func (e *Openai) GetDimension() int {
	return e.Dimension
}
