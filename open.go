package cypherqa

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pennsieve/cypherqa/config"
	"github.com/pennsieve/cypherqa/connector"
	"github.com/pennsieve/cypherqa/embedding"
	"github.com/pennsieve/cypherqa/graph/neo4j"
	"github.com/pennsieve/cypherqa/llm"
	"github.com/pennsieve/cypherqa/pathstore"
	"github.com/pennsieve/cypherqa/store"
	"github.com/pennsieve/cypherqa/store/lru"
	"github.com/pennsieve/cypherqa/types"
	"github.com/pennsieve/cypherqa/vector/qdrant"
)

// connector ids registered by Open
const (
	ChatConnector        = "cypherqa.chat"
	DescriptionConnector = "cypherqa.description"
	EmbeddingConnector   = "cypherqa.embedding"
)

// Open connects every collaborator described by cfg and builds the engine
func Open(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := New(ctx, *deps, OptionsOf(cfg))
	if err != nil {
		deps.Graph.Close()
		deps.Vector.Close()
		return nil, err
	}
	return engine, nil
}

// OptionsOf maps the configuration onto engine options
func OptionsOf(cfg *config.Config) Options {
	return Options{
		Collection:  cfg.Populate.Collection,
		MaxRetries:  cfg.Repair.MaxRetries,
		Backoff:     cfg.Repair.Backoff,
		TopK:        cfg.Repair.TopK,
		ExampleMode: cfg.Repair.ExampleMode,
		SummaryRows: cfg.Repair.SummaryRows,
		Timeout:     cfg.Repair.Timeout,
		Populate: pathstore.Options{
			ThrottleEvery: cfg.Populate.ThrottleEvery,
			ThrottleDelay: cfg.Populate.ThrottleDelay,
			BackupFile:    cfg.Populate.BackupFile,
		},
	}
}

// Connect registers the OpenAI connectors and connects the graph and vector stores
func Connect(ctx context.Context, cfg *config.Config) (*Deps, error) {
	for _, id := range []string{ChatConnector, DescriptionConnector, EmbeddingConnector} {
		if err := registerConnector(id, cfg.OpenAI); err != nil {
			return nil, err
		}
	}

	chat, err := llm.NewOpenai(llm.OpenaiOptions{
		ConnectorName: ChatConnector,
		Model:         cfg.OpenAI.ChatModel,
		Temperature:   cfg.OpenAI.Temperature,
		Timeout:       cfg.OpenAI.Timeout,
		RetryAttempts: cfg.OpenAI.Retries,
	})
	if err != nil {
		return nil, err
	}

	describer, err := llm.NewOpenai(llm.OpenaiOptions{
		ConnectorName: DescriptionConnector,
		Model:         cfg.OpenAI.DescriptionModel,
		Temperature:   cfg.OpenAI.DescriptionTemperature,
		Timeout:       cfg.OpenAI.Timeout,
		RetryAttempts: cfg.OpenAI.Retries,
	})
	if err != nil {
		return nil, err
	}

	var cache store.Store
	if cfg.OpenAI.CacheSize > 0 {
		cache, err = lru.New(cfg.OpenAI.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	embed, err := embedding.NewOpenai(embedding.OpenaiOptions{
		ConnectorName: EmbeddingConnector,
		Model:         cfg.OpenAI.EmbeddingModel,
		Concurrent:    cfg.OpenAI.Concurrent,
		Dimension:     cfg.OpenAI.Dimension,
		Cache:         cache,
	})
	if err != nil {
		return nil, err
	}

	graph := neo4j.NewStore()
	err = graph.Connect(ctx, types.GraphStoreConfig{
		StoreType:    "neo4j",
		DatabaseURL:  cfg.Neo4j.URI,
		DatabaseName: cfg.Neo4j.Database,
		QueryTimeout: cfg.Neo4j.QueryTimeout,
		DriverConfig: map[string]interface{}{
			"username": cfg.Neo4j.Username,
			"password": cfg.Neo4j.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	vector := qdrant.NewStore()
	err = vector.Connect(ctx, types.VectorStoreConfig{
		Timeout: cfg.Qdrant.Timeout,
		ExtraParams: map[string]interface{}{
			"host":    cfg.Qdrant.Host,
			"port":    cfg.Qdrant.Port,
			"api_key": cfg.Qdrant.APIKey,
			"use_tls": cfg.Qdrant.UseTLS,
		},
	})
	if err != nil {
		graph.Close()
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &Deps{
		Graph:     graph,
		Vector:    vector,
		Embedding: embed,
		Chat:      chat,
		Describer: describer,
	}, nil
}

// registerConnector loads the connector file when one is configured,
// otherwise builds the connector from the host and key settings
func registerConnector(id string, options config.OpenAI) error {
	if options.Connector != "" {
		if _, err := connector.Load(options.Connector, id); err != nil {
			return fmt.Errorf("failed to load connector %s from %s: %w", id, options.Connector, err)
		}
		return nil
	}

	dsl, err := jsoniter.Marshal(map[string]interface{}{
		"type": "openai",
		"name": id,
		"options": map[string]interface{}{
			"host": options.Host,
			"key":  options.Key,
		},
	})
	if err != nil {
		return err
	}

	if _, err := connector.New("openai", id, dsl); err != nil {
		return fmt.Errorf("failed to register connector %s: %w", id, err)
	}
	return nil
}
