package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pennsieve/cypherqa/types"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// Connect establishes connection to Qdrant server
func (s *Store) Connect(ctx context.Context, config types.VectorStoreConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	clientConfig := clientConfigFrom(config)
	client, err := qdrant.NewClient(clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	// Test connection with health check
	_, err = client.HealthCheck(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("health check failed: %w", err)
	}

	s.config = config
	s.client = client
	s.connected = true

	return nil
}

// clientConfigFrom builds the client config from the extra params
func clientConfigFrom(config types.VectorStoreConfig) *qdrant.Config {
	host := "localhost"
	port := DefaultPort
	apiKey := ""
	useTLS := false

	if config.ExtraParams != nil {
		if h, ok := config.ExtraParams["host"].(string); ok && h != "" {
			host = h
		}
		switch p := config.ExtraParams["port"].(type) {
		case string:
			if portInt, err := strconv.Atoi(p); err == nil {
				port = portInt
			}
		case int:
			port = p
		case float64:
			port = int(p)
		}
		if k, ok := config.ExtraParams["api_key"].(string); ok {
			apiKey = k
		}
		if t, ok := config.ExtraParams["use_tls"].(bool); ok {
			useTLS = t
		}
	}

	clientConfig := &qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageSize)),
		},
	}

	return clientConfig
}

// Disconnect closes the connection to Qdrant server
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	s.client = nil
	s.connected = false

	return nil
}

// IsConnected returns whether the store is connected
func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Close closes the connection and cleans up resources
func (s *Store) Close() error {
	return s.Disconnect(context.Background())
}
