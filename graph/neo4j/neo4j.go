// Package neo4j runs read-only Cypher against a Neo4j server and converts
// the records into the shared graph types.
package neo4j

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// DefaultQueryTimeout the transaction timeout used when the config sets none
const DefaultQueryTimeout = 30 * time.Second

// DefaultUsername used when the driver config carries no username
const DefaultUsername = "neo4j"

// Store a read-only GraphStore backed by a Neo4j driver
type Store struct {
	config types.GraphStoreConfig
	driver neo4j.DriverWithContext
	mu     sync.RWMutex
}

// NewStore creates an unconnected store
func NewStore() *Store {
	return &Store{}
}

// Connect creates the driver and verifies the server is reachable
func (s *Store) Connect(ctx context.Context, config types.GraphStoreConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	username, password, err := credentials(config)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver != nil {
		return nil
	}

	timeout := queryTimeout(config)
	driver, err := neo4j.NewDriverWithContext(config.DatabaseURL, neo4j.BasicAuth(username, password, ""), func(c *neo4j.Config) {
		c.Log = newDriverLogger(config.DatabaseURL)
		c.ConnectionAcquisitionTimeout = timeout
	})
	if err != nil {
		return fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return fmt.Errorf("failed to reach %s: %w", config.DatabaseURL, err)
	}

	s.config = config
	s.driver = driver
	log.With(log.F{"database": config.DatabaseName, "timeout": timeout.String()}).Info("[Neo4j] connected to %s", config.DatabaseURL)
	return nil
}

// IsConnected reports whether Connect succeeded and Close was not called
func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.driver != nil
}

// Close closes the driver, closing an unconnected store is a no-op
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil {
		return nil
	}

	err := s.driver.Close(context.Background())
	s.driver = nil
	s.config = types.GraphStoreConfig{}
	if err != nil {
		return fmt.Errorf("failed to close Neo4j driver: %w", err)
	}
	return nil
}

// readSession opens a read-mode session on the configured database and
// returns the transaction timeout to apply
func (s *Store) readSession(ctx context.Context) (neo4j.SessionWithContext, time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.driver == nil {
		return nil, 0, types.ErrNotConnected
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.config.DatabaseName,
	})
	return session, queryTimeout(s.config), nil
}

func credentials(config types.GraphStoreConfig) (string, string, error) {
	username, _ := config.DriverConfig["username"].(string)
	password, _ := config.DriverConfig["password"].(string)
	if username == "" {
		username = DefaultUsername
	}
	if password == "" {
		return "", "", fmt.Errorf("neo4j password is required")
	}
	return username, password, nil
}

func queryTimeout(config types.GraphStoreConfig) time.Duration {
	if config.QueryTimeout > 0 {
		return time.Duration(config.QueryTimeout) * time.Second
	}
	return DefaultQueryTimeout
}
