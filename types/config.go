package types

import "fmt"

// GraphStoreConfig represents configuration for graph store connection
type GraphStoreConfig struct {
	StoreType    string                 `json:"store_type" yaml:"store_type"`                           // "neo4j"
	DatabaseURL  string                 `json:"database_url" yaml:"database_url"`                       // Database connection URL
	DatabaseName string                 `json:"database_name,omitempty" yaml:"database_name,omitempty"` // Target database, empty for the server default
	QueryTimeout int                    `json:"query_timeout,omitempty" yaml:"query_timeout,omitempty"` // Query timeout in seconds
	DriverConfig map[string]interface{} `json:"driver_config,omitempty" yaml:"driver_config,omitempty"` // Driver-specific parameters (username, password, etc.)
}

// Validate validates the graph store configuration
func (c *GraphStoreConfig) Validate() error {
	if c.StoreType == "" {
		return fmt.Errorf("store type cannot be empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url must be provided")
	}
	return nil
}

// VectorStoreConfig represents configuration for vector store connection
type VectorStoreConfig struct {
	Timeout     int                    `json:"timeout,omitempty" yaml:"timeout,omitempty"`           // Operation timeout in seconds
	ExtraParams map[string]interface{} `json:"extra_params,omitempty" yaml:"extra_params,omitempty"` // Database-specific parameters (host, port, api_key, etc.)
}
