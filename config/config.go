// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pennsieve/cypherqa/helper"
	"github.com/yaoapp/kun/log"
	"gopkg.in/yaml.v3"
)

// Example modes
const (
	ModePaths   = "paths"   // retrieved instance paths only
	ModeQueries = "queries" // curated question/query pairs only
	ModeBoth    = "both"    // retrieved paths followed by curated pairs
)

// Config the service configuration
type Config struct {
	Neo4j    Neo4j    `json:"neo4j" yaml:"neo4j"`
	Qdrant   Qdrant   `json:"qdrant" yaml:"qdrant"`
	OpenAI   OpenAI   `json:"openai" yaml:"openai"`
	Repair   Repair   `json:"repair" yaml:"repair"`
	Populate Populate `json:"populate" yaml:"populate"`
	Server   Server   `json:"server" yaml:"server"`
	Log      Log      `json:"log" yaml:"log"`
}

// Neo4j the graph connection
type Neo4j struct {
	URI          string `json:"uri" yaml:"uri"`
	Username     string `json:"username" yaml:"username"`
	Password     string `json:"password" yaml:"password"`
	Database     string `json:"database,omitempty" yaml:"database,omitempty"`
	QueryTimeout int    `json:"query_timeout,omitempty" yaml:"query_timeout,omitempty"` // seconds
}

// Qdrant the vector index connection
type Qdrant struct {
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	UseTLS  bool   `json:"use_tls,omitempty" yaml:"use_tls,omitempty"`
	Timeout int    `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
}

// OpenAI the language model and embedding endpoints
type OpenAI struct {
	Connector              string        `json:"connector,omitempty" yaml:"connector,omitempty"` // connector DSL file, replaces host and key
	Host                   string        `json:"host,omitempty" yaml:"host,omitempty"`
	Key                    string        `json:"key" yaml:"key"`
	ChatModel              string        `json:"chat_model" yaml:"chat_model"`
	Temperature            float64       `json:"temperature" yaml:"temperature"`
	DescriptionModel       string        `json:"description_model" yaml:"description_model"`
	DescriptionTemperature float64       `json:"description_temperature" yaml:"description_temperature"`
	EmbeddingModel         string        `json:"embedding_model" yaml:"embedding_model"`
	Dimension              int           `json:"dimension" yaml:"dimension"`
	Timeout                time.Duration `json:"timeout" yaml:"timeout"`
	Retries                int           `json:"retries" yaml:"retries"` // transport retries per call
	Concurrent             int           `json:"concurrent,omitempty" yaml:"concurrent,omitempty"`
	CacheSize              int           `json:"cache_size,omitempty" yaml:"cache_size,omitempty"` // cached query embeddings, 0 disables
}

// Repair the query repair loop
type Repair struct {
	MaxRetries  int           `json:"max_retries" yaml:"max_retries"`
	Backoff     time.Duration `json:"backoff" yaml:"backoff"`
	TopK        int           `json:"top_k" yaml:"top_k"`
	ExampleMode string        `json:"example_mode" yaml:"example_mode"`
	SummaryRows int           `json:"summary_rows,omitempty" yaml:"summary_rows,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"` // whole question, 0 means no limit
}

// Populate the example collection maintenance
type Populate struct {
	Collection    string        `json:"collection" yaml:"collection"`
	Count         int           `json:"count" yaml:"count"`
	ThrottleEvery int           `json:"throttle_every" yaml:"throttle_every"`
	ThrottleDelay time.Duration `json:"throttle_delay" yaml:"throttle_delay"`
	BackupFile    string        `json:"backup_file,omitempty" yaml:"backup_file,omitempty"`
	Schedule      string        `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron spec for incremental population
}

// Server the HTTP API
type Server struct {
	Host    string        `json:"host" yaml:"host"`
	Port    int           `json:"port" yaml:"port"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"` // shutdown grace period
}

// Log the log settings
type Log struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration read from the environment
func Default() *Config {
	return &Config{
		Neo4j: Neo4j{
			URI:      helper.EnvString("$ENV.NEO4J_URI", "neo4j://localhost:7687"),
			Username: helper.EnvString("$ENV.NEO4J_USERNAME", "neo4j"),
			Password: helper.Getenv("NEO4J_PASSWORD", "NEO4J_PASS"),
		},
		Qdrant: Qdrant{
			Host:   helper.EnvString("$ENV.QDRANT_HOST", "localhost"),
			Port:   helper.EnvInt("$ENV.QDRANT_PORT", 6334),
			APIKey: helper.Getenv("QDRANT_API_KEY"),
		},
		OpenAI: OpenAI{
			Host:                   helper.Getenv("OPENAI_HOST"),
			Key:                    helper.Getenv("OPENAI_API_KEY", "OPENAI_KEY"),
			ChatModel:              "gpt-4",
			Temperature:            0.5,
			DescriptionModel:       "o1-mini-2024-09-12",
			DescriptionTemperature: 1,
			EmbeddingModel:         "text-embedding-3-small",
			Dimension:              512,
			Timeout:                60 * time.Second,
			Retries:                2,
			Concurrent:             4,
			CacheSize:              1024,
		},
		Repair: Repair{
			MaxRetries:  3,
			Backoff:     time.Second,
			TopK:        5,
			ExampleMode: ModePaths,
			SummaryRows: 50,
		},
		Populate: Populate{
			Collection:    "cypher_paths",
			Count:         10,
			ThrottleEvery: 5,
			ThrottleDelay: 2 * time.Second,
			BackupFile:    "data.txt",
		},
		Server: Server{
			Host:    "127.0.0.1",
			Port:    5099,
			Timeout: 5 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads file over the defaults. An empty file name returns the defaults.
func Load(file string) (*Config, error) {
	cfg := Default()
	if file == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", file, err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", file, err)
	}
	return cfg, nil
}

// Parse decodes YAML source into cfg and expands $ENV. references
func Parse(source []byte, cfg *Config) error {
	if err := yaml.Unmarshal(source, cfg); err != nil {
		return err
	}
	cfg.expand()
	return nil
}

func (cfg *Config) expand() {
	for _, s := range []*string{
		&cfg.Neo4j.URI, &cfg.Neo4j.Username, &cfg.Neo4j.Password, &cfg.Neo4j.Database,
		&cfg.Qdrant.Host, &cfg.Qdrant.APIKey,
		&cfg.OpenAI.Connector, &cfg.OpenAI.Host, &cfg.OpenAI.Key, &cfg.OpenAI.ChatModel, &cfg.OpenAI.DescriptionModel, &cfg.OpenAI.EmbeddingModel,
		&cfg.Populate.Collection, &cfg.Populate.BackupFile,
		&cfg.Server.Host,
	} {
		*s = helper.EnvString(*s)
	}
}

// Validate reports the first missing or invalid value
func (cfg *Config) Validate() error {
	var missing []string
	if cfg.Neo4j.URI == "" {
		missing = append(missing, "neo4j.uri")
	}
	if cfg.Neo4j.Password == "" {
		missing = append(missing, "neo4j.password")
	}
	if cfg.OpenAI.Key == "" && cfg.OpenAI.Connector == "" {
		missing = append(missing, "openai.key")
	}
	if cfg.Qdrant.Host == "" {
		missing = append(missing, "qdrant.host")
	}
	if cfg.Populate.Collection == "" {
		missing = append(missing, "populate.collection")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if cfg.OpenAI.Dimension <= 0 {
		return fmt.Errorf("openai.dimension must be positive, got %d", cfg.OpenAI.Dimension)
	}
	if cfg.Repair.MaxRetries < 0 {
		return fmt.Errorf("repair.max_retries must not be negative, got %d", cfg.Repair.MaxRetries)
	}
	if cfg.Repair.TopK <= 0 {
		return fmt.Errorf("repair.top_k must be positive, got %d", cfg.Repair.TopK)
	}
	switch cfg.Repair.ExampleMode {
	case ModePaths, ModeQueries, ModeBoth:
	default:
		return fmt.Errorf("repair.example_mode must be one of %s, %s, %s, got %q", ModePaths, ModeQueries, ModeBoth, cfg.Repair.ExampleMode)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a kun/log level
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// ApplyLog sets the global log level
func (cfg *Config) ApplyLog() {
	level, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn("[Config] %s, using info", err.Error())
	}
	log.SetLevel(level)
}
