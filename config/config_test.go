package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/kun/log"
)

func TestDefault(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("NEO4J_USERNAME", "")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QDRANT_PORT", "7334")

	cfg := Default()
	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, "sk-test", cfg.OpenAI.Key)
	assert.Equal(t, 7334, cfg.Qdrant.Port)
	assert.Equal(t, "cypher_paths", cfg.Populate.Collection)
	assert.Equal(t, 512, cfg.OpenAI.Dimension)
	assert.Equal(t, 3, cfg.Repair.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("CYPHERQA_TEST_NEO4J_PASS", "from-env")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_KEY", "")

	file := filepath.Join(t.TempDir(), "cypherqa.yml")
	source := `
neo4j:
  uri: bolt://localhost:7687
  password: $ENV.CYPHERQA_TEST_NEO4J_PASS
openai:
  key: sk-file
  chat_model: gpt-4o
  timeout: 30s
repair:
  max_retries: 5
  backoff: 250ms
  example_mode: both
populate:
  collection: paths_test
  throttle_delay: 1s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(file, []byte(source), 0644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "from-env", cfg.Neo4j.Password)
	assert.Equal(t, "sk-file", cfg.OpenAI.Key)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 5, cfg.Repair.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Repair.Backoff)
	assert.Equal(t, ModeBoth, cfg.Repair.ExampleMode)
	assert.Equal(t, "paths_test", cfg.Populate.Collection)

	// untouched values keep their defaults
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, 5, cfg.Repair.TopK)
	assert.NoError(t, cfg.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	empty, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Populate, empty.Populate)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Neo4j.Password = "p"
		cfg.OpenAI.Key = "k"
		return cfg
	}

	cfg := valid()
	cfg.Neo4j.Password = ""
	cfg.OpenAI.Key = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo4j.password")
	assert.Contains(t, err.Error(), "openai.key")

	// a connector file carries the key
	cfg = valid()
	cfg.OpenAI.Key = ""
	cfg.OpenAI.Connector = "openai.conn.yml"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Repair.ExampleMode = "random"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Repair.TopK = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("TRACE")
	require.NoError(t, err)
	assert.Equal(t, log.TraceLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
