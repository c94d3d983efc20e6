package connector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAI(t *testing.T) {
	os.Setenv("CYPHERQA_TEST_OPENAI_KEY", "sk-test")
	defer os.Unsetenv("CYPHERQA_TEST_OPENAI_KEY")

	dsl := `{"type":"openai","options":{"model":"gpt-4","key":"$ENV.CYPHERQA_TEST_OPENAI_KEY"}}`
	c, err := New("openai", "test.gpt4", []byte(dsl))
	require.NoError(t, err)
	defer Remove("test.gpt4")

	assert.True(t, c.Is(OPENAI))
	assert.Equal(t, "test.gpt4", c.ID())

	setting := c.Setting()
	assert.Equal(t, "https://api.openai.com", setting["host"])
	assert.Equal(t, "sk-test", setting["key"])
	assert.Equal(t, "gpt-4", setting["model"])

	selected, err := Select("test.gpt4")
	require.NoError(t, err)
	assert.Equal(t, c, selected)
}

func TestLoadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "embedding.conn.yml")
	source := "type: openai\nname: Embeddings\noptions:\n  host: http://127.0.0.1:8080\n  model: text-embedding-3-small\n  key: sk-local\n"
	require.NoError(t, os.WriteFile(file, []byte(source), 0644))

	c, err := Load(file, "test.embedding")
	require.NoError(t, err)
	defer Remove("test.embedding")

	setting := c.Setting()
	assert.Equal(t, "http://127.0.0.1:8080", setting["host"])
	assert.Equal(t, "text-embedding-3-small", setting["model"])
}

func TestUnsupportedAndMissing(t *testing.T) {
	_, err := New("mysql", "test.mysql", []byte(`{}`))
	assert.Error(t, err)

	_, err = Select("test.not-loaded")
	assert.Error(t, err)

	assert.Error(t, Remove("test.not-loaded"))
}
