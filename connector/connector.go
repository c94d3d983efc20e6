package connector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pennsieve/cypherqa/connector/openai"
	"gopkg.in/yaml.v3"
)

// Connectors the loaded connectors
var Connectors = map[string]Connector{}

var rwlock sync.RWMutex

// Load a connector from file
func Load(file string, id string) (Connector, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return LoadSource(data, id, file)
}

// LoadSource load a connector from source
func LoadSource(source []byte, id string, file string) (Connector, error) {
	dsl := DSL{}
	err := Parse(file, source, &dsl)
	if err != nil {
		return nil, err
	}
	return New(dsl.Type, id, source, file)
}

// New create a new connector
func New(typ string, id string, dsl []byte, file ...string) (Connector, error) {
	c, err := makeConnector(typ)
	if err != nil {
		return nil, err
	}

	name := "__source__" + strings.Replace(id, ".", "/", -1) + ".conn.json"
	if len(file) > 0 && file[0] != "" {
		name = file[0]
	}

	err = c.Register(name, id, dsl)
	if err != nil {
		return nil, err
	}

	rwlock.Lock()
	defer rwlock.Unlock()
	Connectors[id] = c
	return c, nil
}

// Select a connector
func Select(id string) (Connector, error) {
	rwlock.RLock()
	defer rwlock.RUnlock()
	connector, has := Connectors[id]
	if !has {
		return nil, fmt.Errorf("connector %s not loaded", id)
	}
	return connector, nil
}

// Remove a connector
func Remove(id string) error {
	rwlock.Lock()
	defer rwlock.Unlock()
	connector, has := Connectors[id]
	if !has {
		return fmt.Errorf("connector %s not loaded", id)
	}
	delete(Connectors, id)
	return connector.Close()
}

// Parse decode a DSL source, YAML for .yml/.yaml files and JSON otherwise
func Parse(file string, source []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yml", ".yaml":
		return yaml.Unmarshal(source, v)
	}
	return jsoniter.Unmarshal(source, v)
}

func makeConnector(typ string) (Connector, error) {

	t, has := types[typ]
	if !has {
		return nil, fmt.Errorf("%s does not support", typ)
	}

	switch t {
	case OPENAI:
		return &openai.Connector{Parse: Parse}, nil
	}

	return nil, fmt.Errorf("%s does not support yet", typ)
}
