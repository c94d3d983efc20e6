package connector

const (
	// OPENAI the OpenAI compatible chat and embedding connector
	OPENAI = iota + 6
)

var types = map[string]int{
	"openai": OPENAI,
}

// Connector the connector interface
type Connector interface {
	Register(file string, id string, dsl []byte) error
	Close() error
	ID() string
	Is(int) bool
	Setting() map[string]interface{}
}

// DSL the connector DSL
type DSL struct {
	ID      string                 `json:"-" yaml:"-"`
	Type    string                 `json:"type" yaml:"type"`
	Name    string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Label   string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Version string                 `json:"version,omitempty" yaml:"version,omitempty"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}
