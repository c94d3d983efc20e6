package openai

import (
	"fmt"

	"github.com/pennsieve/cypherqa/helper"
)

// Connector connector
type Connector struct {
	id      string
	file    string
	Name    string                                  `json:"name" yaml:"name"`
	Options Options                                 `json:"options" yaml:"options"`
	Parse   func(string, []byte, interface{}) error `json:"-" yaml:"-"`
}

// Options the openai connector option
type Options struct {
	Host  string `json:"host,omitempty" yaml:"host,omitempty"`   // API endpoint, e.g. "https://api.openai.com" or custom endpoint
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"` // (Deprecated) API endpoint, use Host instead
	Model string `json:"model,omitempty" yaml:"model,omitempty"` // Model name, e.g. "gpt-4"
	Key   string `json:"key" yaml:"key"`                         // API key
}

// Register the connections from dsl
func (o *Connector) Register(file string, id string, dsl []byte) error {
	o.id = id
	o.file = file
	if o.Parse == nil {
		return fmt.Errorf("connector %s: no parser", id)
	}

	err := o.Parse(file, dsl, o)
	if err != nil {
		return err
	}

	o.Options.Host = helper.EnvString(o.Options.Host)
	o.Options.Proxy = helper.EnvString(o.Options.Proxy)
	o.Options.Model = helper.EnvString(o.Options.Model)
	o.Options.Key = helper.EnvString(o.Options.Key)
	return nil
}

// Is the connections from dsl
func (o *Connector) Is(typ int) bool {
	return 6 == typ
}

// ID get connector id
func (o *Connector) ID() string {
	return o.id
}

// Close connections
func (o *Connector) Close() error {
	return nil
}

// Setting get the connection setting
func (o *Connector) Setting() map[string]interface{} {

	// Priority: Host > Proxy (backward compatibility) > default
	host := "https://api.openai.com"
	if o.Options.Host != "" {
		host = o.Options.Host
	} else if o.Options.Proxy != "" {
		host = o.Options.Proxy
	}

	return map[string]interface{}{
		"host":  host,
		"key":   o.Options.Key,
		"model": o.Options.Model,
	}
}
