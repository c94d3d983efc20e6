package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/pennsieve/cypherqa/connector"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// OpenaiOptions defines the options for the OpenAI chat model
type OpenaiOptions struct {
	ConnectorName string        // Connector name
	Model         string        // Model name (optional, can be overridden by connector)
	Temperature   float64       // Sampling temperature
	MaxTokens     int           // Maximum tokens in the completion, zero leaves it to the server
	Timeout       time.Duration // Per-request timeout
	RetryAttempts int           // Number of retry attempts for failed requests
	RetryDelay    time.Duration // Delay between retry attempts
}

// Openai a chat model talking to an OpenAI compatible chat/completions endpoint.
// Retries here only cover transport failures; they are unrelated to the
// query repair loop.
type Openai struct {
	Connector     connector.Connector
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewOpenai create a new OpenAI chat model with options
func NewOpenai(options OpenaiOptions) (*Openai, error) {
	c, err := connector.Select(options.ConnectorName)
	if err != nil {
		return nil, err
	}

	if !c.Is(connector.OPENAI) {
		return nil, fmt.Errorf("The connector %s is not a OpenAI connector", options.ConnectorName)
	}

	model := options.Model
	if model == "" {
		setting := c.Setting()
		if connectorModel, ok := setting["model"].(string); ok && connectorModel != "" {
			model = connectorModel
		} else {
			model = "gpt-4"
		}
	}

	if options.Timeout <= 0 {
		options.Timeout = 60 * time.Second
	}

	if options.RetryAttempts < 0 {
		options.RetryAttempts = 0
	}

	if options.RetryDelay <= 0 {
		options.RetryDelay = time.Second
	}

	return &Openai{
		Connector:     c,
		Model:         model,
		Temperature:   options.Temperature,
		MaxTokens:     options.MaxTokens,
		Timeout:       options.Timeout,
		RetryAttempts: options.RetryAttempts,
		RetryDelay:    options.RetryDelay,
	}, nil
}

// Chat sends the messages and returns the generated text
func (o *Openai) Chat(ctx context.Context, messages []types.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	payload := map[string]interface{}{
		"model":       o.Model,
		"messages":    messages,
		"temperature": o.Temperature,
	}
	if o.MaxTokens > 0 {
		payload["max_tokens"] = o.MaxTokens
	}

	var err error
	for attempt := 0; attempt <= o.RetryAttempts; attempt++ {
		var content string
		content, err = o.post(ctx, payload)
		if err == nil {
			return content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt < o.RetryAttempts {
			log.With(log.F{"model": o.Model, "attempt": attempt + 1}).Warn("[LLM] request failed, retrying: %s", err.Error())
			select {
			case <-time.After(o.RetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("request failed after %d attempts: %w", o.RetryAttempts+1, err)
}

func (o *Openai) post(ctx context.Context, payload map[string]interface{}) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	result, err := PostLLM(reqCtx, o.Connector, "chat/completions", payload)
	if err != nil {
		return "", err
	}
	return ContentOf(result)
}

// GetModel returns the current model being used
func (o *Openai) GetModel() string {
	return o.Model
}
