package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pennsieve/cypherqa/connector"
	"github.com/pennsieve/cypherqa/http"
)

// PostLLM sends a POST request to LLM API using connector
func PostLLM(ctx context.Context, conn connector.Connector, endpoint string, payload map[string]interface{}) (interface{}, error) {
	setting := conn.Setting()

	host, ok := setting["host"].(string)
	if !ok || host == "" {
		return nil, fmt.Errorf("no host found in connector settings")
	}

	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	// Host is api.openai.com & endpoint not has /v1, then add /v1
	if host == "https://api.openai.com" && !strings.HasPrefix(endpoint, "/v1") {
		endpoint = "/v1" + endpoint
	}

	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(host, "/"), strings.TrimPrefix(endpoint, "/"))

	apiKey, ok := setting["key"].(string)
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	r := http.New(url)
	r.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	r.SetHeader("Content-Type", "application/json")
	r.WithContext(ctx)

	resp := r.Post(payload)
	if resp.Status != 200 {
		if resp.Message != "" {
			return nil, fmt.Errorf("request failed with status: %d, message: %s", resp.Status, resp.Message)
		}
		return nil, fmt.Errorf("request failed with status: %d, data: %v", resp.Status, resp.Data)
	}

	return resp.Data, nil
}

// ContentOf extracts choices[0].message.content from a chat completion response
func ContentOf(result interface{}) (string, error) {
	respMap, ok := result.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected response format")
	}

	choices, ok := respMap["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected choice format")
	}

	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("no message in choice")
	}

	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("no content in message")
	}
	return content, nil
}
