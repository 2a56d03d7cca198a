package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// openaiClient talks to an OpenAI-compatible cloud endpoint. Unlike the
// local adapters, cfg.APIURL is the full completions URL and the key
// rides in a bearer header.
type openaiClient struct {
	cfg Config
}

func (c *openaiClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.cfg.Model)
}

func (c *openaiClient) Chat(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: openAIMessages(system, user),
		Stream:   false,
	})
	if err != nil {
		return "", err
	}

	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	body, err := post(ctx, c.cfg, c.cfg.APIURL, headers, payload)
	if err != nil {
		return "", err
	}
	return decodeChatCompletion("openai", body)
}
