package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
)

type lmstudioClient struct {
	cfg Config
}

func (c *lmstudioClient) Name() string {
	return fmt.Sprintf("LM Studio (%s)", c.cfg.Model)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *lmstudioClient) Chat(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: openAIMessages(system, user),
		Stream:   false,
	})
	if err != nil {
		return "", err
	}

	body, err := post(ctx, c.cfg, c.cfg.APIURL+"/v1/chat/completions", nil, payload)
	if err != nil {
		return "", err
	}
	return decodeChatCompletion("lmstudio", body)
}

func openAIMessages(system, user string) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	return append(msgs, chatMessage{Role: "user", Content: user})
}

// decodeChatCompletion extracts choices[0].message.content. Some local
// servers HTML-entity-encode the body; a decode retry covers that before
// giving up on the shape.
func decodeChatCompletion(name string, body []byte) (string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		unescaped := html.UnescapeString(string(body))
		if err := json.Unmarshal([]byte(unescaped), &parsed); err != nil {
			return "", &MalformedError{Provider: name, Dump: clip(string(body), 400)}
		}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &MalformedError{Provider: name, Dump: clip(string(body), 400)}
	}
	return parsed.Choices[0].Message.Content, nil
}
