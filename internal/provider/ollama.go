package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ollamaClient struct {
	cfg Config
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.cfg.Model)
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// Chat sends one user message. Ollama's chat endpoint has no separate
// system slot in this shape, so the system text is folded into the user
// message.
func (c *ollamaClient) Chat(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:    c.cfg.Model,
		Messages: []ollamaMessage{{Role: "user", Content: joinSystem(system, user)}},
		Stream:   false,
	})
	if err != nil {
		return "", err
	}

	body, err := post(ctx, c.cfg, c.cfg.APIURL+"/api/chat", nil, payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &MalformedError{Provider: "ollama", Dump: clip(string(body), 400)}
	}
	if parsed.Message.Content == "" {
		return "", &MalformedError{Provider: "ollama", Dump: clip(string(body), 400)}
	}
	return parsed.Message.Content, nil
}

// ChatStream is the streaming variant: the endpoint emits one JSON
// object per line, each carrying a content delta, until done is true.
func (c *ollamaClient) ChatStream(ctx context.Context, system, user string, onChunk func(chunk string)) (string, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:    c.cfg.Model,
		Messages: []ollamaMessage{{Role: "user", Content: joinSystem(system, user)}},
		Stream:   true,
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeoutCause(ctx, c.cfg.Timeout, ErrTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/api/chat", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{
			Status:   resp.StatusCode,
			Reason:   http.StatusText(resp.StatusCode),
			Fragment: errorFragment(body),
		}
	}

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var delta struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Done bool `json:"done"`
		}
		if err := json.Unmarshal([]byte(line), &delta); err != nil {
			return "", &MalformedError{Provider: "ollama", Dump: clip(line, 400)}
		}
		if delta.Message.Content != "" {
			answer.WriteString(delta.Message.Content)
			if onChunk != nil {
				onChunk(delta.Message.Content)
			}
		}
		if delta.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", classifyTransport(ctx, err)
	}
	if answer.Len() == 0 {
		return "", &MalformedError{Provider: "ollama", Dump: "stream carried no content"}
	}
	return answer.String(), nil
}

func joinSystem(system, user string) string {
	if strings.TrimSpace(system) == "" {
		return user
	}
	return system + "\n\n" + user
}
