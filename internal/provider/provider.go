// Package provider performs single chat-completion calls against the
// supported AI backends. Each backend has its own request and response
// shape; the adapters own those shapes bit-exactly rather than routing
// through a vendor SDK.
package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Supported provider identifiers.
const (
	Ollama   = "ollama"
	LMStudio = "lmstudio"
	OpenAI   = "openai"
	Gemini   = "gemini"
)

const defaultTimeout = 120 * time.Second

// Config describes how to reach one provider for one operation.
type Config struct {
	Provider   string
	Model      string
	APIURL     string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs exactly one request/response cycle per call and
// returns the extracted answer text.
type Client interface {
	Chat(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Streamer is implemented by adapters that can deliver incremental
// chunks while the answer is being generated.
type Streamer interface {
	ChatStream(ctx context.Context, system, user string, onChunk func(chunk string)) (string, error)
}

// New builds the adapter for cfg.Provider. An unknown identifier or a
// missing credential fails here, before any network call.
func New(cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigError{Reason: "model is not set"}
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, &ConfigError{Reason: "API URL is not set"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.HTTPClient = pickHTTPClient(cfg.HTTPClient, cfg.Timeout)

	switch cfg.Provider {
	case Ollama:
		return &ollamaClient{cfg: cfg}, nil
	case LMStudio:
		return &lmstudioClient{cfg: cfg}, nil
	case OpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, &ConfigError{Reason: "openai requires an API key"}
		}
		return &openaiClient{cfg: cfg}, nil
	case Gemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, &ConfigError{Reason: "gemini requires an API key"}
		}
		return &geminiClient{cfg: cfg}, nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown provider %q", cfg.Provider)}
	}
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	// The per-call context enforces the configured deadline; the client
	// timeout is a slightly larger backstop so a stuck body read cannot
	// outlive the operation forever.
	return &http.Client{Timeout: timeout + 30*time.Second}
}

// post runs one POST cycle under the configured deadline and returns
// the response body. Non-2xx statuses become an HTTPError with a mined
// body fragment; transport failures are classified timeout vs cancel.
func post(ctx context.Context, cfg Config, url string, headers map[string]string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, cfg.Timeout, ErrTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// Keep the status; the partial body is not worth mining.
		if resp.StatusCode >= 400 {
			return nil, &HTTPError{Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
		}
		return nil, classifyTransport(ctx, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			Status:   resp.StatusCode,
			Reason:   http.StatusText(resp.StatusCode),
			Fragment: errorFragment(body),
		}
	}
	return body, nil
}
