package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type geminiClient struct {
	cfg Config
}

func (c *geminiClient) Name() string {
	return fmt.Sprintf("Gemini (%s)", c.cfg.Model)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *geminiClient) Chat(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: joinSystem(system, user)}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.APIURL, url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))
	body, err := post(ctx, c.cfg, endpoint, nil, payload)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &MalformedError{Provider: "gemini", Dump: clip(string(body), 400)}
	}
	if len(parsed.Candidates) == 0 {
		// A block reason with no candidates is a policy refusal, not a
		// malformed body.
		if parsed.PromptFeedback.BlockReason != "" {
			return "", &BlockedError{Reason: parsed.PromptFeedback.BlockReason}
		}
		return "", &MalformedError{Provider: "gemini", Dump: clip(string(body), 400)}
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", &MalformedError{Provider: "gemini", Dump: clip(string(body), 400)}
	}
	return parts[0].Text, nil
}
