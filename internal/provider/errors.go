package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrTimeout reports that the per-call deadline elapsed before the
// provider answered. Distinct from ErrCancelled so the UI can word the
// two outcomes differently.
var ErrTimeout = errors.New("request timed out")

// ErrCancelled reports a user-initiated abort.
var ErrCancelled = errors.New("request cancelled")

// ConfigError reports a problem with the provider configuration that
// makes a network call pointless. Never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Reason
}

// HTTPError carries a non-success status plus a best-effort fragment of
// the response body. The fragment is diagnostic text, not a contract.
type HTTPError struct {
	Status   int
	Reason   string
	Fragment string
}

func (e *HTTPError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("HTTP %d %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Reason, e.Fragment)
}

// MalformedError reports a 2xx response whose body did not carry the
// answer at the provider's documented path.
type MalformedError struct {
	Provider string
	Dump     string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s returned an unexpected response shape: %s", e.Provider, e.Dump)
}

// BlockedError reports that the provider refused to answer for content
// policy reasons. Not a parse failure.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "content blocked by provider: " + e.Reason
}

// classifyTransport maps an http.Client error to the taxonomy. The
// deadline and the user's abort race; context.Cause tells them apart.
func classifyTransport(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return fmt.Errorf("network request failed: %w", err)
	}
	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return ErrTimeout
	}
	return ErrCancelled
}

var (
	centerHeadingRE = regexp.MustCompile(`(?is)<center><h1>(.*?)</h1>`)
	titleTagRE      = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
)

// errorFragment mines a short human-readable string out of an error
// body. Best effort only; provider error shapes vary too much to treat
// this as stable.
func errorFragment(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return clip(payload.Error.Message, 200)
	}
	text := string(body)
	if m := centerHeadingRE.FindStringSubmatch(text); m != nil {
		return clip(strings.TrimSpace(m[1]), 200)
	}
	if m := titleTagRE.FindStringSubmatch(text); m != nil {
		return clip(strings.TrimSpace(m[1]), 200)
	}
	return clip(strings.TrimSpace(text), 100)
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
