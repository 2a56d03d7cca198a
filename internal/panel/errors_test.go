package panel

import (
	"errors"
	"strings"
	"testing"

	"github.com/chintak/qrganize/internal/provider"
)

func TestDescribeHTTPErrorVerboseVsGeneric(t *testing.T) {
	err := &provider.HTTPError{Status: 500, Reason: "Internal Server Error", Fragment: "Internal Server Error"}

	generic, retryable := describeError(err, false)
	if !retryable {
		t.Fatal("HTTP failures should be retryable")
	}
	if strings.Contains(generic, "500") || strings.Contains(generic, "Internal Server Error") {
		t.Fatalf("generic message leaked raw detail: %q", generic)
	}
	if !strings.Contains(generic, "showDetailedErrors") {
		t.Fatalf("generic message should hint at verbose mode: %q", generic)
	}

	verbose, _ := describeError(err, true)
	if !strings.Contains(verbose, "500") || !strings.Contains(verbose, "Internal Server Error") {
		t.Fatalf("verbose message missing detail: %q", verbose)
	}
}

func TestDescribeTimeoutAndCancel(t *testing.T) {
	msg, retryable := describeError(provider.ErrTimeout, false)
	if !retryable || !strings.Contains(msg, "timed out") {
		t.Fatalf("timeout: %q retryable=%v", msg, retryable)
	}

	msg, retryable = describeError(provider.ErrCancelled, false)
	if retryable || msg != "Cancelled." {
		t.Fatalf("cancel: %q retryable=%v", msg, retryable)
	}
}

func TestDescribeConfigErrorAlwaysDetailed(t *testing.T) {
	msg, retryable := describeError(&provider.ConfigError{Reason: "gemini requires an API key"}, false)
	if retryable {
		t.Fatal("config errors are not retryable")
	}
	if !strings.Contains(msg, "gemini requires an API key") {
		t.Fatalf("msg = %q", msg)
	}
}

func TestDescribeBlockedError(t *testing.T) {
	msg, retryable := describeError(&provider.BlockedError{Reason: "SAFETY"}, false)
	if retryable || !strings.Contains(msg, "SAFETY") {
		t.Fatalf("msg = %q retryable=%v", msg, retryable)
	}
}

func TestDescribeMalformedError(t *testing.T) {
	err := &provider.MalformedError{Provider: "ollama", Dump: `{"odd":true}`}
	generic, _ := describeError(err, false)
	if strings.Contains(generic, "odd") {
		t.Fatalf("generic message leaked the dump: %q", generic)
	}
	verbose, _ := describeError(err, true)
	if !strings.Contains(verbose, "odd") {
		t.Fatalf("verbose message missing the dump: %q", verbose)
	}
}

func TestDescribeUnknownError(t *testing.T) {
	msg, retryable := describeError(errors.New("connection refused"), false)
	if !retryable {
		t.Fatal("network errors should be retryable")
	}
	if strings.Contains(msg, "connection refused") {
		t.Fatalf("generic message leaked detail: %q", msg)
	}
}
