package panel

import (
	"errors"
	"fmt"

	"github.com/chintak/qrganize/internal/provider"
)

const enableVerboseHint = "Enable showDetailedErrors in the config for details."

// describeError turns a taxonomy error into a user-facing message and
// reports whether a retry makes sense. Verbose mode surfaces statuses,
// fragments, and dumps; otherwise the raw material stays hidden behind
// a generic message with a hint.
func describeError(err error, verbose bool) (message string, retryable bool) {
	var cfgErr *provider.ConfigError
	if errors.As(err, &cfgErr) {
		// Config guidance is always worth showing in full.
		return "Configuration problem: " + cfgErr.Reason, false
	}
	if errors.Is(err, provider.ErrCancelled) {
		return "Cancelled.", false
	}
	if errors.Is(err, provider.ErrTimeout) {
		return "The request timed out. The model may still be loading; try again.", true
	}

	var blocked *provider.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Sprintf("The provider blocked this content (%s).", blocked.Reason), false
	}

	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) {
		if verbose {
			msg := fmt.Sprintf("The provider returned HTTP %d %s.", httpErr.Status, httpErr.Reason)
			if httpErr.Fragment != "" {
				msg += " Body: " + httpErr.Fragment
			}
			return msg, true
		}
		return "The provider request failed. " + enableVerboseHint, true
	}

	var malformed *provider.MalformedError
	if errors.As(err, &malformed) {
		if verbose {
			return "The provider response had an unexpected shape. Dump: " + malformed.Dump, true
		}
		return "The provider returned an unusable response. " + enableVerboseHint, true
	}

	if verbose {
		return "The request failed: " + err.Error(), true
	}
	return "Could not reach the provider. " + enableVerboseHint, true
}
