package generation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigurationError means a provider cannot run because a setting is missing.
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Provider, e.Setting)
}

// Rate limit scopes.
const (
	ScopeWindow = "window"
	ScopeDaily  = "daily"
)

// RateLimitError is returned before any network call when a limiter refuses.
type RateLimitError struct {
	Provider   string
	Scope      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if e.Scope == ScopeDaily {
		return fmt.Sprintf("%s daily quota exhausted, resets in %ds", e.Provider, secs)
	}
	return fmt.Sprintf("%s rate limit exceeded, retry after %ds", e.Provider, secs)
}

// QuotaExceededError means the upstream account is out of credit or throttled.
// It stops the model loop of the provider that hit it.
type QuotaExceededError struct {
	Provider string
	Model    string
	Err      error
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded on %s: %v", e.Provider, e.Model, e.Err)
}

func (e *QuotaExceededError) Unwrap() error { return e.Err }

// MalformedResponseError means a model answered without usable JSON.
type MalformedResponseError struct {
	Provider string
	Model    string
	Preview  string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned malformed JSON from %s: %v (response: %q)", e.Provider, e.Model, e.Err, e.Preview)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ProviderExhaustedError means every candidate model of a provider failed.
type ProviderExhaustedError struct {
	Provider string
	Models   []string
	Err      error
}

func (e *ProviderExhaustedError) Error() string {
	return fmt.Sprintf("%s: all models failed (%s): %v", e.Provider, strings.Join(e.Models, ", "), e.Err)
}

func (e *ProviderExhaustedError) Unwrap() error { return e.Err }

// ProviderFailure is one entry of an aggregated failure.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError aggregates the failure of every provider in order.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	var b strings.Builder
	b.WriteString("all AI providers failed:")
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n%s: %v", f.Provider, f.Err)
	}
	return b.String()
}

func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Throttled reports whether every provider was refused by a limiter or an
// upstream quota, and the shortest known wait.
func (e *AllProvidersFailedError) Throttled() (time.Duration, bool) {
	if len(e.Failures) == 0 {
		return 0, false
	}

	var wait time.Duration
	for _, f := range e.Failures {
		var rl *RateLimitError
		var quota *QuotaExceededError
		switch {
		case errors.As(f.Err, &rl):
			if wait == 0 || rl.RetryAfter < wait {
				wait = rl.RetryAfter
			}
		case errors.As(f.Err, &quota):
		default:
			return 0, false
		}
	}
	return wait, true
}
