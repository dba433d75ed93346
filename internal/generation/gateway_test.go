package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeProvider struct {
	name  string
	label string
	out   json.RawMessage
	err   error
	calls int
	model string
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Label() string { return f.label }

func (f *fakeProvider) GenerateJSON(_ context.Context, _ string, preferredModel string) (json.RawMessage, error) {
	f.calls++
	f.model = preferredModel
	return f.out, f.err
}

func TestGatewayFirstProviderWins(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "deepseek", out: json.RawMessage(`{"ok":1}`)}
	b := &fakeProvider{name: "openai"}
	c := &fakeProvider{name: "gemini"}
	gw := NewGateway(GatewayDeps{Providers: []Provider{a, b, c}})

	out, err := gw.GenerateJSON(context.Background(), "prompt", "gpt-4o")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != `{"ok":1}` {
		t.Fatalf("unexpected output %s", out)
	}
	if a.calls != 1 || b.calls != 0 || c.calls != 0 {
		t.Fatalf("unexpected call counts %d/%d/%d", a.calls, b.calls, c.calls)
	}
	if a.model != "gpt-4o" {
		t.Fatalf("preferred model not forwarded: %q", a.model)
	}
}

func TestGatewayFallsBackToThirdProvider(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "deepseek", err: &QuotaExceededError{Provider: "deepseek", Model: "deepseek-chat", Err: errors.New("insufficient balance")}}
	b := &fakeProvider{name: "openai", err: &ConfigurationError{Provider: "openai", Setting: "OPENAI_API_KEY"}}
	c := &fakeProvider{name: "gemini", out: json.RawMessage(`[1,2]`)}
	gw := NewGateway(GatewayDeps{Providers: []Provider{a, b, c}})

	out, err := gw.GenerateJSON(context.Background(), "prompt", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != `[1,2]` {
		t.Fatalf("unexpected output %s", out)
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Fatalf("unexpected call counts %d/%d/%d", a.calls, b.calls, c.calls)
	}
}

func TestGatewayAggregatesFailures(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "deepseek", label: "DeepSeek", err: errors.New("boom")}
	b := &fakeProvider{name: "openai", label: "OpenAI", err: &RateLimitError{Provider: "openai", Scope: ScopeWindow, RetryAfter: 30 * time.Second}}
	c := &fakeProvider{name: "gemini", label: "Gemini", err: &MalformedResponseError{Provider: "gemini", Model: "gemini-1.5-flash", Preview: "nope", Err: ErrNoJSON}}
	gw := NewGateway(GatewayDeps{Providers: []Provider{a, b, c}})

	_, err := gw.GenerateJSON(context.Background(), "prompt", "")
	var all *AllProvidersFailedError
	if !errors.As(err, &all) {
		t.Fatalf("expected AllProvidersFailedError, got %v", err)
	}
	if len(all.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(all.Failures))
	}

	msg := err.Error()
	for _, want := range []string{"DeepSeek: boom", "OpenAI: openai rate limit exceeded", "Gemini: gemini returned malformed JSON"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if strings.Index(msg, "DeepSeek") > strings.Index(msg, "Gemini") {
		t.Fatalf("failures out of order: %q", msg)
	}

	var limited *RateLimitError
	if !errors.As(err, &limited) || limited.RetryAfter != 30*time.Second {
		t.Fatalf("errors.As should reach the rate limit error, got %v", limited)
	}
	if _, throttled := all.Throttled(); throttled {
		t.Fatal("mixed failures must not count as throttled")
	}
}

func TestAllProvidersFailedThrottled(t *testing.T) {
	t.Parallel()

	err := &AllProvidersFailedError{Failures: []ProviderFailure{
		{Provider: "a", Err: &RateLimitError{RetryAfter: 40 * time.Second}},
		{Provider: "b", Err: &RateLimitError{RetryAfter: 10 * time.Second}},
		{Provider: "c", Err: &QuotaExceededError{Err: errors.New("quota")}},
	}}
	wait, ok := err.Throttled()
	if !ok || wait != 10*time.Second {
		t.Fatalf("expected throttled with 10s, got %s %v", wait, ok)
	}
}

func TestGatewayStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &fakeProvider{name: "deepseek"}
	gw := NewGateway(GatewayDeps{Providers: []Provider{a}})
	if _, err := gw.GenerateJSON(ctx, "prompt", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if a.calls != 0 {
		t.Fatalf("provider should not be called, got %d calls", a.calls)
	}
}

func TestGatewayWithoutProviders(t *testing.T) {
	t.Parallel()

	var cfg *ConfigurationError
	if _, err := NewGateway(GatewayDeps{}).GenerateJSON(context.Background(), "p", ""); !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestRegistryChain(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&fakeProvider{name: "deepseek"})
	r.Register(&fakeProvider{name: "gemini"})

	chain, err := r.Chain([]string{"gemini", "deepseek", "gemini"})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 2 || chain[0].Name() != "gemini" || chain[1].Name() != "deepseek" {
		t.Fatalf("unexpected chain order")
	}

	if _, err := r.Chain([]string{"openai"}); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
	if _, err := r.Chain(nil); err == nil {
		t.Fatal("expected error for empty order")
	}
}
