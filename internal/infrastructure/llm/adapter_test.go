package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ContentStudio/internal/generation"
	"ContentStudio/internal/ratelimit"
)

type scriptedReply struct {
	content string
	err     error
}

type fakeCompleter struct {
	replies []scriptedReply
	models  []string
	formats []*openai.ChatCompletionResponseFormat
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.models = append(f.models, req.Model)
	f.formats = append(f.formats, req.ResponseFormat)
	if len(f.replies) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return openai.ChatCompletionResponse{}, r.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: r.content}}}}, nil
}

func testSpec() ProviderSpec {
	return ProviderSpec{
		Name:           "openai",
		Label:          "OpenAI",
		KeySetting:     "OPENAI_API_KEY",
		LimiterKey:     "openai-api",
		ModelPrefix:    "gpt",
		APIKey:         "sk-test",
		DefaultModel:   "gpt-4o-mini",
		FallbackModels: []string{"gpt-4o", "gpt-4-turbo-preview"},
		JSONMode:       true,
	}
}

func newTestAdapter(spec ProviderSpec, client ChatCompleter, window WindowLimiter, daily QuotaLimiter) *Adapter {
	return NewAdapter(spec, AdapterDeps{Client: client, Window: window, Daily: daily, RetryDelay: time.Millisecond})
}

func TestAdapterMissingKey(t *testing.T) {
	t.Parallel()

	spec := testSpec()
	spec.APIKey = ""
	client := &fakeCompleter{}
	_, err := newTestAdapter(spec, client, nil, nil).GenerateJSON(context.Background(), "p", "")

	var cfgErr *generation.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Setting != "OPENAI_API_KEY" {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if len(client.models) != 0 {
		t.Fatal("no request should be sent without a key")
	}
}

func TestAdapterFencedJSON(t *testing.T) {
	t.Parallel()

	client := &fakeCompleter{replies: []scriptedReply{{content: "```json\n{\"a\":1}\n```"}}}
	out, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != `{"a":1}` {
		t.Fatalf("unexpected output %s", out)
	}
	if client.formats[0] == nil || client.formats[0].Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatal("json mode should set the response format")
	}
}

func TestAdapterRetriesTransientOnce(t *testing.T) {
	t.Parallel()

	client := &fakeCompleter{replies: []scriptedReply{
		{err: &openai.APIError{HTTPStatusCode: 503, Message: "model overloaded"}},
		{content: `{"ok":true}`},
	}}
	out, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != `{"ok":true}` {
		t.Fatalf("unexpected output %s", out)
	}
	if len(client.models) != 2 || client.models[0] != "gpt-4o-mini" || client.models[1] != "gpt-4o-mini" {
		t.Fatalf("expected a retry on the same model, got %v", client.models)
	}
}

func TestAdapterFallsThroughModels(t *testing.T) {
	t.Parallel()

	client := &fakeCompleter{replies: []scriptedReply{
		{err: &openai.APIError{HTTPStatusCode: 404, Message: "model not found"}},
		{err: &openai.APIError{HTTPStatusCode: 500, Message: "server error"}},
		{err: &openai.APIError{HTTPStatusCode: 500, Message: "server error"}},
		{err: &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}},
	}}
	_, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "")

	var exhausted *generation.ProviderExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ProviderExhaustedError, got %v", err)
	}
	want := []string{"gpt-4o-mini", "gpt-4o", "gpt-4o", "gpt-4-turbo-preview"}
	if len(client.models) != len(want) {
		t.Fatalf("unexpected attempts %v", client.models)
	}
	for i := range want {
		if client.models[i] != want[i] {
			t.Fatalf("attempt %d: got %s want %s", i, client.models[i], want[i])
		}
	}
}

func TestAdapterQuotaAbortsLoop(t *testing.T) {
	t.Parallel()

	cases := []error{
		&openai.APIError{HTTPStatusCode: 402, Message: "Insufficient Balance"},
		&openai.APIError{HTTPStatusCode: 429, Message: "slow down"},
		errors.New("You exceeded your current quota"),
	}
	for _, upstream := range cases {
		client := &fakeCompleter{replies: []scriptedReply{{err: upstream}, {content: `{}`}}}
		_, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "")

		var quota *generation.QuotaExceededError
		if !errors.As(err, &quota) {
			t.Fatalf("%v: expected QuotaExceededError, got %v", upstream, err)
		}
		if len(client.models) != 1 {
			t.Fatalf("%v: quota must stop the model loop, got %v", upstream, client.models)
		}
	}
}

func TestAdapterMalformedStopsCandidates(t *testing.T) {
	t.Parallel()

	client := &fakeCompleter{replies: []scriptedReply{{content: "I'd rather not."}, {content: `{}`}}}
	_, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "")

	var malformed *generation.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if malformed.Preview != "I'd rather not." || malformed.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected error fields %+v", malformed)
	}
	if len(client.models) != 1 {
		t.Fatalf("malformed output must not try other models, got %v", client.models)
	}
}

func TestAdapterPreferredModel(t *testing.T) {
	t.Parallel()

	client := &fakeCompleter{replies: []scriptedReply{{content: `[]`}}}
	if _, err := newTestAdapter(testSpec(), client, nil, nil).GenerateJSON(context.Background(), "p", "gpt-4-turbo-preview"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if client.models[0] != "gpt-4-turbo-preview" {
		t.Fatalf("preferred model should go first, got %v", client.models)
	}

	spec := testSpec()
	if got := spec.Candidates("gemini-1.5-pro"); got[0] != "gpt-4o-mini" || len(got) != 3 {
		t.Fatalf("foreign preferred model should be ignored, got %v", got)
	}
}

func TestCandidatesPreferredReplacesDefault(t *testing.T) {
	t.Parallel()

	spec := testSpec()
	cases := []struct {
		preferred string
		want      []string
	}{
		{"", []string{"gpt-4o-mini", "gpt-4o", "gpt-4-turbo-preview"}},
		{"gpt-4-turbo-preview", []string{"gpt-4-turbo-preview", "gpt-4o"}},
		{"gpt-4o", []string{"gpt-4o", "gpt-4-turbo-preview"}},
		{"gpt-4.1", []string{"gpt-4.1", "gpt-4o", "gpt-4-turbo-preview"}},
	}
	for _, tc := range cases {
		got := spec.Candidates(tc.preferred)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("Candidates(%q) = %v, want %v", tc.preferred, got, tc.want)
		}
	}

	spec.FallbackModels = []string{"gpt-4o", "gpt-4o-mini"}
	if got := spec.Candidates("gpt-4.1"); strings.Join(got, ",") != "gpt-4.1,gpt-4o,gpt-4o-mini" {
		t.Fatalf("default listed as a fallback should stay reachable, got %v", got)
	}
}

func TestAdapterRateLimited(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	window := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Max: 1, Window: time.Minute, Now: clock})
	daily := ratelimit.NewDaily(ratelimit.NewMemoryStore(), 10, clock)

	client := &fakeCompleter{replies: []scriptedReply{{content: `{}`}, {content: `{}`}}}
	adapter := newTestAdapter(testSpec(), client, window, daily)

	if _, err := adapter.GenerateJSON(context.Background(), "p", ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := adapter.GenerateJSON(context.Background(), "p", "")

	var limited *generation.RateLimitError
	if !errors.As(err, &limited) || limited.Scope != generation.ScopeWindow || limited.RetryAfter != time.Minute {
		t.Fatalf("expected window RateLimitError, got %v", err)
	}
	if len(client.models) != 1 {
		t.Fatalf("rate limited call must not reach the network, got %v", client.models)
	}

	usage, _ := daily.Usage(context.Background())
	if usage.Used != 1 {
		t.Fatalf("daily quota should only count admitted calls, got %d", usage.Used)
	}
}

func TestAdapterDailyQuotaExhausted(t *testing.T) {
	t.Parallel()

	daily := ratelimit.NewDaily(ratelimit.NewMemoryStore(), 1, nil)
	client := &fakeCompleter{replies: []scriptedReply{{content: `{}`}}}
	adapter := newTestAdapter(testSpec(), client, nil, daily)

	if _, err := adapter.GenerateJSON(context.Background(), "p", ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := adapter.GenerateJSON(context.Background(), "p", "")
	var limited *generation.RateLimitError
	if !errors.As(err, &limited) || limited.Scope != generation.ScopeDaily {
		t.Fatalf("expected daily RateLimitError, got %v", err)
	}
}

func TestSpecsDefaults(t *testing.T) {
	t.Parallel()

	specs := Specs(configForTest())
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}
	if specs[0].LimiterKey != "deepseek-api" || !specs[0].JSONMode {
		t.Fatalf("unexpected deepseek spec %+v", specs[0])
	}
	if specs[2].JSONMode {
		t.Fatal("gemini json mode should default off")
	}
}
