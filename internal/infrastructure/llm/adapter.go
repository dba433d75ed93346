package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ContentStudio/internal/generation"
	"ContentStudio/internal/ratelimit"
)

const (
	defaultRetryDelay = 2 * time.Second
	systemPrompt      = "You are a LinkedIn content strategist. Reply with valid JSON only, without markdown or commentary."
)

// ChatCompleter is the part of *openai.Client the adapter needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// WindowLimiter admits requests per key and window.
type WindowLimiter interface {
	Check(ctx context.Context, key string) (ratelimit.Decision, error)
}

// QuotaLimiter admits requests against a global daily budget.
type QuotaLimiter interface {
	Check(ctx context.Context) (ratelimit.Decision, error)
}

// AdapterDeps wires collaborators. Nil limiters disable that check.
type AdapterDeps struct {
	Client     ChatCompleter
	Window     WindowLimiter
	Daily      QuotaLimiter
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Adapter implements generation.Provider for an OpenAI-compatible vendor.
type Adapter struct {
	spec       ProviderSpec
	client     ChatCompleter
	window     WindowLimiter
	daily      QuotaLimiter
	retryDelay time.Duration
	logger     *slog.Logger
}

var (
	_ generation.Provider = (*Adapter)(nil)
	_ generation.Labeler  = (*Adapter)(nil)
)

// NewAdapter builds a provider adapter. When deps.Client is nil a go-openai
// client is created from the provider settings.
func NewAdapter(spec ProviderSpec, deps AdapterDeps) *Adapter {
	client := deps.Client
	if client == nil && spec.APIKey != "" {
		client = NewClient(spec)
	}
	delay := deps.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &Adapter{
		spec:       spec,
		client:     client,
		window:     deps.Window,
		daily:      deps.Daily,
		retryDelay: delay,
		logger:     deps.Logger,
	}
}

// Name returns the registry name of the provider.
func (a *Adapter) Name() string { return a.spec.Name }

// Label returns the display name used in aggregated errors.
func (a *Adapter) Label() string { return a.spec.Label }

// GenerateJSON walks the candidate models of the provider and returns the
// first parsed JSON answer.
func (a *Adapter) GenerateJSON(ctx context.Context, prompt, preferredModel string) (json.RawMessage, error) {
	if a.spec.APIKey == "" || a.client == nil {
		return nil, &generation.ConfigurationError{Provider: a.spec.Name, Setting: a.spec.KeySetting}
	}
	if err := a.admit(ctx); err != nil {
		return nil, err
	}

	models := a.spec.Candidates(preferredModel)
	var lastErr error
	for _, model := range models {
		text, err := a.tryModel(ctx, prompt, model)
		if err == nil {
			raw, parseErr := generation.ExtractJSON(text)
			if parseErr != nil {
				return nil, &generation.MalformedResponseError{
					Provider: a.spec.Name,
					Model:    model,
					Preview:  generation.Preview(text),
					Err:      parseErr,
				}
			}
			a.debug("model answered", "model", model, "bytes", len(raw))
			return raw, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", a.spec.Name, model, ctxErr)
		}
		if isQuota(err) {
			return nil, &generation.QuotaExceededError{Provider: a.spec.Name, Model: model, Err: err}
		}

		a.debug("model failed", "model", model, "error", err)
		lastErr = err
	}

	return nil, &generation.ProviderExhaustedError{Provider: a.spec.Name, Models: models, Err: lastErr}
}

// admit consults the window limiter first and the daily quota second. A
// limiter backend failure is logged and the request let through.
func (a *Adapter) admit(ctx context.Context) error {
	if a.window != nil {
		d, err := a.window.Check(ctx, a.spec.LimiterKey)
		switch {
		case err != nil:
			a.warn("window limiter unavailable", "error", err)
		case !d.Allowed:
			return &generation.RateLimitError{Provider: a.spec.Name, Scope: generation.ScopeWindow, RetryAfter: d.RetryAfter}
		}
	}
	if a.daily != nil {
		d, err := a.daily.Check(ctx)
		switch {
		case err != nil:
			a.warn("daily limiter unavailable", "error", err)
		case !d.Allowed:
			return &generation.RateLimitError{Provider: a.spec.Name, Scope: generation.ScopeDaily, RetryAfter: d.RetryAfter}
		default:
			a.debug("daily quota", "used", d.Count, "limit", d.Limit)
		}
	}
	return nil
}

// tryModel calls the model and retries once after retryDelay on transient
// upstream failures.
func (a *Adapter) tryModel(ctx context.Context, prompt, model string) (string, error) {
	text, err := a.complete(ctx, prompt, model)
	if err == nil || !isRetryable(err) {
		return text, err
	}

	a.debug("transient failure, retrying", "model", model, "delay", a.retryDelay, "error", err)
	timer := time.NewTimer(a.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	return a.complete(ctx, prompt, model)
}

func (a *Adapter) complete(ctx context.Context, prompt, model string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: a.spec.Temperature,
	}
	if a.spec.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Debug(msg, args...)
}

func (a *Adapter) warn(msg string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(msg, args...)
}
