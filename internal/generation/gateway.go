// Package generation turns prompts into parsed JSON by walking an ordered
// chain of AI providers.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// GatewayDeps wires the provider chain.
type GatewayDeps struct {
	Providers []Provider
	Logger    *slog.Logger
}

// Gateway tries providers in order until one returns JSON.
type Gateway struct {
	providers []Provider
	logger    *slog.Logger
}

// NewGateway constructs the fallback gateway.
func NewGateway(deps GatewayDeps) *Gateway {
	return &Gateway{providers: deps.Providers, logger: deps.Logger}
}

// GenerateJSON returns the first successful provider result. When every
// provider fails the error is an *AllProvidersFailedError listing each one.
func (g *Gateway) GenerateJSON(ctx context.Context, prompt, preferredModel string) (json.RawMessage, error) {
	if len(g.providers) == 0 {
		return nil, &ConfigurationError{Provider: "gateway", Setting: "generation.order"}
	}

	failures := make([]ProviderFailure, 0, len(g.providers))
	for _, p := range g.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate json: %w", err)
		}

		started := time.Now()
		out, err := p.GenerateJSON(ctx, prompt, preferredModel)
		observeAttempt(p.Name(), err, time.Since(started))

		if err == nil {
			g.info("provider succeeded", "provider", p.Name(), "elapsed", time.Since(started))
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("generate json with %s: %w", p.Name(), err)
		}

		g.warn("provider failed, falling back", "provider", p.Name(), "error", err)
		failures = append(failures, ProviderFailure{Provider: label(p), Err: err})
	}

	return nil, &AllProvidersFailedError{Failures: failures}
}

func (g *Gateway) info(msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Info(msg, args...)
}

func (g *Gateway) warn(msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Warn(msg, args...)
}
