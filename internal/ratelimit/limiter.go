// Package ratelimit implements fixed-window admission control over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Defaults used by the generation providers.
const (
	DefaultPerWindow  = 15
	DefaultWindow     = time.Minute
	DefaultDailyLimit = 1500
	DailyWindow       = 24 * time.Hour
	dailyKey          = "daily"
)

// Window is the stored state of one key.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Store keeps windows. Take must reset an expired or missing window to a
// count of one, otherwise increment while below max, as a single atomic step.
// A refused Take leaves the window untouched.
type Store interface {
	Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (Window, bool, error)
	Peek(ctx context.Context, key string) (Window, bool, error)
}

// Decision is the result of a Check.
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := d.RetryAfter / time.Second
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// Usage is an observational snapshot of a key.
type Usage struct {
	Used      int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Config tunes a Limiter.
type Config struct {
	Name   string
	Max    int
	Window time.Duration
	Now    func() time.Time
}

// Limiter admits at most Max checks per key per window.
type Limiter struct {
	store  Store
	name   string
	max    int
	window time.Duration
	now    func() time.Time
}

// New builds a windowed limiter. Zero values fall back to 15 per minute.
func New(store Store, cfg Config) *Limiter {
	if cfg.Max <= 0 {
		cfg.Max = DefaultPerWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Name == "" {
		cfg.Name = "window"
	}
	return &Limiter{store: store, name: cfg.Name, max: cfg.Max, window: cfg.Window, now: cfg.Now}
}

// Check consumes one slot for key if available.
func (l *Limiter) Check(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	w, ok, err := l.store.Take(ctx, key, l.max, l.window, now)
	if err != nil {
		return Decision{}, fmt.Errorf("take %s window: %w", key, err)
	}

	d := Decision{Allowed: ok, Count: w.Count, Limit: l.max, ResetAt: w.ResetAt}
	if !ok {
		d.RetryAfter = w.ResetAt.Sub(now)
		if d.RetryAfter < 0 {
			d.RetryAfter = 0
		}
	}
	observe(l.name, ok)
	return d, nil
}

// Usage reports the current window for key without consuming a slot.
func (l *Limiter) Usage(ctx context.Context, key string) (Usage, error) {
	u := Usage{Limit: l.max, Remaining: l.max}
	w, ok, err := l.store.Peek(ctx, key)
	if err != nil {
		return u, fmt.Errorf("peek %s window: %w", key, err)
	}
	if !ok || l.now().After(w.ResetAt) {
		return u, nil
	}
	u.Used = w.Count
	u.Remaining = max(l.max-w.Count, 0)
	u.ResetAt = w.ResetAt
	return u, nil
}

// Daily is a process-wide limiter over a single 24h window.
type Daily struct {
	limiter *Limiter
}

// NewDaily builds the daily quota guard. A zero limit falls back to 1500.
func NewDaily(store Store, limit int, now func() time.Time) *Daily {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Daily{limiter: New(store, Config{Name: "daily", Max: limit, Window: DailyWindow, Now: now})}
}

// Check consumes one slot of the daily quota.
func (d *Daily) Check(ctx context.Context) (Decision, error) {
	return d.limiter.Check(ctx, dailyKey)
}

// Usage reports the daily quota without consuming it.
func (d *Daily) Usage(ctx context.Context) (Usage, error) {
	return d.limiter.Usage(ctx, dailyKey)
}
