package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/generation"
)

// quotaRetryAfter is advertised when an upstream quota gives no reset time.
const quotaRetryAfter = time.Minute

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps err onto a status code. Server-side failures are logged.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, retryAfter := classify(err)
	resp := ErrorResponse{Error: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if status == http.StatusTooManyRequests {
		secs := int((retryAfter + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		resp.RetryAfter = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "status", status, "error", err)
		}
		if status == http.StatusInternalServerError {
			resp.Error = "internal error"
		}
	}
	writeJSON(w, status, resp)
}

// classify returns the HTTP status for err and, for 429, the wait to advertise.
func classify(err error) (int, time.Duration) {
	var (
		ve    *domain.ValidationError
		nf    *domain.NotFoundError
		it    *domain.InvalidTransitionError
		de    *domain.DeliveryError
		all   *generation.AllProvidersFailedError
		rl    *generation.RateLimitError
		quota *generation.QuotaExceededError
		cfg   *generation.ConfigurationError
		gen   *domain.GenerationError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, 0
	case errors.As(err, &nf):
		return http.StatusNotFound, 0
	case errors.As(err, &it):
		return http.StatusConflict, 0
	case errors.As(err, &all):
		if wait, ok := all.Throttled(); ok {
			if wait == 0 {
				wait = quotaRetryAfter
			}
			return http.StatusTooManyRequests, wait
		}
		if unconfigured(all) {
			return http.StatusServiceUnavailable, 0
		}
		return http.StatusBadGateway, 0
	case errors.As(err, &rl):
		return http.StatusTooManyRequests, rl.RetryAfter
	case errors.As(err, &quota):
		return http.StatusTooManyRequests, quotaRetryAfter
	case errors.As(err, &cfg), errors.Is(err, domain.ErrMediaUnavailable):
		return http.StatusServiceUnavailable, 0
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, 0
	case errors.As(err, &gen), errors.As(err, &de):
		return http.StatusBadGateway, 0
	}
	return http.StatusInternalServerError, 0
}

func unconfigured(all *generation.AllProvidersFailedError) bool {
	for _, f := range all.Failures {
		var cfg *generation.ConfigurationError
		if !errors.As(f.Err, &cfg) {
			return false
		}
	}
	return len(all.Failures) > 0
}
