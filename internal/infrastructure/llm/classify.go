package llm

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	quotaMarkers     = []string{"quota", "insufficient balance", "rate limit", "resource_exhausted"}
	retryableMarkers = []string{"overloaded", "503", "500"}
)

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// isQuota reports account-level refusals that no other model of the same
// vendor can get around.
func isQuota(err error) bool {
	switch statusCode(err) {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return true
	}
	return containsAny(err, quotaMarkers)
}

func isRetryable(err error) bool {
	if statusCode(err) >= http.StatusInternalServerError {
		return true
	}
	return containsAny(err, retryableMarkers)
}

func containsAny(err error, markers []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
