package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Kind classifies why a generative call did not produce a usable reply.
type Kind string

const (
	KindQuotaExceeded Kind = "QUOTA_EXCEEDED"
	KindTimeout       Kind = "TIMEOUT"
	KindProviderError Kind = "PROVIDER_ERROR"
)

var (
	ErrLocalQuota     = errors.New("local request budget exhausted")
	ErrMalformedReply = errors.New("provider reply too short or empty")
)

// Failure is the typed error returned by Service for every unsuccessful call.
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Retryable reports whether a second attempt may succeed. Quota failures
// never are.
func (f *Failure) Retryable() bool {
	return f.Kind == KindTimeout || f.Kind == KindProviderError
}

// KindOf extracts the failure kind from err. Errors that are not a Failure
// report PROVIDER_ERROR with ok=false.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return KindProviderError, false
}

// classifyError maps a raw provider or transport error onto a Failure.
func classifyError(err error) *Failure {
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Kind: KindTimeout, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &Failure{Kind: KindQuotaExceeded, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &Failure{Kind: KindQuotaExceeded, Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return &Failure{Kind: KindQuotaExceeded, Err: err}
		}
	}

	return &Failure{Kind: KindProviderError, Err: err}
}

var quotaMarkers = []string{
	"quota",
	"rate limit",
	"ratelimit",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
	"status code: 429",
}
