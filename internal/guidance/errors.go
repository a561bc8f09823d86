package guidance

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/taqdeer/taqdeer-api/internal/llm"
)

type Kind int

const (
	InvalidInput Kind = iota + 1
	UpstreamUnavailable
	UpstreamTimeout
	MalformedUpstreamResponse
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case UpstreamTimeout:
		return "upstream_timeout"
	case MalformedUpstreamResponse:
		return "malformed_upstream_response"
	}
	return "unknown"
}

// ResolutionError is what Resolve returns on failure. Message is safe to
// show to a client; Err keeps the underlying cause for logs.
type ResolutionError struct {
	Kind        Kind
	Message     string
	RateLimited bool
	Err         error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) HTTPStatus() int {
	switch e.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case UpstreamUnavailable:
		if e.RateLimited {
			return http.StatusTooManyRequests
		}
		return http.StatusInternalServerError
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func invalidInput(msg string) *ResolutionError {
	return &ResolutionError{Kind: InvalidInput, Message: msg}
}

// upstreamError maps an llm failure onto the resolver taxonomy.
func upstreamError(err error) *ResolutionError {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return &ResolutionError{Kind: UpstreamTimeout, Message: "The request took too long to complete. Please try again.", Err: err}
	case errors.Is(err, llm.ErrRateLimited):
		return &ResolutionError{Kind: UpstreamUnavailable, RateLimited: true, Message: "Rate limit exceeded. Please try again later.", Err: err}
	case errors.Is(err, llm.ErrUnauthorized), errors.Is(err, llm.ErrMissingCredential):
		return &ResolutionError{Kind: UpstreamUnavailable, Message: "API authentication error. Please contact the administrator.", Err: err}
	}
	return &ResolutionError{Kind: UpstreamUnavailable, Message: "The guidance service is unavailable. Please try again later.", Err: err}
}

func malformed(err error) *ResolutionError {
	return &ResolutionError{Kind: MalformedUpstreamResponse, Message: "Failed to parse the generated response. Please try again.", Err: err}
}
