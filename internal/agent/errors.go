package agent

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is the precondition failure raised before any network call.
var ErrMissingAPIKey = errors.New("no API key configured: set llm.api_key or PHONECLAW_API_KEY")

// ErrEmptyResponse reports a completion without any choice.
var ErrEmptyResponse = errors.New("no response from LLM")

// maxErrorBody caps how much of an error body is kept.
const maxErrorBody = 200

// APIError is a non-2xx response from the completions endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

func newAPIError(status int, body []byte) *APIError {
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &APIError{StatusCode: status, Body: text}
}
