package contentful

import (
	"encoding/json"
	"fmt"
	"net/http"

	"contentful-mcp/internal/mcp"
)

const requestIDHeader = "X-Contentful-Request-Id"

// APIError is a non-2xx response from the delivery API
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	RequestID  string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("contentful %s (%d)", e.ID, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}

// Unwrap maps a 404 onto the shared not-found sentinel
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return mcp.ErrNotFound
	}
	return nil
}

// Temporary reports whether the failure says something about the API's
// health rather than about the request
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type errorBody struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message   string          `json:"message"`
	RequestID string          `json:"requestId"`
	Details   json.RawMessage `json:"details"`
}

func decodeAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		ID:         http.StatusText(resp.StatusCode),
		RequestID:  resp.Header.Get(requestIDHeader),
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Sys.ID != "" {
			apiErr.ID = parsed.Sys.ID
		}
		apiErr.Message = parsed.Message
		apiErr.Details = parsed.Details
		if apiErr.RequestID == "" {
			apiErr.RequestID = parsed.RequestID
		}
	}

	return apiErr
}

func notFound(kind, id string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		ID:         "NotFound",
		Message:    fmt.Sprintf("%s %s could not be found", kind, id),
	}
}
