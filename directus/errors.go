package directus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingToken is returned when a login response carries no token.
var ErrMissingToken = errors.New("login response has no access token")

// APIError is a non-2xx response from a Directus instance.
type APIError struct {
	StatusCode int
	// Code is the extensions.code of the first error, e.g. INVALID_CREDENTIALS.
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("directus returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("directus returned %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("directus returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// errorEnvelope is the body Directus sends with failed requests.
type errorEnvelope struct {
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

// newAPIError builds an APIError from a failed response body. Bodies that are
// not a Directus error envelope keep only the status code.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Errors) > 0 {
		apiErr.Message = envelope.Errors[0].Message
		apiErr.Code = envelope.Errors[0].Extensions.Code
	}
	return apiErr
}
