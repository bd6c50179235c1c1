package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkordes/boutique/internal/domain"
)

// APIError is a non-2xx response from the API. It unwraps to the domain
// sentinel matching its status, so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap returns the sentinel for the response status, or nil.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusConflict:
		if e.Code == "in_use" {
			return domain.ErrInUse
		}
		return domain.ErrConflict
	case http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return domain.ErrValidation
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError reads the error envelope of resp. A body that is not an
// envelope still yields an APIError carrying the status.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
