package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/boutique/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under the "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes a 404 for a missing resource.
// The caller supplies the human-readable message (e.g. "product not found")
// because the handler is the layer that knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

// badRequest writes a 422 for input rejected before reaching the service
// layer (e.g. missing or malformed body, unparsable parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// respondError maps a service error onto the HTTP error envelope. resource
// names the thing being looked up for the 404 message. Unrecognised errors
// are logged with the request ID and hidden behind a 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, resource+" not found")
	case errors.Is(err, domain.ErrInUse):
		writeError(w, http.StatusConflict, "in_use", unwrapMessage(err, domain.ErrInUse))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", unwrapMessage(err, domain.ErrUnauthorized))
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows sentinel in a
// wrapped error.
// e.g. "service.TagService.Create: conflict: tag \"red\" already exists" → "tag \"red\" already exists"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 && len(msg) > i+len(marker) {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// decodeJSON decodes the request body into dst and runs struct validation.
// Unknown fields are rejected. The returned error is safe to show the client.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errors.New("request body must be a valid JSON object")
	}
	return s.validate.Validate(dst)
}

// respondDecodeError writes the response for a decodeJSON failure.
func (s *Server) respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	case errors.Is(err, domain.ErrValidation):
		s.respondError(w, r, err, "")
	default:
		badRequest(w, err.Error())
	}
}
