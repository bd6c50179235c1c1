package middleware

import (
	"encoding/json"
	"net/http"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeError writes the API error envelope. Middleware cannot import the
// handler package, so it carries its own copy of the shape.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}})
}
