// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/api/middleware"
)

// genericErrorBody is the fixed payload returned on any read failure.
// Internal error detail is never exposed to callers.
const genericErrorBody = `{"result":"An error has occurred, please check with your local library developer."}`

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// GenericError writes the fixed error payload with the given status code.
func GenericError(w http.ResponseWriter, r *http.Request, status int) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(genericErrorBody + "\n"))
}
