// Package handler provides HTTP handlers for the status API.
package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/api/response"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

// StatusHandler serves the stored status record.
type StatusHandler struct {
	repo    status.Repository
	product string
	logger  zerolog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(repo status.Repository, product string, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		repo:    repo,
		product: product,
		logger:  logger,
	}
}

// GetStatus handles GET /v1/status - the stored record, verbatim.
// Any failure reading the store, a missing record included, degrades to the
// fixed error payload.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	record, err := h.repo.Get(r.Context(), h.product)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("product", h.product).
			Msg("failed to read status record")
		setCORSHeaders(w)
		response.GenericError(w, r, http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	response.JSON(w, r, http.StatusOK, record)
}

// setCORSHeaders allows the record to be fetched from library web pages on
// other origins.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}
