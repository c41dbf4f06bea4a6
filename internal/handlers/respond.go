// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the content API.
// Handlers translate query parameters and JSON bodies into service
// calls and map service errors onto HTTP status codes.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"inkwell/internal/apperr"
)

// respondJSON writes payload with the given status. Encoding failures
// are logged; by then the status line is already on the wire.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError maps a service error to its HTTP shape: validation
// failures are 400, missing resources are 404, everything else is a
// 500 with the detail kept out of the response body.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
