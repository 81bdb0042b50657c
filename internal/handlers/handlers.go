// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Nutra server.
// Handlers are grouped by concern (auth, admin, public) and receive
// their dependencies through the handler struct. Admin handlers speak
// JSON; public handlers render HTML pages.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

// writeError writes a JSON error body: {"error": "..."}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// FieldError points a validation failure at the field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeFieldErrors writes a 400 with the full list of validation
// failures so the console can annotate the form in one round trip.
func writeFieldErrors(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": errs,
	})
}

// decodeJSON decodes a request body into v with a size cap.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
