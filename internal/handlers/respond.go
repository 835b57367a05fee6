package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
)

// apiResponse is the uniform success envelope.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// apiError is the uniform failure envelope.
type apiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	writeJSON(ctx, w, status, apiError{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     errs,
	})
}

// respondValidation flattens a field->message map into the errors array.
func respondValidation(ctx context.Context, w http.ResponseWriter, fields map[string]string) {
	errs := make([]string, 0, len(fields))
	for field, msg := range fields {
		errs = append(errs, field+" "+msg)
	}
	sort.Strings(errs)
	respondError(ctx, w, http.StatusBadRequest, "validation failed", errs...)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pageFromQuery reads the page/limit query parameters (1-indexed,
// defaults 1/10).
func pageFromQuery(r *http.Request) repositories.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return repositories.NewPage(page, limit)
}

// respondStoreError maps repository sentinel errors onto the envelope,
// falling back to a 500 with the provided message.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg, failMsg string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, failMsg)
	default:
		logging.FromContext(ctx).Error(failMsg, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, failMsg)
	}
}
