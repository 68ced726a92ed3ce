package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"merchantops/internal/service"
	"merchantops/models"
	"merchantops/pkg/logger"
)

var (
	categoryIDFormat = regexp.MustCompile(`^cat_\d+$`)
	dishIDFormat     = regexp.MustCompile(`^dish_\d+$`)
)

// responder carries the JSON response plumbing every handler shares.
// Handlers embed it so call sites stay uniform across the package.
type responder struct {
	logger *logger.Logger
}

// writeJSONResponse writes JSON response with given status code and data
func (h responder) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error("Failed to encode JSON response", "error", err)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// writeErrorResponse writes an error response with given status code and message
func (h responder) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

// parseRequestBody parses JSON request body into the target struct
func (h responder) parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// respondJSON writes the success payload and completes request logging
func (h responder) respondJSON(w http.ResponseWriter, reqCtx *logger.RequestContext, statusCode int, data interface{}) {
	h.writeJSONResponse(w, statusCode, data)
	reqCtx.StatusCode = statusCode
	h.logger.LogResponse(reqCtx)
}

// respondError writes an error payload and completes request logging
func (h responder) respondError(w http.ResponseWriter, reqCtx *logger.RequestContext, statusCode int, message string) {
	h.writeErrorResponse(w, statusCode, message)
	reqCtx.StatusCode = statusCode
	h.logger.LogResponse(reqCtx)
}

// respondServiceError maps a typed service error onto its status code.
// Unrecognized errors are treated as internal and their detail is kept
// out of the response body.
func (h responder) respondServiceError(w http.ResponseWriter, reqCtx *logger.RequestContext, err error) {
	statusCode := statusForError(err)
	if statusCode >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", reqCtx.Path)
		h.respondError(w, reqCtx, statusCode, "Internal server error")
		return
	}

	h.logger.Warn("Request rejected", "error", err, "path", reqCtx.Path)
	h.respondError(w, reqCtx, statusCode, err.Error())
}

func statusForError(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case models.IsNotFound(err):
		return http.StatusNotFound
	case models.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newRequestContext(r *http.Request) *logger.RequestContext {
	return &logger.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		StartTime:  time.Now(),
	}
}

func sortOptionFromQuery(query url.Values) service.SortOption {
	return service.SortOption{
		Field:     query.Get("sortBy"),
		Direction: query.Get("sortDir"),
	}
}

// pathParts returns the path segments after the given route prefix
func pathParts(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// validateCategoryID validates category ID format
func validateCategoryID(id string) error {
	if id == "" {
		return fmt.Errorf("category ID cannot be empty")
	}
	if !categoryIDFormat.MatchString(id) {
		return fmt.Errorf("invalid category ID format")
	}
	return nil
}

// validateDishID validates dish ID format
func validateDishID(id string) error {
	if id == "" {
		return fmt.Errorf("dish ID cannot be empty")
	}
	if !dishIDFormat.MatchString(id) {
		return fmt.Errorf("invalid dish ID format")
	}
	return nil
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	responder
}

func NewHealthHandler(log *logger.Logger) *HealthHandler {
	return &HealthHandler{responder{logger: log.WithComponent("health_handler")}}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
