// Package httputil provides the JSON response envelope used by every API
// handler, plus the mapping from engine errors to HTTP error codes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shotline/shotline/internal/engine"
)

// Error codes exposed to API clients.
const (
	CodeBadRequest       = "INVALID_PARAMS"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeNotFound         = "NOT_FOUND"
	CodeStaleTarget      = "STALE_TARGET"
	CodeAllocationFailed = "ALLOCATION_FAILED"
	CodePersistence      = "PERSISTENCE_FAILED"
	CodeInternal         = "INTERNAL"
)

type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status: "ok",
		Data:   data,
	})
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status: "error",
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// WriteEngineError maps the engine's error taxonomy onto HTTP responses.
func WriteEngineError(w http.ResponseWriter, err error) {
	var pe *engine.PersistenceError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, engine.ErrNotFoundAfterRetry):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, engine.ErrStaleTarget):
		WriteError(w, http.StatusConflict, CodeStaleTarget, err.Error())
	case errors.Is(err, engine.ErrAllocation):
		WriteError(w, http.StatusUnprocessableEntity, CodeAllocationFailed, err.Error())
	case errors.As(err, &pe):
		WriteError(w, http.StatusBadGateway, CodePersistence, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func ReadJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
