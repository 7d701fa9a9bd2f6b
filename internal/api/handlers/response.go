package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/services"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// statusFor maps pipeline and storage errors to HTTP status codes.
func statusFor(err error) int {
	var verr *services.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &verr), errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoExtractableText), errors.Is(err, core.ErrUndecodableEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSearchUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err with its mapped status. Server-side failures are logged and
// their internals withheld from the client.
func respondErr(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logger.Error(msg, "error", err)
		if errors.Is(err, core.ErrProcessingFailed) {
			writeError(w, status, core.ErrProcessingFailed.Error())
			return
		}
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}
