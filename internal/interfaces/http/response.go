package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "constellation-backend/internal/errors"
)

// errorResponse is the standardized error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// respondError maps application error types onto HTTP status codes.
// Internal details are logged, never sent to the client.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.ErrorTypeNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperrors.ErrorTypeNoPuzzle, apperrors.ErrorTypeData:
		writeError(w, http.StatusConflict, err.Error())
	case apperrors.ErrorTypeExternal:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "an internal error occurred")
	}
}
