package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/topoviz/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidVariant, errors.ErrCodeInvalidConstraint:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeCollectionNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodePathNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidState, errors.ErrCodeStale:
		return http.StatusConflict
	case errors.ErrCodeDataShape, errors.ErrCodeLayoutUnresolvable:
		return http.StatusUnprocessableEntity
	case errors.ErrCodePathQuery, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", "err", err)
		msg = "internal error"
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}
