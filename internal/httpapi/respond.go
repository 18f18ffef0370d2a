package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thumbsmith/thumbsmith/internal/service"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeError translates service sentinels into HTTP responses. Anything
// unmapped is logged with full context and answered with a generic body so
// internal details never reach the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		s.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVerification):
		s.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		s.writeErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		s.writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrForbidden):
		s.writeErrorMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		s.writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		s.writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGeneration), errors.Is(err, service.ErrEnhancement):
		s.writeErrorMessage(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		s.writeErrorMessage(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
