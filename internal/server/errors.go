package server

import (
	"errors"
	"net/http"

	"github.com/malik-javed/ez-secure-files/internal/auth"
	"github.com/malik-javed/ez-secure-files/internal/model"
)

// writeError maps a domain error to a status code and a JSON body. Anything
// unmapped is an internal error; its details are logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var fe *model.ForbiddenError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrVerificationInvalid),
		errors.Is(err, model.ErrAlreadyVerified):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, model.ErrUnverified):
		status, msg = http.StatusForbidden, err.Error()
	case errors.As(err, &fe):
		status, msg = http.StatusForbidden, fe.Error()
	case errors.Is(err, model.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrCapabilityExpired):
		status, msg = http.StatusGone, err.Error()
	case errors.Is(err, auth.ErrCapabilityDecode),
		errors.Is(err, auth.ErrCapabilityDecrypt):
		status, msg = http.StatusForbidden, "invalid download token"
	case errors.Is(err, model.ErrDependency):
		status, msg = http.StatusBadGateway, "upstream failure"
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		s.cfg.Log.Error("request failed",
			"request_id", RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
