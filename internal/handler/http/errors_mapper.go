package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/service"
	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// errorStatusMap is checked in order; the first target err matches wins.
// The specific sentinels come before the categories they wrap.
var errorStatusMap = []struct {
	target error
	status int
}{
	{ErrInvalidPathParam, http.StatusBadRequest},
	{ErrInvalidJSON, http.StatusBadRequest},

	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{service.ErrStoreNotReady, http.StatusServiceUnavailable},
	{service.ErrCacheInvalidation, http.StatusServiceUnavailable},

	{models.ErrAuthorization, http.StatusForbidden},
	{models.ErrInactiveIdentity, http.StatusConflict},
	{models.ErrConsumptionExceeded, http.StatusConflict},
	{models.ErrAmendBelowConsumed, http.StatusConflict},
	{models.ErrRefundExceedsPaid, http.StatusConflict},
	{models.ErrValidation, http.StatusBadRequest},
	{models.ErrDuplicate, http.StatusConflict},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrGeneration, http.StatusServiceUnavailable},
	{models.ErrConsistency, http.StatusInternalServerError},
	{models.ErrEncryption, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError answers with the status mapped from err. Messages of 5xx
// responses are replaced by the status text: internal errors may name
// tables, columns or driver details.
func writeError(w http.ResponseWriter, r *http.Request, err error, funcName string) {
	status := statusFromError(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", funcName).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("func", funcName).Int("status", status).Msg("request rejected")
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	utils.WriteJSON(w, errorResponse{Error: message}, status)
}
