package http

import (
	"net/http"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.SystemService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.services.SystemService.Ready(r.Context()); err != nil {
		writeError(w, r, err, "*Handler.ready")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
