package http

import (
	"net/http"

	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type createGroupBody struct {
	// LegacyKey opts the group out of the derived owner key.
	LegacyKey string `json:"legacy_key,omitempty"`
}

// createGroup opens a group owned by the authenticated requester.
func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var body createGroupBody
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err, "*Handler.createGroup")
			return
		}
	}

	key, err := decodeKey(body.LegacyKey)
	if err != nil {
		writeError(w, r, err, "*Handler.createGroup")
		return
	}

	group, err := h.services.GroupService.CreateGroup(r.Context(), models.CreateGroupRequest{
		OwnerID:   requesterID(r),
		LegacyKey: key,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.createGroup")
		return
	}

	utils.WriteJSON(w, group, http.StatusCreated)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.deleteGroup")
		return
	}

	if err := h.services.GroupService.DeleteGroup(r.Context(), groupID, requesterID(r)); err != nil {
		writeError(w, r, err, "*Handler.deleteGroup")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type masterKeyResponse struct {
	MasterKey string `json:"master_key"`
}

// masterKey returns the requester's own derived key. Only the requester can
// ever receive it, so there is no group or ownership lookup.
func (h *Handler) masterKey(w http.ResponseWriter, r *http.Request) {
	mk, err := h.services.GroupService.OwnerKey(r.Context(), requesterID(r))
	if err != nil {
		writeError(w, r, err, "*Handler.masterKey")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, masterKeyResponse{MasterKey: mk.Encode()}, http.StatusOK)
}
