package http

import (
	"net/http"

	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type createIdentityBody struct {
	Name      string `json:"name"`
	Pseudonym string `json:"pseudonym,omitempty"`
	Key       string `json:"key,omitempty"`
}

type keyBody struct {
	Key string `json:"key"`
}

type statusBody struct {
	Pseudonym string                `json:"pseudonym"`
	Status    models.IdentityStatus `json:"status"`
}

type revealResponse struct {
	Entries map[string]string `json:"entries"`
	Failed  []string          `json:"failed,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) createIdentity(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.createIdentity")
		return
	}

	var body createIdentityBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.createIdentity")
		return
	}

	key, err := decodeKey(body.Key)
	if err != nil {
		writeError(w, r, err, "*Handler.createIdentity")
		return
	}

	identity, err := h.services.IdentityService.CreateIdentity(r.Context(), models.CreateIdentityRequest{
		GroupID:   groupID,
		Name:      body.Name,
		Pseudonym: body.Pseudonym,
		Key:       key,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.createIdentity")
		return
	}

	utils.WriteJSON(w, identity.Summary(), http.StatusCreated)
}

func (h *Handler) listIdentities(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.listIdentities")
		return
	}

	identities, err := h.services.IdentityService.ListIdentities(r.Context(), groupID, requesterID(r))
	if err != nil {
		writeError(w, r, err, "*Handler.listIdentities")
		return
	}

	utils.WriteJSON(w, identities, http.StatusOK)
}

// revealIdentities returns the pseudonym -> real name mapping. The key
// travels in the body so it never shows up in access logs or proxies, and
// the response must not be stored by any cache on the way.
func (h *Handler) revealIdentities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.revealIdentities")
		return
	}

	var body keyBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.revealIdentities")
		return
	}

	key, err := decodeKey(body.Key)
	if err != nil {
		writeError(w, r, err, "*Handler.revealIdentities")
		return
	}

	result, err := h.services.IdentityService.DecryptIdentities(r.Context(), models.DecryptRequest{
		GroupID:     groupID,
		RequesterID: requesterID(r),
		Key:         key,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.revealIdentities")
		return
	}

	utils.WriteJSON(w, revealResponse{Entries: result.Entries, Failed: result.FailedPseudonyms()}, http.StatusOK)
}

func (h *Handler) setIdentityStatus(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.setIdentityStatus")
		return
	}

	var body statusBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.setIdentityStatus")
		return
	}

	summary, err := h.services.IdentityService.SetIdentityStatus(r.Context(), models.StatusRequest{
		GroupID:     groupID,
		RequesterID: requesterID(r),
		Pseudonym:   body.Pseudonym,
		Status:      body.Status,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.setIdentityStatus")
		return
	}

	utils.WriteJSON(w, summary, http.StatusOK)
}

func (h *Handler) repairIdentities(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.repairIdentities")
		return
	}

	repaired, err := h.services.IdentityService.RepairIdentities(r.Context(), groupID, requesterID(r))
	if err != nil {
		writeError(w, r, err, "*Handler.repairIdentities")
		return
	}

	utils.WriteJSON(w, countResponse{Count: repaired}, http.StatusOK)
}

func (h *Handler) encryptLegacyIdentities(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.encryptLegacyIdentities")
		return
	}

	var body keyBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.encryptLegacyIdentities")
		return
	}

	key, err := decodeKey(body.Key)
	if err != nil {
		writeError(w, r, err, "*Handler.encryptLegacyIdentities")
		return
	}

	converted, err := h.services.IdentityService.EncryptLegacyIdentities(r.Context(), models.DecryptRequest{
		GroupID:     groupID,
		RequesterID: requesterID(r),
		Key:         key,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.encryptLegacyIdentities")
		return
	}

	utils.WriteJSON(w, countResponse{Count: int64(converted)}, http.StatusOK)
}
