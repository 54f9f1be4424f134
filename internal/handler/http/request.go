package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidPathParam
	}
	return id, nil
}

func requesterID(r *http.Request) string {
	id, _ := utils.GetRequesterIDFromContext(r.Context())
	return id
}

// decodeKey accepts an encoded owner key ("v1$salt$key") or, for groups
// with a caller-managed key, standard base64. An empty string is no key.
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, "$") {
		mk, err := crypto.ParseMasterKey(s)
		if err != nil {
			return nil, err
		}
		return mk.Key, nil
	}

	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(key) != crypto.KeySize {
		return nil, models.ErrInvalidKeyFormat
	}
	return key, nil
}
