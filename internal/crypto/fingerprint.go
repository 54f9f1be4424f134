package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

const (
	fingerprintInfo = "pseudo-ledger/fingerprint"
	verifierInfo    = "pseudo-ledger/key-verifier"
)

// Fingerprint returns the group-scoped duplicate-detection digest of an
// already normalised name:
//
//	HMAC-SHA256(HKDF(key, "pseudo-ledger/fingerprint"), groupID ‖ 0x00 ‖ name)
//
// The fingerprint cannot be reversed without the group key, and the same
// name in two groups yields unrelated values.
func Fingerprint(key []byte, groupID int64, normalizedName string) (string, error) {
	subKey, err := expand(key, fingerprintInfo)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, subKey)
	mac.Write([]byte(strconv.FormatInt(groupID, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(normalizedName))

	return hex.EncodeToString(mac.Sum(nil)), nil
}

// KeyVerifier returns a one-way verifier of key that can be stored next to a
// group whose key is managed by the caller.
func KeyVerifier(key []byte) (string, error) {
	subKey, err := expand(key, verifierInfo)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(subKey)
	return hex.EncodeToString(sum[:]), nil
}

// MatchesVerifier checks key against a stored verifier in constant time.
func MatchesVerifier(key []byte, verifier string) bool {
	got, err := KeyVerifier(key)
	if err != nil {
		return false
	}

	return hmac.Equal([]byte(got), []byte(verifier))
}

func expand(key []byte, info string) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(info)), out); err != nil {
		return nil, err
	}

	return out, nil
}
