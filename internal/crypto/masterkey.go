// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/MKhiriev/go-pseudo-ledger/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinIterations is the lowest PBKDF2 iteration count the deriver accepts.
	MinIterations = 100_000

	// DefaultIterations follows the OWASP 2023 recommendation for
	// PBKDF2-HMAC-SHA256.
	DefaultIterations = 210_000

	// KeySize is the master key length in bytes (256 bits).
	KeySize = 32

	saltSize      = 16
	saltPrefix    = "pseudo-ledger/salt/v1:"
	seedPrefix    = "pseudo-ledger/master-key/v1:"
	encodedPrefix = "v1"
)

// MasterKey is a derived owner key together with the salt it was derived
// with, so the pair can be checked against an owner id later.
type MasterKey struct {
	Key  []byte
	Salt []byte
}

// Encode serialises the pair as "v1$<salt>$<key>" using unpadded base64url.
func (m MasterKey) Encode() string {
	return strings.Join([]string{
		encodedPrefix,
		base64.RawURLEncoding.EncodeToString(m.Salt),
		base64.RawURLEncoding.EncodeToString(m.Key),
	}, "$")
}

// String never prints key material.
func (m MasterKey) String() string {
	return "MasterKey(redacted)"
}

// Equal compares two keys in constant time.
func (m MasterKey) Equal(other []byte) bool {
	return len(m.Key) == len(other) && subtle.ConstantTimeCompare(m.Key, other) == 1
}

// ParseMasterKey decodes the output of [MasterKey.Encode].
func ParseMasterKey(encoded string) (MasterKey, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != encodedPrefix {
		return MasterKey{}, models.ErrInvalidKeyFormat
	}

	salt, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(salt) != saltSize {
		return MasterKey{}, models.ErrInvalidKeyFormat
	}
	key, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || len(key) != KeySize {
		return MasterKey{}, models.ErrInvalidKeyFormat
	}

	return MasterKey{Key: key, Salt: salt}, nil
}

// masterKeyService is the private implementation of [KeyDeriver].
type masterKeyService struct {
	// iterations is fixed per deployment; changing it changes every key.
	iterations int
	pepper     string

	memo sync.Map // ownerID -> MasterKey
}

// NewKeyDeriver constructs a [KeyDeriver]. Iteration counts below
// [MinIterations] are raised to it. pepper is an optional deployment secret
// mixed into the seed; it may be empty.
func NewKeyDeriver(iterations int, pepper string) KeyDeriver {
	if iterations < MinIterations {
		iterations = MinIterations
	}

	return &masterKeyService{
		iterations: iterations,
		pepper:     pepper,
	}
}

// DeriveMasterKey implements [KeyDeriver].
func (s *masterKeyService) DeriveMasterKey(ownerID string) (MasterKey, error) {
	if strings.TrimSpace(ownerID) == "" {
		return MasterKey{}, models.ErrInvalidOwnerID
	}

	salt := deriveSalt(ownerID)
	seed := []byte(seedPrefix + s.pepper + ":" + ownerID)

	key := pbkdf2.Key(seed, salt, s.iterations, KeySize, sha256.New)

	return MasterKey{Key: key, Salt: salt}, nil
}

// GetOrDeriveMasterKey implements [KeyDeriver]. Keys are a pure function of
// the owner id, so a memoised value is always identical to a fresh one.
func (s *masterKeyService) GetOrDeriveMasterKey(ownerID string) (MasterKey, error) {
	if cached, ok := s.memo.Load(ownerID); ok {
		return cached.(MasterKey), nil
	}

	mk, err := s.DeriveMasterKey(ownerID)
	if err != nil {
		return MasterKey{}, err
	}

	actual, _ := s.memo.LoadOrStore(ownerID, mk)
	return actual.(MasterKey), nil
}

// Verify reports whether the pair was derived for ownerID by d.
func Verify(d KeyDeriver, m MasterKey, ownerID string) bool {
	expected, err := d.GetOrDeriveMasterKey(ownerID)
	if err != nil {
		return false
	}

	if subtle.ConstantTimeCompare(expected.Salt, m.Salt) != 1 {
		return false
	}
	return expected.Equal(m.Key)
}

func deriveSalt(ownerID string) []byte {
	sum := sha256.Sum256([]byte(saltPrefix + ownerID))
	return sum[:saltSize]
}

