// Package crypto holds all key material handling of the identity core: the
// deterministic owner master key, authenticated encryption of identity
// mappings and the group-scoped name fingerprints used for duplicate
// detection.
//
// Nothing in this package performs I/O, and nothing in it logs plaintext or
// key bytes.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// KeyDeriver produces owner master keys.
//
// Scheme:
//
//	salt = SHA-256("pseudo-ledger/salt/v1:" ‖ ownerID)[:16]
//	seed = "pseudo-ledger/master-key/v1:" ‖ pepper ‖ ":" ‖ ownerID
//	key  = PBKDF2-HMAC-SHA256(seed, salt, iterations, 32)
type KeyDeriver interface {
	// DeriveMasterKey derives the 256-bit master key of ownerID. The same
	// ownerID always yields the same key.
	DeriveMasterKey(ownerID string) (MasterKey, error)

	// GetOrDeriveMasterKey returns the memoised key of ownerID, deriving it
	// on first use.
	GetOrDeriveMasterKey(ownerID string) (MasterKey, error)
}

// IdentityCipher encrypts identity mappings bound to a group.
type IdentityCipher interface {
	// Encrypt seals plaintext with key using the group id as associated
	// data. The result is a self-contained base64 blob.
	Encrypt(plaintext string, key []byte, groupID int64) (string, error)

	// Decrypt opens a blob produced by Encrypt. Any integrity failure,
	// wrong key or group mismatch returns an error wrapping
	// models.ErrEncryption and no plaintext.
	Decrypt(ciphertext string, key []byte, groupID int64) (string, error)
}
