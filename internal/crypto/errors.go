package crypto

import (
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// Errors returned by the cipher. All of them wrap [models.ErrEncryption] so
// callers can treat them as one class; the messages carry no key or
// plaintext material.
var (
	ErrInvalidKeyLength   = fmt.Errorf("%w: key must be 32 bytes", models.ErrEncryption)
	ErrMalformedBlob      = fmt.Errorf("%w: malformed ciphertext", models.ErrEncryption)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported ciphertext version", models.ErrEncryption)
	ErrAuthentication     = fmt.Errorf("%w: message authentication failed", models.ErrEncryption)
	ErrGroupMismatch      = fmt.Errorf("%w: ciphertext is bound to another group", models.ErrEncryption)
)
