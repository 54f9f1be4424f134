// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

const (
	blobVersion byte = 0x01
	aadPrefix        = "pseudo-ledger/group:"
)

// identityPayload is what actually gets sealed: the real name plus the group
// it belongs to. The group id is checked a second time after the AEAD tag so
// a blob can never be accepted for a group other than the one it names.
type identityPayload struct {
	Version int    `json:"v"`
	Name    string `json:"name"`
	GroupID int64  `json:"group_id"`
}

// identityCipher is the private implementation of [IdentityCipher] based on
// AES-256-GCM.
type identityCipher struct {
	random io.Reader
}

// NewIdentityCipher constructs an [IdentityCipher] reading nonces from the
// OS CSPRNG.
func NewIdentityCipher() IdentityCipher {
	return &identityCipher{random: rand.Reader}
}

// Encrypt implements [IdentityCipher]. The blob layout is
//
//	base64( version(1) ‖ nonce(12) ‖ ciphertext+tag )
//
// with "pseudo-ledger/group:<groupID>" as associated data.
func (c *identityCipher) Encrypt(plaintext string, key []byte, groupID int64) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(identityPayload{Version: 1, Name: plaintext, GroupID: groupID})
	if err != nil {
		return "", fmt.Errorf("marshal identity payload: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, 1+len(nonce)+len(payload)+gcm.Overhead())
	blob = append(blob, blobVersion)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, payload, associatedData(groupID))

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt implements [IdentityCipher].
func (c *identityCipher) Decrypt(ciphertext string, key []byte, groupID int64) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedBlob
	}

	if len(blob) < 1+gcm.NonceSize()+gcm.Overhead() {
		return "", ErrMalformedBlob
	}
	if blob[0] != blobVersion {
		return "", ErrUnsupportedVersion
	}

	nonce := blob[1 : 1+gcm.NonceSize()]
	sealed := blob[1+gcm.NonceSize():]

	// wrong key, tampered blob and foreign group all end up here
	plaintext, err := gcm.Open(nil, nonce, sealed, associatedData(groupID))
	if err != nil {
		return "", ErrAuthentication
	}

	var payload identityPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return "", ErrMalformedBlob
	}
	if payload.GroupID != groupID {
		return "", ErrGroupMismatch
	}

	return payload.Name, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}

func associatedData(groupID int64) []byte {
	return []byte(aadPrefix + strconv.FormatInt(groupID, 10))
}
