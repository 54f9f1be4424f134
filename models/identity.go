package models

import "time"

// IdentityStatus is the lifecycle state of a pseudonymous participant.
type IdentityStatus string

const (
	IdentityActive   IdentityStatus = "active"
	IdentityInactive IdentityStatus = "inactive"
)

// Valid reports whether s is one of the known identity statuses.
func (s IdentityStatus) Valid() bool {
	return s == IdentityActive || s == IdentityInactive
}

// Identity is a pseudonymous participant of a group as it is persisted.
//
// The real name only ever lives inside Ciphertext. LegacyPlaintext mirrors
// the pre-encryption column that older deployments still carry; a row that
// has both LegacyPlaintext and Ciphertext set is inconsistent.
type Identity struct {
	ID        int64  `json:"id"`
	GroupID   int64  `json:"group_id"`
	Pseudonym string `json:"pseudonym"`

	// Fingerprint is the group-scoped, non-reversible digest of the
	// normalised real name used for duplicate detection.
	Fingerprint string `json:"-"`

	// Ciphertext is the authenticated-encrypted identity mapping.
	Ciphertext *string `json:"-"`

	// LegacyPlaintext must be nil for every record written by this module.
	LegacyPlaintext *string `json:"-"`

	Status    IdentityStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// Inconsistent reports whether the record holds plaintext and ciphertext at
// the same time.
func (i Identity) Inconsistent() bool {
	return i.LegacyPlaintext != nil && i.Ciphertext != nil
}

// Summary strips everything but the publicly listable fields.
func (i Identity) Summary() IdentitySummary {
	return IdentitySummary{
		Pseudonym: i.Pseudonym,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
	}
}

// TableName returns the name of the database table
// associated with the Identity model.
func (i Identity) TableName() string {
	return "identities"
}

// IdentitySummary is the only identity shape that leaves the core for
// non-privileged reads. It never carries plaintext or ciphertext.
type IdentitySummary struct {
	Pseudonym string         `json:"pseudonym"`
	Status    IdentityStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// DecryptResult is the outcome of a batch decrypt. Entries holds the
// pseudonym -> real name mapping of every record that decrypted, Failures
// the per-entry errors of the ones that did not.
//
// A DecryptResult must not outlive the request that produced it.
type DecryptResult struct {
	Entries  map[string]string `json:"entries"`
	Failures map[string]error  `json:"-"`
}

// FailedPseudonyms lists the pseudonyms that could not be decrypted.
func (r DecryptResult) FailedPseudonyms() []string {
	out := make([]string, 0, len(r.Failures))
	for p := range r.Failures {
		out = append(out, p)
	}
	return out
}
