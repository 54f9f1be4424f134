package models

import "time"

// Group is a bounded collection of participants, assignments and payments
// (an "expedition") owned by exactly one identifier.
type Group struct {
	// ID is the server-assigned identifier of the group.
	ID int64 `json:"id"`

	// OwnerID identifies the purchase owner. It never changes after the
	// group has been created and is the seed of the owner master key.
	OwnerID string `json:"owner_id"`

	// KeyVerifier is the cached master-key reference for groups whose key
	// was supplied by the caller instead of being derived from OwnerID.
	// It is a one-way verifier, never the key itself. Nil for groups that
	// use the deterministic owner key.
	KeyVerifier *string `json:"-"`

	// CreatedAt is the time the group was created.
	CreatedAt time.Time `json:"created_at"`
}

// UsesDerivedKey reports whether identities of the group are encrypted with
// the key derived from the owner identifier.
func (g Group) UsesDerivedKey() bool {
	return g.KeyVerifier == nil || *g.KeyVerifier == ""
}

// TableName returns the name of the database table
// associated with the Group model.
func (g Group) TableName() string {
	return "ledger_groups"
}
