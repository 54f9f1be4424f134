package models

// CreateGroupRequest opens a new group for OwnerID.
type CreateGroupRequest struct {
	OwnerID string `json:"owner_id"`

	// LegacyKey is set only for groups that keep a caller-managed key
	// instead of the deterministic owner key.
	LegacyKey []byte `json:"legacy_key,omitempty"`
}

// CreateIdentityRequest registers a participant of a group.
//
// Name is the raw, user-supplied real name; sanitisation happens inside the
// core. Pseudonym optionally overrides the generated alias.
type CreateIdentityRequest struct {
	GroupID   int64  `json:"group_id"`
	Name      string `json:"name"`
	Pseudonym string `json:"pseudonym,omitempty"`

	// Key is required only for groups that do not use the derived owner key.
	Key []byte `json:"key,omitempty"`
}

// DecryptRequest asks for the pseudonym -> real name mapping of a group.
type DecryptRequest struct {
	GroupID     int64  `json:"group_id"`
	RequesterID string `json:"-"`
	Key         []byte `json:"key"`
}

// AssignmentRequest assigns a quantity of an item to a participant, given
// either by pseudonym or by real name.
type AssignmentRequest struct {
	GroupID     int64  `json:"group_id"`
	Participant string `json:"participant"`
	Item        string `json:"item"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`

	Key []byte `json:"key,omitempty"`
}

// PaymentRequest records money against an assignment. Amount is always
// positive; refunds are expressed by the operation, not by the sign.
type PaymentRequest struct {
	AssignmentID int64         `json:"assignment_id"`
	Amount       int64         `json:"amount"`
	Method       PaymentMethod `json:"method"`
}

// ConsumptionRequest marks part of an assignment as consumed.
type ConsumptionRequest struct {
	AssignmentID int64 `json:"assignment_id"`
	Quantity     int64 `json:"quantity"`
}

// AmendRequest changes the assigned quantity of an assignment.
type AmendRequest struct {
	AssignmentID int64 `json:"assignment_id"`
	Quantity     int64 `json:"quantity"`
}

// StatusRequest moves an identity between active and inactive.
type StatusRequest struct {
	GroupID     int64          `json:"group_id"`
	RequesterID string         `json:"-"`
	Pseudonym   string         `json:"pseudonym"`
	Status      IdentityStatus `json:"status"`
}
