// Package access decides whether a requester may perform a privileged
// operation on a group.
//
// A denied request carries no reason. Callers turn every Deny into
// models.ErrAuthorization, so a caller cannot tell a wrong owner apart from
// a wrong key.
package access

import (
	"context"

	"github.com/MKhiriev/go-pseudo-ledger/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/access_mock.go -package=mock

// Action is the kind of operation being authorised.
type Action string

const (
	// ActionList reads non-sensitive views (pseudonyms, balances).
	ActionList Action = "list"

	// ActionDecrypt reveals real names behind pseudonyms.
	ActionDecrypt Action = "decrypt"

	// ActionMutate changes the group as a whole (deletion, repairs).
	ActionMutate Action = "mutate"
)

// Decision is the outcome of [Gateway.Authorize].
type Decision int

const (
	Deny Decision = iota
	Permit
)

func (d Decision) String() string {
	if d == Permit {
		return "permit"
	}
	return "deny"
}

// AuthorizeRequest describes one privileged call.
type AuthorizeRequest struct {
	RequesterID string
	Group       models.Group
	Action      Action

	// SuppliedKey is the master key presented by the requester. Required
	// for ActionDecrypt only.
	SuppliedKey []byte
}

type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) Decision
}
