package service

import (
	"context"

	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type GroupService interface {
	CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.Group, error)

	// DeleteGroup removes a group with everything in it. Owner only.
	DeleteGroup(ctx context.Context, groupID int64, requesterID string) error

	// OwnerKey returns the derived master key of ownerID. It is the key an
	// owner presents to reveal identities of their derived-key groups.
	OwnerKey(ctx context.Context, ownerID string) (crypto.MasterKey, error)
}

// IdentityService manages the pseudonymous participants of a group.
type IdentityService interface {
	// CreateIdentity registers a participant by real name. The name is
	// sanitised, fingerprinted for duplicate detection and stored only
	// encrypted. The returned record carries no plaintext.
	CreateIdentity(ctx context.Context, req models.CreateIdentityRequest) (models.Identity, error)

	// ListIdentities returns pseudonyms and metadata only.
	ListIdentities(ctx context.Context, groupID int64, requesterID string) ([]models.IdentitySummary, error)

	// DecryptIdentities reveals the pseudonym -> real name mapping to the
	// group owner presenting the group key. Entries that fail to decrypt are
	// reported in DecryptResult.Failures; the rest are still returned.
	DecryptIdentities(ctx context.Context, req models.DecryptRequest) (models.DecryptResult, error)

	SetIdentityStatus(ctx context.Context, req models.StatusRequest) (models.IdentitySummary, error)

	// RepairIdentities clears legacy plaintext on rows that also hold
	// ciphertext and returns how many rows were repaired. Owner only.
	RepairIdentities(ctx context.Context, groupID int64, requesterID string) (int64, error)

	// EncryptLegacyIdentities moves rows that still hold only plaintext to
	// ciphertext in one batch. Owner only, with the group key.
	EncryptLegacyIdentities(ctx context.Context, req models.DecryptRequest) (int, error)
}

// ParticipantResolver turns a pseudonym or real name into an identity of the
// group, creating the identity when the name is new. It must be called
// inside the caller's transaction.
type ParticipantResolver interface {
	ResolveParticipant(ctx context.Context, group models.Group, participant string, key []byte) (models.Identity, error)
}

// LedgerService records assignments and payments against pseudonyms and
// reports balances.
type LedgerService interface {
	RecordAssignment(ctx context.Context, req models.AssignmentRequest) (models.Assignment, error)
	RecordPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)

	// RecordRefund appends a negative payment. It never moves the assignment
	// status backwards.
	RecordRefund(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)

	RecordConsumption(ctx context.Context, req models.ConsumptionRequest) (models.Assignment, error)
	AmendAssignment(ctx context.Context, req models.AmendRequest) (models.Assignment, error)

	GetLedgerSummary(ctx context.Context, groupID int64) (models.LedgerSummary, error)
	ListAssignments(ctx context.Context, groupID int64) ([]models.Assignment, error)
	ListPayments(ctx context.Context, assignmentID int64) ([]models.Payment, error)
}

// AuthService checks the bearer tokens of the HTTP adapter.
type AuthService interface {
	CreateToken(ctx context.Context, requesterID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SystemService reports build and readiness information.
type SystemService interface {
	GetAppVersion(ctx context.Context) string
	Ready(ctx context.Context) error
}

// IdentityServiceWrapper, LedgerServiceWrapper and GroupServiceWrapper
// decorate a service with additional behavior such as validation.
type IdentityServiceWrapper interface {
	Wrap(IdentityService) IdentityService
}

type LedgerServiceWrapper interface {
	Wrap(LedgerService) LedgerService
}

type GroupServiceWrapper interface {
	Wrap(GroupService) GroupService
}
