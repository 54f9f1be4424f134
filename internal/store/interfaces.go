package store

import (
	"context"

	"github.com/MKhiriev/go-pseudo-ledger/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// TxManager runs a unit of work in one database transaction. Repository calls
// made with the context passed to fn take part in the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type GroupRepository interface {
	CreateGroup(ctx context.Context, group models.Group) (models.Group, error)
	GetGroup(ctx context.Context, groupID int64) (models.Group, error)
	DeleteGroup(ctx context.Context, groupID int64) error
}

// IdentityRepository persists pseudonymous identities. Every read fails with
// models.ErrConsistency when it meets a row holding both plaintext and
// ciphertext.
type IdentityRepository interface {
	CreateIdentity(ctx context.Context, identity models.Identity) (models.Identity, error)
	ListIdentities(ctx context.Context, groupID int64) ([]models.Identity, error)
	FindByPseudonym(ctx context.Context, groupID int64, pseudonym string) (models.Identity, error)
	FindByFingerprint(ctx context.Context, groupID int64, fingerprint string) (models.Identity, error)
	SetStatus(ctx context.Context, identityID int64, status models.IdentityStatus) error

	// ClearLegacyPlaintext nulls plaintext on every row of the group that
	// also has ciphertext and returns the number of repaired rows.
	ClearLegacyPlaintext(ctx context.Context, groupID int64) (int64, error)

	// ListLegacyPlaintext returns rows that still carry only plaintext.
	ListLegacyPlaintext(ctx context.Context, groupID int64) ([]models.Identity, error)

	// StoreEncrypted replaces the plaintext of a legacy row with ciphertext.
	StoreEncrypted(ctx context.Context, identity models.Identity) error
}

type LedgerRepository interface {
	CreateAssignment(ctx context.Context, assignment models.Assignment) (models.Assignment, error)

	// GetAssignment loads an assignment with its pseudonym and amount paid.
	// With forUpdate set the row is locked for the rest of the transaction.
	GetAssignment(ctx context.Context, assignmentID int64, forUpdate bool) (models.Assignment, error)
	UpdateAssignment(ctx context.Context, assignment models.Assignment) error
	ListAssignments(ctx context.Context, groupID int64) ([]models.Assignment, error)

	CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error)
	ListPayments(ctx context.Context, assignmentID int64) ([]models.Payment, error)
}
