package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/validators"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// The validation services reject malformed requests before they reach the
// database. They check shape only; rules that depend on stored state stay
// in the wrapped services.

type IdentityValidationService struct {
	inner     IdentityService
	validator validators.Validator
}

func NewIdentityValidationService() IdentityServiceWrapper {
	return &IdentityValidationService{
		validator: validators.NewLedgerValidator(),
	}
}

func (v *IdentityValidationService) CreateIdentity(ctx context.Context, req models.CreateIdentityRequest) (models.Identity, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.Identity{}, fmt.Errorf("identity validation failed: %w", err)
	}

	return v.inner.CreateIdentity(ctx, req)
}

func (v *IdentityValidationService) ListIdentities(ctx context.Context, groupID int64, requesterID string) ([]models.IdentitySummary, error) {
	if groupID <= 0 {
		return nil, models.ErrInvalidGroupID
	}

	return v.inner.ListIdentities(ctx, groupID, requesterID)
}

func (v *IdentityValidationService) DecryptIdentities(ctx context.Context, req models.DecryptRequest) (models.DecryptResult, error) {
	if req.GroupID <= 0 {
		return models.DecryptResult{}, models.ErrInvalidGroupID
	}

	return v.inner.DecryptIdentities(ctx, req)
}

func (v *IdentityValidationService) SetIdentityStatus(ctx context.Context, req models.StatusRequest) (models.IdentitySummary, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.IdentitySummary{}, fmt.Errorf("status validation failed: %w", err)
	}

	return v.inner.SetIdentityStatus(ctx, req)
}

func (v *IdentityValidationService) RepairIdentities(ctx context.Context, groupID int64, requesterID string) (int64, error) {
	if groupID <= 0 {
		return 0, models.ErrInvalidGroupID
	}

	return v.inner.RepairIdentities(ctx, groupID, requesterID)
}

func (v *IdentityValidationService) EncryptLegacyIdentities(ctx context.Context, req models.DecryptRequest) (int, error) {
	if req.GroupID <= 0 {
		return 0, models.ErrInvalidGroupID
	}

	return v.inner.EncryptLegacyIdentities(ctx, req)
}

func (v *IdentityValidationService) Wrap(wrapped IdentityService) IdentityService {
	v.inner = wrapped
	return v
}

type LedgerValidationService struct {
	inner     LedgerService
	validator validators.Validator
}

func NewLedgerValidationService() LedgerServiceWrapper {
	return &LedgerValidationService{
		validator: validators.NewLedgerValidator(),
	}
}

func (v *LedgerValidationService) RecordAssignment(ctx context.Context, req models.AssignmentRequest) (models.Assignment, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.Assignment{}, fmt.Errorf("assignment validation failed: %w", err)
	}

	return v.inner.RecordAssignment(ctx, req)
}

func (v *LedgerValidationService) RecordPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.PaymentResult{}, fmt.Errorf("payment validation failed: %w", err)
	}

	return v.inner.RecordPayment(ctx, req)
}

func (v *LedgerValidationService) RecordRefund(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.PaymentResult{}, fmt.Errorf("refund validation failed: %w", err)
	}

	return v.inner.RecordRefund(ctx, req)
}

func (v *LedgerValidationService) RecordConsumption(ctx context.Context, req models.ConsumptionRequest) (models.Assignment, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.Assignment{}, fmt.Errorf("consumption validation failed: %w", err)
	}

	return v.inner.RecordConsumption(ctx, req)
}

func (v *LedgerValidationService) AmendAssignment(ctx context.Context, req models.AmendRequest) (models.Assignment, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.Assignment{}, fmt.Errorf("amend validation failed: %w", err)
	}

	return v.inner.AmendAssignment(ctx, req)
}

func (v *LedgerValidationService) GetLedgerSummary(ctx context.Context, groupID int64) (models.LedgerSummary, error) {
	if groupID <= 0 {
		return models.LedgerSummary{}, models.ErrInvalidGroupID
	}

	return v.inner.GetLedgerSummary(ctx, groupID)
}

func (v *LedgerValidationService) ListAssignments(ctx context.Context, groupID int64) ([]models.Assignment, error) {
	if groupID <= 0 {
		return nil, models.ErrInvalidGroupID
	}

	return v.inner.ListAssignments(ctx, groupID)
}

func (v *LedgerValidationService) ListPayments(ctx context.Context, assignmentID int64) ([]models.Payment, error) {
	if assignmentID <= 0 {
		return nil, models.ErrAssignmentNotFound
	}

	return v.inner.ListPayments(ctx, assignmentID)
}

func (v *LedgerValidationService) Wrap(wrapped LedgerService) LedgerService {
	v.inner = wrapped
	return v
}

type GroupValidationService struct {
	inner     GroupService
	validator validators.Validator
}

func NewGroupValidationService() GroupServiceWrapper {
	return &GroupValidationService{
		validator: validators.NewLedgerValidator(),
	}
}

func (v *GroupValidationService) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.Group, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.Group{}, fmt.Errorf("group validation failed: %w", err)
	}

	return v.inner.CreateGroup(ctx, req)
}

func (v *GroupValidationService) DeleteGroup(ctx context.Context, groupID int64, requesterID string) error {
	if groupID <= 0 {
		return models.ErrInvalidGroupID
	}

	return v.inner.DeleteGroup(ctx, groupID, requesterID)
}

func (v *GroupValidationService) OwnerKey(ctx context.Context, ownerID string) (crypto.MasterKey, error) {
	if strings.TrimSpace(ownerID) == "" {
		return crypto.MasterKey{}, models.ErrInvalidOwnerID
	}

	return v.inner.OwnerKey(ctx, ownerID)
}

func (v *GroupValidationService) Wrap(wrapped GroupService) GroupService {
	v.inner = wrapped
	return v
}
