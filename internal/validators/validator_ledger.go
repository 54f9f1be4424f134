package validators

import (
	"context"
	"math"

	"github.com/MKhiriev/go-pseudo-ledger/models"
)

const (
	FieldGroupID      = "group_id"
	FieldOwnerID      = "owner_id"
	FieldName         = "name"
	FieldPseudonym    = "pseudonym"
	FieldParticipant  = "participant"
	FieldItem         = "item"
	FieldQuantity     = "quantity"
	FieldUnitPrice    = "unit_price"
	FieldTotalCost    = "total_cost"
	FieldAssignmentID = "assignment_id"
	FieldAmount       = "amount"
	FieldMethod       = "method"
	FieldStatus       = "status"
)

// LedgerValidator checks the shape of incoming requests. It does not look
// at stored state; checks that need the database (duplicates, consumed
// quantities) belong to the services.
type LedgerValidator struct {
}

func NewLedgerValidator() Validator {
	return &LedgerValidator{}
}

func (v *LedgerValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.CreateGroupRequest:
		return v.validateCreateGroup(value, fields...)
	case *models.CreateGroupRequest:
		return v.validateCreateGroup(*value, fields...)

	case models.CreateIdentityRequest:
		return v.validateCreateIdentity(value, fields...)
	case *models.CreateIdentityRequest:
		return v.validateCreateIdentity(*value, fields...)

	case models.AssignmentRequest:
		return v.validateAssignment(value, fields...)
	case *models.AssignmentRequest:
		return v.validateAssignment(*value, fields...)

	case models.PaymentRequest:
		return v.validatePayment(value, fields...)
	case *models.PaymentRequest:
		return v.validatePayment(*value, fields...)

	case models.ConsumptionRequest:
		return v.validateQuantityChange(value.AssignmentID, value.Quantity, fields...)
	case *models.ConsumptionRequest:
		return v.validateQuantityChange(value.AssignmentID, value.Quantity, fields...)

	case models.AmendRequest:
		return v.validateQuantityChange(value.AssignmentID, value.Quantity, fields...)
	case *models.AmendRequest:
		return v.validateQuantityChange(value.AssignmentID, value.Quantity, fields...)

	case models.StatusRequest:
		return v.validateStatus(value, fields...)
	case *models.StatusRequest:
		return v.validateStatus(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *LedgerValidator) validateCreateGroup(req models.CreateGroupRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOwnerID}
	}

	for _, f := range fields {
		switch f {
		case FieldOwnerID:
			if _, err := SanitizeName(req.OwnerID); err != nil {
				return models.ErrInvalidOwnerID
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *LedgerValidator) validateCreateIdentity(req models.CreateIdentityRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldGroupID, FieldName, FieldPseudonym}
	}

	for _, f := range fields {
		switch f {
		case FieldGroupID:
			if req.GroupID <= 0 {
				return models.ErrInvalidGroupID
			}
		case FieldName:
			if _, err := SanitizeName(req.Name); err != nil {
				return err
			}
		case FieldPseudonym:
			if req.Pseudonym == "" {
				continue
			}
			if _, err := SanitizePseudonym(req.Pseudonym); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *LedgerValidator) validateAssignment(req models.AssignmentRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldGroupID, FieldParticipant, FieldItem, FieldQuantity, FieldUnitPrice, FieldTotalCost}
	}

	for _, f := range fields {
		switch f {
		case FieldGroupID:
			if req.GroupID <= 0 {
				return models.ErrInvalidGroupID
			}
		case FieldParticipant:
			if _, err := SanitizeName(req.Participant); err != nil {
				return models.ErrNoParticipantGiven
			}
		case FieldItem:
			if _, err := SanitizeItem(req.Item); err != nil {
				return err
			}
		case FieldQuantity:
			if req.Quantity <= 0 {
				return models.ErrQuantityNotPositive
			}
		case FieldUnitPrice:
			if req.UnitPrice < 0 {
				return models.ErrNegativePrice
			}
		case FieldTotalCost:
			if _, ok := MulTotal(req.Quantity, req.UnitPrice); !ok {
				return models.ErrAmountOverflow
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *LedgerValidator) validatePayment(req models.PaymentRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldAssignmentID, FieldAmount, FieldMethod}
	}

	for _, f := range fields {
		switch f {
		case FieldAssignmentID:
			if req.AssignmentID <= 0 {
				return models.ErrAssignmentNotFound
			}
		case FieldAmount:
			if req.Amount <= 0 {
				return models.ErrAmountNotPositive
			}
		case FieldMethod:
			if req.Method != "" && !req.Method.Valid() {
				return models.ErrInvalidMethod
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *LedgerValidator) validateQuantityChange(assignmentID, quantity int64, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldAssignmentID, FieldQuantity}
	}

	for _, f := range fields {
		switch f {
		case FieldAssignmentID:
			if assignmentID <= 0 {
				return models.ErrAssignmentNotFound
			}
		case FieldQuantity:
			if quantity <= 0 {
				return models.ErrQuantityNotPositive
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *LedgerValidator) validateStatus(req models.StatusRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldGroupID, FieldPseudonym, FieldStatus}
	}

	for _, f := range fields {
		switch f {
		case FieldGroupID:
			if req.GroupID <= 0 {
				return models.ErrInvalidGroupID
			}
		case FieldPseudonym:
			if _, err := SanitizePseudonym(req.Pseudonym); err != nil {
				return err
			}
		case FieldStatus:
			if !req.Status.Valid() {
				return models.ErrInvalidStatus
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// MulTotal multiplies quantity by unit price and reports whether the
// result fits in an int64.
func MulTotal(quantity, unitPrice int64) (int64, bool) {
	if quantity < 0 || unitPrice < 0 {
		return 0, false
	}
	if quantity != 0 && unitPrice > math.MaxInt64/quantity {
		return 0, false
	}
	return quantity * unitPrice, true
}

// AddTotal sums non-negative amounts and reports whether the result fits in
// an int64.
func AddTotal(values ...int64) (int64, bool) {
	var total int64
	for _, v := range values {
		if v < 0 || total > math.MaxInt64-v {
			return 0, false
		}
		total += v
	}
	return total, true
}
