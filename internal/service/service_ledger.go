package service

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/go-pseudo-ledger/internal/cache"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/internal/validators"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type ledgerService struct {
	mutator
	reads readRetrier

	groupRepository  store.GroupRepository
	ledgerRepository store.LedgerRepository
	participants     ParticipantResolver

	cacheTTL time.Duration

	logger *logger.Logger
}

func NewLedgerService(storages *store.Storages, c cache.Cache, participants ParticipantResolver, cacheTTL time.Duration, logger *logger.Logger) LedgerService {
	return &ledgerService{
		mutator:          mutator{tx: storages.TxManager, cache: c},
		reads:            newReadRetrier(storages.Classificator),
		groupRepository:  storages.GroupRepository,
		ledgerRepository: storages.LedgerRepository,
		participants:     participants,
		cacheTTL:         cacheTTL,
		logger:           logger,
	}
}

// RecordAssignment resolves req.Participant to an identity of the group,
// creating one for an unknown real name, and records the assignment in the
// same transaction.
func (s *ledgerService) RecordAssignment(ctx context.Context, req models.AssignmentRequest) (models.Assignment, error) {
	item, err := validators.SanitizeItem(req.Item)
	if err != nil {
		return models.Assignment{}, err
	}
	if req.Quantity <= 0 {
		return models.Assignment{}, models.ErrQuantityNotPositive
	}
	if req.UnitPrice < 0 {
		return models.Assignment{}, models.ErrNegativePrice
	}
	total, ok := validators.MulTotal(req.Quantity, req.UnitPrice)
	if !ok {
		return models.Assignment{}, models.ErrAmountOverflow
	}

	var created models.Assignment
	err = s.run(ctx, "record_assignment", func(ctx context.Context) (int64, error) {
		group, err := s.groupRepository.GetGroup(ctx, req.GroupID)
		if err != nil {
			return 0, err
		}

		identity, err := s.participants.ResolveParticipant(ctx, group, req.Participant, req.Key)
		if err != nil {
			return 0, err
		}

		created, err = s.ledgerRepository.CreateAssignment(ctx, models.Assignment{
			GroupID:    group.ID,
			IdentityID: identity.ID,
			Item:       item,
			Quantity:   req.Quantity,
			UnitPrice:  req.UnitPrice,
			TotalCost:  total,
			Status:     models.AssignmentAssigned,
		})
		if err != nil {
			return 0, err
		}
		created.Pseudonym = identity.Pseudonym

		return group.ID, nil
	})
	if err != nil {
		return models.Assignment{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("group_id", created.GroupID).
		Int64("assignment_id", created.ID).
		Int64("total_cost", created.TotalCost).
		Msg("assignment recorded")
	return created, nil
}

func (s *ledgerService) RecordPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	return s.applyPayment(ctx, "record_payment", req, false)
}

func (s *ledgerService) RecordRefund(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	return s.applyPayment(ctx, "record_refund", req, true)
}

// applyPayment appends one payment row and moves the assignment status
// forward if the new paid amount calls for it. The assignment row is
// locked for the rest of the transaction so concurrent payments against it
// serialise.
func (s *ledgerService) applyPayment(ctx context.Context, operation string, req models.PaymentRequest, refund bool) (models.PaymentResult, error) {
	if req.Amount <= 0 {
		return models.PaymentResult{}, models.ErrAmountNotPositive
	}
	method := req.Method
	if method == "" {
		method = models.PaymentCash
	}
	if !method.Valid() {
		return models.PaymentResult{}, models.ErrInvalidMethod
	}

	var result models.PaymentResult
	err := s.run(ctx, operation, func(ctx context.Context) (int64, error) {
		assignment, err := s.ledgerRepository.GetAssignment(ctx, req.AssignmentID, true)
		if err != nil {
			return 0, err
		}

		payment := models.Payment{
			AssignmentID: assignment.ID,
			Amount:       req.Amount,
			Method:       method,
			Status:       models.PaymentProcessed,
		}
		if refund {
			if req.Amount > assignment.AmountPaid {
				return 0, models.ErrRefundExceedsPaid
			}
			payment.Amount = -req.Amount
			payment.Status = models.PaymentRefund
		} else if assignment.AmountPaid > math.MaxInt64-req.Amount {
			return 0, models.ErrAmountOverflow
		}

		payment, err = s.ledgerRepository.CreatePayment(ctx, payment)
		if err != nil {
			return 0, err
		}
		assignment.AmountPaid += payment.Amount

		if next := models.StatusForPaid(assignment.Status, assignment.AmountPaid, assignment.TotalCost); next != assignment.Status {
			assignment.Status = next
			if err := s.ledgerRepository.UpdateAssignment(ctx, assignment); err != nil {
				return 0, err
			}
		}

		result = models.PaymentResult{Payment: payment, Assignment: assignment}
		return assignment.GroupID, nil
	})
	if err != nil {
		return models.PaymentResult{}, err
	}

	logger.FromContext(ctx).Info().
		Str("operation", operation).
		Int64("assignment_id", result.Assignment.ID).
		Int64("amount", result.Payment.Amount).
		Str("status", string(result.Assignment.Status)).
		Msg("payment recorded")
	return result, nil
}

func (s *ledgerService) RecordConsumption(ctx context.Context, req models.ConsumptionRequest) (models.Assignment, error) {
	if req.Quantity <= 0 {
		return models.Assignment{}, models.ErrQuantityNotPositive
	}

	var updated models.Assignment
	err := s.run(ctx, "record_consumption", func(ctx context.Context) (int64, error) {
		assignment, err := s.ledgerRepository.GetAssignment(ctx, req.AssignmentID, true)
		if err != nil {
			return 0, err
		}

		if req.Quantity > assignment.Remaining() {
			return 0, models.ErrConsumptionExceeded
		}
		assignment.Consumed += req.Quantity

		if err := s.ledgerRepository.UpdateAssignment(ctx, assignment); err != nil {
			return 0, err
		}

		updated = assignment
		return assignment.GroupID, nil
	})
	if err != nil {
		return models.Assignment{}, err
	}

	return updated, nil
}

// AmendAssignment changes the assigned quantity and recomputes the total
// cost. The status is re-evaluated against the new total but never moves
// backwards.
func (s *ledgerService) AmendAssignment(ctx context.Context, req models.AmendRequest) (models.Assignment, error) {
	if req.Quantity <= 0 {
		return models.Assignment{}, models.ErrQuantityNotPositive
	}

	var updated models.Assignment
	err := s.run(ctx, "amend_assignment", func(ctx context.Context) (int64, error) {
		assignment, err := s.ledgerRepository.GetAssignment(ctx, req.AssignmentID, true)
		if err != nil {
			return 0, err
		}

		if req.Quantity < assignment.Consumed {
			return 0, models.ErrAmendBelowConsumed
		}

		total, ok := validators.MulTotal(req.Quantity, assignment.UnitPrice)
		if !ok {
			return 0, models.ErrAmountOverflow
		}

		assignment.Quantity = req.Quantity
		assignment.TotalCost = total
		assignment.Status = models.StatusForPaid(assignment.Status, assignment.AmountPaid, assignment.TotalCost)

		if err := s.ledgerRepository.UpdateAssignment(ctx, assignment); err != nil {
			return 0, err
		}

		updated = assignment
		return assignment.GroupID, nil
	})
	if err != nil {
		return models.Assignment{}, err
	}

	return updated, nil
}

// GetLedgerSummary aggregates the assignments of a group. Summaries are
// cached per requester and dropped on every mutation of the group.
func (s *ledgerService) GetLedgerSummary(ctx context.Context, groupID int64) (models.LedgerSummary, error) {
	requesterID, _ := utils.GetRequesterIDFromContext(ctx)

	return cache.Fetch(ctx, s.cache, groupID, cache.KindLedger, requesterKey(requesterID), s.cacheTTL,
		func(ctx context.Context) (models.LedgerSummary, error) {
			return retryRead(ctx, s.reads, "ledger_summary", func(ctx context.Context) (models.LedgerSummary, error) {
				if _, err := s.groupRepository.GetGroup(ctx, groupID); err != nil {
					return models.LedgerSummary{}, err
				}

				assignments, err := s.ledgerRepository.ListAssignments(ctx, groupID)
				if err != nil {
					return models.LedgerSummary{}, err
				}

				return summarize(groupID, assignments)
			})
		})
}

func (s *ledgerService) ListAssignments(ctx context.Context, groupID int64) ([]models.Assignment, error) {
	return retryRead(ctx, s.reads, "list_assignments", func(ctx context.Context) ([]models.Assignment, error) {
		if _, err := s.groupRepository.GetGroup(ctx, groupID); err != nil {
			return nil, err
		}
		return s.ledgerRepository.ListAssignments(ctx, groupID)
	})
}

// ListPayments returns the payment history of an assignment, refunds
// included, oldest first.
func (s *ledgerService) ListPayments(ctx context.Context, assignmentID int64) ([]models.Payment, error) {
	return retryRead(ctx, s.reads, "list_payments", func(ctx context.Context) ([]models.Payment, error) {
		if _, err := s.ledgerRepository.GetAssignment(ctx, assignmentID, false); err != nil {
			return nil, err
		}
		return s.ledgerRepository.ListPayments(ctx, assignmentID)
	})
}

// summarize aggregates the group ledger. Sums that do not fit in an int64
// fail with ErrAmountOverflow rather than wrap.
func summarize(groupID int64, assignments []models.Assignment) (models.LedgerSummary, error) {
	summary := models.LedgerSummary{
		GroupID:      groupID,
		Assignments:  len(assignments),
		Participants: []models.ParticipantBalance{},
	}

	balances := make(map[string]*models.ParticipantBalance)
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentPartial:
			summary.Partial++
		case models.AssignmentCompleted:
			summary.Completed++
		default:
			summary.Assigned++
		}

		b, ok := balances[a.Pseudonym]
		if !ok {
			b = &models.ParticipantBalance{Pseudonym: a.Pseudonym}
			balances[a.Pseudonym] = b
		}

		for _, sum := range []struct {
			total *int64
			value int64
		}{
			{&summary.TotalCost, a.TotalCost},
			{&summary.TotalPaid, a.AmountPaid},
			{&summary.QuantityAssigned, a.Quantity},
			{&summary.QuantityConsumed, a.Consumed},
			{&b.TotalCost, a.TotalCost},
			{&b.Paid, a.AmountPaid},
		} {
			total, ok := validators.AddTotal(*sum.total, sum.value)
			if !ok {
				return models.LedgerSummary{}, models.ErrAmountOverflow
			}
			*sum.total = total
		}
	}

	summary.TotalDebt = summary.TotalCost - summary.TotalPaid
	summary.QuantityRemaining = summary.QuantityAssigned - summary.QuantityConsumed

	for _, b := range balances {
		b.Debt = b.TotalCost - b.Paid
		summary.Participants = append(summary.Participants, *b)
	}
	slices.SortFunc(summary.Participants, func(a, b models.ParticipantBalance) int {
		return strings.Compare(a.Pseudonym, b.Pseudonym)
	})

	return summary, nil
}
