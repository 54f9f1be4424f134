package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/mock"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type ledgerFixture struct {
	cache  *mock.MockCache
	ledger *mock.MockLedgerRepository
	svc    LedgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	tx := mock.NewMockTxManager(ctrl)
	passThroughTx(tx)

	f := &ledgerFixture{
		cache:  mock.NewMockCache(ctrl),
		ledger: mock.NewMockLedgerRepository(ctrl),
	}
	storages := &store.Storages{
		TxManager:        tx,
		GroupRepository:  mock.NewMockGroupRepository(ctrl),
		LedgerRepository: f.ledger,
	}
	f.svc = NewLedgerService(storages, f.cache, nil, time.Minute, logger.Nop())

	return f
}

func TestRecordPayment_StatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		paid       int64
		amount     int64
		wantStatus models.AssignmentStatus
		wantDebt   int64
		updates    bool
	}{
		{name: "exact total completes", paid: 0, amount: 50, wantStatus: models.AssignmentCompleted, wantDebt: 0, updates: true},
		{name: "partial", paid: 0, amount: 20, wantStatus: models.AssignmentPartial, wantDebt: 30, updates: true},
		{name: "overpayment is a credit", paid: 0, amount: 80, wantStatus: models.AssignmentCompleted, wantDebt: -30, updates: true},
		{name: "second partial keeps status", paid: 10, amount: 10, wantStatus: models.AssignmentPartial, wantDebt: 30, updates: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)

			current := models.AssignmentAssigned
			if tt.paid > 0 {
				current = models.AssignmentPartial
			}
			f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{
				ID: 9, GroupID: 7, TotalCost: 50, AmountPaid: tt.paid, Status: current,
			}, nil)
			f.ledger.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, p models.Payment) (models.Payment, error) {
					assert.Equal(t, models.PaymentCash, p.Method)
					assert.Equal(t, models.PaymentProcessed, p.Status)
					p.ID = 1
					return p, nil
				})
			if tt.updates {
				f.ledger.EXPECT().UpdateAssignment(gomock.Any(), gomock.Any()).Return(nil)
			}
			f.cache.EXPECT().Invalidate(gomock.Any(), int64(7)).Return(nil).Times(2)

			got, err := f.svc.RecordPayment(context.Background(), models.PaymentRequest{AssignmentID: 9, Amount: tt.amount})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Assignment.Status)
			assert.Equal(t, tt.wantDebt, got.Assignment.Debt())
		})
	}
}

func TestRecordRefund(t *testing.T) {
	t.Run("stored negative, status kept", func(t *testing.T) {
		f := newLedgerFixture(t)

		f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{
			ID: 9, GroupID: 7, TotalCost: 50, AmountPaid: 50, Status: models.AssignmentCompleted,
		}, nil)
		f.ledger.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p models.Payment) (models.Payment, error) {
				assert.Equal(t, int64(-20), p.Amount)
				assert.Equal(t, models.PaymentRefund, p.Status)
				return p, nil
			})
		f.cache.EXPECT().Invalidate(gomock.Any(), int64(7)).Return(nil).Times(2)

		got, err := f.svc.RecordRefund(context.Background(), models.PaymentRequest{AssignmentID: 9, Amount: 20, Method: models.PaymentCard})
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentCompleted, got.Assignment.Status)
		assert.Equal(t, int64(30), got.Assignment.AmountPaid)
	})

	t.Run("more than paid", func(t *testing.T) {
		f := newLedgerFixture(t)

		f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{
			ID: 9, GroupID: 7, TotalCost: 50, AmountPaid: 10, Status: models.AssignmentPartial,
		}, nil)

		_, err := f.svc.RecordRefund(context.Background(), models.PaymentRequest{AssignmentID: 9, Amount: 20})
		assert.ErrorIs(t, err, models.ErrRefundExceedsPaid)
	})
}

func TestRecordPayment_Rejects(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPayment(ctx, models.PaymentRequest{AssignmentID: 9, Amount: 0})
	assert.ErrorIs(t, err, models.ErrAmountNotPositive)

	_, err = f.svc.RecordPayment(ctx, models.PaymentRequest{AssignmentID: 9, Amount: 5, Method: "barter"})
	assert.ErrorIs(t, err, models.ErrInvalidMethod)

	f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{ID: 9, GroupID: 7, TotalCost: 50, AmountPaid: math.MaxInt64 - 1}, nil)
	_, err = f.svc.RecordPayment(ctx, models.PaymentRequest{AssignmentID: 9, Amount: 5})
	assert.ErrorIs(t, err, models.ErrAmountOverflow)
}

func TestRecordConsumption(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{ID: 9, GroupID: 7, Quantity: 5, Consumed: 3}, nil).Times(2)
	f.ledger.EXPECT().UpdateAssignment(gomock.Any(), gomock.Any()).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), int64(7)).Return(nil).Times(2)

	_, err := f.svc.RecordConsumption(ctx, models.ConsumptionRequest{AssignmentID: 9, Quantity: 3})
	assert.ErrorIs(t, err, models.ErrConsumptionExceeded)

	got, err := f.svc.RecordConsumption(ctx, models.ConsumptionRequest{AssignmentID: 9, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Consumed)
	assert.Zero(t, got.Remaining())
}

func TestAmendAssignment(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(9), true).Return(models.Assignment{
		ID: 9, GroupID: 7, Quantity: 5, Consumed: 2, UnitPrice: 10, TotalCost: 50, AmountPaid: 30, Status: models.AssignmentPartial,
	}, nil).Times(2)
	f.ledger.EXPECT().UpdateAssignment(gomock.Any(), gomock.Any()).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), int64(7)).Return(nil).Times(2)

	_, err := f.svc.AmendAssignment(ctx, models.AmendRequest{AssignmentID: 9, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrAmendBelowConsumed)

	got, err := f.svc.AmendAssignment(ctx, models.AmendRequest{AssignmentID: 9, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.TotalCost)
	assert.Equal(t, models.AssignmentCompleted, got.Status)
}

func TestListPayments(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	history := []models.Payment{
		{ID: 1, AssignmentID: 4, Amount: 30, Method: models.PaymentCash, Status: models.PaymentProcessed},
		{ID: 2, AssignmentID: 4, Amount: -10, Method: models.PaymentCash, Status: models.PaymentProcessed},
	}
	f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(4), false).Return(models.Assignment{ID: 4}, nil)
	f.ledger.EXPECT().ListPayments(gomock.Any(), int64(4)).Return(history, nil)
	f.ledger.EXPECT().GetAssignment(gomock.Any(), int64(5), false).Return(models.Assignment{}, models.ErrAssignmentNotFound)

	got, err := f.svc.ListPayments(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, history, got)

	_, err = f.svc.ListPayments(ctx, 5)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	summary, err := summarize(7, []models.Assignment{
		{Pseudonym: "Major Heron", Quantity: 5, Consumed: 1, TotalCost: 50, AmountPaid: 50, Status: models.AssignmentCompleted},
		{Pseudonym: "Captain Otter", Quantity: 5, TotalCost: 50, AmountPaid: 20, Status: models.AssignmentPartial},
		{Pseudonym: "Captain Otter", Quantity: 2, TotalCost: 0, Status: models.AssignmentAssigned},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Assignments)
	assert.Equal(t, 1, summary.Assigned)
	assert.Equal(t, 1, summary.Partial)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, int64(100), summary.TotalCost)
	assert.Equal(t, int64(70), summary.TotalPaid)
	assert.Equal(t, int64(30), summary.TotalDebt)
	assert.Equal(t, int64(12), summary.QuantityAssigned)
	assert.Equal(t, int64(11), summary.QuantityRemaining)

	require.Len(t, summary.Participants, 2)
	assert.Equal(t, models.ParticipantBalance{Pseudonym: "Captain Otter", TotalCost: 50, Paid: 20, Debt: 30}, summary.Participants[0])
	assert.Equal(t, "Major Heron", summary.Participants[1].Pseudonym)

	empty, err := summarize(7, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Participants)
}

func TestSummarize_GroupTotalsOverflow(t *testing.T) {
	// each row fits on its own, the group sum does not
	big := int64(math.MaxInt64 - 10)

	_, err := summarize(7, []models.Assignment{
		{Pseudonym: "Major Heron", Quantity: 1, TotalCost: big, Status: models.AssignmentAssigned},
		{Pseudonym: "Captain Otter", Quantity: 1, TotalCost: big, Status: models.AssignmentAssigned},
	})
	assert.ErrorIs(t, err, models.ErrAmountOverflow)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = summarize(7, []models.Assignment{
		{Pseudonym: "Major Heron", Quantity: big, TotalCost: 1, Status: models.AssignmentAssigned},
		{Pseudonym: "Major Heron", Quantity: big, TotalCost: 1, Status: models.AssignmentAssigned},
	})
	assert.ErrorIs(t, err, models.ErrAmountOverflow)
}
