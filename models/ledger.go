package models

import (
	"encoding/json"
	"time"
)

// AssignmentStatus is the settlement state of an assignment. It only ever
// moves forward: assigned -> partial -> completed.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentPartial   AssignmentStatus = "partial"
	AssignmentCompleted AssignmentStatus = "completed"
)

// Rank orders statuses along the forward-only state machine.
func (s AssignmentStatus) Rank() int {
	switch s {
	case AssignmentPartial:
		return 1
	case AssignmentCompleted:
		return 2
	default:
		return 0
	}
}

// StatusForPaid computes the status implied by the cumulative paid amount
// and never returns a status behind current.
func StatusForPaid(current AssignmentStatus, paid, totalCost int64) AssignmentStatus {
	var next AssignmentStatus
	switch {
	case paid <= 0:
		next = current
	case paid >= totalCost:
		next = AssignmentCompleted
	default:
		next = AssignmentPartial
	}

	if next.Rank() < current.Rank() {
		return current
	}
	return next
}

// PaymentStatus distinguishes regular payments from refunds.
type PaymentStatus string

const (
	PaymentProcessed PaymentStatus = "processed"
	PaymentRefund    PaymentStatus = "refund"
)

// PaymentMethod is how the participant paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Assignment records that a pseudonymous participant is responsible for a
// quantity of an item at a price. Amounts are minor currency units.
type Assignment struct {
	ID         int64            `json:"id"`
	GroupID    int64            `json:"group_id"`
	IdentityID int64            `json:"-"`
	Pseudonym  string           `json:"pseudonym"`
	Item       string           `json:"item"`
	Quantity   int64            `json:"quantity"`
	Consumed   int64            `json:"consumed"`
	UnitPrice  int64            `json:"unit_price"`
	TotalCost  int64            `json:"total_cost"`
	Status     AssignmentStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// AmountPaid is derived from the payments of the assignment.
	AmountPaid int64 `json:"amount_paid"`
}

// Debt is what the participant still owes. A negative value is a credit
// from an overpayment.
func (a Assignment) Debt() int64 {
	return a.TotalCost - a.AmountPaid
}

// MarshalJSON adds the derived debt to the serialised assignment.
func (a Assignment) MarshalJSON() ([]byte, error) {
	type plain Assignment
	return json.Marshal(struct {
		plain
		Debt int64 `json:"debt"`
	}{plain: plain(a), Debt: a.Debt()})
}

// Remaining is the quantity not yet consumed.
func (a Assignment) Remaining() int64 {
	return a.Quantity - a.Consumed
}

// TableName returns the name of the database table
// associated with the Assignment model.
func (a Assignment) TableName() string {
	return "assignments"
}

// Payment is a single money movement against an assignment. Refunds are
// stored as negative amounts so the ledger stays append-only.
type Payment struct {
	ID           int64         `json:"id"`
	AssignmentID int64         `json:"assignment_id"`
	Amount       int64         `json:"amount"`
	Method       PaymentMethod `json:"method"`
	Status       PaymentStatus `json:"status"`
	ProcessedAt  time.Time     `json:"processed_at"`
}

// TableName returns the name of the database table
// associated with the Payment model.
func (p Payment) TableName() string {
	return "payments"
}

// PaymentResult is returned by payment operations: the new payment and the
// owning assignment as it is after the payment was applied.
type PaymentResult struct {
	Payment    Payment    `json:"payment"`
	Assignment Assignment `json:"assignment"`
}

// ParticipantBalance aggregates the ledger of one pseudonym.
type ParticipantBalance struct {
	Pseudonym string `json:"pseudonym"`
	TotalCost int64  `json:"total_cost"`
	Paid      int64  `json:"paid"`
	Debt      int64  `json:"debt"`
}

// LedgerSummary is the aggregate view of a group's ledger.
type LedgerSummary struct {
	GroupID     int64 `json:"group_id"`
	Assignments int   `json:"assignments"`
	Assigned    int   `json:"assigned"`
	Partial     int   `json:"partial"`
	Completed   int   `json:"completed"`

	TotalCost int64 `json:"total_cost"`
	TotalPaid int64 `json:"total_paid"`
	TotalDebt int64 `json:"total_debt"`

	QuantityAssigned  int64 `json:"quantity_assigned"`
	QuantityConsumed  int64 `json:"quantity_consumed"`
	QuantityRemaining int64 `json:"quantity_remaining"`

	Participants []ParticipantBalance `json:"participants"`
}
