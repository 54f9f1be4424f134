package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// ledgerRepository is the SQL-backed implementation of [LedgerRepository].
// Payments are append-only; the amount paid of an assignment is always
// derived from them and never stored.
type ledgerRepository struct {
	*DB
	logger *logger.Logger
}

func NewLedgerRepository(db *DB, logger *logger.Logger) LedgerRepository {
	logger.Debug().Msg("creating ledger repository")
	return &ledgerRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *ledgerRepository) CreateAssignment(ctx context.Context, assignment models.Assignment) (models.Assignment, error) {
	log := logger.FromContext(ctx)

	ts := now()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = ts
	}
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = assignment.CreatedAt
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentAssigned
	}

	query, args, err := buildInsertAssignmentQuery(r.builder(), assignment)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&assignment.ID); err != nil {
		log.Err(err).Str("func", "ledgerRepository.CreateAssignment").Int64("group_id", assignment.GroupID).Msg("failed to insert assignment")
		return models.Assignment{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return assignment, nil
}

// GetAssignment loads one assignment. With forUpdate set on PostgreSQL the
// row is locked first with SELECT ... FOR UPDATE; SQLite already holds the
// database write lock for the whole transaction.
func (r *ledgerRepository) GetAssignment(ctx context.Context, assignmentID int64, forUpdate bool) (models.Assignment, error) {
	log := logger.FromContext(ctx)

	if forUpdate && r.Dialect() == DialectPostgres {
		if err := r.lockAssignment(ctx, assignmentID); err != nil {
			return models.Assignment{}, err
		}
	}

	query, args, err := buildSelectAssignmentQuery(r.builder(), assignmentID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	assignment, err := scanAssignment(r.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Assignment{}, models.ErrAssignmentNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "ledgerRepository.GetAssignment").Int64("assignment_id", assignmentID).Msg("failed to select assignment")
		return models.Assignment{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return assignment, nil
}

func (r *ledgerRepository) lockAssignment(ctx context.Context, assignmentID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := buildLockAssignmentQuery(r.builder(), assignmentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	err = r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrAssignmentNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "ledgerRepository.lockAssignment").Int64("assignment_id", assignmentID).Msg("failed to lock assignment")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// UpdateAssignment writes the mutable columns: quantity, consumed, total
// cost and status.
func (r *ledgerRepository) UpdateAssignment(ctx context.Context, assignment models.Assignment) error {
	log := logger.FromContext(ctx)

	assignment.UpdatedAt = now()

	query, args, err := buildUpdateAssignmentQuery(r.builder(), assignment)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "ledgerRepository.UpdateAssignment").Int64("assignment_id", assignment.ID).Msg("failed to update assignment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, models.ErrAssignmentNotFound)
}

func (r *ledgerRepository) ListAssignments(ctx context.Context, groupID int64) ([]models.Assignment, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAssignmentsQuery(r.builder(), groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "ledgerRepository.ListAssignments").Int64("group_id", groupID).Msg("failed to execute assignments query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	assignments := make([]models.Assignment, 0, 16)
	for rows.Next() {
		a, scanErr := scanAssignment(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "ledgerRepository.ListAssignments").Int64("group_id", groupID).Msg("failed to scan assignment row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		assignments = append(assignments, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "ledgerRepository.ListAssignments").Int64("group_id", groupID).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return assignments, nil
}

func (r *ledgerRepository) CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error) {
	log := logger.FromContext(ctx)

	if payment.ProcessedAt.IsZero() {
		payment.ProcessedAt = now()
	}

	query, args, err := buildInsertPaymentQuery(r.builder(), payment)
	if err != nil {
		return models.Payment{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&payment.ID); err != nil {
		log.Err(err).Str("func", "ledgerRepository.CreatePayment").Int64("assignment_id", payment.AssignmentID).Msg("failed to insert payment")
		return models.Payment{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return payment, nil
}

func (r *ledgerRepository) ListPayments(ctx context.Context, assignmentID int64) ([]models.Payment, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectPaymentsQuery(r.builder(), assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "ledgerRepository.ListPayments").Int64("assignment_id", assignmentID).Msg("failed to execute payments query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.AssignmentID, &p.Amount, &p.Method, &p.Status, &p.ProcessedAt); err != nil {
			log.Err(err).Str("func", "ledgerRepository.ListPayments").Int64("assignment_id", assignmentID).Msg("failed to scan payment row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		payments = append(payments, p)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return payments, nil
}

func scanAssignment(s rowScanner) (models.Assignment, error) {
	var a models.Assignment
	err := s.Scan(
		&a.ID,
		&a.GroupID,
		&a.IdentityID,
		&a.Pseudonym,
		&a.Item,
		&a.Quantity,
		&a.Consumed,
		&a.UnitPrice,
		&a.TotalCost,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.AmountPaid,
	)
	return a, err
}
