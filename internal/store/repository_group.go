package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// groupRepository is the SQL-backed implementation of [GroupRepository].
type groupRepository struct {
	*DB
	logger *logger.Logger
}

func NewGroupRepository(db *DB, logger *logger.Logger) GroupRepository {
	logger.Debug().Msg("creating group repository")
	return &groupRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateGroup persists a new group and returns it with the server-assigned ID.
func (r *groupRepository) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	log := logger.FromContext(ctx)

	if group.CreatedAt.IsZero() {
		group.CreatedAt = now()
	}

	query, args, err := buildInsertGroupQuery(r.builder(), group)
	if err != nil {
		return models.Group{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&group.ID); err != nil {
		log.Err(err).Str("func", "groupRepository.CreateGroup").Msg("failed to insert group")
		return models.Group{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return group, nil
}

// GetGroup loads a group by ID.
//
// Error handling:
//   - no row → [models.ErrGroupNotFound].
//   - any other driver-level error → wrapped [ErrExecutingQuery].
func (r *groupRepository) GetGroup(ctx context.Context, groupID int64) (models.Group, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectGroupQuery(r.builder(), groupID)
	if err != nil {
		return models.Group{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var group models.Group
	var verifier sql.NullString

	err = r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&group.ID, &group.OwnerID, &verifier, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, models.ErrGroupNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "groupRepository.GetGroup").Int64("group_id", groupID).Msg("failed to select group")
		return models.Group{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if verifier.Valid {
		group.KeyVerifier = &verifier.String
	}

	return group, nil
}

// DeleteGroup removes a group; identities, assignments and payments go with
// it through ON DELETE CASCADE.
func (r *groupRepository) DeleteGroup(ctx context.Context, groupID int64) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteGroupQuery(r.builder(), groupID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "groupRepository.DeleteGroup").Int64("group_id", groupID).Msg("failed to delete group")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, models.ErrGroupNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
