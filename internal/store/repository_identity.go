package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/validators"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// identityRepository is the SQL-backed implementation of [IdentityRepository].
//
// Pseudonyms are unique per group case-insensitively: the table stores a
// folded copy (pseudonym_key) under a unique index next to the display form.
type identityRepository struct {
	*DB
	logger *logger.Logger
}

func NewIdentityRepository(db *DB, logger *logger.Logger) IdentityRepository {
	logger.Debug().Msg("creating identity repository")
	return &identityRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateIdentity inserts a new identity. The plaintext column is always
// written as NULL.
//
// Error handling:
//   - unique violation on the fingerprint → [models.ErrIdentityExists].
//   - unique violation on the pseudonym → [models.ErrPseudonymExists].
func (r *identityRepository) CreateIdentity(ctx context.Context, identity models.Identity) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now()
	}
	if identity.Status == "" {
		identity.Status = models.IdentityActive
	}
	identity.LegacyPlaintext = nil

	query, args, err := buildInsertIdentityQuery(r.builder(), identity, validators.FoldKey(identity.Pseudonym))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&identity.ID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			log.Info().Str("func", "identityRepository.CreateIdentity").Int64("group_id", identity.GroupID).Msg("duplicate identity rejected by unique index")
			if violates(constraint, "fingerprint") {
				return models.Identity{}, models.ErrIdentityExists
			}
			return models.Identity{}, models.ErrPseudonymExists
		}

		log.Err(err).Str("func", "identityRepository.CreateIdentity").Int64("group_id", identity.GroupID).Msg("failed to insert identity")
		return models.Identity{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return identity, nil
}

// ListIdentities returns every identity of a group ordered by creation.
func (r *identityRepository) ListIdentities(ctx context.Context, groupID int64) ([]models.Identity, error) {
	query, args, err := buildSelectIdentitiesQuery(r.builder(), groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryIdentities(ctx, "identityRepository.ListIdentities", groupID, query, args)
}

// FindByPseudonym looks an identity up by alias, ignoring case.
func (r *identityRepository) FindByPseudonym(ctx context.Context, groupID int64, pseudonym string) (models.Identity, error) {
	query, args, err := buildSelectIdentityByPseudonymQuery(r.builder(), groupID, validators.FoldKey(pseudonym))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryIdentity(ctx, "identityRepository.FindByPseudonym", groupID, query, args)
}

func (r *identityRepository) FindByFingerprint(ctx context.Context, groupID int64, fingerprint string) (models.Identity, error) {
	query, args, err := buildSelectIdentityByFingerprintQuery(r.builder(), groupID, fingerprint)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryIdentity(ctx, "identityRepository.FindByFingerprint", groupID, query, args)
}

func (r *identityRepository) SetStatus(ctx context.Context, identityID int64, status models.IdentityStatus) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateIdentityStatusQuery(r.builder(), identityID, status)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "identityRepository.SetStatus").Int64("identity_id", identityID).Msg("failed to update identity status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, models.ErrIdentityNotFound)
}

func (r *identityRepository) ClearLegacyPlaintext(ctx context.Context, groupID int64) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildClearLegacyPlaintextQuery(r.builder(), groupID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "identityRepository.ClearLegacyPlaintext").Int64("group_id", groupID).Msg("failed to clear legacy plaintext")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}

func (r *identityRepository) ListLegacyPlaintext(ctx context.Context, groupID int64) ([]models.Identity, error) {
	query, args, err := buildSelectLegacyPlaintextQuery(r.builder(), groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryIdentities(ctx, "identityRepository.ListLegacyPlaintext", groupID, query, args)
}

// StoreEncrypted swaps plaintext for ciphertext on a legacy row. Rows that
// already hold ciphertext are left alone and reported as not found.
func (r *identityRepository) StoreEncrypted(ctx context.Context, identity models.Identity) error {
	log := logger.FromContext(ctx)

	query, args, err := buildStoreEncryptedQuery(r.builder(), identity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return models.ErrIdentityExists
		}
		log.Err(err).Str("func", "identityRepository.StoreEncrypted").Int64("identity_id", identity.ID).Msg("failed to store ciphertext")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return expectAffected(res, models.ErrIdentityNotFound)
}

func (r *identityRepository) queryIdentity(ctx context.Context, fn string, groupID int64, query string, args []any) (models.Identity, error) {
	log := logger.FromContext(ctx)

	identity, err := scanIdentity(r.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, models.ErrIdentityNotFound
	}
	if err != nil {
		log.Err(err).Str("func", fn).Int64("group_id", groupID).Msg("failed to select identity")
		return models.Identity{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if err := r.checkConsistent(ctx, fn, identity); err != nil {
		return models.Identity{}, err
	}

	return identity, nil
}

func (r *identityRepository) queryIdentities(ctx context.Context, fn string, groupID int64, query string, args []any) ([]models.Identity, error) {
	log := logger.FromContext(ctx)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Int64("group_id", groupID).Msg("failed to execute identities query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	identities := make([]models.Identity, 0, 16)
	for rows.Next() {
		identity, scanErr := scanIdentity(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Int64("group_id", groupID).Msg("failed to scan identity row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		if err := r.checkConsistent(ctx, fn, identity); err != nil {
			return nil, err
		}

		identities = append(identities, identity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", fn).Int64("group_id", groupID).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return identities, nil
}

// checkConsistent refuses rows that carry plaintext next to ciphertext.
// Only the row id is logged.
func (r *identityRepository) checkConsistent(ctx context.Context, fn string, identity models.Identity) error {
	if !identity.Inconsistent() {
		return nil
	}

	logger.FromContext(ctx).Error().
		Str("func", fn).
		Int64("identity_id", identity.ID).
		Int64("group_id", identity.GroupID).
		Msg("identity row holds both plaintext and ciphertext")

	return fmt.Errorf("%w (identity %d)", models.ErrPlaintextAndCipher, identity.ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(s rowScanner) (models.Identity, error) {
	var identity models.Identity
	var fingerprint, ciphertext, plaintext sql.NullString

	err := s.Scan(
		&identity.ID,
		&identity.GroupID,
		&identity.Pseudonym,
		&fingerprint,
		&ciphertext,
		&plaintext,
		&identity.Status,
		&identity.CreatedAt,
	)
	if err != nil {
		return models.Identity{}, err
	}

	identity.Fingerprint = fingerprint.String
	if ciphertext.Valid {
		identity.Ciphertext = &ciphertext.String
	}
	if plaintext.Valid {
		identity.LegacyPlaintext = &plaintext.String
	}

	return identity, nil
}
