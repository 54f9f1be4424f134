package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &DB{
		DB:                 conn,
		dialect:            DialectPostgres,
		logger:             logger.Nop(),
		errorClassificator: NewPostgresErrorClassifier(),
	}, mock
}

func pgError(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

var identityRowColumns = []string{"id", "group_id", "pseudonym", "fingerprint", "ciphertext", "plaintext_name", "status", "created_at"}

func TestCreateIdentity_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	ct := "sealed"
	mock.ExpectQuery("INSERT INTO identities").
		WithArgs(int64(7), "Captain Otter", "captain otter", "fp", "sealed", nil, "active", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	created, err := repo.CreateIdentity(context.Background(), models.Identity{
		GroupID:     7,
		Pseudonym:   "Captain Otter",
		Fingerprint: "fp",
		Ciphertext:  &ct,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), created.ID)
	assert.Equal(t, models.IdentityActive, created.Status)
	assert.Nil(t, created.LegacyPlaintext)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIdentity_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "fingerprint", constraint: "identities_group_fingerprint_key", want: models.ErrIdentityExists},
		{name: "pseudonym", constraint: "identities_group_pseudonym_key", want: models.ErrPseudonymExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := NewIdentityRepository(db, logger.Nop())

			mock.ExpectQuery("INSERT INTO identities").
				WillReturnError(pgError(pgerrcode.UniqueViolation, tt.constraint))

			_, err := repo.CreateIdentity(context.Background(), models.Identity{GroupID: 1, Pseudonym: "Ab"})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, models.ErrDuplicate)
		})
	}
}

func TestCreateIdentity_UnexpectedDBError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	mock.ExpectQuery("INSERT INTO identities").WillReturnError(errors.New("db network error"))

	_, err := repo.CreateIdentity(context.Background(), models.Identity{GroupID: 1, Pseudonym: "Ab"})
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NotErrorIs(t, err, models.ErrDuplicate)
}

func TestListIdentities_RejectsPlaintextNextToCiphertext(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	rows := sqlmock.NewRows(identityRowColumns).
		AddRow(1, 7, "Captain Otter", "fp1", "sealed", nil, "active", time.Now()).
		AddRow(2, 7, "Major Heron", "fp2", "sealed", "Bob", "active", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM identities").WithArgs(int64(7)).WillReturnRows(rows)

	_, err := repo.ListIdentities(context.Background(), 7)
	assert.ErrorIs(t, err, models.ErrPlaintextAndCipher)
	assert.ErrorIs(t, err, models.ErrConsistency)
	assert.NotContains(t, err.Error(), "Bob")
}

func TestListIdentities_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	rows := sqlmock.NewRows(identityRowColumns).
		AddRow(1, 7, "Captain Otter", "fp1", "sealed", nil, "active", time.Now()).
		AddRow(2, 7, "Major Heron", nil, nil, "Legacy", "inactive", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM identities").WithArgs(int64(7)).WillReturnRows(rows)

	identities, err := repo.ListIdentities(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, identities, 2)

	assert.Equal(t, "fp1", identities[0].Fingerprint)
	require.NotNil(t, identities[0].Ciphertext)
	assert.Nil(t, identities[0].LegacyPlaintext)

	assert.Equal(t, models.IdentityInactive, identities[1].Status)
	assert.Nil(t, identities[1].Ciphertext)
	require.NotNil(t, identities[1].LegacyPlaintext)
}

func TestFindByPseudonym_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	mock.ExpectQuery("SELECT (.+) FROM identities").
		WithArgs(int64(7), "nobody here").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPseudonym(context.Background(), 7, "Nobody Here")
	assert.ErrorIs(t, err, models.ErrIdentityNotFound)
}

func TestSetStatus_NoRows(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	mock.ExpectExec("UPDATE identities SET status").
		WithArgs("inactive", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), 3, models.IdentityInactive)
	assert.ErrorIs(t, err, models.ErrIdentityNotFound)
}

func TestClearLegacyPlaintext_ReturnsRepaired(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewIdentityRepository(db, logger.Nop())

	mock.ExpectExec("UPDATE identities SET plaintext_name").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ClearLegacyPlaintext(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGetGroup(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewGroupRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, key_verifier, created_at FROM ledger_groups WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "key_verifier", "created_at"}).AddRow(1, "owner-1", nil, time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM ledger_groups").
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	group, err := repo.GetGroup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", group.OwnerID)
	assert.True(t, group.UsesDerivedKey())

	_, err = repo.GetGroup(context.Background(), 2)
	assert.ErrorIs(t, err, models.ErrGroupNotFound)
}

func TestDeleteGroup_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewGroupRepository(db, logger.Nop())

	mock.ExpectExec("DELETE FROM ledger_groups").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteGroup(context.Background(), 5), models.ErrGroupNotFound)
}

func TestGetAssignment_ForUpdateLocksOnPostgres(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewLedgerRepository(db, logger.Nop())

	cols := []string{"id", "group_id", "identity_id", "pseudonym", "item", "quantity", "consumed", "unit_price", "total_cost", "status", "created_at", "updated_at", "amount_paid"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM assignments WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery("SELECT (.+) FROM assignments a JOIN identities i").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(4, 7, 1, "Captain Otter", "Berry", 5, 0, 10, 50, "partial", time.Now(), time.Now(), 20))
	mock.ExpectCommit()

	var got models.Assignment
	err := db.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		got, err = repo.GetAssignment(ctx, 4, true)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.AmountPaid)
	assert.Equal(t, int64(30), got.Debt())
	assert.Equal(t, models.AssignmentPartial, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssignment_LockMissingRow(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewLedgerRepository(db, logger.Nop())

	mock.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAssignment(context.Background(), 4, true)
	assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
}

func TestUpdateAssignment_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewLedgerRepository(db, logger.Nop())

	mock.ExpectExec("UPDATE assignments").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAssignment(context.Background(), models.Assignment{ID: 1})
	assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.WithinTx(context.Background(), func(ctx context.Context) error {
		_, ok := txFrom(ctx)
		assert.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := db.WithinTx(context.Background(), func(outer context.Context) error {
		return db.WithinTx(outer, func(inner context.Context) error {
			a, _ := txFrom(outer)
			b, _ := txFrom(inner)
			assert.Same(t, a, b)
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_BeginFails(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	err := db.WithinTx(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}
