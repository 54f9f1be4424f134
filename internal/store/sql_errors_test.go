package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	assert.Equal(t, Retryable, c.Classify(pgError(pgerrcode.SerializationFailure, "")))
	assert.Equal(t, Retryable, c.Classify(fmt.Errorf("wrapped: %w", pgError(pgerrcode.DeadlockDetected, ""))))
	assert.Equal(t, NonRetryable, c.Classify(pgError(pgerrcode.UniqueViolation, "")))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.Equal(t, Retryable, c.Classify(fmt.Errorf("x: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.Equal(t, NonRetryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
}

func TestUniqueViolation(t *testing.T) {
	constraint, ok := uniqueViolation(pgError(pgerrcode.UniqueViolation, "identities_group_fingerprint_key"))
	assert.True(t, ok)
	assert.True(t, violates(constraint, "fingerprint"))

	_, ok = uniqueViolation(pgError(pgerrcode.ForeignKeyViolation, "whatever"))
	assert.False(t, ok)

	_, ok = uniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}
