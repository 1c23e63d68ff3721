package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunInTxRetriesContention(t *testing.T) {
	db := newTestDB(t)

	attempts := 0
	err := runInTx(db, func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return errStaleRead
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRunInTxBoundedRetry(t *testing.T) {
	db := newTestDB(t)

	attempts := 0
	err := runInTx(db, func(tx *gorm.DB) error {
		attempts++
		return errStaleRead
	})

	// Exhaustion surfaces as TransientError; the caller may retry, the
	// ledger never hangs.
	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, maxTxAttempts, attempts)
}

func TestRunInTxDoesNotRetryLedgerErrors(t *testing.T) {
	db := newTestDB(t)

	attempts := 0
	err := runInTx(db, func(tx *gorm.DB) error {
		attempts++
		return &InvalidStateError{Msg: "submission already decided"}
	})

	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 1, attempts)

	err = runInTx(db, func(tx *gorm.DB) error {
		attempts++
		return &NotFoundError{Resource: "bounty", ID: "x"}
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, attempts)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errStaleRead))
	assert.True(t, isTransient(errors.New("pq: deadlock detected")))
	assert.True(t, isTransient(errors.New("ERROR: could not serialize access due to concurrent update")))
	assert.True(t, isTransient(errors.New("database is locked")))

	assert.False(t, isTransient(errors.New("pq: null value in column")))
	assert.False(t, isTransient(&InvalidStateError{Msg: "already decided"}))
	assert.False(t, isTransient(&ValidationError{Msg: "bad input"}))
}
