// services/retry.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

const maxTxAttempts = 5

// errStaleRead signals that a value read at the start of a transaction was
// changed by a concurrent writer before our guarded update landed. The whole
// transaction is re-run from a fresh read.
var errStaleRead = errors.New("optimistic read went stale")

// runInTx runs fn as a single all-or-nothing transaction with bounded retry.
// Contention (serialization failures, deadlocks, lock timeouts, stale
// optimistic reads) is retried with backoff up to maxTxAttempts; exhaustion
// surfaces as TransientError. Ledger errors (validation, not-found,
// invalid-state) pass through untouched and are never retried.
func runInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		log.Printf("⚠️ [TX] attempt %d/%d hit contention: %v", attempt, maxTxAttempts, err)
		time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
	}
	return &TransientError{Err: err}
}

func isTransient(err error) bool {
	if errors.Is(err, errStaleRead) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"could not serialize",   // postgres serialization failure (40001)
		"deadlock detected",     // postgres 40P01
		"database is locked",    // sqlite busy
		"database table is locked",
		"lock timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
