package postgres

import (
	"database/sql"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

// errTxConflict marks commit-time conflicts (serialization failures, deadlock
// aborts) that a caller may retry.
var errTxConflict = crerr.New("transaction conflict")

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a 23505 on the given constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isRetryableConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return errors.Is(err, errTxConflict)
	}
	// 40001 serialization_failure, 40P01 deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
