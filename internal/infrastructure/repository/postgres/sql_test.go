package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches sql.ErrNoRows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatalf("expected true for sql.ErrNoRows")
		}
	})

	t.Run("matches wrapped sql.ErrNoRows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("get round: %w", sql.ErrNoRows)) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(errors.New("pq: relation boards does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	violation := &pq.Error{Code: "23505", Constraint: "rounds_one_active_idx"}

	t.Run("matches named constraint", func(t *testing.T) {
		if !isUniqueViolation(violation, "rounds_one_active_idx") {
			t.Fatalf("expected true for matching constraint")
		}
	})

	t.Run("empty constraint matches any violation", func(t *testing.T) {
		if !isUniqueViolation(violation, "") {
			t.Fatalf("expected true for empty constraint")
		}
	})

	t.Run("ignores different constraint", func(t *testing.T) {
		if isUniqueViolation(violation, "rounds_year_week_number_key") {
			t.Fatalf("expected false for different constraint")
		}
	})

	t.Run("ignores non-unique pq error", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores non-pq error", func(t *testing.T) {
		if isUniqueViolation(errors.New("duplicate key value"), "") {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsRetryableConflict(t *testing.T) {
	t.Run("matches serialization failure", func(t *testing.T) {
		if !isRetryableConflict(&pq.Error{Code: "40001"}) {
			t.Fatalf("expected true for serialization failure")
		}
	})

	t.Run("matches deadlock", func(t *testing.T) {
		if !isRetryableConflict(&pq.Error{Code: "40P01"}) {
			t.Fatalf("expected true for deadlock")
		}
	})

	t.Run("matches marked conflict", func(t *testing.T) {
		if !isRetryableConflict(fmt.Errorf("%w: commit purchase", errTxConflict)) {
			t.Fatalf("expected true for marked conflict")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isRetryableConflict(&pq.Error{Code: "23505"}) {
			t.Fatalf("expected false for unique violation")
		}
	})
}
