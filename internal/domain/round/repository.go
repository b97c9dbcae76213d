package round

import (
	"context"
	"time"
)

type Repository interface {
	// Create persists a new round. It surfaces ErrDuplicateRound when
	// (year, week) is taken and ErrActiveRoundExists when the round is Active
	// but another Active round already holds the slot.
	Create(ctx context.Context, r Round) (Round, error)

	GetByID(ctx context.Context, roundID string) (Round, bool, error)
	GetByWeek(ctx context.Context, year, week int) (Round, bool, error)

	// GetActive is a pure read; it never promotes.
	GetActive(ctx context.Context) (Round, bool, error)

	// PromoteNextPending atomically activates the earliest Pending round
	// (ordered by year, then week) when no round is Active. It reports false
	// without error when a round is already Active or nothing is Pending.
	PromoteNextPending(ctx context.Context, at time.Time) (Round, bool, error)

	// Complete flips an Active round to Completed exactly once, storing the
	// winning numbers and completion time. A found round in any other state
	// yields ErrNotActive.
	Complete(ctx context.Context, roundID string, winningNumbers []int, at time.Time) (Round, bool, error)

	// Cancel aborts a Pending round. A found round in any other state yields
	// ErrNotPending.
	Cancel(ctx context.Context, roundID string) (Round, bool, error)

	List(ctx context.Context) ([]Round, error)
	ListCompleted(ctx context.Context) ([]Round, error)
}
