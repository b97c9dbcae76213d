package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, e Entry) (Entry, error)
	GetByID(ctx context.Context, entryID string) (Entry, bool, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Entry, error)
	ListPending(ctx context.Context) ([]Entry, error)

	// MarkApproved and MarkRejected transition a Pending entry exactly once.
	// They report false when no pending entry matched, leaving the caller to
	// distinguish missing from already-settled.
	MarkApproved(ctx context.Context, entryID, approverID string, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, entryID, rejecterID string, at time.Time) (bool, error)

	// SoftDelete tombstones an entry so it stops contributing to the balance
	// fold while remaining replayable for audits.
	SoftDelete(ctx context.Context, entryID, actorID string, at time.Time) (bool, error)

	// SumApprovedByPlayer folds the player's approved, non-deleted entries.
	SumApprovedByPlayer(ctx context.Context, playerID string) (decimal.Decimal, error)
}
