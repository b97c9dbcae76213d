package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
)

type LedgerRepository struct {
	mu    sync.RWMutex
	items map[string]ledger.Entry
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{items: make(map[string]ledger.Entry)}
}

func (r *LedgerRepository) Create(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[e.ID] = e
	return e, nil
}

func (r *LedgerRepository) GetByID(_ context.Context, entryID string) (ledger.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[entryID]
	return e, ok, nil
}

func (r *LedgerRepository) ListByPlayer(_ context.Context, playerID string) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0)
	for _, e := range r.items {
		if e.PlayerID == playerID {
			out = append(out, e)
		}
	}
	sortEntriesNewestFirst(out)
	return out, nil
}

func (r *LedgerRepository) ListPending(_ context.Context) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0)
	for _, e := range r.items {
		if e.Status == ledger.StatusPending && e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sortEntriesNewestFirst(out)
	return out, nil
}

func (r *LedgerRepository) MarkApproved(_ context.Context, entryID, approverID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[entryID]
	if !ok || e.Status != ledger.StatusPending || e.DeletedAt != nil {
		return false, nil
	}
	e.Status = ledger.StatusApproved
	e.ApprovedAt = &at
	e.ApprovedBy = approverID
	r.items[entryID] = e
	return true, nil
}

func (r *LedgerRepository) MarkRejected(_ context.Context, entryID, rejecterID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[entryID]
	if !ok || e.Status != ledger.StatusPending || e.DeletedAt != nil {
		return false, nil
	}
	e.Status = ledger.StatusRejected
	e.RejectedAt = &at
	e.RejectedBy = rejecterID
	r.items[entryID] = e
	return true, nil
}

func (r *LedgerRepository) SoftDelete(_ context.Context, entryID, actorID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[entryID]
	if !ok || e.DeletedAt != nil {
		return false, nil
	}
	e.DeletedAt = &at
	e.DeletedBy = actorID
	r.items[entryID] = e
	return true, nil
}

func (r *LedgerRepository) SumApprovedByPlayer(_ context.Context, playerID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sumApprovedLocked(playerID), nil
}

// sumApprovedLocked folds approved, non-deleted entries. Callers must hold at
// least a read lock.
func (r *LedgerRepository) sumApprovedLocked(playerID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range r.items {
		if e.PlayerID != playerID || !e.CountsTowardBalance() {
			continue
		}
		sum = sum.Add(e.Amount)
	}
	return sum
}

func sortEntriesNewestFirst(entries []ledger.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
