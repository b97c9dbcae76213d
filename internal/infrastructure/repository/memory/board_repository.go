package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

// BoardRepository serializes every CreateFunded call on its own mutex, so the
// balance re-check, the debit write, and the board write happen as one unit.
// This is coarser than the per-player row lock the postgres repository takes,
// which is fine at in-memory scale.
type BoardRepository struct {
	mu    sync.RWMutex
	items map[string]board.Board

	entries *LedgerRepository
	rounds  *RoundRepository
}

func NewBoardRepository(entries *LedgerRepository, rounds *RoundRepository) *BoardRepository {
	return &BoardRepository{
		items:   make(map[string]board.Board),
		entries: entries,
		rounds:  rounds,
	}
}

func (r *BoardRepository) CreateFunded(ctx context.Context, b board.Board, debit ledger.Entry) (board.Board, ledger.Entry, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.rounds.statusOf(b.RoundID)
	if !ok || status != round.StatusActive {
		return board.Board{}, ledger.Entry{}, decimal.Zero, round.ErrNotActive
	}

	balance, err := r.entries.SumApprovedByPlayer(ctx, b.PlayerID)
	if err != nil {
		return board.Board{}, ledger.Entry{}, decimal.Zero, err
	}
	after := balance.Add(debit.Amount)
	if after.IsNegative() {
		return board.Board{}, ledger.Entry{}, decimal.Zero, ledger.ErrInsufficientFunds
	}

	if _, err := r.entries.Create(ctx, debit); err != nil {
		return board.Board{}, ledger.Entry{}, decimal.Zero, err
	}
	r.items[b.ID] = b
	return b, debit, after, nil
}

func (r *BoardRepository) GetByID(_ context.Context, boardID string) (board.Board, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[boardID]
	return b, ok, nil
}

func (r *BoardRepository) ListByRound(_ context.Context, roundID string) ([]board.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]board.Board, 0)
	for _, b := range r.items {
		if b.RoundID == roundID {
			out = append(out, b)
		}
	}
	sortBoardsOldestFirst(out)
	return out, nil
}

func (r *BoardRepository) ListByPlayer(_ context.Context, playerID string) ([]board.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]board.Board, 0)
	for _, b := range r.items {
		if b.PlayerID == playerID {
			out = append(out, b)
		}
	}
	sortBoardsOldestFirst(out)
	return out, nil
}

func (r *BoardRepository) CountByRound(_ context.Context, roundID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, b := range r.items {
		if b.RoundID == roundID {
			count++
		}
	}
	return count, nil
}

func (r *BoardRepository) SetRepeatNextRound(_ context.Context, boardID string, repeat bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[boardID]
	if !ok {
		return false, nil
	}
	b.RepeatNextRound = repeat
	r.items[boardID] = b
	return true, nil
}

func sortBoardsOldestFirst(boards []board.Board) {
	sort.SliceStable(boards, func(i, j int) bool {
		if !boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].CreatedAt.Before(boards[j].CreatedAt)
		}
		return boards[i].ID < boards[j].ID
	})
}
