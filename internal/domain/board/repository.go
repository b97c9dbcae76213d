package board

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
)

type Repository interface {
	// CreateFunded writes the board and its funding debit entry in one atomic
	// unit, re-validating the player's balance against the debit under a
	// per-player serialization boundary. It returns the persisted pair and
	// the balance left after the debit, or ledger.ErrInsufficientFunds with
	// no state mutated. A round that is no longer active at commit time
	// yields round.ErrNotActive.
	CreateFunded(ctx context.Context, b Board, debit ledger.Entry) (Board, ledger.Entry, decimal.Decimal, error)

	GetByID(ctx context.Context, boardID string) (Board, bool, error)
	ListByRound(ctx context.Context, roundID string) ([]Board, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Board, error)
	CountByRound(ctx context.Context, roundID string) (int, error)

	// SetRepeatNextRound flips the only mutable board field. It reports false
	// when the board does not exist.
	SetRepeatNextRound(ctx context.Context, boardID string, repeat bool) (bool, error)
}
