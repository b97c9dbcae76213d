package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

const boardColumns = `id, player_id, round_id, numbers, repeat_next_round, funding_entry_id, created_at`

type BoardRepository struct {
	db *sqlx.DB
}

func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateFunded writes the board and its funding debit in one transaction.
// The player row is locked first, so concurrent purchases by the same player
// serialize and each sees the previous purchase's debit in the balance fold.
// The approved entries backing the funds check are read FOR UPDATE, so a
// concurrent soft delete of a contributing deposit waits until the debit
// commits.
func (r *BoardRepository) CreateFunded(ctx context.Context, b board.Board, debit ledger.Entry) (board.Board, ledger.Entry, decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lockedPlayerID string
	if err := tx.GetContext(ctx, &lockedPlayerID,
		`SELECT id FROM players WHERE id = $1 FOR UPDATE`, b.PlayerID); err != nil {
		if isNotFound(err) {
			return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("lock player row: player %q not found", b.PlayerID)
		}
		return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("lock player row: %w", err)
	}

	// Re-check under the lock: the round may have been completed between the
	// caller's advisory read and here.
	var status string
	if err := tx.GetContext(ctx, &status,
		`SELECT status FROM rounds WHERE id = $1 FOR SHARE`, b.RoundID); err != nil {
		if isNotFound(err) {
			return board.Board{}, ledger.Entry{}, decimal.Zero, round.ErrNotActive
		}
		return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("check round status: %w", err)
	}
	if round.Status(status) != round.StatusActive {
		return board.Board{}, ledger.Entry{}, decimal.Zero, round.ErrNotActive
	}

	balance, err := sumApprovedByPlayer(ctx, tx, b.PlayerID, true)
	if err != nil {
		return board.Board{}, ledger.Entry{}, decimal.Zero, err
	}
	after := balance.Add(debit.Amount)
	if after.IsNegative() {
		return board.Board{}, ledger.Entry{}, decimal.Zero, ledger.ErrInsufficientFunds
	}

	entryRow, err := insertLedgerEntry(ctx, tx, debit)
	if err != nil {
		return board.Board{}, ledger.Entry{}, decimal.Zero, err
	}

	boardQuery := `INSERT INTO boards (id, player_id, round_id, numbers, repeat_next_round, funding_entry_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + boardColumns

	var boardRow boardTableModel
	err = tx.GetContext(ctx, &boardRow, boardQuery,
		b.ID, b.PlayerID, b.RoundID, int64ArrayFromInts(b.Numbers),
		b.RepeatNextRound, b.FundingEntryID, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("insert board: id %q already exists", b.ID)
		}
		return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("insert board: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isRetryableConflict(err) {
			return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("%w: commit purchase", errTxConflict)
		}
		return board.Board{}, ledger.Entry{}, decimal.Zero, fmt.Errorf("commit purchase tx: %w", err)
	}
	return boardFromRow(boardRow), ledgerEntryFromRow(entryRow), after, nil
}

func (r *BoardRepository) GetByID(ctx context.Context, boardID string) (board.Board, bool, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

	var row boardTableModel
	if err := r.db.GetContext(ctx, &row, query, boardID); err != nil {
		if isNotFound(err) {
			return board.Board{}, false, nil
		}
		return board.Board{}, false, fmt.Errorf("get board: %w", err)
	}
	return boardFromRow(row), true, nil
}

func (r *BoardRepository) ListByRound(ctx context.Context, roundID string) ([]board.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE round_id = $1 ORDER BY created_at, id`

	var rows []boardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("list boards by round: %w", err)
	}
	return boardsFromRows(rows), nil
}

func (r *BoardRepository) ListByPlayer(ctx context.Context, playerID string) ([]board.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE player_id = $1 ORDER BY created_at, id`

	var rows []boardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, playerID); err != nil {
		return nil, fmt.Errorf("list boards by player: %w", err)
	}
	return boardsFromRows(rows), nil
}

func (r *BoardRepository) CountByRound(ctx context.Context, roundID string) (int, error) {
	const query = `SELECT COUNT(*) FROM boards WHERE round_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, roundID); err != nil {
		return 0, fmt.Errorf("count boards by round: %w", err)
	}
	return count, nil
}

func (r *BoardRepository) SetRepeatNextRound(ctx context.Context, boardID string, repeat bool) (bool, error) {
	const query = `UPDATE boards SET repeat_next_round = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, boardID, repeat)
	if err != nil {
		return false, fmt.Errorf("set board repeat flag: %w", err)
	}
	return oneRowAffected(res, "set board repeat flag")
}

func boardsFromRows(rows []boardTableModel) []board.Board {
	out := make([]board.Board, 0, len(rows))
	for _, row := range rows {
		out = append(out, boardFromRow(row))
	}
	return out
}
