package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
)

const ledgerEntryColumns = `id, player_id, amount, kind, external_ref, status,
created_at, approved_at, approved_by, rejected_at, rejected_by, deleted_at, deleted_by`

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	row, err := insertLedgerEntry(ctx, r.db, e)
	if err != nil {
		return ledger.Entry{}, err
	}
	return ledgerEntryFromRow(row), nil
}

// insertLedgerEntry runs against either the pool or an open transaction, so
// the purchase path can reuse it inside CreateFunded.
func insertLedgerEntry(ctx context.Context, q sqlx.QueryerContext, e ledger.Entry) (ledgerEntryTableModel, error) {
	query := `INSERT INTO ledger_entries
(id, player_id, amount, kind, external_ref, status, created_at, approved_at, approved_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + ledgerEntryColumns

	var row ledgerEntryTableModel
	err := sqlx.GetContext(ctx, q, &row, query,
		e.ID, e.PlayerID, e.Amount, string(e.Kind), e.ExternalRef, string(e.Status),
		e.CreatedAt, e.ApprovedAt, nullableString(e.ApprovedBy),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ledgerEntryTableModel{}, fmt.Errorf("insert ledger entry: id %q already exists", e.ID)
		}
		return ledgerEntryTableModel{}, fmt.Errorf("insert ledger entry: %w", err)
	}
	return row, nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, entryID string) (ledger.Entry, bool, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE id = $1`

	var row ledgerEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, entryID); err != nil {
		if isNotFound(err) {
			return ledger.Entry{}, false, nil
		}
		return ledger.Entry{}, false, fmt.Errorf("get ledger entry: %w", err)
	}
	return ledgerEntryFromRow(row), true, nil
}

func (r *LedgerRepository) ListByPlayer(ctx context.Context, playerID string) ([]ledger.Entry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries
WHERE player_id = $1
ORDER BY created_at DESC, id`

	var rows []ledgerEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, playerID); err != nil {
		return nil, fmt.Errorf("list ledger entries by player: %w", err)
	}

	out := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledgerEntryFromRow(row))
	}
	return out, nil
}

func (r *LedgerRepository) ListPending(ctx context.Context) ([]ledger.Entry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries
WHERE status = 'pending' AND deleted_at IS NULL
ORDER BY created_at DESC, id`

	var rows []ledgerEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list pending ledger entries: %w", err)
	}

	out := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledgerEntryFromRow(row))
	}
	return out, nil
}

func (r *LedgerRepository) MarkApproved(ctx context.Context, entryID, approverID string, at time.Time) (bool, error) {
	const query = `UPDATE ledger_entries
SET status = 'approved', approved_at = $2, approved_by = $3
WHERE id = $1 AND status = 'pending' AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, entryID, at, approverID)
	if err != nil {
		return false, fmt.Errorf("mark ledger entry approved: %w", err)
	}
	return oneRowAffected(res, "mark ledger entry approved")
}

func (r *LedgerRepository) MarkRejected(ctx context.Context, entryID, rejecterID string, at time.Time) (bool, error) {
	const query = `UPDATE ledger_entries
SET status = 'rejected', rejected_at = $2, rejected_by = $3
WHERE id = $1 AND status = 'pending' AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, entryID, at, rejecterID)
	if err != nil {
		return false, fmt.Errorf("mark ledger entry rejected: %w", err)
	}
	return oneRowAffected(res, "mark ledger entry rejected")
}

func (r *LedgerRepository) SoftDelete(ctx context.Context, entryID, actorID string, at time.Time) (bool, error) {
	const query = `UPDATE ledger_entries
SET deleted_at = $2, deleted_by = $3
WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, entryID, at, actorID)
	if err != nil {
		return false, fmt.Errorf("soft delete ledger entry: %w", err)
	}
	return oneRowAffected(res, "soft delete ledger entry")
}

func (r *LedgerRepository) SumApprovedByPlayer(ctx context.Context, playerID string) (decimal.Decimal, error) {
	return sumApprovedByPlayer(ctx, r.db, playerID, false)
}

// sumApprovedByPlayer is shared with the purchase transaction, which passes
// forUpdate to hold the contributing rows until commit.
func sumApprovedByPlayer(ctx context.Context, q sqlx.QueryerContext, playerID string, forUpdate bool) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := sqlx.GetContext(ctx, q, &sum, approvedBalanceQuery(forUpdate), playerID); err != nil {
		return decimal.Zero, fmt.Errorf("sum approved ledger entries: %w", err)
	}
	return sum, nil
}

// approvedBalanceQuery folds approved, non-deleted entries for one player.
// SUM cannot take row locks directly, so the locked variant wraps the rows in
// a FOR UPDATE subselect; they stay locked until the surrounding transaction
// commits, blocking concurrent approve and soft-delete of the same rows.
func approvedBalanceQuery(forUpdate bool) string {
	if forUpdate {
		return `SELECT COALESCE(SUM(amount), 0) FROM (
SELECT amount FROM ledger_entries
WHERE player_id = $1 AND status = 'approved' AND deleted_at IS NULL
FOR UPDATE
) locked`
	}
	return `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
WHERE player_id = $1 AND status = 'approved' AND deleted_at IS NULL`
}

func oneRowAffected(res interface{ RowsAffected() (int64, error) }, op string) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return affected == 1, nil
}
