package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
)

type ledgerEntryTableModel struct {
	ID          string          `db:"id"`
	PlayerID    string          `db:"player_id"`
	Amount      decimal.Decimal `db:"amount"`
	Kind        string          `db:"kind"`
	ExternalRef string          `db:"external_ref"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	ApprovedAt  *time.Time      `db:"approved_at"`
	ApprovedBy  sql.NullString  `db:"approved_by"`
	RejectedAt  *time.Time      `db:"rejected_at"`
	RejectedBy  sql.NullString  `db:"rejected_by"`
	DeletedAt   *time.Time      `db:"deleted_at"`
	DeletedBy   sql.NullString  `db:"deleted_by"`
}

func ledgerEntryFromRow(row ledgerEntryTableModel) ledger.Entry {
	return ledger.Entry{
		ID:          row.ID,
		PlayerID:    row.PlayerID,
		Amount:      row.Amount,
		Kind:        ledger.Kind(row.Kind),
		ExternalRef: row.ExternalRef,
		Status:      ledger.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		ApprovedAt:  row.ApprovedAt,
		ApprovedBy:  row.ApprovedBy.String,
		RejectedAt:  row.RejectedAt,
		RejectedBy:  row.RejectedBy.String,
		DeletedAt:   row.DeletedAt,
		DeletedBy:   row.DeletedBy.String,
	}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
