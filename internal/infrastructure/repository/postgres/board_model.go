package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
)

type boardTableModel struct {
	ID              string        `db:"id"`
	PlayerID        string        `db:"player_id"`
	RoundID         string        `db:"round_id"`
	Numbers         pq.Int64Array `db:"numbers"`
	RepeatNextRound bool          `db:"repeat_next_round"`
	FundingEntryID  string        `db:"funding_entry_id"`
	CreatedAt       time.Time     `db:"created_at"`
}

func boardFromRow(row boardTableModel) board.Board {
	return board.Board{
		ID:              row.ID,
		PlayerID:        row.PlayerID,
		RoundID:         row.RoundID,
		Numbers:         intsFromInt64Array(row.Numbers),
		RepeatNextRound: row.RepeatNextRound,
		FundingEntryID:  row.FundingEntryID,
		CreatedAt:       row.CreatedAt,
	}
}
