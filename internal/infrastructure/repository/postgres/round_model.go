package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

type roundTableModel struct {
	ID             string        `db:"id"`
	Year           int           `db:"year"`
	WeekNumber     int           `db:"week_number"`
	Status         string        `db:"status"`
	WinningNumbers pq.Int64Array `db:"winning_numbers"`
	StartedAt      *time.Time    `db:"started_at"`
	CompletedAt    *time.Time    `db:"completed_at"`
	CreatedAt      time.Time     `db:"created_at"`
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:             row.ID,
		Year:           row.Year,
		WeekNumber:     row.WeekNumber,
		Status:         round.Status(row.Status),
		WinningNumbers: intsFromInt64Array(row.WinningNumbers),
		StartedAt:      row.StartedAt,
		CompletedAt:    row.CompletedAt,
		CreatedAt:      row.CreatedAt,
	}
}

func intsFromInt64Array(values pq.Int64Array) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, int(v))
	}
	return out
}

func int64ArrayFromInts(values []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(values))
	for _, v := range values {
		out = append(out, int64(v))
	}
	return out
}
