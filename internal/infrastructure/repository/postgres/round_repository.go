package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

const roundColumns = `id, year, week_number, status, winning_numbers, started_at, completed_at, created_at`

// Constraint names from the initial migration. rounds_one_active_idx is the
// partial unique index that enforces at most one Active round system-wide.
const (
	constraintRoundWeek      = "rounds_year_week_number_key"
	constraintRoundOneActive = "rounds_one_active_idx"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, rd round.Round) (round.Round, error) {
	query := `INSERT INTO rounds (id, year, week_number, status, started_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + roundColumns

	var row roundTableModel
	err := r.db.GetContext(ctx, &row, query,
		rd.ID, rd.Year, rd.WeekNumber, string(rd.Status), rd.StartedAt, rd.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, constraintRoundOneActive):
			return round.Round{}, round.ErrActiveRoundExists
		case isUniqueViolation(err, constraintRoundWeek):
			return round.Round{}, round.ErrDuplicateRound
		}
		return round.Round{}, fmt.Errorf("create round: %w", err)
	}
	return roundFromRow(row), nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, roundID); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) GetByWeek(ctx context.Context, year, week int) (round.Round, bool, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE year = $1 AND week_number = $2`

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, year, week); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round by week: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) GetActive(ctx context.Context) (round.Round, bool, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'active'`

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get active round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) PromoteNextPending(ctx context.Context, at time.Time) (round.Round, bool, error) {
	// The one-active partial index is the arbiter: two racing promoters both
	// pass the NOT EXISTS check, the second insert of 'active' hits the index
	// and is reported as not-promoted.
	query := `UPDATE rounds SET status = 'active', started_at = $1
WHERE id = (
	SELECT id FROM rounds
	WHERE status = 'pending'
	  AND NOT EXISTS (SELECT 1 FROM rounds WHERE status = 'active')
	ORDER BY year, week_number
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING ` + roundColumns

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, at); err != nil {
		if isNotFound(err) || isUniqueViolation(err, constraintRoundOneActive) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("promote next pending round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) Complete(ctx context.Context, roundID string, winningNumbers []int, at time.Time) (round.Round, bool, error) {
	query := `UPDATE rounds SET status = 'completed', winning_numbers = $2, completed_at = $3
WHERE id = $1 AND status = 'active'
RETURNING ` + roundColumns

	var row roundTableModel
	err := r.db.GetContext(ctx, &row, query, roundID, int64ArrayFromInts(winningNumbers), at)
	if err == nil {
		return roundFromRow(row), true, nil
	}
	if !isNotFound(err) {
		return round.Round{}, false, fmt.Errorf("complete round: %w", err)
	}

	// No active row matched: distinguish missing from already settled.
	_, found, getErr := r.GetByID(ctx, roundID)
	if getErr != nil {
		return round.Round{}, false, getErr
	}
	if !found {
		return round.Round{}, false, nil
	}
	return round.Round{}, true, round.ErrNotActive
}

func (r *RoundRepository) Cancel(ctx context.Context, roundID string) (round.Round, bool, error) {
	query := `UPDATE rounds SET status = 'cancelled'
WHERE id = $1 AND status = 'pending'
RETURNING ` + roundColumns

	var row roundTableModel
	err := r.db.GetContext(ctx, &row, query, roundID)
	if err == nil {
		return roundFromRow(row), true, nil
	}
	if !isNotFound(err) {
		return round.Round{}, false, fmt.Errorf("cancel round: %w", err)
	}

	_, found, getErr := r.GetByID(ctx, roundID)
	if getErr != nil {
		return round.Round{}, false, getErr
	}
	if !found {
		return round.Round{}, false, nil
	}
	return round.Round{}, true, round.ErrNotPending
}

func (r *RoundRepository) List(ctx context.Context) ([]round.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds ORDER BY year, week_number`

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return roundsFromRows(rows), nil
}

func (r *RoundRepository) ListCompleted(ctx context.Context) ([]round.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'completed' ORDER BY year, week_number`

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list completed rounds: %w", err)
	}
	return roundsFromRows(rows), nil
}

func roundsFromRows(rows []roundTableModel) []round.Round {
	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out
}
