package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the starter players and rounds into an empty database.
// It is a no-op once any player exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players`); err != nil {
		return fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range memory.SeedPlayers() {
		_, err := tx.ExecContext(ctx, `
INSERT INTO players (id, name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, p.ID, p.Name, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}

	for _, rd := range memory.SeedRounds() {
		_, err := tx.ExecContext(ctx, `
INSERT INTO rounds (id, year, week_number, status, started_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`, rd.ID, rd.Year, rd.WeekNumber, string(rd.Status), rd.StartedAt, rd.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed round %s: %w", rd.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
