package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/numbersclub/numbers-pool/internal/domain/player"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (player.Player, error) {
	const query = `INSERT INTO players (id, name, created_at)
VALUES ($1, $2, $3)
RETURNING id, name, created_at`

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, p.ID, p.Name, p.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return player.Player{}, fmt.Errorf("create player: id %q already exists", p.ID)
		}
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	return playerFromRow(row), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	const query = `SELECT id, name, created_at FROM players WHERE id = $1`

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, playerID); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, created_at FROM players WHERE id = ANY($1) ORDER BY name, id`

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, pq.StringArray(playerIDs)); err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	const query = `SELECT id, name, created_at FROM players ORDER BY name, id`

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}
