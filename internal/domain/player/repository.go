package player

import "context"

type Repository interface {
	Create(ctx context.Context, p Player) (Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	List(ctx context.Context) ([]Player, error)
}
