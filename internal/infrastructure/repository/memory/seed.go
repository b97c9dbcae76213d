package memory

import (
	"time"

	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

const RoundIDCurrentWeek = "rnd-2026-35"

func SeedPlayers() []player.Player {
	createdAt := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return []player.Player{
		{ID: "plr-astrid", Name: "Astrid Holm", CreatedAt: createdAt},
		{ID: "plr-bjarne", Name: "Bjarne Kristensen", CreatedAt: createdAt},
		{ID: "plr-clara", Name: "Clara Vestergaard", CreatedAt: createdAt},
		{ID: "plr-dennis", Name: "Dennis Moeller", CreatedAt: createdAt},
		{ID: "plr-ellen", Name: "Ellen Skov", CreatedAt: createdAt},
	}
}

func SeedRounds() []round.Round {
	startedAt := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	return []round.Round{
		{
			ID:         RoundIDCurrentWeek,
			Year:       2026,
			WeekNumber: 35,
			Status:     round.StatusActive,
			StartedAt:  &startedAt,
			CreatedAt:  startedAt,
		},
		{
			ID:         "rnd-2026-36",
			Year:       2026,
			WeekNumber: 36,
			Status:     round.StatusPending,
			CreatedAt:  startedAt,
		},
	}
}
