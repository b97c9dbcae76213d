package usecase

import (
	"errors"
	"testing"

	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

func TestPlayerService_Register(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(nil)
	svc := NewPlayerService(playerRepo, idgen.NewRandomGenerator(), logging.NewNop())

	created, err := svc.Register(t.Context(), "  Gustav Lind  ")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Name != "Gustav Lind" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated player id")
	}

	loaded, err := svc.GetByID(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get player failed: %v", err)
	}
	if loaded.Name != created.Name {
		t.Fatalf("unexpected loaded player: %+v", loaded)
	}
}

func TestPlayerService_Register_RequiresName(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(nil)
	svc := NewPlayerService(playerRepo, idgen.NewRandomGenerator(), logging.NewNop())

	if _, err := svc.Register(t.Context(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestPlayerService_GetByID_Unknown(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	svc := NewPlayerService(playerRepo, idgen.NewRandomGenerator(), logging.NewNop())

	if _, err := svc.GetByID(t.Context(), "plr-nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_ListIsSortedByName(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	svc := NewPlayerService(playerRepo, idgen.NewRandomGenerator(), logging.NewNop())

	players, err := svc.List(t.Context())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(players) != 5 {
		t.Fatalf("expected 5 seeded players, got %d", len(players))
	}
	for i := 1; i < len(players); i++ {
		if players[i-1].Name > players[i].Name {
			t.Fatalf("players out of name order: %q before %q", players[i-1].Name, players[i].Name)
		}
	}
}
