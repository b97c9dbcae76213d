package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

type playerRepositoryMock struct {
	mock.Mock
}

func (m *playerRepositoryMock) Create(ctx context.Context, p player.Player) (player.Player, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(player.Player), args.Error(1)
}

func (m *playerRepositoryMock) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(player.Player), args.Bool(1), args.Error(2)
}

func (m *playerRepositoryMock) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	args := m.Called(ctx, playerIDs)
	players, _ := args.Get(0).([]player.Player)
	return players, args.Error(1)
}

func (m *playerRepositoryMock) List(ctx context.Context) ([]player.Player, error) {
	args := m.Called(ctx)
	players, _ := args.Get(0).([]player.Player)
	return players, args.Error(1)
}

func TestLedgerService_Balance_PropagatesPlayerLookupError(t *testing.T) {
	t.Parallel()

	playerRepo := new(playerRepositoryMock)
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	storeErr := errors.New("connection reset")
	playerRepo.
		On("GetByID", mock.Anything, "plr-astrid").
		Return(player.Player{}, false, storeErr).
		Once()

	_, err := svc.Balance(t.Context(), "plr-astrid")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected the store error to surface, got %v", err)
	}
	playerRepo.AssertExpectations(t)
}

func TestLedgerService_Statement_UnknownPlayerViaMock(t *testing.T) {
	t.Parallel()

	playerRepo := new(playerRepositoryMock)
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	playerRepo.
		On("GetByID", mock.Anything, "plr-ghost").
		Return(player.Player{}, false, nil).
		Once()

	_, err := svc.Statement(t.Context(), "plr-ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	playerRepo.AssertExpectations(t)
}
