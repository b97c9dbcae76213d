package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/game"
	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

type poolFixture struct {
	players  *memory.PlayerRepository
	entries  *memory.LedgerRepository
	rounds   *memory.RoundRepository
	boards   *memory.BoardRepository
	ledger   *LedgerService
	purchase *PurchaseService
	roundSvc *RoundService
}

func newPoolFixture(t *testing.T) *poolFixture {
	t.Helper()

	players := memory.NewPlayerRepository(memory.SeedPlayers())
	entries := memory.NewLedgerRepository()
	rounds := memory.NewRoundRepository()
	boards := memory.NewBoardRepository(entries, rounds)

	for _, rd := range memory.SeedRounds() {
		if _, err := rounds.Create(t.Context(), rd); err != nil {
			t.Fatalf("seed round failed: %v", err)
		}
	}

	idGen := idgen.NewRandomGenerator()
	logger := logging.NewNop()
	rules := game.DefaultRules()

	return &poolFixture{
		players:  players,
		entries:  entries,
		rounds:   rounds,
		boards:   boards,
		ledger:   NewLedgerService(players, entries, idGen, logger),
		purchase: NewPurchaseService(players, rounds, boards, entries, rules, idGen, logger),
		roundSvc: NewRoundService(rounds, boards, players, rules, idGen, logger),
	}
}

func (f *poolFixture) fundPlayer(t *testing.T, playerID string, amount int64) {
	t.Helper()

	entry, err := f.ledger.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    playerID,
		Amount:      decimal.NewFromInt(amount),
		ExternalRef: "mobilepay-test",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}
	if _, err := f.ledger.Approve(t.Context(), entry.ID, "adm-frederik"); err != nil {
		t.Fatalf("approve deposit failed: %v", err)
	}
}

func TestPurchaseService_Purchase_DebitsPriceLadder(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 100)

	pb, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{4, 11, 23, 42, 67},
		ExternalRef: "board-ref-1",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if !pb.Price.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected price 20 for five numbers, got %s", pb.Price)
	}
	if !pb.BalanceAfter.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected balance 80 after purchase, got %s", pb.BalanceAfter)
	}
	if !pb.FundingEntry.Amount.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("expected funding entry amount -20, got %s", pb.FundingEntry.Amount)
	}
	if pb.FundingEntry.Kind != ledger.KindPurchase {
		t.Fatalf("unexpected funding entry kind: %s", pb.FundingEntry.Kind)
	}
	if pb.Board.FundingEntryID != pb.FundingEntry.ID {
		t.Fatalf("board does not reference its funding entry")
	}

	balance, err := f.ledger.Balance(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected persisted balance 80, got %s", balance)
	}
}

func TestPurchaseService_Purchase_LargerSelectionCostsMore(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 200)

	pb, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{1, 2, 3, 4, 5, 6, 7, 8},
		ExternalRef: "board-ref-2",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if !pb.Price.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("expected price 160 for eight numbers, got %s", pb.Price)
	}
	if !pb.BalanceAfter.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected balance 40 after purchase, got %s", pb.BalanceAfter)
	}
}

func TestPurchaseService_Purchase_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-bjarne", 10)

	_, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-bjarne",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{4, 11, 23, 42, 67},
		ExternalRef: "board-ref-3",
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	balance, err := f.ledger.Balance(t.Context(), "plr-bjarne")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance unchanged at 10, got %s", balance)
	}

	boards, err := f.purchase.ListPlayerBoards(t.Context(), "plr-bjarne")
	if err != nil {
		t.Fatalf("list boards failed: %v", err)
	}
	if len(boards) != 0 {
		t.Fatalf("expected no boards after failed purchase, got %d", len(boards))
	}
}

func TestPurchaseService_Purchase_RequiresPaymentReference(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 100)

	_, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID: "plr-astrid",
		RoundID:  memory.RoundIDCurrentWeek,
		Numbers:  []int{4, 11, 23, 42, 67},
	})
	if !errors.Is(err, ErrReferenceRequired) {
		t.Fatalf("expected ErrReferenceRequired, got %v", err)
	}
}

func TestPurchaseService_Purchase_RejectsNonActiveRound(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 100)

	_, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     "rnd-2026-36",
		Numbers:     []int{4, 11, 23, 42, 67},
		ExternalRef: "board-ref-4",
	})
	if !errors.Is(err, round.ErrNotActive) {
		t.Fatalf("expected ErrNotActive for pending round, got %v", err)
	}
}

func TestPurchaseService_Purchase_RejectsInvalidSelection(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 200)

	cases := []struct {
		name    string
		numbers []int
	}{
		{"too few", []int{1, 2, 3, 4}},
		{"too many", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"duplicate", []int{1, 2, 3, 4, 4}},
		{"below range", []int{0, 2, 3, 4, 5}},
		{"above range", []int{1, 2, 3, 4, 91}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.purchase.Purchase(t.Context(), PurchaseInput{
				PlayerID:    "plr-astrid",
				RoundID:     memory.RoundIDCurrentWeek,
				Numbers:     tc.numbers,
				ExternalRef: "board-ref-5",
			})
			if !errors.Is(err, game.ErrInvalidSelection) {
				t.Fatalf("expected ErrInvalidSelection, got %v", err)
			}
		})
	}
}

func TestPurchaseService_ConcurrentPurchasesNeverOverspend(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 100)

	const attempts = 10

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = f.purchase.Purchase(t.Context(), PurchaseInput{
				PlayerID:    "plr-astrid",
				RoundID:     memory.RoundIDCurrentWeek,
				Numbers:     []int{4, 11, 23, 42, 67},
				ExternalRef: "board-ref-burst",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ledger.ErrInsufficientFunds) {
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	if succeeded != 5 {
		t.Fatalf("expected exactly 5 purchases from a balance of 100, got %d", succeeded)
	}

	balance, err := f.ledger.Balance(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance after the burst, got %s", balance)
	}
	if balance.IsNegative() {
		t.Fatalf("balance went negative: %s", balance)
	}
}

func TestPurchaseService_SetRepeatNextRound(t *testing.T) {
	f := newPoolFixture(t)
	f.fundPlayer(t, "plr-astrid", 100)

	pb, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{4, 11, 23, 42, 67},
		ExternalRef: "board-ref-6",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if pb.Board.RepeatNextRound {
		t.Fatalf("expected repeat flag to default to false")
	}

	if err := f.purchase.SetRepeatNextRound(t.Context(), pb.Board.ID, true); err != nil {
		t.Fatalf("set repeat failed: %v", err)
	}

	boards, err := f.purchase.ListPlayerBoards(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("list boards failed: %v", err)
	}
	if len(boards) != 1 || !boards[0].Board.RepeatNextRound {
		t.Fatalf("expected the repeat flag to be persisted")
	}

	if err := f.purchase.SetRepeatNextRound(t.Context(), "brd-missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown board, got %v", err)
	}
}
