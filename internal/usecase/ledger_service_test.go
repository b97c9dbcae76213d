package usecase

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

func TestLedgerService_PendingDepositDoesNotAffectBalance(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	entry, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-astrid",
		Amount:      decimal.NewFromInt(100),
		ExternalRef: "mobilepay-1101",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}
	if entry.Status != ledger.StatusPending {
		t.Fatalf("expected pending status, got %s", entry.Status)
	}

	balance, err := svc.Balance(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance before approval, got %s", balance)
	}
}

func TestLedgerService_ApproveCreditsBalanceExactlyOnce(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	entry, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-astrid",
		Amount:      decimal.NewFromInt(100),
		ExternalRef: "mobilepay-1102",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}

	approved, err := svc.Approve(t.Context(), entry.ID, "adm-frederik")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != ledger.StatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.ApprovedBy != "adm-frederik" {
		t.Fatalf("unexpected approver: %q", approved.ApprovedBy)
	}

	balance, err := svc.Balance(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", balance)
	}

	if _, err := svc.Approve(t.Context(), entry.ID, "adm-frederik"); !errors.Is(err, ledger.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved on second approval, got %v", err)
	}

	balance, err = svc.Balance(t.Context(), "plr-astrid")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance unchanged after failed re-approval, got %s", balance)
	}
}

func TestLedgerService_RejectIsTerminal(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	entry, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-bjarne",
		Amount:      decimal.NewFromInt(40),
		ExternalRef: "cash-handed-over",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}

	rejected, err := svc.Reject(t.Context(), entry.ID, "adm-frederik")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != ledger.StatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}

	if _, err := svc.Approve(t.Context(), entry.ID, "adm-frederik"); !errors.Is(err, ledger.ErrAlreadyRejected) {
		t.Fatalf("expected ErrAlreadyRejected on approve after reject, got %v", err)
	}
	if _, err := svc.Reject(t.Context(), entry.ID, "adm-frederik"); !errors.Is(err, ledger.ErrAlreadyRejected) {
		t.Fatalf("expected ErrAlreadyRejected on second reject, got %v", err)
	}

	balance, err := svc.Balance(t.Context(), "plr-bjarne")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance after rejection, got %s", balance)
	}
}

func TestLedgerService_RemoveEntryRestoresBalance(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	entry, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-clara",
		Amount:      decimal.NewFromInt(60),
		ExternalRef: "mobilepay-1103",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}
	if _, err := svc.Approve(t.Context(), entry.ID, "adm-frederik"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := svc.RemoveEntry(t.Context(), entry.ID, "adm-frederik"); err != nil {
		t.Fatalf("remove entry failed: %v", err)
	}

	balance, err := svc.Balance(t.Context(), "plr-clara")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance after removal, got %s", balance)
	}

	// Tombstoned entries stay visible in the statement.
	statement, err := svc.Statement(t.Context(), "plr-clara")
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if len(statement) != 1 {
		t.Fatalf("expected one statement entry, got %d", len(statement))
	}
	if statement[0].DeletedAt == nil {
		t.Fatalf("expected statement entry to carry its tombstone")
	}

	if err := svc.RemoveEntry(t.Context(), entry.ID, "adm-frederik"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double removal, got %v", err)
	}
}

func TestLedgerService_RecordDeposit_Validation(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	_, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID: "plr-astrid",
		Amount:   decimal.NewFromInt(-5),
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative deposit, got %v", err)
	}

	_, err = svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID: "plr-astrid",
		Amount:   decimal.Zero,
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero deposit, got %v", err)
	}

	_, err = svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID: "plr-nobody",
		Amount:   decimal.NewFromInt(20),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}
}

func TestLedgerService_ListPendingExcludesSettledEntries(t *testing.T) {
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	entryRepo := memory.NewLedgerRepository()
	svc := NewLedgerService(playerRepo, entryRepo, idgen.NewRandomGenerator(), logging.NewNop())

	first, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-astrid",
		Amount:      decimal.NewFromInt(100),
		ExternalRef: "mobilepay-1104",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}
	second, err := svc.RecordDeposit(t.Context(), RecordDepositInput{
		PlayerID:    "plr-bjarne",
		Amount:      decimal.NewFromInt(50),
		ExternalRef: "mobilepay-1105",
	})
	if err != nil {
		t.Fatalf("record deposit failed: %v", err)
	}

	if _, err := svc.Approve(t.Context(), first.ID, "adm-frederik"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	pending, err := svc.ListPending(t.Context())
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending entry, got %d", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Fatalf("unexpected pending entry: %s", pending[0].ID)
	}
}
