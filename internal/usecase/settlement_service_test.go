package usecase

import (
	"errors"
	"testing"

	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
)

func TestSettlementService_RecomputeMatchesOriginalSettlement(t *testing.T) {
	f := newPoolFixture(t)
	settlementSvc := NewSettlementService(f.rounds, f.boards, f.players, nil)

	f.fundPlayer(t, "plr-astrid", 100)
	f.fundPlayer(t, "plr-bjarne", 100)

	winning, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{7, 21, 35, 54, 68},
		ExternalRef: "board-win",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-bjarne",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{1, 2, 3, 4, 5},
		ExternalRef: "board-miss",
	}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	original, err := f.roundSvc.Complete(t.Context(), CompleteRoundInput{
		RoundID:        memory.RoundIDCurrentWeek,
		WinningNumbers: []int{7, 21, 68},
	})
	if err != nil {
		t.Fatalf("complete round failed: %v", err)
	}
	if original.WinnerCount() != 1 {
		t.Fatalf("expected one winner, got %d", original.WinnerCount())
	}
	if original.Winners[0].BoardID != winning.Board.ID {
		t.Fatalf("unexpected winning board: %s", original.Winners[0].BoardID)
	}
	if original.Winners[0].PlayerName != "Astrid Holm" {
		t.Fatalf("expected winner name to be resolved, got %q", original.Winners[0].PlayerName)
	}

	replayed, err := settlementSvc.Recompute(t.Context(), memory.RoundIDCurrentWeek)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if replayed.TotalBoards != original.TotalBoards {
		t.Fatalf("board counts differ: %d vs %d", replayed.TotalBoards, original.TotalBoards)
	}
	if replayed.WinnerCount() != original.WinnerCount() {
		t.Fatalf("winner counts differ: %d vs %d", replayed.WinnerCount(), original.WinnerCount())
	}
	if replayed.Winners[0].BoardID != original.Winners[0].BoardID {
		t.Fatalf("winner boards differ: %s vs %s", replayed.Winners[0].BoardID, original.Winners[0].BoardID)
	}
}

func TestSettlementService_Recompute_RequiresCompletedRound(t *testing.T) {
	f := newPoolFixture(t)
	settlementSvc := NewSettlementService(f.rounds, f.boards, f.players, nil)

	_, err := settlementSvc.Recompute(t.Context(), memory.RoundIDCurrentWeek)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for an active round, got %v", err)
	}

	_, err = settlementSvc.Recompute(t.Context(), "rnd-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown round, got %v", err)
	}
}

func TestSettlementService_AuditCompleted(t *testing.T) {
	f := newPoolFixture(t)
	settlementSvc := NewSettlementService(f.rounds, f.boards, f.players, nil)

	f.fundPlayer(t, "plr-astrid", 200)

	if _, err := f.purchase.Purchase(t.Context(), PurchaseInput{
		PlayerID:    "plr-astrid",
		RoundID:     memory.RoundIDCurrentWeek,
		Numbers:     []int{7, 21, 35, 54, 68},
		ExternalRef: "board-audit",
	}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := f.roundSvc.Complete(t.Context(), CompleteRoundInput{
		RoundID:        memory.RoundIDCurrentWeek,
		WinningNumbers: []int{7, 21, 68},
	}); err != nil {
		t.Fatalf("complete round failed: %v", err)
	}

	// Close out two more weeks so the audit has several rounds to replay.
	for _, week := range []int{37, 38} {
		created, err := f.roundSvc.Create(t.Context(), CreateRoundInput{Year: 2026, WeekNumber: week})
		if err != nil {
			t.Fatalf("create round failed: %v", err)
		}
		if _, err := f.roundSvc.Complete(t.Context(), CompleteRoundInput{
			RoundID:        created.ID,
			WinningNumbers: []int{3, 44, 77},
		}); err != nil {
			t.Fatalf("complete round failed: %v", err)
		}
	}

	report, err := settlementSvc.AuditCompleted(t.Context(), 2)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if report.RoundCount != 3 {
		t.Fatalf("expected 3 audited rounds, got %d", report.RoundCount)
	}
	if report.SuccessCount != 3 || report.FailedCount != 0 {
		t.Fatalf("expected all rounds stable, got success=%d failed=%d", report.SuccessCount, report.FailedCount)
	}
	if report.WorkerCount != 2 {
		t.Fatalf("expected worker count 2, got %d", report.WorkerCount)
	}
	for i, row := range report.Rounds {
		if !row.Stable || row.Error != "" {
			t.Fatalf("round %s unstable or errored: %+v", row.RoundID, row)
		}
		if i > 0 && report.Rounds[i-1].WeekNumber > row.WeekNumber {
			t.Fatalf("audit rows out of week order: %d before %d", report.Rounds[i-1].WeekNumber, row.WeekNumber)
		}
	}
}

func TestSettlementService_AuditCompleted_NoCompletedRounds(t *testing.T) {
	f := newPoolFixture(t)
	settlementSvc := NewSettlementService(f.rounds, f.boards, f.players, nil)

	report, err := settlementSvc.AuditCompleted(t.Context(), 4)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if report.RoundCount != 0 || len(report.Rounds) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
