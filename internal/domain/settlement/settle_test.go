package settlement

import (
	"testing"
	"time"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
)

func TestMatches(t *testing.T) {
	selection := []int{3, 7, 12, 15, 18}

	if !Matches(selection, []int{3, 7, 12}) {
		t.Fatalf("expected winner when all drawn numbers are picked")
	}
	if Matches(selection, []int{3, 7, 19}) {
		t.Fatalf("expected non-winner when one drawn number is missing")
	}
	if !Matches(selection, []int{12, 3, 7}) {
		t.Fatalf("draw order must not matter")
	}
	if Matches(selection, nil) {
		t.Fatalf("empty draw must never match")
	}
}

func TestSettle(t *testing.T) {
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	boards := []board.Board{
		{ID: "b-3", PlayerID: "p-1", RoundID: "r-1", Numbers: []int{18, 12, 7, 3, 25}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b-1", PlayerID: "p-2", RoundID: "r-1", Numbers: []int{1, 2, 3, 4, 5}, CreatedAt: base},
		{ID: "b-2", PlayerID: "p-3", RoundID: "r-1", Numbers: []int{3, 7, 12, 40, 41, 42}, CreatedAt: base.Add(time.Hour)},
	}

	result := Settle("r-1", []int{3, 7, 12}, boards)

	if result.TotalBoards != 3 {
		t.Fatalf("unexpected total boards: %d", result.TotalBoards)
	}
	if result.WinnerCount() != 2 {
		t.Fatalf("unexpected winner count: %d", result.WinnerCount())
	}
	if result.Winners[0].BoardID != "b-2" || result.Winners[1].BoardID != "b-3" {
		t.Fatalf("winners not ordered by purchase time: %s, %s", result.Winners[0].BoardID, result.Winners[1].BoardID)
	}
	if got := result.Winners[1].Numbers; got[0] != 3 || got[len(got)-1] != 25 {
		t.Fatalf("winner numbers not sorted: %v", got)
	}
}

func TestSettle_Deterministic(t *testing.T) {
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	boards := []board.Board{
		{ID: "b-1", PlayerID: "p-1", Numbers: []int{1, 2, 3, 4, 5}, CreatedAt: base},
		{ID: "b-2", PlayerID: "p-2", Numbers: []int{1, 2, 3, 9, 10}, CreatedAt: base},
	}
	reversed := []board.Board{boards[1], boards[0]}

	first := Settle("r-1", []int{1, 2, 3}, boards)
	second := Settle("r-1", []int{1, 2, 3}, reversed)

	if first.WinnerCount() != second.WinnerCount() {
		t.Fatalf("winner counts differ between orderings: %d vs %d", first.WinnerCount(), second.WinnerCount())
	}
	for i := range first.Winners {
		if first.Winners[i].BoardID != second.Winners[i].BoardID {
			t.Fatalf("winner order differs between orderings at %d", i)
		}
	}
}
