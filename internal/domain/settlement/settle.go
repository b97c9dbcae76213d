package settlement

import (
	"sort"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
)

// WinningBoard is one winner with player identity attached for display.
// PlayerName is filled by the caller; matching itself only needs IDs.
type WinningBoard struct {
	BoardID    string
	PlayerID   string
	PlayerName string
	Numbers    []int
}

// Result is the outcome of matching every board in a round against the drawn
// numbers. It is derived, never persisted separately: replaying the stored
// boards against the stored winning numbers must reproduce it exactly.
type Result struct {
	RoundID        string
	WinningNumbers []int
	TotalBoards    int
	Winners        []WinningBoard
}

func (r Result) WinnerCount() int {
	return len(r.Winners)
}

// Matches reports whether every drawn number appears in the selection. Order
// is irrelevant and there is no partial credit.
func Matches(selection, drawn []int) bool {
	if len(drawn) == 0 {
		return false
	}
	picked := make(map[int]struct{}, len(selection))
	for _, n := range selection {
		picked[n] = struct{}{}
	}
	for _, n := range drawn {
		if _, ok := picked[n]; !ok {
			return false
		}
	}
	return true
}

// Settle matches all boards of a round against the drawn numbers. Winners are
// ordered by purchase time, then board ID, so the result is deterministic for
// any input ordering.
func Settle(roundID string, drawn []int, boards []board.Board) Result {
	winners := make([]WinningBoard, 0)
	for _, b := range boards {
		if !Matches(b.Numbers, drawn) {
			continue
		}
		winners = append(winners, WinningBoard{
			BoardID:  b.ID,
			PlayerID: b.PlayerID,
			Numbers:  b.SortedNumbers(),
		})
	}

	byID := make(map[string]board.Board, len(boards))
	for _, b := range boards {
		byID[b.ID] = b
	}
	sort.SliceStable(winners, func(i, j int) bool {
		bi, bj := byID[winners[i].BoardID], byID[winners[j].BoardID]
		if !bi.CreatedAt.Equal(bj.CreatedAt) {
			return bi.CreatedAt.Before(bj.CreatedAt)
		}
		return winners[i].BoardID < winners[j].BoardID
	})

	return Result{
		RoundID:        roundID,
		WinningNumbers: append([]int(nil), drawn...),
		TotalBoards:    len(boards),
		Winners:        winners,
	}
}
