package board

import (
	"fmt"
	"sort"
	"time"
)

// Board is one number-pick purchase inside one round. It is immutable after
// creation except for RepeatNextRound, which the next-round scheduler reads.
// FundingEntryID points at the single ledger debit that paid for it.
type Board struct {
	ID              string
	PlayerID        string
	RoundID         string
	Numbers         []int
	RepeatNextRound bool
	FundingEntryID  string
	CreatedAt       time.Time
}

func (b Board) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("board id is required")
	}
	if b.PlayerID == "" {
		return fmt.Errorf("board player id is required")
	}
	if b.RoundID == "" {
		return fmt.Errorf("board round id is required")
	}
	if b.FundingEntryID == "" {
		return fmt.Errorf("board funding entry id is required")
	}
	if len(b.Numbers) == 0 {
		return fmt.Errorf("board numbers are required")
	}

	return nil
}

// SortedNumbers returns the selection in ascending order without mutating the
// board's own slice.
func (b Board) SortedNumbers() []int {
	out := append([]int(nil), b.Numbers...)
	sort.Ints(out)
	return out
}
