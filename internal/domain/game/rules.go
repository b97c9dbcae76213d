package game

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSelection      = errors.New("invalid number selection")
	ErrInvalidWinningNumbers = errors.New("invalid winning numbers")
)

// Rules fixes the number pool, the selection bounds, and the pricing ladder
// for every round. One canonical rule set applies system-wide; per-round rule
// overrides are deliberately not supported.
type Rules struct {
	NumberMin     int
	NumberMax     int
	SelectionMin  int
	SelectionMax  int
	WinningCount  int
	TierBasePrice decimal.Decimal
}

// DefaultRules plays the classic pool: pick 5 to 8 distinct numbers from
// 1 to 90, three numbers are drawn, and a board with the minimum selection
// costs 20.
func DefaultRules() Rules {
	return Rules{
		NumberMin:     1,
		NumberMax:     90,
		SelectionMin:  5,
		SelectionMax:  8,
		WinningCount:  3,
		TierBasePrice: decimal.NewFromInt(20),
	}
}

// ValidateSelection checks a board's picked numbers: size within the
// selection bounds, every number in range, no duplicates.
func (r Rules) ValidateSelection(numbers []int) error {
	if len(numbers) < r.SelectionMin || len(numbers) > r.SelectionMax {
		return fmt.Errorf("%w: selection must have between %d and %d numbers, got %d",
			ErrInvalidSelection, r.SelectionMin, r.SelectionMax, len(numbers))
	}
	return r.checkDistinctInRange(numbers, ErrInvalidSelection)
}

// ValidateWinningNumbers checks a draw: exactly WinningCount distinct numbers
// in range.
func (r Rules) ValidateWinningNumbers(numbers []int) error {
	if len(numbers) != r.WinningCount {
		return fmt.Errorf("%w: draw must have exactly %d numbers, got %d",
			ErrInvalidWinningNumbers, r.WinningCount, len(numbers))
	}
	return r.checkDistinctInRange(numbers, ErrInvalidWinningNumbers)
}

// Price is the cost of a board by selection size. The ladder doubles per
// extra number above the minimum selection.
func (r Rules) Price(selectionSize int) (decimal.Decimal, error) {
	if selectionSize < r.SelectionMin || selectionSize > r.SelectionMax {
		return decimal.Zero, fmt.Errorf("%w: no price for selection size %d",
			ErrInvalidSelection, selectionSize)
	}
	multiplier := int64(1) << (selectionSize - r.SelectionMin)
	return r.TierBasePrice.Mul(decimal.NewFromInt(multiplier)), nil
}

func (r Rules) checkDistinctInRange(numbers []int, sentinel error) error {
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if n < r.NumberMin || n > r.NumberMax {
			return fmt.Errorf("%w: number %d is outside %d..%d", sentinel, n, r.NumberMin, r.NumberMax)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: number %d appears more than once", sentinel, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
