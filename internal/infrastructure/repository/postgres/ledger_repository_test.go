package postgres

import (
	"strings"
	"testing"
)

func TestApprovedBalanceQuery(t *testing.T) {
	t.Run("plain fold takes no locks", func(t *testing.T) {
		query := approvedBalanceQuery(false)
		if strings.Contains(query, "FOR UPDATE") {
			t.Fatalf("unlocked query must not lock rows:\n%s", query)
		}
		if !strings.Contains(query, "status = 'approved'") || !strings.Contains(query, "deleted_at IS NULL") {
			t.Fatalf("query must fold only approved, non-deleted entries:\n%s", query)
		}
	})

	t.Run("locked fold holds contributing rows", func(t *testing.T) {
		query := approvedBalanceQuery(true)
		if !strings.Contains(query, "FOR UPDATE") {
			t.Fatalf("locked query must lock the contributing rows:\n%s", query)
		}
		if !strings.Contains(query, "status = 'approved'") || !strings.Contains(query, "deleted_at IS NULL") {
			t.Fatalf("query must fold only approved, non-deleted entries:\n%s", query)
		}
	})

	t.Run("both variants bind the player id once", func(t *testing.T) {
		for _, forUpdate := range []bool{false, true} {
			query := approvedBalanceQuery(forUpdate)
			if strings.Count(query, "$1") != 1 {
				t.Fatalf("expected exactly one bind parameter (forUpdate=%v):\n%s", forUpdate, query)
			}
		}
	})
}
