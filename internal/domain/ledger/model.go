package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAlreadyApproved   = errors.New("entry is already approved")
	ErrAlreadyRejected   = errors.New("entry is already rejected")
	ErrNotPending        = errors.New("entry is not pending")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Kind distinguishes the two signed movements the ledger records.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindPurchase Kind = "purchase"
)

// Status is the approval state of an entry. Deposits start Pending and end
// Approved or Rejected; purchases are written Approved inside the purchase
// transaction and never pass through Pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Entry is one immutable signed monetary movement for one player. Amount and
// Kind never change after creation; corrections are made by adding offsetting
// entries, and removals are tombstones via DeletedAt.
type Entry struct {
	ID          string
	PlayerID    string
	Amount      decimal.Decimal
	Kind        Kind
	ExternalRef string
	Status      Status
	CreatedAt   time.Time
	ApprovedAt  *time.Time
	ApprovedBy  string
	RejectedAt  *time.Time
	RejectedBy  string
	DeletedAt   *time.Time
	DeletedBy   string
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.PlayerID == "" {
		return fmt.Errorf("entry player id is required")
	}
	if e.Amount.IsZero() {
		return fmt.Errorf("entry amount cannot be zero")
	}
	switch e.Kind {
	case KindDeposit:
		if e.Amount.Sign() <= 0 {
			return fmt.Errorf("deposit amount must be positive")
		}
	case KindPurchase:
		if e.Amount.Sign() >= 0 {
			return fmt.Errorf("purchase amount must be negative")
		}
	default:
		return fmt.Errorf("unknown entry kind %q", e.Kind)
	}
	switch e.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return fmt.Errorf("unknown entry status %q", e.Status)
	}

	return nil
}

// CountsTowardBalance reports whether the entry participates in the balance
// fold: approved and not soft-deleted.
func (e Entry) CountsTowardBalance() bool {
	return e.Status == StatusApproved && e.DeletedAt == nil
}
