package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

// RecordDepositInput is the incoming payload for a player deposit claim.
// The external reference ties the claim to an off-system payment; approval
// happens later under an admin actor.
type RecordDepositInput struct {
	PlayerID    string
	Amount      decimal.Decimal
	ExternalRef string
}

type LedgerService struct {
	playerRepo player.Repository
	entryRepo  ledger.Repository
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewLedgerService(
	playerRepo player.Repository,
	entryRepo ledger.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *LedgerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LedgerService{
		playerRepo: playerRepo,
		entryRepo:  entryRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordDeposit creates an unapproved deposit entry. The balance is untouched
// until an admin approves the entry.
func (s *LedgerService) RecordDeposit(ctx context.Context, input RecordDepositInput) (ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.RecordDeposit")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.ExternalRef = strings.TrimSpace(input.ExternalRef)

	if input.PlayerID == "" {
		return ledger.Entry{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.Amount.Sign() <= 0 {
		return ledger.Entry{}, fmt.Errorf("%w: got %s", ledger.ErrInvalidAmount, input.Amount.String())
	}

	if _, exists, err := s.playerRepo.GetByID(ctx, input.PlayerID); err != nil {
		return ledger.Entry{}, fmt.Errorf("get player for deposit: %w", err)
	} else if !exists {
		return ledger.Entry{}, fmt.Errorf("%w: player %s", ErrNotFound, input.PlayerID)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("generate deposit entry id: %w", err)
	}

	entry := ledger.Entry{
		ID:          entryID,
		PlayerID:    input.PlayerID,
		Amount:      input.Amount.Round(2),
		Kind:        ledger.KindDeposit,
		ExternalRef: input.ExternalRef,
		Status:      ledger.StatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return ledger.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.entryRepo.Create(ctx, entry)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("create deposit entry: %w", err)
	}

	s.logger.InfoContext(ctx, "deposit recorded",
		"entry_id", created.ID,
		"player_id", created.PlayerID,
		"amount", created.Amount.String(),
	)
	return created, nil
}

// Approve transitions a pending deposit to approved exactly once, crediting
// the player's balance. Re-approval is an error, never a silent re-stamp.
func (s *LedgerService) Approve(ctx context.Context, entryID, approverID string) (ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Approve")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	approverID = strings.TrimSpace(approverID)
	if entryID == "" {
		return ledger.Entry{}, fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	if approverID == "" {
		return ledger.Entry{}, fmt.Errorf("%w: approver id is required", ErrInvalidInput)
	}

	entry, exists, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("get entry for approval: %w", err)
	}
	if !exists {
		return ledger.Entry{}, fmt.Errorf("%w: ledger entry %s", ErrNotFound, entryID)
	}

	switch entry.Status {
	case ledger.StatusApproved:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyApproved, entryID)
	case ledger.StatusRejected:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyRejected, entryID)
	}

	ok, err := s.entryRepo.MarkApproved(ctx, entryID, approverID, s.now().UTC())
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("mark entry approved: %w", err)
	}
	if !ok {
		// Lost a race with another admin action on the same entry.
		return s.settledConflict(ctx, entryID)
	}

	updated, _, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("reload approved entry: %w", err)
	}

	s.logger.InfoContext(ctx, "deposit approved",
		"entry_id", entryID,
		"player_id", updated.PlayerID,
		"approved_by", approverID,
	)
	return updated, nil
}

// Reject moves a pending deposit to the terminal Rejected state. A rejected
// entry never contributes to the balance.
func (s *LedgerService) Reject(ctx context.Context, entryID, rejecterID string) (ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Reject")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	rejecterID = strings.TrimSpace(rejecterID)
	if entryID == "" {
		return ledger.Entry{}, fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	if rejecterID == "" {
		return ledger.Entry{}, fmt.Errorf("%w: rejecter id is required", ErrInvalidInput)
	}

	entry, exists, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("get entry for rejection: %w", err)
	}
	if !exists {
		return ledger.Entry{}, fmt.Errorf("%w: ledger entry %s", ErrNotFound, entryID)
	}

	switch entry.Status {
	case ledger.StatusApproved:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyApproved, entryID)
	case ledger.StatusRejected:
		return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyRejected, entryID)
	}

	ok, err := s.entryRepo.MarkRejected(ctx, entryID, rejecterID, s.now().UTC())
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("mark entry rejected: %w", err)
	}
	if !ok {
		return s.settledConflict(ctx, entryID)
	}

	updated, _, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("reload rejected entry: %w", err)
	}

	s.logger.InfoContext(ctx, "deposit rejected",
		"entry_id", entryID,
		"player_id", updated.PlayerID,
		"rejected_by", rejecterID,
	)
	return updated, nil
}

// Balance folds the player's approved, non-deleted entries. A player with no
// entries has balance zero.
func (s *LedgerService) Balance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Balance")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return decimal.Zero, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	if _, exists, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return decimal.Zero, fmt.Errorf("get player for balance: %w", err)
	} else if !exists {
		return decimal.Zero, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	sum, err := s.entryRepo.SumApprovedByPlayer(ctx, playerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum approved entries: %w", err)
	}
	return sum, nil
}

// Statement lists all of a player's entries, newest first, including pending,
// rejected and tombstoned ones.
func (s *LedgerService) Statement(ctx context.Context, playerID string) ([]ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Statement")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	if _, exists, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return nil, fmt.Errorf("get player for statement: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	entries, err := s.entryRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list entries by player: %w", err)
	}
	return entries, nil
}

// ListPending returns all deposits awaiting admin action.
func (s *LedgerService) ListPending(ctx context.Context) ([]ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.ListPending")
	defer span.End()

	entries, err := s.entryRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	return entries, nil
}

// RemoveEntry tombstones an entry so it stops contributing to the balance.
// History is never rewritten; the row stays replayable for audits.
func (s *LedgerService) RemoveEntry(ctx context.Context, entryID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.RemoveEntry")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	actorID = strings.TrimSpace(actorID)
	if entryID == "" {
		return fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	if actorID == "" {
		return fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	ok, err := s.entryRepo.SoftDelete(ctx, entryID, actorID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: ledger entry %s", ErrNotFound, entryID)
	}

	s.logger.InfoContext(ctx, "ledger entry removed", "entry_id", entryID, "deleted_by", actorID)
	return nil
}

func (s *LedgerService) settledConflict(ctx context.Context, entryID string) (ledger.Entry, error) {
	current, exists, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("reload contested entry: %w", err)
	}
	if !exists {
		return ledger.Entry{}, fmt.Errorf("%w: ledger entry %s", ErrNotFound, entryID)
	}
	if current.Status == ledger.StatusRejected {
		return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyRejected, entryID)
	}
	return ledger.Entry{}, fmt.Errorf("%w: entry %s", ledger.ErrAlreadyApproved, entryID)
}
