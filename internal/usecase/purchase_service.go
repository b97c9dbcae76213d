package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/game"
	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

type PurchaseInput struct {
	PlayerID        string
	RoundID         string
	Numbers         []int
	RepeatNextRound bool
	ExternalRef     string
}

// PurchasedBoard is the purchase result: the board, the debit that funded it,
// and the round label resolved for display at read time.
type PurchasedBoard struct {
	Board        board.Board
	FundingEntry ledger.Entry
	Price        decimal.Decimal
	BalanceAfter decimal.Decimal
	RoundLabel   string
}

type PurchaseService struct {
	playerRepo player.Repository
	roundRepo  round.Repository
	boardRepo  board.Repository
	entryRepo  ledger.Repository
	rules      game.Rules
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewPurchaseService(
	playerRepo player.Repository,
	roundRepo round.Repository,
	boardRepo board.Repository,
	entryRepo ledger.Repository,
	rules game.Rules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PurchaseService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PurchaseService{
		playerRepo: playerRepo,
		roundRepo:  roundRepo,
		boardRepo:  boardRepo,
		entryRepo:  entryRepo,
		rules:      rules,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// Purchase sells one board against the active round. The funds check and the
// debit+board pair are causally atomic per player: the repository re-validates
// the balance under a per-player lock, so no interleaving of concurrent
// purchases can overspend.
func (s *PurchaseService) Purchase(ctx context.Context, input PurchaseInput) (PurchasedBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PurchaseService.Purchase")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.RoundID = strings.TrimSpace(input.RoundID)
	input.ExternalRef = strings.TrimSpace(input.ExternalRef)

	if input.PlayerID == "" {
		return PurchasedBoard{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.RoundID == "" {
		return PurchasedBoard{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}
	if err := s.rules.ValidateSelection(input.Numbers); err != nil {
		return PurchasedBoard{}, err
	}

	if _, exists, err := s.playerRepo.GetByID(ctx, input.PlayerID); err != nil {
		return PurchasedBoard{}, fmt.Errorf("get player for purchase: %w", err)
	} else if !exists {
		return PurchasedBoard{}, fmt.Errorf("%w: player %s", ErrNotFound, input.PlayerID)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		return PurchasedBoard{}, fmt.Errorf("get round for purchase: %w", err)
	}
	if !exists {
		return PurchasedBoard{}, fmt.Errorf("%w: round %s", ErrNotFound, input.RoundID)
	}
	if r.Status != round.StatusActive {
		return PurchasedBoard{}, fmt.Errorf("%w: round %s is %s", round.ErrNotActive, r.ID, r.Status)
	}

	price, err := s.rules.Price(len(input.Numbers))
	if err != nil {
		return PurchasedBoard{}, err
	}

	// Advisory pre-check for a friendly error; the authoritative check runs
	// again inside the purchase transaction.
	balance, err := s.entryRepo.SumApprovedByPlayer(ctx, input.PlayerID)
	if err != nil {
		return PurchasedBoard{}, fmt.Errorf("read balance for purchase: %w", err)
	}
	if balance.LessThan(price) {
		return PurchasedBoard{}, fmt.Errorf("%w: balance %s, price %s", ledger.ErrInsufficientFunds, balance.String(), price.String())
	}

	if input.ExternalRef == "" {
		return PurchasedBoard{}, fmt.Errorf("%w: purchase needs a payment reference", ErrReferenceRequired)
	}

	boardID, err := s.idGen.NewID()
	if err != nil {
		return PurchasedBoard{}, fmt.Errorf("generate board id: %w", err)
	}
	entryID, err := s.idGen.NewID()
	if err != nil {
		return PurchasedBoard{}, fmt.Errorf("generate funding entry id: %w", err)
	}

	now := s.now().UTC()
	approvedAt := now
	debit := ledger.Entry{
		ID:          entryID,
		PlayerID:    input.PlayerID,
		Amount:      price.Neg(),
		Kind:        ledger.KindPurchase,
		ExternalRef: input.ExternalRef,
		Status:      ledger.StatusApproved,
		CreatedAt:   now,
		ApprovedAt:  &approvedAt,
		ApprovedBy:  input.PlayerID,
	}
	b := board.Board{
		ID:              boardID,
		PlayerID:        input.PlayerID,
		RoundID:         r.ID,
		Numbers:         append([]int(nil), input.Numbers...),
		RepeatNextRound: input.RepeatNextRound,
		FundingEntryID:  entryID,
		CreatedAt:       now,
	}

	createdBoard, createdEntry, balanceAfter, err := s.boardRepo.CreateFunded(ctx, b, debit)
	if err != nil {
		return PurchasedBoard{}, fmt.Errorf("create funded board: %w", err)
	}

	s.logger.InfoContext(ctx, "board purchased",
		"board_id", createdBoard.ID,
		"player_id", createdBoard.PlayerID,
		"round_id", createdBoard.RoundID,
		"price", price.String(),
		"balance_after", balanceAfter.String(),
	)

	return PurchasedBoard{
		Board:        createdBoard,
		FundingEntry: createdEntry,
		Price:        price,
		BalanceAfter: balanceAfter,
		RoundLabel:   r.Label(),
	}, nil
}

// SetRepeatNextRound flips the board's repeat flag, the only field that stays
// mutable after purchase.
func (s *PurchaseService) SetRepeatNextRound(ctx context.Context, boardID string, repeat bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PurchaseService.SetRepeatNextRound")
	defer span.End()

	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return fmt.Errorf("%w: board id is required", ErrInvalidInput)
	}

	ok, err := s.boardRepo.SetRepeatNextRound(ctx, boardID, repeat)
	if err != nil {
		return fmt.Errorf("set repeat flag: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: board %s", ErrNotFound, boardID)
	}
	return nil
}

// ListPlayerBoards returns a player's boards with round labels resolved.
func (s *PurchaseService) ListPlayerBoards(ctx context.Context, playerID string) ([]PurchasedBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PurchaseService.ListPlayerBoards")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if _, exists, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return nil, fmt.Errorf("get player for boards: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	boards, err := s.boardRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list boards by player: %w", err)
	}

	labelByRound := make(map[string]string)
	out := make([]PurchasedBoard, 0, len(boards))
	for _, b := range boards {
		label, ok := labelByRound[b.RoundID]
		if !ok {
			r, exists, err := s.roundRepo.GetByID(ctx, b.RoundID)
			if err != nil {
				return nil, fmt.Errorf("resolve round label: %w", err)
			}
			if exists {
				label = r.Label()
			}
			labelByRound[b.RoundID] = label
		}
		out = append(out, PurchasedBoard{Board: b, RoundLabel: label})
	}
	return out, nil
}
