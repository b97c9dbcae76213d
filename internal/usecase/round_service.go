package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/game"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	"github.com/numbersclub/numbers-pool/internal/domain/settlement"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

type CreateRoundInput struct {
	Year       int
	WeekNumber int
}

type CompleteRoundInput struct {
	RoundID        string
	WinningNumbers []int
}

type RoundService struct {
	roundRepo  round.Repository
	boardRepo  board.Repository
	playerRepo player.Repository
	rules      game.Rules
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewRoundService(
	roundRepo round.Repository,
	boardRepo board.Repository,
	playerRepo player.Repository,
	rules game.Rules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *RoundService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RoundService{
		roundRepo:  roundRepo,
		boardRepo:  boardRepo,
		playerRepo: playerRepo,
		rules:      rules,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// Create opens a new Active round for the given week. It fails when any round
// is currently Active or when the (year, week) slot is already taken in any
// state; the database constraints back both checks.
func (s *RoundService) Create(ctx context.Context, input CreateRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Create")
	defer span.End()

	roundID, err := s.idGen.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}

	now := s.now().UTC()
	startedAt := now
	r := round.Round{
		ID:         roundID,
		Year:       input.Year,
		WeekNumber: input.WeekNumber,
		Status:     round.StatusActive,
		StartedAt:  &startedAt,
		CreatedAt:  now,
	}
	if err := r.Validate(); err != nil {
		return round.Round{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.roundRepo.Create(ctx, r)
	if err != nil {
		return round.Round{}, fmt.Errorf("create round: %w", err)
	}

	s.logger.InfoContext(ctx, "round created",
		"round_id", created.ID,
		"year", created.Year,
		"week", created.WeekNumber,
	)
	return created, nil
}

// Schedule queues a Pending round for a future week. Pending rounds become
// Active through PromoteNextIfNoneActive once the current round closes.
func (s *RoundService) Schedule(ctx context.Context, input CreateRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Schedule")
	defer span.End()

	roundID, err := s.idGen.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}

	r := round.Round{
		ID:         roundID,
		Year:       input.Year,
		WeekNumber: input.WeekNumber,
		Status:     round.StatusPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return round.Round{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.roundRepo.Create(ctx, r)
	if err != nil {
		return round.Round{}, fmt.Errorf("schedule round: %w", err)
	}

	s.logger.InfoContext(ctx, "round scheduled",
		"round_id", created.ID,
		"year", created.Year,
		"week", created.WeekNumber,
	)
	return created, nil
}

// GetActive is a pure query; it never promotes a pending round.
func (s *RoundService) GetActive(ctx context.Context) (round.Round, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.GetActive")
	defer span.End()

	r, exists, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return round.Round{}, false, fmt.Errorf("get active round: %w", err)
	}
	return r, exists, nil
}

// PromoteNextIfNoneActive activates the earliest Pending round when no round
// is Active. Callers run it as an explicit scheduler tick rather than a
// side effect of reading the active round.
func (s *RoundService) PromoteNextIfNoneActive(ctx context.Context) (round.Round, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.PromoteNextIfNoneActive")
	defer span.End()

	promoted, ok, err := s.roundRepo.PromoteNextPending(ctx, s.now().UTC())
	if err != nil {
		return round.Round{}, false, fmt.Errorf("promote next pending round: %w", err)
	}
	if ok {
		s.logger.InfoContext(ctx, "pending round promoted",
			"round_id", promoted.ID,
			"year", promoted.Year,
			"week", promoted.WeekNumber,
		)
	}
	return promoted, ok, nil
}

// Complete closes an Active round exactly once: the status flip and winning
// numbers are persisted first so concurrent purchases observe a non-active
// round, then every board is matched against the draw.
func (s *RoundService) Complete(ctx context.Context, input CompleteRoundInput) (settlement.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Complete")
	defer span.End()

	if input.RoundID == "" {
		return settlement.Result{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}
	if err := s.rules.ValidateWinningNumbers(input.WinningNumbers); err != nil {
		return settlement.Result{}, err
	}

	completed, exists, err := s.roundRepo.Complete(ctx, input.RoundID, input.WinningNumbers, s.now().UTC())
	if err != nil {
		return settlement.Result{}, fmt.Errorf("complete round: %w", err)
	}
	if !exists {
		return settlement.Result{}, fmt.Errorf("%w: round %s", ErrNotFound, input.RoundID)
	}

	result, err := s.settleRound(ctx, completed)
	if err != nil {
		return settlement.Result{}, err
	}

	s.logger.InfoContext(ctx, "round completed",
		"round_id", completed.ID,
		"winning_numbers", completed.WinningNumbers,
		"total_boards", result.TotalBoards,
		"winner_count", result.WinnerCount(),
	)
	return result, nil
}

// CancelPending aborts a Pending round before it ever becomes Active.
func (s *RoundService) CancelPending(ctx context.Context, roundID string) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.CancelPending")
	defer span.End()

	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	cancelled, exists, err := s.roundRepo.Cancel(ctx, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("cancel round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}

	s.logger.InfoContext(ctx, "round cancelled", "round_id", roundID)
	return cancelled, nil
}

func (s *RoundService) GetByID(ctx context.Context, roundID string) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.GetByID")
	defer span.End()

	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}
	return r, nil
}

func (s *RoundService) List(ctx context.Context) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.List")
	defer span.End()

	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

func (s *RoundService) settleRound(ctx context.Context, r round.Round) (settlement.Result, error) {
	boards, err := s.boardRepo.ListByRound(ctx, r.ID)
	if err != nil {
		return settlement.Result{}, fmt.Errorf("list boards for settlement: %w", err)
	}

	result := settlement.Settle(r.ID, r.WinningNumbers, boards)
	if err := s.attachPlayerNames(ctx, result.Winners); err != nil {
		return settlement.Result{}, err
	}
	return result, nil
}

func (s *RoundService) attachPlayerNames(ctx context.Context, winners []settlement.WinningBoard) error {
	if len(winners) == 0 {
		return nil
	}

	idSet := make(map[string]struct{}, len(winners))
	ids := make([]string, 0, len(winners))
	for _, w := range winners {
		if _, seen := idSet[w.PlayerID]; seen {
			continue
		}
		idSet[w.PlayerID] = struct{}{}
		ids = append(ids, w.PlayerID)
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get winning players: %w", err)
	}
	nameByID := make(map[string]string, len(players))
	for _, p := range players {
		nameByID[p.ID] = p.Name
	}
	for i := range winners {
		winners[i].PlayerName = nameByID[winners[i].PlayerID]
	}
	return nil
}
