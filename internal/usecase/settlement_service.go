package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	"github.com/numbersclub/numbers-pool/internal/domain/settlement"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
)

const defaultAuditWorkers = 4

// AuditRoundResult is the replay outcome for one completed round.
type AuditRoundResult struct {
	RoundID     string `json:"round_id"`
	Year        int    `json:"year"`
	WeekNumber  int    `json:"week_number"`
	TotalBoards int    `json:"total_boards"`
	WinnerCount int    `json:"winner_count"`
	Stable      bool   `json:"stable"`
	DurationMs  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// AuditReport summarises replaying every completed round's boards against its
// stored winning numbers.
type AuditReport struct {
	RoundCount   int                `json:"round_count"`
	SuccessCount int                `json:"success_count"`
	FailedCount  int                `json:"failed_count"`
	WorkerCount  int                `json:"worker_count"`
	Rounds       []AuditRoundResult `json:"rounds"`
}

type SettlementService struct {
	roundRepo  round.Repository
	boardRepo  board.Repository
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewSettlementService(
	roundRepo round.Repository,
	boardRepo board.Repository,
	playerRepo player.Repository,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SettlementService{
		roundRepo:  roundRepo,
		boardRepo:  boardRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

// Recompute re-derives the winner set of a completed round from its stored
// boards and winning numbers. The round's persisted fields are the only
// settlement state; this replay must reproduce the original result.
func (s *SettlementService) Recompute(ctx context.Context, roundID string) (settlement.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Recompute")
	defer span.End()

	if roundID == "" {
		return settlement.Result{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return settlement.Result{}, fmt.Errorf("get round for recompute: %w", err)
	}
	if !exists {
		return settlement.Result{}, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}
	if r.Status != round.StatusCompleted {
		return settlement.Result{}, fmt.Errorf("%w: round %s is %s, settlement needs a completed round", ErrInvalidInput, r.ID, r.Status)
	}

	boards, err := s.boardRepo.ListByRound(ctx, r.ID)
	if err != nil {
		return settlement.Result{}, fmt.Errorf("list boards for recompute: %w", err)
	}

	result := settlement.Settle(r.ID, r.WinningNumbers, boards)
	if err := s.attachNames(ctx, result.Winners); err != nil {
		return settlement.Result{}, err
	}
	return result, nil
}

// AuditCompleted replays every completed round concurrently and reports
// whether each recomputation is stable (two independent replays agree).
func (s *SettlementService) AuditCompleted(ctx context.Context, maxWorkers int) (AuditReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.AuditCompleted")
	defer span.End()

	rounds, err := s.roundRepo.ListCompleted(ctx)
	if err != nil {
		return AuditReport{}, fmt.Errorf("list completed rounds: %w", err)
	}
	if len(rounds) == 0 {
		return AuditReport{WorkerCount: 0}, nil
	}

	workerCount := maxWorkers
	if workerCount <= 0 {
		workerCount = defaultAuditWorkers
	}
	if workerCount > len(rounds) {
		workerCount = len(rounds)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return AuditReport{}, fmt.Errorf("create audit worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu           sync.Mutex
		workers      sync.WaitGroup
		successCount atomic.Int64
		failedCount  atomic.Int64
	)
	results := make([]AuditRoundResult, 0, len(rounds))

	for _, item := range rounds {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.auditRound(ctx, item)
			row.DurationMs = time.Since(start).Milliseconds()

			if row.Error == "" && row.Stable {
				successCount.Add(1)
			} else {
				failedCount.Add(1)
			}

			mu.Lock()
			results = append(results, row)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			failedCount.Add(1)
			mu.Lock()
			results = append(results, AuditRoundResult{
				RoundID: item.ID,
				Error:   fmt.Sprintf("submit audit task: %v", err),
			})
			mu.Unlock()
		}
	}
	workers.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Year != results[j].Year {
			return results[i].Year < results[j].Year
		}
		return results[i].WeekNumber < results[j].WeekNumber
	})

	report := AuditReport{
		RoundCount:   len(rounds),
		SuccessCount: int(successCount.Load()),
		FailedCount:  int(failedCount.Load()),
		WorkerCount:  workerCount,
		Rounds:       results,
	}

	s.logger.InfoContext(ctx, "settlement audit finished",
		"round_count", report.RoundCount,
		"success_count", report.SuccessCount,
		"failed_count", report.FailedCount,
		"worker_count", report.WorkerCount,
	)
	return report, nil
}

func (s *SettlementService) auditRound(ctx context.Context, r round.Round) AuditRoundResult {
	row := AuditRoundResult{
		RoundID:    r.ID,
		Year:       r.Year,
		WeekNumber: r.WeekNumber,
	}

	boards, err := s.boardRepo.ListByRound(ctx, r.ID)
	if err != nil {
		row.Error = fmt.Sprintf("list boards: %v", err)
		return row
	}

	first := settlement.Settle(r.ID, r.WinningNumbers, boards)
	second := settlement.Settle(r.ID, r.WinningNumbers, boards)

	row.TotalBoards = first.TotalBoards
	row.WinnerCount = first.WinnerCount()
	row.Stable = sameWinners(first, second)
	if !row.Stable {
		s.logger.WarnContext(ctx, "settlement replay diverged",
			"round_id", r.ID,
			"first_winners", first.WinnerCount(),
			"second_winners", second.WinnerCount(),
		)
	}
	return row
}

func (s *SettlementService) attachNames(ctx context.Context, winners []settlement.WinningBoard) error {
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

func sameWinners(a, b settlement.Result) bool {
	if a.TotalBoards != b.TotalBoards || a.WinnerCount() != b.WinnerCount() {
		return false
	}
	for i := range a.Winners {
		if a.Winners[i].BoardID != b.Winners[i].BoardID {
			return false
		}
	}
	return true
}
