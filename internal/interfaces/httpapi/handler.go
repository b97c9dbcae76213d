package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	"github.com/numbersclub/numbers-pool/internal/domain/settlement"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
	"github.com/numbersclub/numbers-pool/internal/usecase"
)

type Handler struct {
	playerService     *usecase.PlayerService
	ledgerService     *usecase.LedgerService
	roundService      *usecase.RoundService
	purchaseService   *usecase.PurchaseService
	settlementService *usecase.SettlementService
	auditWorkers      int
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	playerService *usecase.PlayerService,
	ledgerService *usecase.LedgerService,
	roundService *usecase.RoundService,
	purchaseService *usecase.PurchaseService,
	settlementService *usecase.SettlementService,
	auditWorkers int,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if auditWorkers < 1 {
		auditWorkers = 1
	}

	return &Handler{
		playerService:     playerService,
		ledgerService:     ledgerService,
		roundService:      roundService,
		purchaseService:   purchaseService,
		settlementService: settlementService,
		auditWorkers:      auditWorkers,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type playerDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

type ledgerEntryDTO struct {
	ID          string     `json:"id"`
	PlayerID    string     `json:"player_id"`
	Amount      string     `json:"amount"`
	Kind        string     `json:"kind"`
	ExternalRef string     `json:"external_ref,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	RejectedBy  string     `json:"rejected_by,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func ledgerEntryToDTO(e ledger.Entry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:          e.ID,
		PlayerID:    e.PlayerID,
		Amount:      e.Amount.String(),
		Kind:        string(e.Kind),
		ExternalRef: e.ExternalRef,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		ApprovedAt:  e.ApprovedAt,
		ApprovedBy:  e.ApprovedBy,
		RejectedAt:  e.RejectedAt,
		RejectedBy:  e.RejectedBy,
		DeletedAt:   e.DeletedAt,
	}
}

type roundDTO struct {
	ID             string     `json:"id"`
	Year           int        `json:"year"`
	WeekNumber     int        `json:"week_number"`
	Label          string     `json:"label"`
	Status         string     `json:"status"`
	WinningNumbers []int      `json:"winning_numbers,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func roundToDTO(r round.Round) roundDTO {
	return roundDTO{
		ID:             r.ID,
		Year:           r.Year,
		WeekNumber:     r.WeekNumber,
		Label:          r.Label(),
		Status:         string(r.Status),
		WinningNumbers: r.WinningNumbers,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
	}
}

type winningBoardDTO struct {
	BoardID    string `json:"board_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Numbers    []int  `json:"numbers"`
}

type settlementResultDTO struct {
	RoundID        string            `json:"round_id"`
	WinningNumbers []int             `json:"winning_numbers"`
	TotalBoards    int               `json:"total_boards"`
	WinnerCount    int               `json:"winner_count"`
	Winners        []winningBoardDTO `json:"winners"`
}

func settlementResultToDTO(result settlement.Result) settlementResultDTO {
	winners := make([]winningBoardDTO, 0, len(result.Winners))
	for _, wb := range result.Winners {
		winners = append(winners, winningBoardDTO{
			BoardID:    wb.BoardID,
			PlayerID:   wb.PlayerID,
			PlayerName: wb.PlayerName,
			Numbers:    wb.Numbers,
		})
	}
	return settlementResultDTO{
		RoundID:        result.RoundID,
		WinningNumbers: result.WinningNumbers,
		TotalBoards:    result.TotalBoards,
		WinnerCount:    result.WinnerCount(),
		Winners:        winners,
	}
}

type purchasedBoardDTO struct {
	BoardID         string    `json:"board_id"`
	PlayerID        string    `json:"player_id"`
	RoundID         string    `json:"round_id"`
	RoundLabel      string    `json:"round_label,omitempty"`
	Numbers         []int     `json:"numbers"`
	RepeatNextRound bool      `json:"repeat_next_round"`
	Price           string    `json:"price,omitempty"`
	BalanceAfter    string    `json:"balance_after,omitempty"`
	FundingEntryID  string    `json:"funding_entry_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func purchasedBoardToDTO(pb usecase.PurchasedBoard, includeBalance bool) purchasedBoardDTO {
	dto := purchasedBoardDTO{
		BoardID:         pb.Board.ID,
		PlayerID:        pb.Board.PlayerID,
		RoundID:         pb.Board.RoundID,
		RoundLabel:      pb.RoundLabel,
		Numbers:         pb.Board.SortedNumbers(),
		RepeatNextRound: pb.Board.RepeatNextRound,
		FundingEntryID:  pb.Board.FundingEntryID,
		CreatedAt:       pb.Board.CreatedAt,
	}
	if pb.Price.IsPositive() {
		dto.Price = pb.Price.String()
	}
	if includeBalance {
		dto.BalanceAfter = pb.BalanceAfter.String()
	}
	return dto
}
