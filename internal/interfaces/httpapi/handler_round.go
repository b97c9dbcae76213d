package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/numbersclub/numbers-pool/internal/usecase"
)

type createRoundRequest struct {
	Year       int `json:"year" validate:"required,min=2000,max=2200"`
	WeekNumber int `json:"week_number" validate:"required,min=1,max=53"`
}

func (h *Handler) CreateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRound")
	defer span.End()

	var req createRoundRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rd, err := h.roundService.Create(ctx, usecase.CreateRoundInput{Year: req.Year, WeekNumber: req.WeekNumber})
	if err != nil {
		h.logger.WarnContext(ctx, "create round failed", "year", req.Year, "week", req.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, roundToDTO(rd))
}

func (h *Handler) ScheduleRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleRound")
	defer span.End()

	var req createRoundRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rd, err := h.roundService.Schedule(ctx, usecase.CreateRoundInput{Year: req.Year, WeekNumber: req.WeekNumber})
	if err != nil {
		h.logger.WarnContext(ctx, "schedule round failed", "year", req.Year, "week", req.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, roundToDTO(rd))
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	rounds, err := h.roundService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list rounds failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]roundDTO, 0, len(rounds))
	for _, rd := range rounds {
		items = append(items, roundToDTO(rd))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetActiveRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveRound")
	defer span.End()

	rd, exists, err := h.roundService.GetActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get active round failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(rd))
}

func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	rd, err := h.roundService.GetByID(ctx, roundID)
	if err != nil {
		h.logger.WarnContext(ctx, "get round failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(rd))
}

type completeRoundRequest struct {
	WinningNumbers []int `json:"winning_numbers" validate:"required,min=1,dive,min=1"`
}

func (h *Handler) CompleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteRound")
	defer span.End()

	roundID := r.PathValue("roundID")

	var req completeRoundRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.roundService.Complete(ctx, usecase.CompleteRoundInput{
		RoundID:        roundID,
		WinningNumbers: req.WinningNumbers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete round failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementResultToDTO(result))
}

func (h *Handler) CancelRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	rd, err := h.roundService.CancelPending(ctx, roundID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel round failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(rd))
}

func (h *Handler) PromoteNextRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PromoteNextRound")
	defer span.End()

	rd, promoted, err := h.roundService.PromoteNextIfNoneActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "promote next round failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if !promoted {
		writeSuccess(ctx, w, http.StatusOK, map[string]bool{"promoted": false})
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(rd))
}

func (h *Handler) GetRoundResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundResult")
	defer span.End()

	roundID := r.PathValue("roundID")
	result, err := h.settlementService.Recompute(ctx, roundID)
	if err != nil {
		h.logger.WarnContext(ctx, "get round result failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementResultToDTO(result))
}

func (h *Handler) RunSettlementAudit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettlementAudit")
	defer span.End()

	report, err := h.settlementService.AuditCompleted(ctx, h.auditWorkers)
	if err != nil {
		h.logger.ErrorContext(ctx, "settlement audit failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
