package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/numbersclub/numbers-pool/internal/usecase"
)

type purchaseBoardRequest struct {
	PlayerID        string `json:"player_id" validate:"required"`
	RoundID         string `json:"round_id" validate:"required"`
	Numbers         []int  `json:"numbers" validate:"required,min=1,dive,min=1"`
	RepeatNextRound bool   `json:"repeat_next_round"`
	ExternalRef     string `json:"external_ref"`
}

func (h *Handler) PurchaseBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PurchaseBoard")
	defer span.End()

	var req purchaseBoardRequest
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

	pb, err := h.purchaseService.Purchase(ctx, usecase.PurchaseInput{
		PlayerID:        req.PlayerID,
		RoundID:         req.RoundID,
		Numbers:         req.Numbers,
		RepeatNextRound: req.RepeatNextRound,
		ExternalRef:     req.ExternalRef,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "purchase board failed",
			"player_id", req.PlayerID,
			"round_id", req.RoundID,
			"error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, purchasedBoardToDTO(pb, true))
}

type setBoardRepeatRequest struct {
	RepeatNextRound *bool `json:"repeat_next_round" validate:"required"`
}

func (h *Handler) SetBoardRepeat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetBoardRepeat")
	defer span.End()

	boardID := r.PathValue("boardID")

	var req setBoardRepeatRequest
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

	if err := h.purchaseService.SetRepeatNextRound(ctx, boardID, *req.RepeatNextRound); err != nil {
		h.logger.WarnContext(ctx, "set board repeat failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"repeat_next_round": *req.RepeatNextRound})
}
