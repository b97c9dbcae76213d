package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/usecase"
)

type recordDepositRequest struct {
	PlayerID    string `json:"player_id" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	ExternalRef string `json:"external_ref" validate:"required,max=200"`
}

func (h *Handler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordDeposit")
	defer span.End()

	var req recordDepositRequest
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

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid amount %q", ledger.ErrInvalidAmount, req.Amount))
		return
	}

	entry, err := h.ledgerService.RecordDeposit(ctx, usecase.RecordDepositInput{
		PlayerID:    req.PlayerID,
		Amount:      amount,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record deposit failed", "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ledgerEntryToDTO(entry))
}

func (h *Handler) ListPendingDeposits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingDeposits")
	defer span.End()

	entries, err := h.ledgerService.ListPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list pending deposits failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, ledgerEntryToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type settleDepositRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveDeposit")
	defer span.End()

	entryID := r.PathValue("entryID")

	var req settleDepositRequest
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

	entry, err := h.ledgerService.Approve(ctx, entryID, req.ActorID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve deposit failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerEntryToDTO(entry))
}

func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectDeposit")
	defer span.End()

	entryID := r.PathValue("entryID")

	var req settleDepositRequest
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

	entry, err := h.ledgerService.Reject(ctx, entryID, req.ActorID)
	if err != nil {
		h.logger.WarnContext(ctx, "reject deposit failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerEntryToDTO(entry))
}

func (h *Handler) RemoveLedgerEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveLedgerEntry")
	defer span.End()

	entryID := r.PathValue("entryID")
	actorID := strings.TrimSpace(r.URL.Query().Get("actor_id"))
	if actorID == "" {
		writeError(ctx, w, fmt.Errorf("%w: actor_id query parameter is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.ledgerService.RemoveEntry(ctx, entryID, actorID); err != nil {
		h.logger.WarnContext(ctx, "remove ledger entry failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"entry_id": entryID, "status": "removed"})
}
