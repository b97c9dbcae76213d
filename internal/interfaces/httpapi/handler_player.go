package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/numbersclub/numbers-pool/internal/usecase"
)

type registerPlayerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req registerPlayerRequest
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

	p, err := h.playerService.Register(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "register player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(p))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.playerService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	p, err := h.playerService.GetByID(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) GetPlayerBalance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerBalance")
	defer span.End()

	playerID := r.PathValue("playerID")
	balance, err := h.ledgerService.Balance(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get balance failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"player_id": playerID,
		"balance":   balance.String(),
	})
}

func (h *Handler) GetPlayerStatement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStatement")
	defer span.End()

	playerID := r.PathValue("playerID")
	entries, err := h.ledgerService.Statement(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get statement failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, ledgerEntryToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayerBoards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerBoards")
	defer span.End()

	playerID := r.PathValue("playerID")
	boards, err := h.purchaseService.ListPlayerBoards(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player boards failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]purchasedBoardDTO, 0, len(boards))
	for _, b := range boards {
		items = append(items, purchasedBoardToDTO(b, false))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
