package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayer)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/balance", handler.GetPlayerBalance)
	mux.HandleFunc("GET /v1/players/{playerID}/statement", handler.GetPlayerStatement)
	mux.HandleFunc("GET /v1/players/{playerID}/boards", handler.ListPlayerBoards)

	mux.HandleFunc("POST /v1/deposits", handler.RecordDeposit)

	mux.HandleFunc("GET /v1/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/rounds/active", handler.GetActiveRound)
	mux.HandleFunc("GET /v1/rounds/{roundID}", handler.GetRound)
	mux.HandleFunc("GET /v1/rounds/{roundID}/result", handler.GetRoundResult)

	mux.HandleFunc("POST /v1/boards", handler.PurchaseBoard)
	mux.HandleFunc("PATCH /v1/boards/{boardID}/repeat", handler.SetBoardRepeat)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("GET /v1/admin/deposits/pending", admin(handler.ListPendingDeposits))
	mux.Handle("POST /v1/admin/deposits/{entryID}/approve", admin(handler.ApproveDeposit))
	mux.Handle("POST /v1/admin/deposits/{entryID}/reject", admin(handler.RejectDeposit))
	mux.Handle("DELETE /v1/admin/ledger/{entryID}", admin(handler.RemoveLedgerEntry))

	mux.Handle("POST /v1/admin/rounds", admin(handler.CreateRound))
	mux.Handle("POST /v1/admin/rounds/schedule", admin(handler.ScheduleRound))
	mux.Handle("POST /v1/admin/rounds/{roundID}/complete", admin(handler.CompleteRound))
	mux.Handle("POST /v1/admin/rounds/{roundID}/cancel", admin(handler.CancelRound))
	mux.Handle("POST /v1/admin/rounds/promote", admin(handler.PromoteNextRound))

	mux.Handle("POST /v1/admin/settlement/audit", admin(handler.RunSettlementAudit))
}
