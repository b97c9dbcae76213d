package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/numbersclub/numbers-pool/internal/config"
	"github.com/numbersclub/numbers-pool/internal/domain/board"
	"github.com/numbersclub/numbers-pool/internal/domain/game"
	"github.com/numbersclub/numbers-pool/internal/domain/ledger"
	"github.com/numbersclub/numbers-pool/internal/domain/player"
	"github.com/numbersclub/numbers-pool/internal/domain/round"
	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/memory"
	"github.com/numbersclub/numbers-pool/internal/infrastructure/repository/postgres"
	"github.com/numbersclub/numbers-pool/internal/interfaces/httpapi"
	idgen "github.com/numbersclub/numbers-pool/internal/platform/id"
	"github.com/numbersclub/numbers-pool/internal/platform/logging"
	"github.com/numbersclub/numbers-pool/internal/usecase"
)

// App owns the HTTP server, the storage handle, and the background round
// promoter.
type App struct {
	Server *http.Server

	cfg          config.Config
	logger       *logging.Logger
	db           *sqlx.DB
	roundService *usecase.RoundService
	stopPromoter chan struct{}
	promoterDone chan struct{}
}

type repositories struct {
	players player.Repository
	entries ledger.Repository
	rounds  round.Repository
	boards  board.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repos repositories
		db    *sqlx.DB
	)
	if cfg.UseMemoryStore {
		memRepos, err := buildMemoryRepositories(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repos = memRepos
		logger.Info("storage configured", "store", "memory", "seeded", cfg.SeedOnStart)
	} else {
		pgDB, err := openDB(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		db = pgDB
		repos = repositories{
			players: postgres.NewPlayerRepository(db),
			entries: postgres.NewLedgerRepository(db),
			rounds:  postgres.NewRoundRepository(db),
			boards:  postgres.NewBoardRepository(db),
		}
		if cfg.SeedOnStart {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		logger.Info("storage configured", "store", "postgres", "db", dbNameFromURL(cfg.DBURL))
	}

	rules := game.DefaultRules()
	idGen := idgen.NewRandomGenerator()

	playerSvc := usecase.NewPlayerService(repos.players, idGen, logger)
	ledgerSvc := usecase.NewLedgerService(repos.players, repos.entries, idGen, logger)
	roundSvc := usecase.NewRoundService(repos.rounds, repos.boards, repos.players, rules, idGen, logger)
	purchaseSvc := usecase.NewPurchaseService(repos.players, repos.rounds, repos.boards, repos.entries, rules, idGen, logger)
	settlementSvc := usecase.NewSettlementService(repos.rounds, repos.boards, repos.players, logger)

	handler := httpapi.NewHandler(
		playerSvc,
		ledgerSvc,
		roundSvc,
		purchaseSvc,
		settlementSvc,
		cfg.SettlementAuditWorkers,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminAPIToken)

	if cfg.HTTPAddr == "" {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:       server,
		cfg:          cfg,
		logger:       logger,
		db:           db,
		roundService: roundSvc,
	}, nil
}

func buildMemoryRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	var seedPlayers []player.Player
	if cfg.SeedOnStart {
		seedPlayers = memory.SeedPlayers()
	}

	players := memory.NewPlayerRepository(seedPlayers)
	entries := memory.NewLedgerRepository()
	rounds := memory.NewRoundRepository()
	boards := memory.NewBoardRepository(entries, rounds)

	if cfg.SeedOnStart {
		for _, rd := range memory.SeedRounds() {
			if _, err := rounds.Create(ctx, rd); err != nil {
				return repositories{}, fmt.Errorf("seed round %d/%d: %w", rd.Year, rd.WeekNumber, err)
			}
		}
	}

	return repositories{
		players: players,
		entries: entries,
		rounds:  rounds,
		boards:  boards,
	}, nil
}

// StartRoundPromoter runs the weekly rollover in the background: whenever no
// round is Active, the earliest Pending round is promoted.
func (a *App) StartRoundPromoter() {
	if a.stopPromoter != nil {
		return
	}
	a.stopPromoter = make(chan struct{})
	a.promoterDone = make(chan struct{})

	go func() {
		defer close(a.promoterDone)

		ticker := time.NewTicker(a.cfg.RoundPromoteInterval)
		defer ticker.Stop()

		for {
			select {
			case <-a.stopPromoter:
				return
			case <-ticker.C:
				a.promoteOnce()
			}
		}
	}()
}

func (a *App) promoteOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rd, promoted, err := a.roundService.PromoteNextIfNoneActive(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "round promotion tick failed", "error", err)
		return
	}
	if promoted {
		a.logger.InfoContext(ctx, "round promoted",
			"round_id", rd.ID,
			"year", rd.Year,
			"week", rd.WeekNumber,
		)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.stopPromoter != nil {
		close(a.stopPromoter)
		select {
		case <-a.promoterDone:
		case <-ctx.Done():
		}
		a.stopPromoter = nil
	}

	err := a.Server.Shutdown(ctx)

	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close database: %w", closeErr)
		}
	}

	return err
}
