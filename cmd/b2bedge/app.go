package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/alerts"
	"github.com/yourusername/b2b-edge/internal/backtest"
	"github.com/yourusername/b2b-edge/internal/config"
	"github.com/yourusername/b2b-edge/internal/database"
	"github.com/yourusername/b2b-edge/internal/datasource"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/ledger"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/repository"
	"github.com/yourusername/b2b-edge/internal/service"
	"github.com/yourusername/b2b-edge/internal/staking"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// app holds the dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	db       *database.DB
	repos    *repository.Repositories
	sizer    *staking.Sizer
	book     *ledger.Ledger
	factory  *datasource.Factory
	notifier service.Notifier
}

// newApp connects the database when the ledger lives in PostgreSQL and
// builds the sizer. The ledger itself is opened lazily by openLedger.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	sizer, err := staking.NewSizer(cfg.SizerConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create stake sizer: %w", err)
	}
	a := &app{
		cfg:      cfg,
		log:      log,
		sizer:    sizer,
		notifier: service.NopNotifier{},
	}

	if cfg.Ledger.Backend == "postgres" {
		db, err := database.Initialize(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.repos = repos
	}
	return a, nil
}

// openLedger loads the wager book from the configured store
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, error) {
	if a.book != nil {
		return a.book, nil
	}
	var store ledger.Store
	if a.repos != nil {
		store = a.repos.Ledger
	} else {
		store = ledger.NewFileStore(a.cfg.Ledger.Path)
	}
	book, err := ledger.Open(ctx, store, a.sizer, a.cfg.TierTables(), ledger.Options{
		InitialBankroll:      a.cfg.Ledger.InitialBankroll,
		LiveWinRateMinSample: a.cfg.Staking.LiveWinRateMinSample,
		DefaultOdds:          a.cfg.Staking.DefaultOdds,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.book = book
	return book, nil
}

// enableAlerts swaps in the Telegram notifier when alerts are configured
func (a *app) enableAlerts() error {
	if !a.cfg.Alerts.Enabled {
		return nil
	}
	tg, err := alerts.NewTelegramNotifier(a.cfg.Alerts.TelegramBotToken, a.cfg.Alerts.TelegramChatID, a.log)
	if err != nil {
		return err
	}
	a.notifier = tg
	return nil
}

// sports resolves the --sport flag against the configuration
func (a *app) sports() ([]config.SportConfig, error) {
	if sportName == "" {
		enabled := a.cfg.EnabledSports()
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no sports enabled")
		}
		return enabled, nil
	}
	sc, err := a.sport()
	if err != nil {
		return nil, err
	}
	return []config.SportConfig{sc}, nil
}

// sport resolves exactly one sport, defaulting to the first enabled one
func (a *app) sport() (config.SportConfig, error) {
	if sportName == "" {
		enabled := a.cfg.EnabledSports()
		if len(enabled) == 0 {
			return config.SportConfig{}, fmt.Errorf("no sports enabled")
		}
		return enabled[0], nil
	}
	sc, ok := a.cfg.Sport(models.Sport(sportName))
	if !ok {
		return config.SportConfig{}, fmt.Errorf("%w: %s", models.ErrUnknownSport, sportName)
	}
	return sc, nil
}

// classifier builds the sport's classifier from its resolved preset
func (a *app) classifier(sc config.SportConfig) (*strategy.Classifier, string, error) {
	thresholds, preset, err := a.cfg.Thresholds(sc)
	if err != nil {
		return nil, "", err
	}
	c, err := strategy.NewClassifier(thresholds)
	if err != nil {
		return nil, "", fmt.Errorf("invalid %s thresholds: %w", sc.Name, err)
	}
	return c, preset, nil
}

// runner wires one recommender per sport over the shared data sources
func (a *app) runner(ctx context.Context, sports []config.SportConfig) (*service.Runner, error) {
	book, err := a.openLedger(ctx)
	if err != nil {
		return nil, err
	}
	if a.factory == nil {
		a.factory = datasource.NewFactory(a.cfg, a.log)
	}

	recs := make([]*service.Recommender, 0, len(sports))
	for _, sc := range sports {
		sport := models.Sport(sc.Name)
		schedule, err := a.factory.ScheduleFor(sport)
		if err != nil {
			return nil, err
		}
		classifier, preset, err := a.classifier(sc)
		if err != nil {
			return nil, err
		}
		strat := strategy.NewRestFormStrategy(preset, classifier, sc.Tiers, a.cfg.Staking.DefaultOdds, nil, a.log)
		recs = append(recs, service.NewRecommender(service.RecommenderConfig{
			Sport:        sport,
			Season:       sc.Season,
			BackToBack:   a.cfg.BackToBack(),
			FormWindow:   a.cfg.Engine.FormWindow,
			UpcomingDays: a.cfg.Engine.UpcomingDays,
		}, schedule, a.factory.Standings(), strat, book, a.notifier, a.log))
	}
	return service.NewRunner(recs, a.log), nil
}

// history loads a multi-season game log from a CSV file, or from the
// archived games table when no file is given
func (a *app) history(ctx context.Context, sport models.Sport, csvPath string) (*gamelog.Log, error) {
	if csvPath != "" {
		return datasource.LoadLog(csvPath, sport)
	}
	if a.repos == nil {
		return nil, fmt.Errorf("--csv is required unless the postgres backend holds archived games")
	}
	seasons, err := a.repos.Game.Seasons(ctx, sport)
	if err != nil {
		return nil, err
	}
	var games []models.GameRecord
	for _, season := range seasons {
		batch, err := a.repos.Game.GetSeason(ctx, sport, season)
		if err != nil {
			return nil, err
		}
		games = append(games, batch...)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no archived %s games", models.ErrNotFound, sport)
	}
	return gamelog.NewLog(games), nil
}

// backtestOptions maps configuration onto replay and simulation options
func (a *app) backtestOptions(sc config.SportConfig) backtest.Options {
	opts := backtest.DefaultOptions()
	opts.BackToBack = a.cfg.BackToBack()
	opts.FormWindow = a.cfg.Engine.FormWindow
	opts.AllowAway = sc.AllowAwayBets
	opts.MinSample = a.cfg.Optimizer.MinSample
	opts.Workers = a.cfg.Optimizer.Workers
	opts.InitialBankroll = a.cfg.Ledger.InitialBankroll
	opts.Odds = a.cfg.Staking.DefaultOdds
	opts.MaxBetPercent = a.cfg.Optimizer.MaxBetPercent
	return opts
}

func (a *app) grid() backtest.Grid {
	return backtest.Grid{
		MinRestedWins: a.cfg.Optimizer.MinRestedWins,
		AdvantageS:    a.cfg.Optimizer.AdvantageS,
		AdvantageA:    a.cfg.Optimizer.AdvantageA,
		AdvantageB:    a.cfg.Optimizer.AdvantageB,
	}
}

// Close releases the database pool and HTTP client
func (a *app) Close() {
	if a.factory != nil {
		if err := a.factory.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close data source client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
