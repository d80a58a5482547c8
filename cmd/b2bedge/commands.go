package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/b2b-edge/internal/backtest"
	"github.com/yourusername/b2b-edge/internal/datasource"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/service"
)

var (
	csvPath    string
	exportPath string
	tierName   string
	equityPath string
	seasonFlag string
	topN       int
	runLimit   int
	notify     bool
)

func init() {
	scanCmd.Flags().BoolVar(&notify, "notify", false, "Send placed and settled wagers to Telegram")
	settleCmd.Flags().BoolVar(&notify, "notify", false, "Send settled wagers to Telegram")

	ingestCmd.Flags().StringVar(&seasonFlag, "season", "", "Season label to archive (defaults to the sport's configured season)")

	optimizeCmd.Flags().StringVar(&csvPath, "csv", "", "Historical game log (date,season,home,away,home_score,away_score,ot_so)")
	optimizeCmd.Flags().StringVarP(&exportPath, "export", "o", "", "Write the best threshold set as YAML to this path")
	optimizeCmd.Flags().IntVar(&topN, "top", 10, "Number of ranked threshold sets to print")

	kellyCmd.Flags().StringVar(&csvPath, "csv", "", "Historical game log")
	kellyCmd.Flags().StringVar(&tierName, "tier", "S", "Tier to simulate")
	kellyCmd.Flags().StringVar(&equityPath, "equity-out", "", "Write the recommended fraction's equity curve as CSV")

	baselineCmd.Flags().StringVar(&csvPath, "csv", "", "Historical game log")

	runsCmd.Flags().IntVar(&runLimit, "limit", 5, "Number of recent runs to list")
}

// withApp builds the shared dependencies for one command invocation
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Settle finished games and record wagers for upcoming back-to-back matchups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if notify {
				if err := a.enableAlerts(); err != nil {
					return err
				}
			}
			sports, err := a.sports()
			if err != nil {
				return err
			}
			runner, err := a.runner(ctx, sports)
			if err != nil {
				return err
			}
			results, err := runner.RunCycle(ctx)
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), service.FormatScan(r))
			}
			return err
		})
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle pending wagers against completed games",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if notify {
				if err := a.enableAlerts(); err != nil {
					return err
				}
			}
			sports, err := a.sports()
			if err != nil {
				return err
			}
			runner, err := a.runner(ctx, sports)
			if err != nil {
				return err
			}
			settled, err := runner.SettleAll(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Settled %d wager(s)\n", settled)
			if err != nil {
				return err
			}
			current, _ := a.book.Bankroll()
			fmt.Fprintf(cmd.OutOrStdout(), "Bankroll: $%.2f\n", current)
			return nil
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print bankroll, tier and sport performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			book, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), service.FormatSummary(book, models.Sport(sportName)))
			return nil
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Archive a season's completed games into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if a.repos == nil {
				return fmt.Errorf("ingest requires the postgres ledger backend")
			}
			sc, err := a.sport()
			if err != nil {
				return err
			}
			season := seasonFlag
			if season == "" {
				season = sc.Season
			}
			a.factory = datasource.NewFactory(a.cfg, a.log)
			schedule, err := a.factory.ScheduleFor(models.Sport(sc.Name))
			if err != nil {
				return err
			}
			data, err := schedule.FetchSeason(ctx, models.Sport(sc.Name), season)
			if err != nil {
				return err
			}
			if err := a.repos.Game.UpsertBatch(ctx, data.Completed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d %s games for season %s\n", len(data.Completed), sc.Name, season)
			return nil
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search the threshold grid over historical seasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			sc, err := a.sport()
			if err != nil {
				return err
			}
			sport := models.Sport(sc.Name)
			history, err := a.history(ctx, sport, csvPath)
			if err != nil {
				return err
			}
			optimizer, err := backtest.NewOptimizer(a.backtestOptions(sc), a.log)
			if err != nil {
				return err
			}
			results, err := optimizer.Optimize(ctx, history, a.grid())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, backtest.GenerateOptimizerReport(results, topN))
			if len(results) == 0 {
				return nil
			}
			best := results[0]
			seasons := history.Seasons()
			fmt.Fprint(out, backtest.GenerateSeasonReport(best, seasons))
			metrics.UpdateBestWinRate(string(sport), best.MeanWinRate)

			path := exportPath
			if path == "" {
				path = a.cfg.Optimizer.ExportPath
			}
			if path != "" {
				if err := backtest.ExportThresholds(best, path); err != nil {
					return fmt.Errorf("failed to export thresholds: %w", err)
				}
				fmt.Fprintf(out, "Exported best thresholds to %s\n", path)
			}

			if a.repos != nil {
				run, err := backtest.NewOptimizationRun(sport, seasons, best, time.Now())
				if err != nil {
					return err
				}
				if err := a.repos.OptimizationRun.Save(ctx, run); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var kellyCmd = &cobra.Command{
	Use:   "kelly",
	Short: "Compare Kelly fractions over a tier's historical outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			tier, err := models.ParseTier(tierName)
			if err != nil {
				return err
			}
			sc, err := a.sport()
			if err != nil {
				return err
			}
			history, err := a.history(ctx, models.Sport(sc.Name), csvPath)
			if err != nil {
				return err
			}
			classifier, _, err := a.classifier(sc)
			if err != nil {
				return err
			}
			opts := a.backtestOptions(sc)
			validator, err := backtest.NewKellyValidator(opts, a.sizer, a.log)
			if err != nil {
				return err
			}

			outcomes := backtest.Replay(history, classifier, opts)
			analysis := validator.AnalyzeTier(outcomes, tier, a.cfg.Optimizer.KellyFractions)
			fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateKellyReport(analysis))

			if equityPath != "" {
				for _, r := range analysis.Results {
					if r.Fraction == analysis.Recommended {
						if err := os.WriteFile(equityPath, []byte(r.EquityCurve.ToCSV()), 0o644); err != nil {
							return fmt.Errorf("failed to write equity curve: %w", err)
						}
						break
					}
				}
			}
			return nil
		})
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Report rested-versus-back-to-back win rates and team records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			sc, err := a.sport()
			if err != nil {
				return err
			}
			history, err := a.history(ctx, models.Sport(sc.Name), csvPath)
			if err != nil {
				return err
			}
			games := backtest.Candidates(history, a.cfg.BackToBack(), a.cfg.Engine.FormWindow)
			fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateBaselineReport(
				backtest.CalculateBaseline(games),
				backtest.TeamB2BPerformance(games),
			))
			return nil
		})
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent optimizer runs stored in PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if a.repos == nil {
				return fmt.Errorf("runs requires the postgres ledger backend")
			}
			sc, err := a.sport()
			if err != nil {
				return err
			}
			runs, err := a.repos.OptimizationRun.GetLatest(ctx, models.Sport(sc.Name), runLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No optimizer runs stored for %s\n", sc.Name)
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %s  games=%d  mean=%.1f%%  thresholds=%s\n",
					run.CreatedAt.Format(time.RFC3339), run.ID, run.TotalGames, run.MeanWinRate, string(run.Thresholds))
			}
			return nil
		})
	},
}
