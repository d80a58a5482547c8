package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// Grid lists the values searched for each threshold
type Grid struct {
	MinRestedWins []int `json:"min_rested_wins" yaml:"min_rested_wins"`
	AdvantageS    []int `json:"advantage_s" yaml:"advantage_s"`
	AdvantageA    []int `json:"advantage_a" yaml:"advantage_a"`
	AdvantageB    []int `json:"advantage_b" yaml:"advantage_b"`
}

// DefaultGrid is the search space used for the published thresholds
func DefaultGrid() Grid {
	return Grid{
		MinRestedWins: []int{3, 4},
		AdvantageS:    []int{2, 3},
		AdvantageA:    []int{1, 2},
		AdvantageB:    []int{2, 3},
	}
}

// Combinations expands the grid in order, dropping combinations where tier A
// is not strictly below S or tier B exceeds S
func (g Grid) Combinations(formWindow int, allowAway bool) []strategy.Thresholds {
	var out []strategy.Thresholds
	for _, minWins := range g.MinRestedWins {
		for _, s := range g.AdvantageS {
			for _, a := range g.AdvantageA {
				for _, b := range g.AdvantageB {
					t := strategy.Thresholds{
						GoodFormMinWins:    minWins,
						GoodFormMaxWins:    formWindow,
						MinAdvantageS:      s,
						MinAdvantageA:      a,
						MinAdvantageB:      b,
						EnableTierB:        true,
						AllowAwayAdvantage: allowAway,
					}
					if t.Validate() != nil {
						continue
					}
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// CandidateResult is one threshold combination's replayed performance
type CandidateResult struct {
	Thresholds  strategy.Thresholds  `json:"thresholds" yaml:"thresholds"`
	Overall     TierTable            `json:"overall" yaml:"overall"`
	BySeason    map[string]TierTable `json:"by_season" yaml:"by_season"`
	TotalGames  int                  `json:"total_games" yaml:"total_games"`
	MeanWinRate float64              `json:"mean_win_rate" yaml:"mean_win_rate"`
}

// Optimizer searches threshold grids over a replayed history
type Optimizer struct {
	opts   Options
	logger *logger.OptimizerLogger
}

// NewOptimizer creates an optimizer
func NewOptimizer(opts Options, log *logrus.Logger) (*Optimizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer options: %w", err)
	}
	return &Optimizer{
		opts:   opts,
		logger: logger.NewOptimizerLogger(logger.OrDiscard(log)),
	}, nil
}

// Optimize replays the log once, evaluates every grid combination on a
// bounded worker pool and returns the combinations meeting the sample floor,
// best mean tier win rate first
func (o *Optimizer) Optimize(ctx context.Context, l *gamelog.Log, grid Grid) ([]CandidateResult, error) {
	start := time.Now()
	games := Candidates(l, o.opts.BackToBack, o.opts.FormWindow)
	combos := grid.Combinations(o.opts.FormWindow, o.opts.AllowAway)
	o.logger.LogSearchStarted(len(games), len(combos), o.opts.MinSample)

	type job struct {
		index      int
		thresholds strategy.Thresholds
	}
	type result struct {
		index     int
		candidate CandidateResult
		err       error
	}

	jobs := make(chan job, len(combos))
	results := make(chan result, len(combos))

	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result{index: j.index, err: ctx.Err()}
					continue
				}
				c, err := Evaluate(games, j.thresholds)
				results <- result{index: j.index, candidate: c, err: err}
			}
		}()
	}

	for i, t := range combos {
		jobs <- job{index: i, thresholds: t}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	evaluated := make([]*CandidateResult, len(combos))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		c := r.candidate
		evaluated[r.index] = &c
	}
	if firstErr != nil {
		metrics.RecordOptimizerRun("failure", 0, 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to evaluate threshold grid: %w", firstErr)
	}

	accepted := make([]CandidateResult, 0, len(combos))
	for _, c := range evaluated {
		ok := c.TotalGames >= o.opts.MinSample
		o.logger.LogCandidate(c.Thresholds.Parameters(), c.TotalGames, c.MeanWinRate, ok)
		if ok {
			accepted = append(accepted, *c)
		}
	}
	RankCandidates(accepted)

	var bestParams map[string]interface{}
	bestRate := 0.0
	if len(accepted) > 0 {
		bestParams = accepted[0].Thresholds.Parameters()
		bestRate = accepted[0].MeanWinRate
	}
	o.logger.LogSearchCompleted(len(combos), len(accepted), bestParams, bestRate, float64(time.Since(start).Milliseconds()))
	metrics.RecordOptimizerRun("success", len(combos), len(accepted), time.Since(start).Seconds())

	return accepted, nil
}

// Evaluate classifies the replayed games with one threshold set
func Evaluate(games []ReplayedGame, t strategy.Thresholds) (CandidateResult, error) {
	classifier, err := strategy.NewClassifier(t)
	if err != nil {
		return CandidateResult{}, err
	}
	outcomes := Classify(games, classifier)

	bySeason := make(map[string][]Outcome)
	for _, o := range outcomes {
		bySeason[o.Game.Season] = append(bySeason[o.Game.Season], o)
	}
	seasons := make(map[string]TierTable, len(bySeason))
	for season, group := range bySeason {
		seasons[season] = CalculateTierStats(group)
	}

	overall := CalculateTierStats(outcomes)
	return CandidateResult{
		Thresholds:  t,
		Overall:     overall,
		BySeason:    seasons,
		TotalGames:  overall.TotalGames(),
		MeanWinRate: overall.MeanWinRate(),
	}, nil
}

// RankCandidates sorts by mean win rate descending. Equal rates keep grid order.
func RankCandidates(results []CandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MeanWinRate > results[j].MeanWinRate
	})
}
