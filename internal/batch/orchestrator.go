// Package batch drives a task's rows through search, scoring and the
// optional AI judgment pass. Row failures never abort the batch; they
// become zero-confidence result rows.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/judge"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/match"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/task"
)

// Fetcher retrieves raw search results for one business query.
type Fetcher interface {
	Fetch(ctx context.Context, q model.BusinessQuery) ([]model.RawResult, error)
}

// Orchestrator runs batches against a fetcher and the task registry.
type Orchestrator struct {
	fetcher  Fetcher
	judge    judge.Judge // nil when the AI adapter is off
	registry *task.Registry
	cfg      config.Config
	limiter  *rate.Limiter
}

// New creates an orchestrator. Pass a nil judge to run pure rule-based
// matching.
func New(fetcher Fetcher, j judge.Judge, registry *task.Registry, cfg config.Config) *Orchestrator {
	limit := rate.Inf
	if cfg.Batch.DelayMillis > 0 {
		limit = rate.Every(time.Duration(cfg.Batch.DelayMillis) * time.Millisecond)
	}
	return &Orchestrator{
		fetcher:  fetcher,
		judge:    j,
		registry: registry,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run processes every row of the task and marks it terminal. Results
// land at their original row index regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, taskID string) error {
	t, err := o.registry.Get(taskID)
	if err != nil {
		return err
	}
	if len(t.Queries) == 0 {
		return o.registry.Fail(taskID, "no input rows to process")
	}
	if err := o.registry.SetRunning(taskID); err != nil {
		return err
	}

	zap.L().Info("batch: starting",
		zap.String("task", taskID),
		zap.Int("rows", len(t.Queries)),
		zap.Int("concurrency", o.cfg.Batch.Concurrency),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Batch.Concurrency)

	for i, q := range t.Queries {
		g.Go(func() error {
			if err := o.limiter.Wait(gCtx); err != nil {
				o.record(taskID, i, failedRow(q, err))
				return nil
			}

			rowCtx := gCtx
			if secs := o.cfg.Batch.RowTimeoutSecs; secs > 0 {
				var cancel context.CancelFunc
				rowCtx, cancel = context.WithTimeout(gCtx, time.Duration(secs)*time.Second)
				defer cancel()
			}

			o.record(taskID, i, o.processRow(rowCtx, q))
			return nil // don't abort batch on individual failure
		})
	}

	_ = g.Wait()

	if ctx.Err() != nil {
		return o.registry.Fail(taskID, "batch cancelled: "+ctx.Err().Error())
	}

	zap.L().Info("batch: complete", zap.String("task", taskID))
	return o.registry.Complete(taskID)
}

// processRow resolves one business to a match result. Agent mode asks
// the model to search on its own first; rerank mode scores fetched
// results and lets the model override the pick.
func (o *Orchestrator) processRow(ctx context.Context, q model.BusinessQuery) model.MatchResult {
	if !q.Valid() {
		return model.MatchResult{
			BusinessName: q.Name,
			Location:     q.Location,
			Notes:        "empty business name",
		}
	}

	if o.judge != nil && o.cfg.Anthropic.Mode == "agent" {
		if v, err := o.judge.SearchAndJudge(ctx, q); err == nil {
			return verdictResult(q, v)
		}
		// fall through to the search-backed path
	}

	results, err := o.fetcher.Fetch(ctx, q)
	if err != nil {
		zap.L().Warn("batch: row search failed",
			zap.String("business", q.Name),
			zap.Error(err),
		)
		return failedRow(q, err)
	}

	candidates := match.FilterFacebook(results)
	ruled := match.Rank(q, candidates, o.cfg.Match)
	if len(candidates) == 0 && len(results) > 0 {
		ruled.Notes = "no facebook.com results"
	}

	if o.judge != nil && o.cfg.Anthropic.Mode == "rerank" && len(candidates) > 0 {
		if v, err := o.judge.Judge(ctx, q, candidates); err == nil {
			return verdictResult(q, v)
		}
	}

	return ruled
}

func (o *Orchestrator) record(taskID string, index int, result model.MatchResult) {
	if err := o.registry.RecordResult(taskID, index, result); err != nil {
		zap.L().Error("batch: record result",
			zap.String("task", taskID),
			zap.Int("index", index),
			zap.Error(err),
		)
	}
}

func verdictResult(q model.BusinessQuery, v *judge.Verdict) model.MatchResult {
	return model.MatchResult{
		BusinessName: q.Name,
		Location:     q.Location,
		FacebookURL:  v.URL,
		Type:         v.Type,
		Confidence:   v.Confidence,
		Notes:        "AI: " + v.Reasoning,
	}
}

func failedRow(q model.BusinessQuery, err error) model.MatchResult {
	return model.MatchResult{
		BusinessName: q.Name,
		Location:     q.Location,
		Notes:        fmt.Sprintf("search failed: %v", err),
	}
}
