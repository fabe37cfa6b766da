// Package pipeline turns a (location, industries) request into an ordered
// list of scored leads.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/cost"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/metrics"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

// MaxConcurrency caps parallel candidate evaluations.
const MaxConcurrency = 32

// Searcher finds candidates for one industry in one location.
type Searcher interface {
	Search(ctx context.Context, location, industry string) []model.Candidate
}

// DetailFetcher enriches one candidate.
type DetailFetcher interface {
	Detail(ctx context.Context, placeID string) model.PlaceDetail
}

// Analyzer scores one website.
type Analyzer interface {
	Analyze(ctx context.Context, website string) model.SeoAssessment
	Enabled() bool
}

// Request is one lead-finding run.
type Request struct {
	Location       string
	Industries     []string
	MaxPerIndustry int
}

// Result is the outcome of a run. Leads are grouped by industry in request
// order, then by search order within each industry.
type Result struct {
	RunID            string        `json:"run_id"`
	Leads            []model.Lead  `json:"results"`
	Usage            cost.Usage    `json:"usage"`
	EstimatedCostUSD float64       `json:"estimated_cost_usd"`
	Duration         time.Duration `json:"duration"`
}

// Pipeline orchestrates search, detail, analysis, and classification.
type Pipeline struct {
	search      Searcher
	details     DetailFetcher
	analyzer    Analyzer
	costCalc    *cost.Calculator
	concurrency int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency sets how many candidates are evaluated at once. Values
// are clamped to [1, MaxConcurrency].
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		switch {
		case n < 1:
			n = 1
		case n > MaxConcurrency:
			n = MaxConcurrency
		}
		p.concurrency = n
	}
}

// WithRates sets the pricing used for run cost estimates.
func WithRates(r cost.Rates) Option {
	return func(p *Pipeline) { p.costCalc = cost.NewCalculator(r) }
}

// New creates a Pipeline. The default is strictly sequential evaluation.
func New(s Searcher, d DetailFetcher, a Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		search:      s,
		details:     d,
		analyzer:    a,
		costCalc:    cost.NewCalculator(cost.DefaultRates()),
		concurrency: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// job is one candidate's position in the final output.
type job struct {
	industry  string
	candidate model.Candidate
}

// Run evaluates every industry in req. Upstream failures degrade to fallback
// values inside each lead; only a cancelled context returns an error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("location", req.Location))
	log.Info("pipeline: starting run",
		zap.Strings("industries", req.Industries),
		zap.Int("max_per_industry", req.MaxPerIndustry),
		zap.Int("concurrency", p.concurrency),
	)

	// Phase 1: search each industry, one slot per industry.
	found := make([][]model.Candidate, len(req.Industries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, industry := range req.Industries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log.Info("pipeline: searching", zap.String("industry", industry))
			found[i] = limit(p.search.Search(gctx, req.Location, industry), req.MaxPerIndustry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: search")
	}

	var jobs []job
	for i, candidates := range found {
		for _, c := range candidates {
			jobs = append(jobs, job{industry: req.Industries[i], candidate: c})
		}
	}

	// Phase 2: evaluate each candidate into its own slot.
	leads := make([]model.Lead, len(jobs))
	var analyses atomic.Int64
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lead, analyzed := p.evaluate(gctx, req.Location, j)
			if analyzed {
				analyses.Add(1)
			}
			leads[i] = lead
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: evaluate")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run cancelled")
	}

	for _, l := range leads {
		metrics.RecordLead(l.Category)
	}

	usage := cost.Usage{
		TextSearches: len(req.Industries),
		Details:      len(jobs),
		Analyses:     int(analyses.Load()),
	}
	result := &Result{
		RunID:            runID,
		Leads:            leads,
		Usage:            usage,
		EstimatedCostUSD: p.costCalc.Estimate(usage),
		Duration:         time.Since(start),
	}

	log.Info("pipeline: run complete",
		zap.Int("leads", len(leads)),
		zap.Float64("estimated_cost_usd", result.EstimatedCostUSD),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// evaluate runs detail, analysis, and classification for one candidate. The
// bool reports whether the page-quality provider was called.
func (p *Pipeline) evaluate(ctx context.Context, location string, j job) (model.Lead, bool) {
	zap.L().Info("pipeline: analyzing",
		zap.String("industry", j.industry),
		zap.String("business", j.candidate.Name),
	)

	detail := p.details.Detail(ctx, j.candidate.PlaceID)

	website := ""
	if detail.HasWebsite() {
		website = detail.Website
	}
	assessment := p.analyzer.Analyze(ctx, website)

	return model.NewLead(j.industry, location, j.candidate, detail, assessment),
		website != "" && p.analyzer.Enabled()
}

// limit returns at most n candidates, keeping search order.
func limit(candidates []model.Candidate, n int) []model.Candidate {
	if n <= 0 {
		return nil
	}
	if len(candidates) > n {
		return candidates[:n]
	}
	return candidates
}
