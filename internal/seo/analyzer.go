// Package seo scores a business website from a PageSpeed Insights report.
package seo

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/metrics"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/resilience"
	"github.com/lelandsequel/CL-SEO-AUTO/pkg/pagespeed"
)

// Thresholds for issue derivation.
const (
	SlowPerformanceThreshold = 0.5
	GoodSEOThreshold         = model.ColdThreshold
)

// DefaultCategories are requested from PageSpeed when none are configured.
var DefaultCategories = []string{pagespeed.CategorySEO, pagespeed.CategoryPerformance}

// Analyzer derives an SeoAssessment for a website.
type Analyzer struct {
	client     pagespeed.Client
	categories []string
	timeout    time.Duration
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCategories sets the report categories requested per analysis.
func WithCategories(categories ...string) Option {
	return func(a *Analyzer) {
		if len(categories) > 0 {
			a.categories = categories
		}
	}
}

// WithTimeout bounds each PageSpeed call.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRetry sets the retry policy for PageSpeed calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(a *Analyzer) { a.retry = cfg }
}

// WithCircuitBreaker guards PageSpeed calls with cb. A nil breaker is a no-op.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(a *Analyzer) { a.breaker = cb }
}

// NewAnalyzer creates an Analyzer. A nil client disables analysis: every
// website then receives the no-website assessment.
func NewAnalyzer(client pagespeed.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:     client,
		categories: DefaultCategories,
		timeout:    pagespeed.DefaultTimeout,
		retry:      resilience.SingleAttempt(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Enabled reports whether the analyzer calls PageSpeed at all.
func (a *Analyzer) Enabled() bool {
	return a.client != nil
}

// Analyze scores website. It never fails: a missing website or credential
// yields model.NoWebsiteAssessment and a failed call yields
// model.FailedAssessment.
func (a *Analyzer) Analyze(ctx context.Context, website string) model.SeoAssessment {
	if website == "" || website == model.NotAvailable || !a.Enabled() {
		metrics.RecordUpstream(metrics.ServicePageSpeed, metrics.OutcomeSkipped)
		zap.L().Debug("seo: no website to analyze", zap.String("website", website))
		return model.NoWebsiteAssessment()
	}

	log := zap.L().With(zap.String("website", website))

	cfg := a.retry
	cfg.OnRetry = resilience.RetryLogger(metrics.ServicePageSpeed, "analyze")

	start := time.Now()
	report, err := resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) (*pagespeed.Report, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*pagespeed.Report, error) {
			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			return a.client.Run(callCtx, website, a.categories...)
		})
	})
	metrics.RecordAnalysis(time.Since(start))

	if err != nil || report == nil {
		metrics.RecordUpstream(metrics.ServicePageSpeed, metrics.OutcomeError)
		log.Warn("seo: analysis failed",
			zap.String("circuit", a.breaker.State().String()),
			zap.Error(err),
		)
		return model.FailedAssessment()
	}
	metrics.RecordUpstream(metrics.ServicePageSpeed, metrics.OutcomeOK)

	assessment := Assess(report)
	log.Debug("seo: analysis complete",
		zap.Int("score", assessment.Score),
		zap.Strings("issues", assessment.Messages()),
	)
	return assessment
}

// Assess applies the scoring rules to a PageSpeed report. Issues are
// appended in a fixed order. A missing audit never raises its issue.
func Assess(r *pagespeed.Report) model.SeoAssessment {
	seoCategory, ok := r.CategoryScore(pagespeed.CategorySEO)
	if !ok {
		seoCategory = model.DefaultSEOCategoryScore
	}
	score := int(math.Round(seoCategory * 100))

	perf, ok := r.CategoryScore(pagespeed.CategoryPerformance)
	if !ok {
		perf = model.DefaultPerformanceScore
	}

	var issues []model.Issue
	if perf < SlowPerformanceThreshold {
		issues = append(issues, model.IssueSlowPageSpeed)
	}
	if score < GoodSEOThreshold {
		issues = append(issues, model.IssueSEOImprovements)
	}
	if failedAudit(r, pagespeed.AuditMetaDescription) {
		issues = append(issues, model.IssueMissingMetaDescription)
	}
	if failedAudit(r, pagespeed.AuditViewport) {
		issues = append(issues, model.IssueNoMobileOptimization)
	}
	if failedAudit(r, pagespeed.AuditStructuredData) {
		issues = append(issues, model.IssueMissingSchemaMarkup)
	}

	return model.NewAssessment(score, issues)
}

func failedAudit(r *pagespeed.Report, id string) bool {
	v, ok := r.AuditScore(id)
	return ok && v == 0
}
