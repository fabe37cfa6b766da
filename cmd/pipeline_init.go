package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/config"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/cost"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/pipeline"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/places"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/resilience"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/seo"
	"github.com/lelandsequel/CL-SEO-AUTO/pkg/google"
	"github.com/lelandsequel/CL-SEO-AUTO/pkg/pagespeed"
)

// pipelineEnv holds the clients and pipeline needed by find and serve.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Cost     *cost.Calculator
}

// initPipeline validates the configuration for mode and builds the
// pipeline. It performs no network activity.
func initPipeline(c *config.Config, mode string) (*pipelineEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	retry := resilience.NewRetryConfig(c.Retry.MaxAttempts, c.Retry.InitialBackoffMS)

	var googleOpts []google.Option
	if c.Google.BaseURL != "" {
		googleOpts = append(googleOpts, google.WithBaseURL(c.Google.BaseURL))
	}
	provider := places.NewProvider(google.NewClient(c.Google.Key, googleOpts...), c.Google.RateLimit, retry)

	analyzer := seo.NewAnalyzer(nil)
	if c.PageSpeed.Key == "" {
		zap.L().Warn(config.PageSpeedKeyEnv + " not set; websites will not be analyzed")
	} else {
		psOpts := []pagespeed.Option{pagespeed.WithTimeout(c.PageSpeed.Timeout())}
		if c.PageSpeed.BaseURL != "" {
			psOpts = append(psOpts, pagespeed.WithBaseURL(c.PageSpeed.BaseURL))
		}
		breaker := resilience.NewCircuitBreaker(
			c.Circuit.FailureThreshold,
			time.Duration(c.Circuit.ResetTimeoutSecs)*time.Second,
			func(from, to resilience.CircuitState) {
				zap.L().Warn("pagespeed circuit state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		)
		analyzer = seo.NewAnalyzer(
			pagespeed.NewClient(c.PageSpeed.Key, psOpts...),
			seo.WithCategories(c.PageSpeed.Categories...),
			seo.WithTimeout(c.PageSpeed.Timeout()),
			seo.WithRetry(retry),
			seo.WithCircuitBreaker(breaker),
		)
	}

	rates := ratesFromConfig(c.Pricing)
	p := pipeline.New(provider, provider, analyzer,
		pipeline.WithConcurrency(c.Pipeline.Concurrency),
		pipeline.WithRates(rates),
	)

	return &pipelineEnv{Pipeline: p, Cost: cost.NewCalculator(rates)}, nil
}

func ratesFromConfig(p config.PricingConfig) cost.Rates {
	return cost.Rates{
		PlacesTextSearch: p.Places.TextSearch,
		PlacesDetails:    p.Places.Details,
		PageSpeed:        p.PageSpeed.PerQuery,
	}
}
