// Package places turns Google Places responses into lead candidates and
// detail records. Upstream failures never escape this package: Search
// degrades to no candidates and Detail to an all-defaults record.
package places

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/metrics"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/resilience"
	"github.com/lelandsequel/CL-SEO-AUTO/pkg/google"
)

const defaultRateLimit = 10

// Query builds the free-text search for one industry in one location.
func Query(industry, location string) string {
	return industry + " in " + location
}

// Provider wraps a google.Client with rate limiting and optional retries.
type Provider struct {
	google  google.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewProvider creates a Provider. rateLimit is in requests per second; a
// non-positive value uses the default of 10.
func NewProvider(g google.Client, rateLimit float64, retry resilience.RetryConfig) *Provider {
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	return &Provider{
		google:  g,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		retry:   retry,
	}
}

// Search returns the candidates matching industry in location, in provider
// order. Any failure or non-OK status yields an empty result.
func (p *Provider) Search(ctx context.Context, location, industry string) []model.Candidate {
	query := Query(industry, location)
	log := zap.L().With(zap.String("query", query))

	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger(metrics.ServiceTextSearch, "search")
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.TextSearchResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "places: rate limit wait")
		}
		resp, err := p.google.TextSearch(ctx, query)
		if err == nil && resp == nil {
			err = eris.New("places: empty search response")
		}
		return resp, err
	})
	if err != nil {
		metrics.RecordUpstream(metrics.ServiceTextSearch, metrics.OutcomeError)
		log.Warn("places: search failed", zap.Error(err))
		return nil
	}

	if resp.Status != google.StatusOK {
		outcome := metrics.OutcomeError
		if resp.Status == google.StatusZeroResults {
			outcome = metrics.OutcomeNoResult
		}
		metrics.RecordUpstream(metrics.ServiceTextSearch, outcome)
		log.Warn("places: search returned no results",
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage),
		)
		return nil
	}
	metrics.RecordUpstream(metrics.ServiceTextSearch, metrics.OutcomeOK)

	candidates := make([]model.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.PlaceID == "" {
			log.Debug("places: skipping result without place_id", zap.String("name", r.Name))
			continue
		}
		candidates = append(candidates, model.Candidate{PlaceID: r.PlaceID, Name: r.Name})
	}

	log.Debug("places: search complete", zap.Int("candidates", len(candidates)))
	return candidates
}

// Detail fetches the enrichment fields for one place. Fields the provider
// omits keep their defaults; a failed call returns model.DefaultPlaceDetail.
func (p *Provider) Detail(ctx context.Context, placeID string) model.PlaceDetail {
	log := zap.L().With(zap.String("place_id", placeID))
	detail := model.DefaultPlaceDetail()

	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger(metrics.ServiceDetails, "detail")
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.DetailsResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "places: rate limit wait")
		}
		resp, err := p.google.PlaceDetails(ctx, placeID, google.DetailFields)
		if err == nil && resp == nil {
			err = eris.New("places: empty detail response")
		}
		return resp, err
	})
	if err != nil {
		metrics.RecordUpstream(metrics.ServiceDetails, metrics.OutcomeError)
		log.Warn("places: detail fetch failed", zap.Error(err))
		return detail
	}

	if resp.Status != google.StatusOK {
		metrics.RecordUpstream(metrics.ServiceDetails, metrics.OutcomeNoResult)
		log.Warn("places: detail returned non-OK status", zap.String("status", resp.Status))
	} else {
		metrics.RecordUpstream(metrics.ServiceDetails, metrics.OutcomeOK)
	}

	r := resp.Result
	detail.Name = r.Name
	if r.FormattedPhoneNumber != "" {
		detail.Phone = r.FormattedPhoneNumber
	}
	if r.Website != "" {
		detail.Website = r.Website
	}
	if r.Rating != nil {
		detail.Rating = *r.Rating
	}
	if r.UserRatingsTotal != nil {
		detail.Reviews = *r.UserRatingsTotal
	}
	return detail
}
