// Package pagespeed is a client for the PageSpeed Insights v5 API.
package pagespeed

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5"
	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 30 * time.Second
)

// Lighthouse category and audit identifiers.
const (
	CategorySEO         = "seo"
	CategoryPerformance = "performance"

	AuditMetaDescription = "meta-description"
	AuditViewport        = "viewport"
	AuditStructuredData  = "structured-data"
)

// Client runs PageSpeed analyses.
type Client interface {
	Run(ctx context.Context, pageURL string, categories ...string) (*Report, error)
}

// Report wraps the raw Lighthouse result. Lookups distinguish a missing
// value from a zero score.
type Report struct {
	raw []byte
}

// NewReport wraps a raw PageSpeed response body.
func NewReport(raw []byte) (*Report, error) {
	if !gjson.ValidBytes(raw) {
		return nil, eris.New("pagespeed: malformed response")
	}
	return &Report{raw: raw}, nil
}

// CategoryScore returns the [0,1] score of a Lighthouse category.
func (r *Report) CategoryScore(id string) (float64, bool) {
	return r.number("lighthouseResult.categories." + id + ".score")
}

// AuditScore returns the score of a Lighthouse audit.
func (r *Report) AuditScore(id string) (float64, bool) {
	return r.number("lighthouseResult.audits." + id + ".score")
}

func (r *Report) number(path string) (float64, bool) {
	res := gjson.GetBytes(r.raw, path)
	if res.Type != gjson.Number {
		return 0, false
	}
	return res.Float(), true
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a client passed to WithHTTPClient is left unchanged.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a PageSpeed Insights client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *httpClient) Run(ctx context.Context, pageURL string, categories ...string) (*Report, error) {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("key", c.apiKey)
	for _, cat := range categories {
		params.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/runPagespeed?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("pagespeed: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return NewReport(body)
}
