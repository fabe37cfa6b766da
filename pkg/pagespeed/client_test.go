package pagespeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{
  "lighthouseResult": {
    "categories": {
      "seo": {"score": 0.64},
      "performance": {"score": 0.31}
    },
    "audits": {
      "meta-description": {"score": 0},
      "viewport": {"score": 1},
      "structured-data": {"score": null}
    }
  }
}`

func TestRun_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/runPagespeed", r.URL.Path)
		assert.Equal(t, "https://acme.example", r.URL.Query().Get("url"))
		assert.Equal(t, "psi-key", r.URL.Query().Get("key"))
		assert.Equal(t, []string{"seo", "performance"}, r.URL.Query()["category"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleReport))
	}))
	defer srv.Close()

	client := NewClient("psi-key", WithBaseURL(srv.URL))
	rep, err := client.Run(context.Background(), "https://acme.example", CategorySEO, CategoryPerformance)
	require.NoError(t, err)

	seo, ok := rep.CategoryScore(CategorySEO)
	require.True(t, ok)
	assert.InDelta(t, 0.64, seo, 0.0001)

	perf, ok := rep.CategoryScore(CategoryPerformance)
	require.True(t, ok)
	assert.InDelta(t, 0.31, perf, 0.0001)

	meta, ok := rep.AuditScore(AuditMetaDescription)
	require.True(t, ok)
	assert.Zero(t, meta)

	vp, ok := rep.AuditScore(AuditViewport)
	require.True(t, ok)
	assert.InDelta(t, 1.0, vp, 0.0001)

	_, ok = rep.AuditScore(AuditStructuredData)
	assert.False(t, ok, "null audit score should read as missing")

	_, ok = rep.AuditScore("not-an-audit")
	assert.False(t, ok)
}

func TestRun_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid URL"}}`))
	}))
	defer srv.Close()

	client := NewClient("psi-key", WithBaseURL(srv.URL))
	rep, err := client.Run(context.Background(), "not a url")

	assert.Error(t, err)
	assert.Nil(t, rep)
	assert.Contains(t, err.Error(), "400")
}

func TestRun_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	client := NewClient("psi-key", WithBaseURL(srv.URL))
	rep, err := client.Run(context.Background(), "https://acme.example")

	assert.Error(t, err)
	assert.Nil(t, rep)
}

func TestRun_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient("psi-key", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	rep, err := client.Run(context.Background(), "https://slow.example")

	assert.Error(t, err)
	assert.Nil(t, rep)
}

func TestReport_MissingLighthouseResult(t *testing.T) {
	rep, err := NewReport([]byte(`{"id":"https://acme.example"}`))
	require.NoError(t, err)

	_, ok := rep.CategoryScore(CategorySEO)
	assert.False(t, ok)
	_, ok = rep.AuditScore(AuditViewport)
	assert.False(t, ok)
}

func TestWithTimeout_LeavesCallerClientUnchanged(t *testing.T) {
	hc := &http.Client{Timeout: 5 * time.Second}
	c := NewClient("psi-key", WithHTTPClient(hc), WithTimeout(30*time.Second)).(*httpClient)

	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, 30*time.Second, c.http.Timeout)
	assert.NotSame(t, hc, c.http)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("psi-key").(*httpClient)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}
