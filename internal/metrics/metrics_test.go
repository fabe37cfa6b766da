package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "hot", CategoryLabel(model.CategoryHot))
	assert.Equal(t, "warm", CategoryLabel(model.CategoryWarm))
	assert.Equal(t, "cold", CategoryLabel(model.CategoryCold))
	assert.Equal(t, "other", CategoryLabel(model.Category("??")))
}

func TestRecordLead(t *testing.T) {
	before := testutil.ToFloat64(LeadsTotal.WithLabelValues("hot"))
	RecordLead(model.CategoryHot)
	after := testutil.ToFloat64(LeadsTotal.WithLabelValues("hot"))
	assert.InDelta(t, 1.0, after-before, 0.0001)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordUpstream(ServicePageSpeed, OutcomeOK)
	RecordAnalysis(1500 * time.Millisecond)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	output := string(body)
	assert.Contains(t, output, `seoleads_upstream_requests_total{outcome="ok",service="pagespeed"}`)
	assert.Contains(t, output, "seoleads_analysis_duration_seconds_bucket")
}
