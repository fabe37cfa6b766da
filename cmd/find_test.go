package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/config"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/report"
)

// fakePlaces serves Text Search and Place Details for one dentist without a
// website, plus an empty result for every other query.
func fakePlaces(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/textsearch/json":
			if r.URL.Query().Get("query") == "dentists in Seattle, WA" {
				_, _ = w.Write([]byte(`{"status":"OK","results":[{"place_id":"p1","name":"Smile Dental"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		case "/details/json":
			_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Smile Dental"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(googleURL string) *config.Config {
	return &config.Config{
		Google:    config.GoogleConfig{Key: "test-key", BaseURL: googleURL, RateLimit: 1000},
		PageSpeed: config.PageSpeedConfig{TimeoutSecs: 30, Categories: []string{"seo", "performance"}},
		Pipeline:  config.PipelineConfig{MaxPerIndustry: 3, Concurrency: 1},
		Retry:     config.RetryConfig{MaxAttempts: 1, InitialBackoffMS: 10},
		Pricing: config.PricingConfig{
			Places: config.PlacesPricing{TextSearch: 0.032, Details: 0.017},
		},
		Server: config.ServerConfig{Port: 8080},
		Log:    config.LogConfig{Level: "info", Format: "console"},
	}
}

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestFindIndustries(t *testing.T) {
	got, err := findIndustries(findOptions{Auto: true})
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = findIndustries(findOptions{Mode: "manual", Industries: "dentists, plumbers"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dentists", "plumbers"}, got)

	got, err = findIndustries(findOptions{Mode: "hybrid", Industries: "roofers"})
	require.NoError(t, err)
	assert.Equal(t, []string{"roofers", "dentists", "plumbers", "HVAC"}, got)

	_, err = findIndustries(findOptions{Mode: "manual"})
	assert.EqualError(t, err, "must specify either --industries or --auto")

	_, err = findIndustries(findOptions{Mode: "sideways", Industries: "x"})
	assert.Error(t, err)
}

func TestRunFind_SeattleJSON(t *testing.T) {
	withConfig(t, testConfig(fakePlaces(t).URL))

	var out bytes.Buffer
	err := runFind(context.Background(), &out, "Seattle, WA", findOptions{
		Industries:     "dentists",
		Mode:           "manual",
		MaxPerIndustry: 1,
		Output:         "json",
	})
	require.NoError(t, err)

	var leads []model.Lead
	require.NoError(t, json.Unmarshal(out.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, model.Lead{
		Business: "Smile Dental",
		Industry: "dentists",
		Location: "Seattle, WA",
		Website:  "N/A",
		Phone:    "N/A",
		SEOScore: 30,
		Category: model.CategoryHot,
		Issues:   "No website found",
	}, leads[0])
}

func TestRunFind_SavesCSVRegardlessOfOutput(t *testing.T) {
	withConfig(t, testConfig(fakePlaces(t).URL))
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "leads.csv")
	xlsxPath := filepath.Join(dir, "leads.xlsx")

	var out bytes.Buffer
	err := runFind(context.Background(), &out, "Seattle, WA", findOptions{
		Industries:     "dentists,plumbers",
		Mode:           "manual",
		MaxPerIndustry: 3,
		Output:         "table",
		SavePath:       csvPath,
		XLSXPath:       xlsxPath,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Total leads found: 1")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	leads, err := report.ParseCSV(f)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Smile Dental", leads[0].Business)

	wb, err := xlsx.OpenFile(xlsxPath)
	require.NoError(t, err)
	sheet, ok := wb.Sheet[report.XLSXSheet]
	require.True(t, ok)
	assert.Len(t, sheet.Rows, 2)
}

func TestRunFind_NoLeadsSkipsSave(t *testing.T) {
	withConfig(t, testConfig(fakePlaces(t).URL))
	csvPath := filepath.Join(t.TempDir(), "leads.csv")

	var out bytes.Buffer
	err := runFind(context.Background(), &out, "Nowhere, ZZ", findOptions{
		Industries:     "dentists",
		MaxPerIndustry: 3,
		Output:         "table",
		SavePath:       csvPath,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), report.NoLeadsMessage)
	assert.NoFileExists(t, csvPath)
}

func TestRunFind_BadOutputFormat(t *testing.T) {
	withConfig(t, testConfig("http://127.0.0.1:1"))

	err := runFind(context.Background(), &bytes.Buffer{}, "Seattle, WA", findOptions{
		Industries: "dentists",
		Output:     "pdf",
	})
	assert.Error(t, err)
}

func TestRunFind_MissingKey(t *testing.T) {
	c := testConfig("http://127.0.0.1:1")
	c.Google.Key = ""
	withConfig(t, c)

	err := runFind(context.Background(), &bytes.Buffer{}, "Seattle, WA", findOptions{
		Auto:   true,
		Output: "table",
	})
	assert.ErrorIs(t, err, config.ErrMissingPlacesKey)
}

func TestRunFind_LogsWorstCaseCost(t *testing.T) {
	withConfig(t, testConfig(fakePlaces(t).URL))
	core, logs := observer.New(zap.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	err := runFind(context.Background(), &bytes.Buffer{}, "Seattle, WA", findOptions{
		Industries:     "dentists,plumbers",
		Mode:           "manual",
		MaxPerIndustry: 3,
		Output:         "json",
	})
	require.NoError(t, err)

	banner := logs.FilterMessage("SEO Lead Finder").All()
	require.Len(t, banner, 1)
	got, ok := banner[0].ContextMap()["max_cost_usd"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 2*0.032+6*0.017, got, 1e-9)
}
