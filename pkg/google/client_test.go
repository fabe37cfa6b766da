package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "dentists in Seattle, WA", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{
			Status: StatusOK,
			Results: []SearchPlace{
				{PlaceID: "ChIJ-1", Name: "Bright Smiles"},
				{PlaceID: "ChIJ-2", Name: "Lake Union Dental"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "dentists in Seattle, WA")

	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "ChIJ-1", resp.Results[0].PlaceID)
	assert.Equal(t, "Lake Union Dental", resp.Results[1].Name)
}

func TestTextSearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "nothing in Nowhere")

	require.NoError(t, err)
	assert.Equal(t, StatusZeroResults, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestTextSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
}

func TestTextSearch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test")

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestTextSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(ctx, "test")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestPlaceDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "ChIJ-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "name,formatted_phone_number,website,rating,user_ratings_total", r.URL.Query().Get("fields"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"name": "Bright Smiles",
				"formatted_phone_number": "(206) 555-0100",
				"website": "https://brightsmiles.example",
				"rating": 4.7,
				"user_ratings_total": 212
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.PlaceDetails(context.Background(), "ChIJ-1", DetailFields)

	require.NoError(t, err)
	assert.Equal(t, "Bright Smiles", resp.Result.Name)
	assert.Equal(t, "(206) 555-0100", resp.Result.FormattedPhoneNumber)
	assert.Equal(t, "https://brightsmiles.example", resp.Result.Website)
	require.NotNil(t, resp.Result.Rating)
	assert.InDelta(t, 4.7, *resp.Result.Rating, 0.001)
	require.NotNil(t, resp.Result.UserRatingsTotal)
	assert.Equal(t, 212, *resp.Result.UserRatingsTotal)
}

func TestPlaceDetails_MissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"No Frills Plumbing"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.PlaceDetails(context.Background(), "ChIJ-2", DetailFields)

	require.NoError(t, err)
	assert.Equal(t, "No Frills Plumbing", resp.Result.Name)
	assert.Empty(t, resp.Result.Website)
	assert.Nil(t, resp.Result.Rating)
	assert.Nil(t, resp.Result.UserRatingsTotal)
}

func TestPlaceDetails_EmptyID(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://127.0.0.1:1"))
	resp, err := client.PlaceDetails(context.Background(), "", DetailFields)

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestPlaceDetails_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.PlaceDetails(context.Background(), "ChIJ-1", DetailFields)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "500")
}
