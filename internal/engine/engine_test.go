package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowyfields/marketboard/internal/config"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(catalogPath, baseURL string, origins []string) *config.Config {
	return &config.Config{
		CatalogPath:  catalogPath,
		BaseURL:      baseURL,
		Region:       "test",
		Origins:      origins,
		CacheTTL:     time.Hour,
		FetchTimeout: 2 * time.Second,
		RatePerSec:   1000,
		ResolveLimit: 5,
	}
}

func TestNew_CatalogLoadFailureIsFatal(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.json"), "http://unused", []string{"A"})

	_, err := New(cfg)
	require.Error(t, err)
}

func TestEngine_ResolveThenQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Alpha/5333":
			_, _ = w.Write([]byte(`{
				"listings": [{"pricePerUnit": 150}],
				"recentHistory": [{"pricePerUnit": 130, "quantity": 2, "timestamp": 1700000000}]
			}`))
		case "/Beta/5333":
			_, _ = w.Write([]byte(`{"listings": [{"pricePerUnit": 120}], "recentHistory": []}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	catalogPath := writeCatalog(t, `[{"id": 5333, "name": "平紋布", "name_en": "Plain Cloth"}]`)
	eng, err := New(testConfig(catalogPath, srv.URL, []string{"Alpha", "Beta"}))
	require.NoError(t, err)

	candidates := eng.Resolve("平紋")
	require.Len(t, candidates, 1)
	assert.Equal(t, 5333, candidates[0].ID)

	res, err := eng.Query(context.Background(), candidates[0].ID)
	require.NoError(t, err)
	assert.False(t, res.FromCache)

	sum := res.Summary
	require.NotNil(t, sum.LowestPrice)
	assert.Equal(t, int64(120), *sum.LowestPrice)
	assert.Equal(t, "Beta", sum.LowestOrigin)
	require.NotNil(t, sum.AveragePrice)
	assert.Equal(t, int64(130), *sum.AveragePrice, "the lone sale backs the average")
	require.NotNil(t, sum.Sale)
	assert.Equal(t, int64(130), sum.Sale.Price)

	// Same item again: served from cache, no second upstream pass needed.
	res, err = eng.Query(context.Background(), 5333)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestEngine_NoMarketDataIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	catalogPath := writeCatalog(t, `[{"id": 5333, "name": "平紋布"}]`)
	eng, err := New(testConfig(catalogPath, srv.URL, []string{"Alpha", "Beta"}))
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 5333)
	require.NoError(t, err, "an item with no listings anywhere is not an error")

	assert.Nil(t, res.Summary.LowestPrice)
	assert.Nil(t, res.Summary.AveragePrice)
	assert.Nil(t, res.Summary.Sale)
}

func TestEngine_ResolveShapes(t *testing.T) {
	catalogPath := writeCatalog(t, `[
		{"id": 1, "name": "Copper Ore"},
		{"id": 2, "name": "Copper Ingot"}
	]`)
	eng, err := New(testConfig(catalogPath, "http://unused", []string{"A"}))
	require.NoError(t, err)

	assert.Empty(t, eng.Resolve("mythril"), "unknown keyword resolves to nothing")
	assert.Len(t, eng.Resolve("copper"), 2, "ambiguous keyword returns every candidate")
	assert.Len(t, eng.Resolve("copper ore"), 1, "exact keyword returns one")
}
