package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setupTestServer(t)

	// Generate some traffic before scraping.
	resp := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	scrape, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = scrape.Body.Close() }()
	require.Equal(t, http.StatusOK, scrape.StatusCode)

	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}
