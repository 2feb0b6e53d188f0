package httpadapter_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/covid-regional-etl/internal/adapter/httpadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error, csvPath string) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, csvPath, slog.Default())
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, "unused.csv"), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, "unused.csv"), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("no successful run yet"), "unused.csv"), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, "unused.csv"), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDownloadServesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid_usa_regional.csv")
	content := "date,region,infected,recovered,population,mobility\n2020-03-05,California,118,0,1,1.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rec := get(newTestServer(nil, path), "/download")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="covid_usa_regional.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.String())
}

func TestDownloadNotGenerated(t *testing.T) {
	rec := get(newTestServer(nil, filepath.Join(t.TempDir(), "missing.csv")), "/download")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadRejectsPost(t *testing.T) {
	srv := newTestServer(nil, "unused.csv")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/download", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
