package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"relief-data/internal/domain"
	"relief-data/internal/selector"
	"relief-data/internal/service"
	"relief-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter 离线模式下的完整 API（无 managed DB、无 remote）
func newTestRouter(t *testing.T) *Router {
	t.Helper()

	kv, err := store.NewSqliteKV(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	svc := service.NewReliefService(service.Deps{
		Cache:    store.NewSnapshotCache(kv),
		Selector: selector.New(nil, nil, zap.NewNop(), selector.Options{Timeout: time.Second}),
		Logger:   zap.NewNop(),
	})

	logger := zap.NewNop()
	r := NewRouter(logger)
	r.RegisterReliefRoutes(
		NewCenterHandler(svc, logger),
		NewGuestHandler(svc, logger),
		NewStatsHandler(svc, logger),
	)
	return r
}

func doJSON(t *testing.T, r *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResult[T any](t *testing.T, rec *httptest.ResponseRecorder) Result[T] {
	t.Helper()
	var out Result[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCenterLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	// create
	rec := doJSON(t, r, http.MethodPost, "/relief/api/v1/centers", map[string]any{
		"name":          "Municipal School Camp",
		"totalCapacity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeResult[domain.RescueCenter](t, rec)
	assert.Equal(t, ResultSuccess, created.Code)
	assert.Equal(t, "RC001", created.Result.ID)
	assert.Equal(t, 2, created.Result.AvailableCapacity)
	assert.Equal(t, 100, created.Result.WaterLevel)

	// register two guests -> center flips to full
	for _, phone := range []string{"9801234567", "9802345678"} {
		rec = doJSON(t, r, http.MethodPost, "/relief/api/v1/guests", map[string]any{
			"centerId":    "RC001",
			"firstName":   "Ravi",
			"mobilePhone": phone,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/centers/RC001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResult[domain.RescueCenter](t, rec)
	assert.Equal(t, domain.CenterStatusFull, got.Result.Status)
	assert.Equal(t, 2, got.Result.CurrentGuests)

	// roster for the center
	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/centers/RC001/guests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decodeResult[[]domain.Guest](t, rec)
	assert.Len(t, roster.Result, 2)

	// cascade delete
	rec = doJSON(t, r, http.MethodDelete, "/relief/api/v1/centers/RC001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/guests", nil)
	all := decodeResult[[]domain.Guest](t, rec)
	assert.Empty(t, all.Result)
}

func TestGuestSearchOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/relief/api/v1/centers", map[string]any{
		"name": "Camp", "totalCapacity": 50,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, g := range []map[string]any{
		{"centerId": "RC001", "firstName": "Ravi", "mobilePhone": "9801234567"},
		{"centerId": "RC001", "firstName": "Meera", "lastName": "Nair", "mobilePhone": "9441112222"},
	} {
		rec = doJSON(t, r, http.MethodPost, "/relief/api/v1/guests", g)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/guests?q=980", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hits := decodeResult[[]domain.Guest](t, rec)
	require.Len(t, hits.Result, 1)
	assert.Equal(t, "Ravi", hits.Result[0].FirstName)
}

func TestErrorStatusMapping(t *testing.T) {
	r := newTestRouter(t)

	// unknown center id -> 404
	rec := doJSON(t, r, http.MethodGet, "/relief/api/v1/centers/RC999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	fail := decodeResult[any](t, rec)
	assert.Equal(t, ResultError, fail.Code)

	// dangling centerId -> 400
	rec = doJSON(t, r, http.MethodPost, "/relief/api/v1/guests", map[string]any{
		"centerId": "RC999", "firstName": "Ghost", "mobilePhone": "9999999999",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// capacity < 1 -> 400
	rec = doJSON(t, r, http.MethodPost, "/relief/api/v1/centers", map[string]any{
		"name": "Bad", "totalCapacity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// malformed body -> 400
	req := httptest.NewRequest(http.MethodPost, "/relief/api/v1/centers", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// wrong method on stats -> 405
	rec = doJSON(t, r, http.MethodPost, "/relief/api/v1/stats", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatsAndStatusOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/relief/api/v1/centers", map[string]any{
		"name": "Camp", "totalCapacity": 100, "waterLevel": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeResult[service.DisasterStats](t, rec)
	assert.Equal(t, 1, stats.Result.TotalCenters)
	assert.Equal(t, 1, stats.Result.CriticalCenters)

	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeResult[service.SyncStatus](t, rec)
	assert.True(t, status.Result.Offline)
}

func TestExportRosterOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/relief/api/v1/centers", map[string]any{
		"name": "Camp", "totalCapacity": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/relief/api/v1/export/roster", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relief-roster-")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
