package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relief-data/internal/auth"
	"relief-data/internal/domain"
	"relief-data/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*BackendClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewBackendClient(srv.URL, auth.NewStaticTokenSource(token), 2*time.Second, zap.NewNop())
	return c, srv
}

func TestBackendClient_BearerHeader(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]wire.CenterRow{})
	}, "session-token-1")

	require.NoError(t, c.Get(context.Background(), "/centers", &[]wire.CenterRow{}))
	assert.Equal(t, "Bearer session-token-1", gotAuth)
}

func TestBackendClient_AnonymousOmitsHeader(t *testing.T) {
	var gotAuth string
	var present bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}, "")

	require.NoError(t, c.Get(context.Background(), "/centers", nil))
	assert.Empty(t, gotAuth)
	assert.False(t, present)
}

func TestBackendClient_DecodesRows(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]wire.CenterRow{
			{ID: "RC001", Name: "School Shelter", TotalCapacity: 100, Status: "active"},
		})
	}, "")

	var rows []wire.CenterRow
	require.NoError(t, c.Get(context.Background(), "/centers", &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "RC001", rows[0].ID)
	assert.Equal(t, 100, rows[0].TotalCapacity)
}

func TestBackendClient_404MapsToNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")

	err := c.Get(context.Background(), "/centers/RC999", nil)
	assert.True(t, domain.IsNotFound(err))
	assert.False(t, domain.IsUnavailable(err))
}

func TestBackendClient_5xxMapsToUnavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "")

	err := c.Post(context.Background(), "/guests", wire.GuestRow{ID: "g1"}, nil)
	assert.True(t, domain.IsUnavailable(err))
}

func TestBackendClient_NetworkErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立即关掉，模拟网络不可达
	c := NewBackendClient(srv.URL, nil, time.Second, zap.NewNop())

	err := c.Get(context.Background(), "/centers", nil)
	assert.True(t, domain.IsUnavailable(err))
}

func TestBackendClient_TimeoutMapsToUnavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "/centers", nil)
	assert.True(t, domain.IsUnavailable(err))
}

func TestBackendClient_Health(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, c.Health(ctx))
}
