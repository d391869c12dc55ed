package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchGeoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/parks.geojson":
			_, _ = w.Write([]byte(riverside))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat(" ", 2048)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	body, err := FetchGeoJSON(ctx, srv.Client(), srv.URL+"/parks.geojson", 0)
	require.NoError(t, err)
	assert.JSONEq(t, riverside, string(body))

	_, err = FetchGeoJSON(ctx, srv.Client(), srv.URL+"/missing", 0)
	assert.ErrorContains(t, err, "bad status 404")

	_, err = FetchGeoJSON(ctx, srv.Client(), srv.URL+"/big", 1024)
	assert.ErrorContains(t, err, "exceeds 1024 bytes")
}

func TestFetchAndImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(riverside))
	}))
	defer srv.Close()

	p, repo := newPipeline(Options{})
	sum, err := p.FetchAndImport(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 1, repo.Len())
}

func TestStartPeriodic(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(riverside))
	}))
	defer srv.Close()

	p, repo := newPipeline(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := p.StartPeriodic(ctx, srv.Client(), srv.URL, 10*time.Millisecond)

	require.Eventually(t, func() bool { return repo.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, hits.Load(), int32(2), "a failed fetch does not stop the schedule")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
