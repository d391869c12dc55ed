package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	ImportRunsTotal.WithLabelValues("completed").Inc()
	ImportFeaturesTotal.WithLabelValues("imported").Add(2)
	RenderRequestsTotal.WithLabelValues("payload").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `parks_import_runs_total{result="completed"}`)
	assert.Contains(t, string(body), `parks_import_features_total{outcome="imported"}`)
	assert.Contains(t, string(body), "parks_render_requests_total")
}
