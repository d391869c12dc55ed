package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"parks-geojson/internal/logger"
)

// DefaultMaxBytes bounds a fetched or uploaded document.
const DefaultMaxBytes = 64 << 20

// FetchGeoJSON downloads a document. Non-200 responses and bodies over maxBytes are errors;
// no retries, the scheduler tries again on its next tick.
func FetchGeoJSON(ctx context.Context, client *http.Client, srcURL string, maxBytes int64) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: bad status %d", srcURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", srcURL, maxBytes)
	}
	return body, nil
}

// FetchAndImport downloads srcURL and runs it through the pipeline.
func (p *Pipeline) FetchAndImport(ctx context.Context, client *http.Client, srcURL string) (Summary, error) {
	logger.L().Info().Str("src", srcURL).Msg("ingest_fetch_start")
	raw, err := FetchGeoJSON(ctx, client, srcURL, 0)
	if err != nil {
		return Summary{}, err
	}
	return p.Import(ctx, raw), nil
}
