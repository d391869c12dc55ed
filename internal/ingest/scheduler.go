package ingest

import (
	"context"
	"net/http"
	"time"

	"parks-geojson/internal/logger"
)

// DefaultInterval is the re-import period when PARKS_SRC_INTERVAL is unset.
const DefaultInterval = 24 * time.Hour

// StartPeriodic re-imports srcURL every interval until ctx is done. The first run
// happens after one interval. Errors are logged and the schedule continues.
// The returned channel is closed when the loop exits.
func (p *Pipeline) StartPeriodic(ctx context.Context, client *http.Client, srcURL string, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultInterval
	}
	done := make(chan struct{})
	l := logger.L()
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		l.Info().Str("src", srcURL).Dur("interval", interval).Msg("ingest_scheduled")
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sum, err := p.FetchAndImport(ctx, client, srcURL)
				if err != nil {
					l.Error().Err(err).Str("src", srcURL).Msg("ingest_error")
					continue
				}
				l.Info().Str("run_id", sum.RunID).Bool("completed", sum.Completed()).Str("message", sum.Message).Msg("ingest_done")
			}
		}
	}()
	return done
}
