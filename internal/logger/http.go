package logger

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// statusWriter records the status code and byte count of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessMiddleware logs one debug line per request. Request bodies are never read.
// Constraint: ip is RemoteAddr; proxies must be handled upstream.
func AccessMiddleware(l *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			l.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("bytes", sw.bytes).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("ip", r.RemoteAddr).
				Msg("http_access")
		})
	}
}
