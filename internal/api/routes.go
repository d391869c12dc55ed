// Package api registers the parks HTTP routes on their own ServeMux so the entry point can
// mount them under API_BASE.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"parks-geojson/internal/ingest"
	"parks-geojson/internal/logger"
	"parks-geojson/internal/metrics"
	"parks-geojson/internal/middleware"
	"parks-geojson/internal/render"
	"parks-geojson/internal/store"
)

// UploadField is the multipart field carrying an uploaded GeoJSON file.
const UploadField = "parks_geojson_file"

const (
	msgNoFile     = "Please choose a GeoJSON file to upload."
	msgReadFailed = "Could not read the uploaded file."
	msgNotFound   = "No park found."
)

// Deps are the collaborators of the routes.
type Deps struct {
	Repo       store.Repository
	Renderer   *render.Renderer
	Pipeline   *ingest.Pipeline
	AdminToken string
	// MaxImportBytes bounds an import body; <= 0 means ingest.DefaultMaxBytes.
	MaxImportBytes int64
}

type errorBody struct {
	Message string `json:"message"`
}

// BuildRoutes returns the API mux.
func BuildRoutes(d Deps) *http.ServeMux {
	if d.MaxImportBytes <= 0 {
		d.MaxImportBytes = ingest.DefaultMaxBytes
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /parks/{global_id}", func(w http.ResponseWriter, r *http.Request) {
		metrics.RenderRequestsTotal.WithLabelValues("payload").Inc()
		pl, err := d.Renderer.Payload(r.Context(), r.PathValue("global_id"))
		if err != nil {
			logger.L().Error().Err(err).Str("global_id", r.PathValue("global_id")).Msg("render_error")
			writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Could not load the park."})
			return
		}
		if pl == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Message: msgNotFound})
			return
		}
		writeJSON(w, http.StatusOK, pl)
	})

	mux.HandleFunc("GET /parks/{global_id}/map", func(w http.ResponseWriter, r *http.Request) {
		metrics.RenderRequestsTotal.WithLabelValues("page").Inc()
		page, found, err := d.Renderer.Page(r.Context(), r.PathValue("global_id"))
		if err != nil {
			logger.L().Error().Err(err).Str("global_id", r.PathValue("global_id")).Msg("render_error")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		if !found {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write(page)
	})

	mux.Handle("POST /import", middleware.RequireAdmin(d.AdminToken, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, status, msg := readUpload(w, r, d.MaxImportBytes)
		if status != http.StatusOK {
			logger.L().Info().Int("status", status).Str("reason", msg).Msg("import_upload_rejected")
			writeJSON(w, status, errorBody{Message: msg})
			return
		}
		sum := d.Pipeline.Import(r.Context(), raw)
		status = http.StatusOK
		switch {
		case sum.Failed:
			status = http.StatusInternalServerError
		case sum.Aborted:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, sum)
	})))

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Repo.Stats(r.Context())
		if err != nil {
			logger.L().Error().Err(err).Msg("stats_error")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	return mux
}

// readUpload returns the document from a multipart upload or the raw body.
func readUpload(w http.ResponseWriter, r *http.Request, max int64) ([]byte, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, max)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("content-type"), "multipart/form-data") {
		f, _, err := r.FormFile(UploadField)
		if err != nil {
			if isTooLarge(err) {
				return nil, http.StatusRequestEntityTooLarge, msgReadFailed
			}
			return nil, http.StatusBadRequest, msgNoFile
		}
		defer f.Close()
		src = f
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, msgReadFailed
		}
		return nil, http.StatusBadRequest, msgReadFailed
	}
	if len(raw) == 0 {
		return nil, http.StatusBadRequest, msgNoFile
	}
	return raw, http.StatusOK, ""
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
