// Server entry point: reads configuration, wires dependencies and serves the parks API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"parks-geojson/internal/api"
	"parks-geojson/internal/ingest"
	"parks-geojson/internal/logger"
	"parks-geojson/internal/mapper"
	"parks-geojson/internal/metrics"
	"parks-geojson/internal/middleware"
	"parks-geojson/internal/migrate"
	"parks-geojson/internal/render"
	"parks-geojson/internal/store"
	"parks-geojson/internal/taxonomy"
	"parks-geojson/internal/utils"
)

type Options struct {
	Logger logger.Options `group:"Logger options"`

	Addr           string        `long:"addr"             env:"ADDR"                description:"Address to listen on"                        default:":8080"`
	APIBase        string        `long:"api-base"         env:"API_BASE"            description:"Path prefix of the API"                      default:"/api"`
	AdminToken     string        `long:"admin-token"      env:"ADMIN_TOKEN"         description:"Token required by POST {api-base}/import"`
	TaxonomyFile   string        `long:"taxonomy"         env:"PARKS_TAXONOMY_FILE" description:"YAML amenity/activity vocabulary (built-in when empty)"`
	MapsAPIKey     string        `long:"maps-api-key"     env:"PARKS_MAPS_API_KEY"  description:"Google Maps API key for map pages"`
	CacheTTL       time.Duration `long:"cache-ttl"        env:"PARKS_CACHE_TTL"     description:"Render cache lifetime"                       default:"24h"`
	Workers        int           `long:"workers"          env:"IMPORT_WORKERS"      description:"Parallel upsert shards"                      default:"1"`
	ImportMaxBytes int64         `long:"import-max-bytes" env:"IMPORT_MAX_BYTES"    description:"Largest accepted import body"                default:"67108864"`
	SrcURL         string        `long:"src-url"          env:"PARKS_SRC_URL"       description:"GeoJSON re-imported on a schedule"`
	SrcInterval    time.Duration `long:"src-interval"     env:"PARKS_SRC_INTERVAL"  description:"Scheduled re-import period"                  default:"24h"`

	TLSEnable bool     `long:"tls"      env:"TLS_ENABLE"    description:"Serve HTTPS with a self-signed certificate when none exists"`
	TLSCert   string   `long:"tls-cert" env:"TLS_CERT_PATH" description:"TLS certificate path" default:"data/certs/server.crt"`
	TLSKey    string   `long:"tls-key"  env:"TLS_KEY_PATH"  description:"TLS key path"         default:"data/certs/server.key"`
	TLSHosts  []string `long:"tls-host" env:"TLS_HOSTS" env-delim:"," description:"Names and addresses of the self-signed certificate" default:"parks.local"`
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	l := opts.Logger.Setup()
	l.Debug().Str("base", opts.APIBase).Msg("config_api_base")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tax, err := taxonomy.LoadOrDefault(opts.TaxonomyFile)
	if err != nil {
		l.Fatal().Err(err).Str("path", opts.TaxonomyFile).Msg("taxonomy_load_error")
	}

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Fatal().Err(err).Msg("db_open_error")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error().Err(err).Msg("db_ping_error")
	} else {
		l.Info().Msg("db_ping_ok")
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Fatal().Err(err).Msg("schema_error")
	}
	st := store.AttachDB(db, tax)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info().Msg("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error().Err(err).Msg("redis_ping_error")
		} else {
			l.Info().Msg("redis_ping_ok")
		}
	}

	rd, err := render.New(st, render.Options{Cache: rc, TTL: opts.CacheTTL, MapsAPIKey: opts.MapsAPIKey})
	if err != nil {
		l.Fatal().Err(err).Msg("render_init_error")
	}
	pipeline := ingest.New(mapper.New(tax), st, ingest.Options{Workers: opts.Workers, Invalidator: rd})

	if opts.SrcURL != "" {
		pipeline.StartPeriodic(ctx, &http.Client{Timeout: 2 * time.Minute}, opts.SrcURL, opts.SrcInterval)
	}

	apiMux := api.BuildRoutes(api.Deps{
		Repo:           st,
		Renderer:       rd,
		Pipeline:       pipeline,
		AdminToken:     opts.AdminToken,
		MaxImportBytes: opts.ImportMaxBytes,
	})
	mux := http.NewServeMux()
	mux.Handle(opts.APIBase+"/", http.StripPrefix(opts.APIBase, apiMux))
	mux.Handle(opts.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: opts.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if opts.TLSEnable {
		var created bool
		created, err = utils.EnsureSelfSignedCert(opts.TLSCert, opts.TLSKey, opts.TLSHosts...)
		if err != nil {
			l.Fatal().Err(err).Msg("tls_cert_error")
		}
		if created {
			l.Info().Str("cert", opts.TLSCert).Strs("hosts", opts.TLSHosts).Msg("tls_cert_created")
		}
		l.Info().Str("addr", opts.Addr).Str("cert", opts.TLSCert).Msg("listening_tls")
		err = s.ListenAndServeTLS(opts.TLSCert, opts.TLSKey)
	} else {
		l.Info().Str("addr", opts.Addr).Msg("listening")
		err = s.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		l.Fatal().Err(err).Msg("server_error")
	}
}
