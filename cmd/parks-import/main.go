// parks-import loads parks GeoJSON files (or a URL) into Postgres, or into memory with --dry-run.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"parks-geojson/internal/ingest"
	"parks-geojson/internal/logger"
	"parks-geojson/internal/mapper"
	"parks-geojson/internal/migrate"
	"parks-geojson/internal/store"
	"parks-geojson/internal/store/mem"
	"parks-geojson/internal/taxonomy"
	"parks-geojson/internal/utils"
)

type Options struct {
	Logger logger.Options `group:"Logger options"`

	URL          string `short:"u" long:"url"      env:"PARKS_SRC_URL"       description:"Fetch the document from a URL instead of files"`
	DryRun       bool   `short:"n" long:"dry-run"                            description:"Import into memory; nothing is written"`
	Verbose      bool   `short:"v" long:"verbose"                            description:"Print every skipped feature"`
	Workers      int    `short:"w" long:"workers"  env:"IMPORT_WORKERS"      description:"Parallel upsert shards" default:"1"`
	TaxonomyFile string `long:"taxonomy"           env:"PARKS_TAXONOMY_FILE" description:"YAML amenity/activity vocabulary (built-in when empty)"`

	Args struct {
		Files []string `positional-arg-name:"FILE"`
	} `positional-args:"yes"`
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
	opts.Logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, opts, os.Stdout))
}

// run imports every source and returns the exit status: 1 when any run
// aborts or fails, 2 on setup errors.
func run(ctx context.Context, opts Options, out io.Writer) int {
	l := logger.L()
	if opts.URL == "" && len(opts.Args.Files) == 0 {
		fmt.Fprintln(out, "nothing to import: pass FILE arguments or --url")
		return 2
	}

	tax, err := taxonomy.LoadOrDefault(opts.TaxonomyFile)
	if err != nil {
		l.Error().Err(err).Msg("taxonomy_load_error")
		return 2
	}

	var repo store.Repository
	if opts.DryRun {
		repo = mem.New(tax)
	} else {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error().Err(err).Msg("db_open_error")
			return 2
		}
		defer db.Close()
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error().Err(err).Msg("schema_error")
			return 2
		}
		repo = store.AttachDB(db, tax)
	}
	p := ingest.New(mapper.New(tax), repo, ingest.Options{Workers: opts.Workers})

	status := 0
	report := func(src string, sum ingest.Summary) {
		fmt.Fprintf(out, "%s: %s\n", src, sum.Message)
		if opts.Verbose {
			for _, r := range sum.Skips() {
				fmt.Fprintf(out, "  skipped feature %d (%s) %s: %s\n", r.Index, r.GlobalID, r.Kind, r.Reason)
			}
		}
		if !sum.Completed() {
			status = 1
		}
	}

	if opts.URL != "" {
		sum, err := p.FetchAndImport(ctx, &http.Client{Timeout: 2 * time.Minute}, opts.URL)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", opts.URL, err)
			status = 1
		} else {
			report(opts.URL, sum)
		}
	}
	for _, path := range opts.Args.Files {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			status = 1
			continue
		}
		report(path, p.Import(ctx, raw))
	}
	return status
}
