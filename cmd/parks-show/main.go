// parks-show prints the render payload of one stored park as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"parks-geojson/internal/logger"
	"parks-geojson/internal/render"
	"parks-geojson/internal/store"
	"parks-geojson/internal/taxonomy"
	"parks-geojson/internal/utils"
)

type Options struct {
	Logger logger.Options `group:"Logger options"`

	Pretty bool `short:"p" long:"pretty" description:"Indent the JSON output"`
	Page   bool `long:"page"              description:"Print the HTML map page instead of the payload"`

	Args struct {
		GlobalID string `positional-arg-name:"GLOBAL_ID" required:"yes"`
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

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("db_open_error")
	}
	rd, err := render.New(store.AttachDB(db, taxonomy.Default()), render.Options{MapsAPIKey: os.Getenv("PARKS_MAPS_API_KEY")})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("render_init_error")
	}
	code := show(context.Background(), rd, opts, os.Stdout)
	db.Close()
	os.Exit(code)
}

// show writes the payload or page; 1 means not found or an error.
func show(ctx context.Context, rd *render.Renderer, opts Options, out io.Writer) int {
	gid := opts.Args.GlobalID
	if opts.Page {
		page, found, err := rd.Page(ctx, gid)
		if err != nil {
			logger.L().Error().Err(err).Str("global_id", gid).Msg("render_error")
			return 1
		}
		_, _ = out.Write(page)
		if !found {
			return 1
		}
		return 0
	}

	pl, err := rd.Payload(ctx, gid)
	if err != nil {
		logger.L().Error().Err(err).Str("global_id", gid).Msg("render_error")
		return 1
	}
	if pl == nil {
		fmt.Fprintln(out, "No park found.")
		return 1
	}
	enc := json.NewEncoder(out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(pl); err != nil {
		return 1
	}
	return 0
}
