package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{"type":"FeatureCollection","features":[
	{"type":"Feature","id":"A1","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"NAME":"Riverside Park"}},
	{"type":"Feature","id":"B2","geometry":{"type":"Polygon","coordinates":[]}}
]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunDryRun(t *testing.T) {
	var opts Options
	opts.DryRun = true
	opts.Verbose = true
	opts.Args.Files = []string{writeFile(t, "parks.geojson", doc)}

	var out bytes.Buffer
	code := run(context.Background(), opts, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "1 park(s) imported. 1 feature(s) skipped (invalid or missing id/geometry).")
	assert.Contains(t, out.String(), "skipped feature 1 (B2) rejected")
}

func TestRunAbortSetsExitStatus(t *testing.T) {
	var opts Options
	opts.DryRun = true
	opts.Args.Files = []string{
		writeFile(t, "bad.geojson", "{"),
		writeFile(t, "good.geojson", doc),
	}

	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "Invalid JSON in the uploaded file.")
	assert.Contains(t, out.String(), "1 park(s) imported.")
}

func TestRunMissingFile(t *testing.T) {
	var opts Options
	opts.DryRun = true
	opts.Args.Files = []string{filepath.Join(t.TempDir(), "nope.geojson")}

	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), opts, &out))
}

func TestRunNothingToDo(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), Options{}, &out))
}
