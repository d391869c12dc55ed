package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parks-geojson/internal/park"
	"parks-geojson/internal/render"
	"parks-geojson/internal/store/mem"
	"parks-geojson/internal/taxonomy"
)

func renderer(t *testing.T) *render.Renderer {
	t.Helper()
	repo := mem.New(taxonomy.Default())
	_, err := repo.Upsert(context.Background(), park.Park{
		GlobalID: "A1",
		Info:     park.Info{Name: "Riverside Park"},
		Geometry: park.Geometry{Type: "Point", Coordinates: json.RawMessage(`[1,2]`)},
	})
	require.NoError(t, err)
	rd, err := render.New(repo, render.Options{})
	require.NoError(t, err)
	return rd
}

func TestShowPayload(t *testing.T) {
	var opts Options
	opts.Args.GlobalID = "A1"
	opts.Pretty = true

	var out bytes.Buffer
	require.Equal(t, 0, show(context.Background(), renderer(t), opts, &out))

	var pl render.Payload
	require.NoError(t, json.Unmarshal(out.Bytes(), &pl))
	assert.Equal(t, "Riverside Park", pl.Info.Name)
	assert.Equal(t, []float64{1, 2, 1, 2}, pl.BBox)
}

func TestShowMissing(t *testing.T) {
	var opts Options
	opts.Args.GlobalID = "nope"

	var out bytes.Buffer
	assert.Equal(t, 1, show(context.Background(), renderer(t), opts, &out))
	assert.Equal(t, "No park found.\n", out.String())

	out.Reset()
	opts.Page = true
	assert.Equal(t, 1, show(context.Background(), renderer(t), opts, &out))
	assert.Contains(t, out.String(), "No park found.")
}
