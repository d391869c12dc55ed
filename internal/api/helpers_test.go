package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"parks-geojson/internal/mapper"
	"parks-geojson/internal/park"
	"parks-geojson/internal/taxonomy"
)

func mustPark(t *testing.T) park.Park {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(`{"id":"S1","geometry":{"type":"Point","coordinates":[1,2]}}`))
	dec.UseNumber()
	var f mapper.Feature
	require.NoError(t, dec.Decode(&f))
	p, err := mapper.New(taxonomy.Default()).FromFeature(f)
	require.NoError(t, err)
	return *p
}
