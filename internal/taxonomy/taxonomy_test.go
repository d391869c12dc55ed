package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterAllowed(t *testing.T) {
	tab := Default()

	tests := []struct {
		name     string
		in       []string
		category Category
		want     []string
	}{
		{"dedupe and drop unknown", []string{"park_parking", "bogus", "park_parking"}, Amenities, []string{"park_parking"}},
		{"keeps first-seen order", []string{"park_bbq", "park_parking", "park_bbq"}, Amenities, []string{"park_bbq", "park_parking"}},
		{"category isolation", []string{"park_soccer", "park_parking"}, Activities, []string{"park_soccer"}},
		{"empty input", nil, Amenities, []string{}},
		{"unknown category", []string{"park_parking"}, Category("trees"), []string{}},
		{"case sensitive", []string{"PARK_PARKING"}, Amenities, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tab.FilterAllowed(tt.in, tt.category))
		})
	}
}

func TestFilterAllowedIdempotent(t *testing.T) {
	tab := Default()
	inputs := [][]string{
		{"park_pool", "x", "park_splash", "park_pool", ""},
		{"park_exercise"},
		{},
	}
	for _, in := range inputs {
		once := tab.FilterAllowed(in, Activities)
		twice := tab.FilterAllowed(once, Activities)
		assert.Equal(t, once, twice)
		for _, s := range once {
			assert.Contains(t, in, s)
		}
	}
}

func TestDefaultTables(t *testing.T) {
	tab := Default()
	assert.Len(t, tab.Fields(Amenities), 10)
	assert.Len(t, tab.Allowed(Amenities), 9, "AMPSTA shares the ampitheater slug")
	assert.Len(t, tab.Fields(Activities), 15)
	assert.Len(t, tab.Allowed(Activities), 15)
	assert.True(t, tab.IsAllowed(Amenities, "park_ampitheater"))
	assert.False(t, tab.IsAllowed(Activities, "park_parking"))
}

func TestFieldsIsCopy(t *testing.T) {
	tab := Default()
	f := tab.Fields(Amenities)
	f[0].Slug = "mutated"
	assert.Equal(t, "park_parking", tab.Fields(Amenities)[0].Slug)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	body := `
amenities:
  - field: WIFI
    slug: park_wifi
activities:
  - field: CHESS
    slug: park_chess
  - field: CHESSTABLES
    slug: park_chess
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	tab, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []FieldSlug{{"WIFI", "park_wifi"}}, tab.Fields(Amenities))
	assert.Equal(t, []string{"park_chess"}, tab.Allowed(Activities))
	assert.Equal(t, []string{}, tab.FilterAllowed([]string{"park_parking"}, Amenities))
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	_, err := Parse([]byte("amenities:\n  - field: WIFI\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("amenities: [oops"))
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Picnic tables", Label("park_picnic_tables"))
	assert.Equal(t, "Bbq", Label("park_bbq"))
	assert.Equal(t, "Custom", Label("custom"))
	assert.Equal(t, "", Label("park_"))
}

func TestLoadOrDefault(t *testing.T) {
	tab, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Len(t, tab.Fields(Activities), 15)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
