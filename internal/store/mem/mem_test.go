package mem

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parks-geojson/internal/park"
	"parks-geojson/internal/store"
	"parks-geojson/internal/taxonomy"
)

func sample(gid, name string) park.Park {
	return park.Park{
		GlobalID:   gid,
		Info:       park.Info{Name: name},
		Geometry:   park.Geometry{Type: "Point", Coordinates: json.RawMessage(`[1,2]`)},
		Amenities:  []string{"park_parking", "bogus"},
		Activities: []string{},
	}
}

func TestUpsertIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := New(taxonomy.Default())

	id1, err := s.Upsert(ctx, sample("A1", "Old"))
	require.NoError(t, err)
	id2, err := s.Upsert(ctx, sample("A1", "New"))
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, s.Writes())

	p, err := s.Load(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "New", p.Info.Name)
	assert.Equal(t, []string{"park_parking"}, p.Amenities)
	assert.Equal(t, `[1,2]`, string(p.Geometry.Coordinates))
}

func TestFindAndTerms(t *testing.T) {
	ctx := context.Background()
	s := New(taxonomy.Default())
	id, err := s.Upsert(ctx, sample("A1", "Park"))
	require.NoError(t, err)

	got, ok, err := s.FindByGlobalID(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok, _ = s.FindByGlobalID(ctx, "B2")
	assert.False(t, ok)

	terms, err := s.TermsOf(ctx, id, taxonomy.Amenities)
	require.NoError(t, err)
	assert.Equal(t, []string{"park_parking"}, terms)

	terms, err = s.TermsOf(ctx, 99, taxonomy.Amenities)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestLoadMiss(t *testing.T) {
	p, err := New(taxonomy.Default()).Load(context.Background(), "x")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	_, err := New(taxonomy.Default()).Upsert(context.Background(), sample("", "x"))
	assert.ErrorIs(t, err, store.ErrNoGlobalID)
}

func TestConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := New(taxonomy.Default())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Upsert(ctx, sample("A1", "Park"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Parks)
}

func TestStatsCountsFromLocalMidnight(t *testing.T) {
	ctx := context.Background()
	zone := time.FixedZone("UTC+10", 10*60*60)
	s := New(taxonomy.Default())

	s.now = func() time.Time { return time.Date(2026, 10, 15, 23, 30, 0, 0, zone) }
	_, err := s.Upsert(ctx, sample("A1", "Yesterday"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 10, 16, 0, 30, 0, 0, zone) }
	_, err = s.Upsert(ctx, sample("B2", "Today"))
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, zone) }
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.Parks)
	assert.EqualValues(t, 1, st.UpdatedToday)
}
