// Package mem is an in-process park store used by dry runs and tests.
package mem

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"parks-geojson/internal/park"
	"parks-geojson/internal/store"
	"parks-geojson/internal/taxonomy"
)

type record struct {
	id      int64
	park    park.Park
	terms   map[taxonomy.Category][]string
	updated time.Time
}

// Store keeps parks in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tax    *taxonomy.Table
	nextID int64
	byGID  map[string]*record
	byID   map[int64]*record
	writes int
	now    func() time.Time
}

var _ store.Repository = (*Store)(nil)

func New(tax *taxonomy.Table) *Store {
	return &Store{tax: tax, byGID: map[string]*record{}, byID: map[int64]*record{}, now: time.Now}
}

func (s *Store) FindByGlobalID(_ context.Context, globalID string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.byGID[globalID]; ok {
		return r.id, true, nil
	}
	return 0, false, nil
}

// Upsert mirrors the Postgres store: last write wins and terms are replaced wholesale.
func (s *Store) Upsert(ctx context.Context, p park.Park) (int64, error) {
	if p.GlobalID == "" {
		return 0, store.ErrNoGlobalID
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byGID[p.GlobalID]
	if !ok {
		s.nextID++
		r = &record{id: s.nextID}
		s.byGID[p.GlobalID] = r
		s.byID[r.id] = r
	}
	r.park = p
	r.terms = map[taxonomy.Category][]string{
		taxonomy.Amenities:  s.tax.FilterAllowed(p.Amenities, taxonomy.Amenities),
		taxonomy.Activities: s.tax.FilterAllowed(p.Activities, taxonomy.Activities),
	}
	r.updated = s.now()
	s.writes++
	return r.id, nil
}

func (s *Store) TermsOf(_ context.Context, recordID int64, c taxonomy.Category) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[recordID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, r.terms[c]...), nil
}

func (s *Store) Load(_ context.Context, globalID string) (*park.Park, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byGID[globalID]
	if !ok {
		return nil, nil
	}
	p := park.FromStored(park.Stored{
		GlobalID:   r.park.GlobalID,
		Title:      r.park.Info.Name,
		Info:       r.park.Info,
		Geometry:   encodeGeometry(r.park.Geometry),
		Amenities:  append([]string{}, r.terms[taxonomy.Amenities]...),
		Activities: append([]string{}, r.terms[taxonomy.Activities]...),
	})
	return &p, nil
}

func (s *Store) Stats(_ context.Context) (*store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Local midnight, like current_date in Postgres.
	now := s.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	st := &store.Stats{Parks: int64(len(s.byGID))}
	for _, r := range s.byGID {
		if !r.updated.Before(midnight) {
			st.UpdatedToday++
		}
	}
	return st, nil
}

// Len returns the number of stored parks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byGID)
}

// Writes returns the number of successful upserts, including overwrites.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func encodeGeometry(g park.Geometry) []byte {
	b, err := json.Marshal(g)
	if err != nil {
		return nil
	}
	return b
}
